package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unifiedpay/wallet-backend/internal/models"
	repo "github.com/unifiedpay/wallet-backend/internal/repository"
	"github.com/unifiedpay/wallet-backend/internal/repository/memory"
	"github.com/unifiedpay/wallet-backend/internal/upi"
	"github.com/unifiedpay/wallet-backend/internal/worker"
)

type fixedSettings struct {
	rate     float64
	min, max int
}

func (f fixedSettings) Resolve() ResolvedSettings {
	return ResolvedSettings{SuccessRate: f.rate, MinDelayMs: f.min, MaxDelayMs: f.max}
}

type txnFixture struct {
	svc   *TransactionService
	repos repo.Registry
	user  models.Profile
}

func newTxnFixture(t *testing.T, balance float64, settings fixedSettings) txnFixture {
	t.Helper()
	repos := memory.NewRepositories(memory.NewStore())

	user, err := repos.Profiles.Create("Alice Johnson", "+91 90000 00001", "alice@demo.com", "x", balance)
	require.NoError(t, err)

	wp := worker.NewPool(4)
	sched := worker.NewScheduler(wp)
	t.Cleanup(func() {
		sched.Stop()
		wp.Stop()
	})

	svc := NewTransactionService(repos.Transactions, repos.Profiles, settings, sched, upi.NewSource(time.Now().UnixNano()))
	return txnFixture{svc: svc, repos: repos, user: user}
}

func validRequest(amount float64) SubmitRequest {
	return SubmitRequest{
		ToUPIID:  "bob@demo",
		ToName:   "Bob Smith",
		Amount:   amount,
		Provider: models.ProviderGPay,
	}
}

func waitTerminal(t *testing.T, f txnFixture, id string) models.Transaction {
	t.Helper()
	var tx models.Transaction
	require.Eventually(t, func() bool {
		var err error
		tx, err = f.repos.Transactions.GetByID(id)
		return err == nil && tx.Status.Terminal()
	}, 2*time.Second, 5*time.Millisecond)
	return tx
}

func TestSubmit_ReturnsPendingSnapshot(t *testing.T) {
	f := newTxnFixture(t, 2000, fixedSettings{rate: 1.0, min: 0, max: 0})

	tx, err := f.svc.Submit(f.user.ID, validRequest(500))
	require.NoError(t, err)

	assert.Equal(t, models.TxnPending, tx.Status)
	assert.Equal(t, 2000.0, tx.BalanceBefore)
	assert.Nil(t, tx.BalanceAfter)
	assert.Nil(t, tx.FailureReason)
	assert.Nil(t, tx.ProcessedAt)
	assert.Regexp(t, `^TXN-\d{8}-[A-Z0-9]{6}$`, tx.TxnID)
	assert.Regexp(t, `^REF[A-Z0-9]{10}$`, tx.Metadata["bank_ref"])
}

func TestSubmit_SuccessfulSettlement(t *testing.T) {
	f := newTxnFixture(t, 2000, fixedSettings{rate: 1.0, min: 0, max: 0})

	tx, err := f.svc.Submit(f.user.ID, validRequest(500))
	require.NoError(t, err)

	final := waitTerminal(t, f, tx.ID)
	assert.Equal(t, models.TxnSuccess, final.Status)
	require.NotNil(t, final.BalanceAfter)
	assert.Equal(t, 1500.0, *final.BalanceAfter)
	assert.Nil(t, final.FailureReason)
	require.NotNil(t, final.ProcessedAt)

	p, err := f.repos.Profiles.GetByID(f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, p.WalletBalance)
}

func TestSubmit_FailedSettlementLeavesLedgerUntouched(t *testing.T) {
	f := newTxnFixture(t, 2000, fixedSettings{rate: 0.0, min: 0, max: 0})

	tx, err := f.svc.Submit(f.user.ID, validRequest(500))
	require.NoError(t, err)

	final := waitTerminal(t, f, tx.ID)
	assert.Equal(t, models.TxnFailed, final.Status)
	assert.Nil(t, final.BalanceAfter)
	require.NotNil(t, final.FailureReason)
	assert.Contains(t, upi.FailureReasons, *final.FailureReason)
	require.NotNil(t, final.ProcessedAt)

	p, err := f.repos.Profiles.GetByID(f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, p.WalletBalance)
}

func TestSubmit_InsufficientBalanceCreatesNoRow(t *testing.T) {
	f := newTxnFixture(t, 100, fixedSettings{rate: 1.0, min: 0, max: 0})

	_, err := f.svc.Submit(f.user.ID, validRequest(500))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	txs, err := f.repos.Transactions.ListByUser(f.user.ID, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestSubmit_ValidationRejects(t *testing.T) {
	f := newTxnFixture(t, 2000, fixedSettings{rate: 1.0, min: 0, max: 0})

	bad := []SubmitRequest{
		{ToUPIID: "not-a-upi-id", ToName: "Bob", Amount: 10, Provider: models.ProviderGPay},
		{ToUPIID: "bob@demo", ToName: "  ", Amount: 10, Provider: models.ProviderGPay},
		{ToUPIID: "bob@demo", ToName: "Bob", Amount: 0, Provider: models.ProviderGPay},
		{ToUPIID: "bob@demo", ToName: "Bob", Amount: -5, Provider: models.ProviderGPay},
		{ToUPIID: "bob@demo", ToName: "Bob", Amount: 100001, Provider: models.ProviderGPay},
		{ToUPIID: "bob@demo", ToName: "Bob", Amount: 10, Provider: "CashApp"},
	}
	for _, req := range bad {
		_, err := f.svc.Submit(f.user.ID, req)
		assert.ErrorIs(t, err, ErrInvalidRequest, "req: %+v", req)
	}
}

func TestSubmit_UnknownUser(t *testing.T) {
	f := newTxnFixture(t, 2000, fixedSettings{rate: 1.0, min: 0, max: 0})

	_, err := f.svc.Submit("00000000-0000-0000-0000-000000000000", validRequest(10))
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestSubmit_ConcurrentSettlementsCannotOverdraw(t *testing.T) {
	f := newTxnFixture(t, 1000, fixedSettings{rate: 1.0, min: 0, max: 0})

	tx1, err := f.svc.Submit(f.user.ID, validRequest(1000))
	require.NoError(t, err)
	tx2, err := f.svc.Submit(f.user.ID, validRequest(1000))
	require.NoError(t, err)

	final1 := waitTerminal(t, f, tx1.ID)
	final2 := waitTerminal(t, f, tx2.ID)

	statuses := []models.TransactionStatus{final1.Status, final2.Status}
	assert.Contains(t, statuses, models.TxnSuccess)
	assert.Contains(t, statuses, models.TxnFailed)

	failed := final1
	if final2.Status == models.TxnFailed {
		failed = final2
	}
	require.NotNil(t, failed.FailureReason)
	assert.Equal(t, "Insufficient funds", *failed.FailureReason)

	p, err := f.repos.Profiles.GetByID(f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.WalletBalance)
}

// duplicateOnce wraps a Transactions repo and reports a txn-id collision on
// the first insert attempt.
type duplicateOnce struct {
	repo.Transactions
	tripped bool
}

func (d *duplicateOnce) Create(tx models.Transaction) (models.Transaction, error) {
	if !d.tripped {
		d.tripped = true
		return models.Transaction{}, repo.ErrDuplicateTxnID
	}
	return d.Transactions.Create(tx)
}

func TestSubmit_RedrawsTxnIDOnCollision(t *testing.T) {
	repos := memory.NewRepositories(memory.NewStore())
	user, err := repos.Profiles.Create("Alice", "+91 1", "alice@demo.com", "x", 2000)
	require.NoError(t, err)

	wp := worker.NewPool(1)
	sched := worker.NewScheduler(wp)
	t.Cleanup(func() { sched.Stop(); wp.Stop() })

	wrapped := &duplicateOnce{Transactions: repos.Transactions}
	svc := NewTransactionService(wrapped, repos.Profiles, fixedSettings{rate: 1.0}, sched, upi.NewSource(1))

	tx, err := svc.Submit(user.ID, validRequest(100))
	require.NoError(t, err)
	assert.True(t, wrapped.tripped)
	assert.Regexp(t, `^TXN-\d{8}-[A-Z0-9]{6}$`, tx.TxnID)
}

func TestSubmit_PassesThroughProcessing(t *testing.T) {
	// A real delay makes the intermediate state observable.
	f := newTxnFixture(t, 2000, fixedSettings{rate: 1.0, min: 80, max: 80})

	tx, err := f.svc.Submit(f.user.ID, validRequest(500))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, err := f.repos.Transactions.GetByID(tx.ID)
		return err == nil && got.Status == models.TxnProcessing
	}, 2*time.Second, 2*time.Millisecond, "never observed PROCESSING")

	final := waitTerminal(t, f, tx.ID)
	assert.Equal(t, models.TxnSuccess, final.Status)
}

func TestGetByID_ScopedToOwner(t *testing.T) {
	f := newTxnFixture(t, 2000, fixedSettings{rate: 1.0, min: 0, max: 0})
	other, err := f.repos.Profiles.Create("Bob Smith", "+91 2", "bob@demo.com", "x", 100)
	require.NoError(t, err)

	tx, err := f.svc.Submit(f.user.ID, validRequest(10))
	require.NoError(t, err)

	_, err = f.svc.GetByID(other.ID, tx.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	got, err := f.svc.GetByID(f.user.ID, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.TxnID, got.TxnID)
}
