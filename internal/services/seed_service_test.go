package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unifiedpay/wallet-backend/internal/models"
	"github.com/unifiedpay/wallet-backend/internal/repository/memory"
	"github.com/unifiedpay/wallet-backend/internal/upi"
)

func TestSeed_CreatesDemoDataset(t *testing.T) {
	repos := memory.NewRepositories(memory.NewStore())
	svc := NewSeedService(repos.Profiles, repos.UPIAccounts, repos.Contacts, repos.Transactions, upi.NewSource(1))

	users, err := svc.Seed()
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "alice@demo.com", users[0].Email)
	assert.Regexp(t, `@demo$`, users[0].UPIID)

	alice, err := repos.Profiles.GetByEmail("alice@demo.com")
	require.NoError(t, err)
	assert.Equal(t, 2000.0, alice.WalletBalance)

	carol, err := repos.Profiles.GetByEmail("carol@demo.com")
	require.NoError(t, err)
	assert.Equal(t, 500.0, carol.WalletBalance)

	contacts, err := repos.Contacts.ListByOwner(alice.ID)
	require.NoError(t, err)
	assert.Len(t, contacts, 2)

	txs, err := repos.Transactions.ListByUser(alice.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, txs, 10)
	for _, tx := range txs {
		assert.True(t, tx.Status.Terminal())
		assert.Regexp(t, `^TXN-\d{8}-[A-Z0-9]{6}$`, tx.TxnID)
		if tx.Status == models.TxnSuccess {
			require.NotNil(t, tx.BalanceAfter)
			assert.Equal(t, tx.BalanceBefore-tx.Amount, *tx.BalanceAfter)
		} else {
			require.NotNil(t, tx.FailureReason)
		}
	}
}

func TestSeed_RerunIsAdditiveNotDuplicating(t *testing.T) {
	repos := memory.NewRepositories(memory.NewStore())
	svc := NewSeedService(repos.Profiles, repos.UPIAccounts, repos.Contacts, repos.Transactions, upi.NewSource(2))

	_, err := svc.Seed()
	require.NoError(t, err)
	users, err := svc.Seed()
	require.NoError(t, err)
	require.Len(t, users, 3)

	alice, err := repos.Profiles.GetByEmail("alice@demo.com")
	require.NoError(t, err)

	// history is written only on first creation
	txs, err := repos.Transactions.ListByUser(alice.ID, 100, 0)
	require.NoError(t, err)
	assert.Len(t, txs, 10)

	contacts, err := repos.Contacts.ListByOwner(alice.ID)
	require.NoError(t, err)
	assert.Len(t, contacts, 2)
}
