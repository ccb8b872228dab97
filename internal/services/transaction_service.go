package services

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/unifiedpay/wallet-backend/internal/metrics"
	"github.com/unifiedpay/wallet-backend/internal/models"
	repo "github.com/unifiedpay/wallet-backend/internal/repository"
	"github.com/unifiedpay/wallet-backend/internal/upi"
)

// Scheduler runs a deferred single-shot action. Satisfied by worker.Scheduler;
// tests swap in a synchronous one.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

const txnIDAttempts = 5

// TransactionService is the transaction processor: it validates a transfer,
// inserts the PENDING record and drives the simulated settlement state
// machine PENDING -> PROCESSING -> SUCCESS|FAILED on deferred timers.
type TransactionService struct {
	trx      repo.Transactions
	profiles repo.Profiles
	settings SettingsProvider
	sched    Scheduler
	rnd      upi.Source
}

func NewTransactionService(t repo.Transactions, p repo.Profiles, sp SettingsProvider, sched Scheduler, rnd upi.Source) *TransactionService {
	return &TransactionService{trx: t, profiles: p, settings: sp, sched: sched, rnd: rnd}
}

type SubmitRequest struct {
	ToUPIID  string
	ToName   string
	Amount   float64
	Provider models.Provider
	Note     string
}

func (r SubmitRequest) validate() error {
	if !upi.ValidAddress(r.ToUPIID) {
		return ErrInvalidRequest
	}
	if strings.TrimSpace(r.ToName) == "" {
		return ErrInvalidRequest
	}
	if r.Amount <= 0 || r.Amount > 100000 {
		return ErrInvalidRequest
	}
	if !r.Provider.Valid() {
		return ErrInvalidRequest
	}
	return nil
}

// Submit accepts a transfer for processing. The returned transaction is still
// PENDING: settlement happens later on the scheduler, and callers observe it
// by re-reading the record.
func (s *TransactionService) Submit(userID string, req SubmitRequest) (models.Transaction, error) {
	if err := req.validate(); err != nil {
		return models.Transaction{}, err
	}

	profile, err := s.profiles.GetByID(userID)
	if err != nil {
		return models.Transaction{}, err
	}
	// Checked before any record is created.
	if profile.WalletBalance < req.Amount {
		return models.Transaction{}, ErrInsufficientBalance
	}

	tx := models.Transaction{
		FromUserID:    userID,
		ToUPIID:       req.ToUPIID,
		ToName:        req.ToName,
		Amount:        req.Amount,
		Provider:      req.Provider,
		Status:        models.TxnPending,
		BalanceBefore: profile.WalletBalance,
		Metadata:      map[string]any{"bank_ref": upi.NewBankRef(s.rnd)},
		CreatedAt:     time.Now(),
	}
	if note := strings.TrimSpace(req.Note); note != "" {
		tx.Note = &note
	}

	created, err := s.createWithFreshTxnID(tx)
	if err != nil {
		return models.Transaction{}, err
	}

	cfg := s.settings.Resolve()
	delay := time.Duration(upi.RandomDelay(s.rnd, cfg.MinDelayMs, cfg.MaxDelayMs)) * time.Millisecond
	metrics.TransactionsSubmitted.Inc()
	metrics.SettlementDelay.Observe(delay.Seconds())

	s.scheduleResolution(created, cfg.SuccessRate, delay)
	return created, nil
}

// createWithFreshTxnID re-draws the human-facing id on a uniqueness
// collision instead of failing the submit.
func (s *TransactionService) createWithFreshTxnID(tx models.Transaction) (models.Transaction, error) {
	var lastErr error
	for i := 0; i < txnIDAttempts; i++ {
		tx.TxnID = upi.NewTxnID(s.rnd, time.Now())
		created, err := s.trx.Create(tx)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, repo.ErrDuplicateTxnID) {
			return models.Transaction{}, err
		}
		lastErr = err
	}
	return models.Transaction{}, lastErr
}

// scheduleResolution arms the two-phase settlement: half the drawn delay to
// PROCESSING, the other half to the terminal state. Errors in either phase
// are logged and swallowed; no caller is awaiting them.
func (s *TransactionService) scheduleResolution(tx models.Transaction, successRate float64, delay time.Duration) {
	half := delay / 2
	s.sched.AfterFunc(half, func() {
		if err := s.trx.MarkProcessing(tx.ID); err != nil {
			slog.Error("mark processing", "txn_id", tx.TxnID, "err", err)
			return
		}
		s.sched.AfterFunc(half, func() { s.settle(tx, successRate) })
	})
}

func (s *TransactionService) settle(tx models.Transaction, successRate float64) {
	now := time.Now()

	if !upi.ShouldSucceed(s.rnd, successRate) {
		s.fail(tx, upi.RandomFailureReason(s.rnd), now)
		return
	}

	// Sufficiency is re-validated here, not just at submission: concurrent
	// transactions may have drained the balance since the PENDING snapshot.
	newBalance, ok, err := s.profiles.DebitIfSufficient(tx.FromUserID, tx.Amount)
	if err != nil {
		slog.Error("settlement debit", "txn_id", tx.TxnID, "err", err)
		return
	}
	if !ok {
		s.fail(tx, "Insufficient funds", now)
		return
	}

	if err := s.trx.MarkSuccess(tx.ID, newBalance, now); err != nil {
		slog.Error("mark success", "txn_id", tx.TxnID, "err", err)
		return
	}
	metrics.TransactionsSettled.WithLabelValues(string(models.TxnSuccess)).Inc()
}

func (s *TransactionService) fail(tx models.Transaction, reason string, now time.Time) {
	if err := s.trx.MarkFailed(tx.ID, reason, now); err != nil {
		slog.Error("mark failed", "txn_id", tx.TxnID, "err", err)
		return
	}
	metrics.TransactionsSettled.WithLabelValues(string(models.TxnFailed)).Inc()
}

// GetByID returns the caller's transaction; other users' rows read as absent.
func (s *TransactionService) GetByID(userID, id string) (models.Transaction, error) {
	tx, err := s.trx.GetByID(id)
	if err != nil {
		return models.Transaction{}, err
	}
	if tx.FromUserID != userID {
		return models.Transaction{}, repo.ErrNotFound
	}
	return tx, nil
}

func (s *TransactionService) ListByUser(userID string, limit, offset int) ([]models.Transaction, error) {
	return s.trx.ListByUser(userID, limit, offset)
}
