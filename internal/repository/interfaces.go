package repository

import (
	"errors"
	"time"

	"github.com/unifiedpay/wallet-backend/internal/models"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateTxnID = errors.New("duplicate txn id")
	ErrDuplicateEmail = errors.New("email already registered")
)

type Profiles interface {
	Create(name, phone, email, passwordHash string, balance float64) (models.Profile, error)
	GetByID(id string) (models.Profile, error)
	GetByEmail(email string) (models.Profile, error)
	// DebitIfSufficient applies the settlement debit atomically:
	// ok is false when the balance no longer covers amount.
	DebitIfSufficient(userID string, amount float64) (newBalance float64, ok bool, err error)
}

type Transactions interface {
	Create(tx models.Transaction) (models.Transaction, error)
	GetByID(id string) (models.Transaction, error)
	ListByUser(userID string, limit, offset int) ([]models.Transaction, error)
	MarkProcessing(id string) error
	MarkSuccess(id string, balanceAfter float64, processedAt time.Time) error
	MarkFailed(id, reason string, processedAt time.Time) error
}

type Settings interface {
	Get(key string) (models.Setting, error)
	Upsert(key string, value map[string]any, updatedBy *string) (models.Setting, error)
	List() ([]models.Setting, error)
}

type UPIAccounts interface {
	Create(a models.UPIAccount) (models.UPIAccount, error)
	ListByUser(userID string) ([]models.UPIAccount, error)
}

type Contacts interface {
	Upsert(c models.Contact) (models.Contact, error)
	ListByOwner(ownerUserID string) ([]models.Contact, error)
	Delete(ownerUserID, id string) error
}

// Registry bundles one implementation of every store.
type Registry struct {
	Profiles     Profiles
	Transactions Transactions
	Settings     Settings
	UPIAccounts  UPIAccounts
	Contacts     Contacts
}
