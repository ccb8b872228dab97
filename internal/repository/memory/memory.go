// Package memory implements the repository interfaces on process-local maps.
// It backs demo mode (DATABASE_URL=memory) and the service tests; nothing
// survives a restart.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/unifiedpay/wallet-backend/internal/models"
	repo "github.com/unifiedpay/wallet-backend/internal/repository"
)

type Store struct {
	mu       sync.RWMutex
	profiles map[string]models.Profile
	txns     map[string]models.Transaction
	txnIDs   map[string]bool
	settings map[string]models.Setting
	accounts map[string]models.UPIAccount
	contacts map[string]models.Contact
}

func NewStore() *Store {
	return &Store{
		profiles: make(map[string]models.Profile),
		txns:     make(map[string]models.Transaction),
		txnIDs:   make(map[string]bool),
		settings: make(map[string]models.Setting),
		accounts: make(map[string]models.UPIAccount),
		contacts: make(map[string]models.Contact),
	}
}

func NewRepositories(s *Store) repo.Registry {
	return repo.Registry{
		Profiles:     &profilesRepo{s},
		Transactions: &transactionsRepo{s},
		Settings:     &settingsRepo{s},
		UPIAccounts:  &upiAccountsRepo{s},
		Contacts:     &contactsRepo{s},
	}
}

// ---------- profiles ----------

type profilesRepo struct{ s *Store }

func (r *profilesRepo) Create(name, phone, email, passwordHash string, balance float64) (models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if p.Email == email {
			return models.Profile{}, repo.ErrDuplicateEmail
		}
	}
	now := time.Now()
	p := models.Profile{
		ID:            uuid.NewString(),
		Name:          name,
		Phone:         phone,
		Email:         email,
		PasswordHash:  passwordHash,
		WalletBalance: balance,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.s.profiles[p.ID] = p
	return p, nil
}

func (r *profilesRepo) GetByID(id string) (models.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return models.Profile{}, repo.ErrNotFound
	}
	return p, nil
}

func (r *profilesRepo) GetByEmail(email string) (models.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return models.Profile{}, repo.ErrNotFound
}

func (r *profilesRepo) DebitIfSufficient(userID string, amount float64) (float64, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[userID]
	if !ok || p.WalletBalance < amount {
		return 0, false, nil
	}
	p.WalletBalance -= amount
	p.UpdatedAt = time.Now()
	r.s.profiles[userID] = p
	return p.WalletBalance, true, nil
}

// ---------- transactions ----------

type transactionsRepo struct{ s *Store }

func (r *transactionsRepo) Create(tx models.Transaction) (models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.txnIDs[tx.TxnID] {
		return models.Transaction{}, repo.ErrDuplicateTxnID
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	tx.UpdatedAt = tx.CreatedAt
	if tx.Metadata == nil {
		tx.Metadata = map[string]any{}
	}
	r.s.txnIDs[tx.TxnID] = true
	r.s.txns[tx.ID] = tx
	return tx, nil
}

func (r *transactionsRepo) GetByID(id string) (models.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	tx, ok := r.s.txns[id]
	if !ok {
		return models.Transaction{}, repo.ErrNotFound
	}
	return tx, nil
}

func (r *transactionsRepo) ListByUser(userID string, limit, offset int) ([]models.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Transaction
	for _, tx := range r.s.txns {
		if tx.FromUserID == userID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *transactionsRepo) MarkProcessing(id string) error {
	return r.update(id, func(tx *models.Transaction) {
		tx.Status = models.TxnProcessing
	})
}

func (r *transactionsRepo) MarkSuccess(id string, balanceAfter float64, processedAt time.Time) error {
	return r.update(id, func(tx *models.Transaction) {
		tx.Status = models.TxnSuccess
		tx.BalanceAfter = &balanceAfter
		tx.ProcessedAt = &processedAt
	})
}

func (r *transactionsRepo) MarkFailed(id, reason string, processedAt time.Time) error {
	return r.update(id, func(tx *models.Transaction) {
		tx.Status = models.TxnFailed
		tx.FailureReason = &reason
		tx.ProcessedAt = &processedAt
	})
}

func (r *transactionsRepo) update(id string, fn func(*models.Transaction)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tx, ok := r.s.txns[id]
	if !ok {
		return repo.ErrNotFound
	}
	fn(&tx)
	tx.UpdatedAt = time.Now()
	r.s.txns[id] = tx
	return nil
}

// ---------- settings ----------

type settingsRepo struct{ s *Store }

func (r *settingsRepo) Get(key string) (models.Setting, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	set, ok := r.s.settings[key]
	if !ok {
		return models.Setting{}, repo.ErrNotFound
	}
	return set, nil
}

func (r *settingsRepo) Upsert(key string, value map[string]any, updatedBy *string) (models.Setting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	set, ok := r.s.settings[key]
	if !ok {
		set = models.Setting{ID: uuid.NewString(), SettingKey: key}
	}
	set.SettingValue = value
	set.UpdatedAt = time.Now()
	set.UpdatedBy = updatedBy
	r.s.settings[key] = set
	return set, nil
}

func (r *settingsRepo) List() ([]models.Setting, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Setting
	for _, set := range r.s.settings {
		out = append(out, set)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SettingKey < out[j].SettingKey })
	return out, nil
}

// ---------- upi accounts ----------

type upiAccountsRepo struct{ s *Store }

func (r *upiAccountsRepo) Create(a models.UPIAccount) (models.UPIAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now()
	r.s.accounts[a.ID] = a
	return a, nil
}

func (r *upiAccountsRepo) ListByUser(userID string) ([]models.UPIAccount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.UPIAccount
	for _, a := range r.s.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsPrimary != out[j].IsPrimary {
			return out[i].IsPrimary
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// ---------- contacts ----------

type contactsRepo struct{ s *Store }

func (r *contactsRepo) Upsert(c models.Contact) (models.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, existing := range r.s.contacts {
		if existing.OwnerUserID == c.OwnerUserID && existing.UPIID == c.UPIID {
			existing.Name = c.Name
			existing.Phone = c.Phone
			existing.AvatarURL = c.AvatarURL
			r.s.contacts[id] = existing
			return existing, nil
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now()
	r.s.contacts[c.ID] = c
	return c, nil
}

func (r *contactsRepo) ListByOwner(ownerUserID string) ([]models.Contact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Contact
	for _, c := range r.s.contacts {
		if c.OwnerUserID == ownerUserID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *contactsRepo) Delete(ownerUserID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contacts[id]
	if ok && c.OwnerUserID == ownerUserID {
		delete(r.s.contacts, id)
	}
	return nil
}
