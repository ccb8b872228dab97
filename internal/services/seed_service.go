package services

import (
	"errors"
	"time"

	"github.com/unifiedpay/wallet-backend/internal/auth"
	"github.com/unifiedpay/wallet-backend/internal/models"
	repo "github.com/unifiedpay/wallet-backend/internal/repository"
	"github.com/unifiedpay/wallet-backend/internal/upi"
)

// SeedService provisions the demo dataset: three wallet users with known
// credentials, their UPI accounts, starter contacts and a month of history.
type SeedService struct {
	profiles repo.Profiles
	accounts repo.UPIAccounts
	contacts repo.Contacts
	trx      repo.Transactions
	rnd      upi.Source
}

func NewSeedService(p repo.Profiles, a repo.UPIAccounts, c repo.Contacts, t repo.Transactions, rnd upi.Source) *SeedService {
	return &SeedService{profiles: p, accounts: a, contacts: c, trx: t, rnd: rnd}
}

type seedUser struct {
	email   string
	name    string
	phone   string
	balance float64
}

var demoUsers = []seedUser{
	{email: "alice@demo.com", name: "Alice Johnson", phone: "+91 90000 00001", balance: 2000},
	{email: "bob@demo.com", name: "Bob Smith", phone: "+91 90000 00002", balance: 1500},
	{email: "carol@demo.com", name: "Carol Davis", phone: "+91 90000 00003", balance: 500},
}

const demoPassword = "demo123"

type SeededUser struct {
	Email  string `json:"email"`
	UserID string `json:"user_id"`
	UPIID  string `json:"upi_id"`
}

// Seed is additive and safe to re-run: existing users are kept as-is and the
// demo history is only written the first time alice is created.
func (s *SeedService) Seed() ([]SeededUser, error) {
	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return nil, err
	}

	var out []SeededUser
	aliceIsNew := false

	for i, u := range demoUsers {
		existing, err := s.profiles.GetByEmail(u.email)
		if err == nil {
			out = append(out, SeededUser{Email: u.email, UserID: existing.ID, UPIID: s.primaryUPI(existing.ID)})
			continue
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}

		created, err := s.profiles.Create(u.name, u.phone, u.email, hash, u.balance)
		if err != nil {
			return nil, err
		}
		acct, err := s.accounts.Create(models.UPIAccount{
			UserID:      created.ID,
			DisplayName: u.name + "'s Account",
			UPIID:       NewDemoUPIID(s.rnd, u.phone),
			BankName:    "Demo Bank",
			IsPrimary:   true,
		})
		if err != nil {
			return nil, err
		}
		if i == 0 {
			aliceIsNew = true
		}
		out = append(out, SeededUser{Email: u.email, UserID: created.ID, UPIID: acct.UPIID})
	}

	if len(out) >= 3 {
		alice, bob, carol := out[0], out[1], out[2]
		if _, err := s.contacts.Upsert(models.Contact{
			OwnerUserID: alice.UserID, Name: "Bob Smith", UPIID: bob.UPIID, Phone: ptr("+91 90000 00002"),
		}); err != nil {
			return nil, err
		}
		if _, err := s.contacts.Upsert(models.Contact{
			OwnerUserID: alice.UserID, Name: "Carol Davis", UPIID: carol.UPIID, Phone: ptr("+91 90000 00003"),
		}); err != nil {
			return nil, err
		}
		if aliceIsNew {
			if err := s.seedHistory(alice, bob); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

func (s *SeedService) seedHistory(alice, bob SeededUser) error {
	providers := []models.Provider{models.ProviderGPay, models.ProviderPhonePe, models.ProviderPaytm}
	statuses := []models.TransactionStatus{models.TxnSuccess, models.TxnSuccess, models.TxnSuccess, models.TxnSuccess, models.TxnFailed}

	for i := 0; i < 10; i++ {
		provider := providers[s.rnd.Intn(len(providers))]
		status := statuses[s.rnd.Intn(len(statuses))]
		amount := float64(s.rnd.Intn(500) + 50)
		createdAt := time.Now().AddDate(0, 0, -s.rnd.Intn(30))

		tx, err := s.trx.Create(models.Transaction{
			TxnID:         upi.NewTxnID(s.rnd, createdAt),
			FromUserID:    alice.UserID,
			ToUPIID:       bob.UPIID,
			ToName:        "Bob Smith",
			Amount:        amount,
			Provider:      provider,
			Status:        models.TxnPending,
			BalanceBefore: 2000,
			Metadata:      map[string]any{"bank_ref": upi.NewBankRef(s.rnd)},
			CreatedAt:     createdAt,
		})
		if err != nil {
			return err
		}
		if status == models.TxnSuccess {
			err = s.trx.MarkSuccess(tx.ID, 2000-amount, createdAt)
		} else {
			err = s.trx.MarkFailed(tx.ID, "Network timeout", createdAt)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *SeedService) primaryUPI(userID string) string {
	accts, err := s.accounts.ListByUser(userID)
	if err != nil {
		return ""
	}
	for _, a := range accts {
		if a.IsPrimary {
			return a.UPIID
		}
	}
	return ""
}

func ptr(s string) *string { return &s }
