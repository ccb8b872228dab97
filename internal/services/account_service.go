package services

import (
	"strings"
	"time"

	"github.com/unifiedpay/wallet-backend/internal/auth"
	"github.com/unifiedpay/wallet-backend/internal/models"
	repo "github.com/unifiedpay/wallet-backend/internal/repository"
	"github.com/unifiedpay/wallet-backend/internal/upi"
)

// Demo wallet: every new account starts with a play-money float.
const openingBalance = 1000.0

type AccountService struct {
	profiles repo.Profiles
	accounts repo.UPIAccounts
	tm       *auth.TokenManager
	rnd      upi.Source
}

func NewAccountService(p repo.Profiles, a repo.UPIAccounts, tm *auth.TokenManager, rnd upi.Source) *AccountService {
	return &AccountService{profiles: p, accounts: a, tm: tm, rnd: rnd}
}

func (s *AccountService) Register(name, phone, email, password string) (models.Profile, error) {
	p := models.Profile{
		Name:          strings.TrimSpace(name),
		Phone:         strings.TrimSpace(phone),
		Email:         strings.ToLower(strings.TrimSpace(email)),
		WalletBalance: openingBalance,
	}
	if err := p.Validate(); err != nil {
		return models.Profile{}, err
	}
	if len(password) < 6 {
		return models.Profile{}, ErrInvalidRequest
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.Profile{}, err
	}
	created, err := s.profiles.Create(p.Name, p.Phone, p.Email, hash, p.WalletBalance)
	if err != nil {
		return models.Profile{}, err
	}
	_, err = s.accounts.Create(models.UPIAccount{
		UserID:      created.ID,
		DisplayName: created.Name + "'s Account",
		UPIID:       NewDemoUPIID(s.rnd, created.Phone),
		BankName:    "Demo Bank",
		IsPrimary:   true,
	})
	if err != nil {
		return models.Profile{}, err
	}
	return created, nil
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (s *AccountService) Login(email, password string) (TokenPair, error) {
	p, err := s.profiles.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	if auth.VerifyPassword(password, p.PasswordHash) != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	return s.issue(p.ID)
}

func (s *AccountService) Refresh(refreshToken string) (TokenPair, error) {
	claims, isRefresh, err := s.tm.ParseAny(refreshToken)
	if err != nil || !isRefresh {
		return TokenPair{}, ErrInvalidCredentials
	}
	return s.issue(claims.UserID)
}

func (s *AccountService) issue(userID string) (TokenPair, error) {
	access, refresh, exp, err := s.tm.GeneratePair(userID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(exp).Seconds()),
	}, nil
}

func (s *AccountService) Profile(userID string) (models.Profile, error) {
	return s.profiles.GetByID(userID)
}

// Balance is always a fresh ledger read, never a cached value.
func (s *AccountService) Balance(userID string) (float64, error) {
	p, err := s.profiles.GetByID(userID)
	if err != nil {
		return 0, err
	}
	return p.WalletBalance, nil
}

// NewDemoUPIID derives a handle from the phone's last four digits plus a
// short random suffix, the shape the demo bank hands out.
func NewDemoUPIID(rnd upi.Source, phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	const suffixAlpha = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffix := make([]byte, 2)
	for i := range suffix {
		suffix[i] = suffixAlpha[rnd.Intn(len(suffixAlpha))]
	}
	return digits + string(suffix) + "@demo"
}
