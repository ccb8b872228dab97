package models

import (
	"errors"
	"strings"
	"time"
)

// Profile is the wallet owner: auth principal plus the single balance row.
type Profile struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	WalletBalance float64   `json:"wallet_balance"`
	AvatarURL     *string   `json:"avatar_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (p *Profile) Validate() error {
	if len(strings.TrimSpace(p.Name)) < 2 { return errors.New("name too short") }
	if !strings.Contains(p.Email, "@") { return errors.New("invalid email") }
	if p.WalletBalance < 0 { return errors.New("negative balance") }
	return nil
}
