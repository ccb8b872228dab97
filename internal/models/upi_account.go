package models

import "time"

type UPIAccount struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	UPIID       string    `json:"upi_id"`
	BankName    string    `json:"bank_name"`
	IsPrimary   bool      `json:"is_primary"`
	CreatedAt   time.Time `json:"created_at"`
}
