package models

import "time"

type Provider string

const (
	ProviderGPay    Provider = "GPay"
	ProviderPhonePe Provider = "PhonePe"
	ProviderPaytm   Provider = "Paytm"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderGPay, ProviderPhonePe, ProviderPaytm:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TxnPending    TransactionStatus = "PENDING"
	TxnProcessing TransactionStatus = "PROCESSING"
	TxnSuccess    TransactionStatus = "SUCCESS"
	TxnFailed     TransactionStatus = "FAILED"
)

func (s TransactionStatus) Terminal() bool { return s == TxnSuccess || s == TxnFailed }

type Transaction struct {
	ID            string            `json:"id"`
	TxnID         string            `json:"txn_id"`
	FromUserID    string            `json:"from_user_id"`
	ToUPIID       string            `json:"to_upi_id"`
	ToName        string            `json:"to_name"`
	Amount        float64           `json:"amount"`
	Provider      Provider          `json:"provider"`
	Status        TransactionStatus `json:"status"`
	Note          *string           `json:"note,omitempty"`
	BalanceBefore float64           `json:"balance_before"`
	BalanceAfter  *float64          `json:"balance_after,omitempty"`
	FailureReason *string           `json:"failure_reason,omitempty"`
	Metadata      map[string]any    `json:"metadata"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	ProcessedAt   *time.Time        `json:"processed_at,omitempty"`
}
