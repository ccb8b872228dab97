package models

import "time"

// Setting keys consumed by the transaction processor.
const (
	SettingSuccessRate = "transaction_success_rate"
	SettingDelayMs     = "transaction_delay_ms"
)

type Setting struct {
	ID           string         `json:"id"`
	SettingKey   string         `json:"setting_key"`
	SettingValue map[string]any `json:"setting_value"`
	UpdatedAt    time.Time      `json:"updated_at"`
	UpdatedBy    *string        `json:"updated_by,omitempty"`
}
