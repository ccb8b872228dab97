package services

import (
	"errors"
	"log/slog"

	"github.com/unifiedpay/wallet-backend/internal/models"
	repo "github.com/unifiedpay/wallet-backend/internal/repository"
)

// Fallbacks applied when a settings row or field is absent or malformed.
const (
	DefaultSuccessRate = 0.9
	DefaultMinDelayMs  = 2000
	DefaultMaxDelayMs  = 8000
)

// ResolvedSettings is the per-transaction snapshot of the two tunables.
type ResolvedSettings struct {
	SuccessRate float64
	MinDelayMs  int
	MaxDelayMs  int
}

// SettingsProvider is what the transaction processor depends on; the service
// below is the real implementation, tests inject fixed values.
type SettingsProvider interface {
	Resolve() ResolvedSettings
}

type SettingsService struct {
	r repo.Settings
}

func NewSettingsService(r repo.Settings) *SettingsService { return &SettingsService{r: r} }

// Resolve reads both tunables fresh. Lookup errors never fail the caller;
// defaults apply field by field.
func (s *SettingsService) Resolve() ResolvedSettings {
	out := ResolvedSettings{
		SuccessRate: DefaultSuccessRate,
		MinDelayMs:  DefaultMinDelayMs,
		MaxDelayMs:  DefaultMaxDelayMs,
	}

	if row, err := s.r.Get(models.SettingSuccessRate); err == nil {
		if v, ok := numField(row.SettingValue, "value"); ok && v >= 0 && v <= 1 {
			out.SuccessRate = v
		}
	} else if !errors.Is(err, repo.ErrNotFound) {
		slog.Warn("settings lookup failed, using defaults", "key", models.SettingSuccessRate, "err", err)
	}

	if row, err := s.r.Get(models.SettingDelayMs); err == nil {
		min, okMin := numField(row.SettingValue, "min")
		max, okMax := numField(row.SettingValue, "max")
		if okMin && min >= 0 {
			out.MinDelayMs = int(min)
		}
		if okMax && max >= 0 {
			out.MaxDelayMs = int(max)
		}
		if out.MaxDelayMs < out.MinDelayMs {
			out.MaxDelayMs = out.MinDelayMs
		}
	} else if !errors.Is(err, repo.ErrNotFound) {
		slog.Warn("settings lookup failed, using defaults", "key", models.SettingDelayMs, "err", err)
	}

	return out
}

func (s *SettingsService) List() ([]models.Setting, error) { return s.r.List() }

func (s *SettingsService) UpdateSuccessRate(rate float64, updatedBy string) (models.Setting, error) {
	if rate < 0 || rate > 1 {
		return models.Setting{}, ErrInvalidRequest
	}
	return s.r.Upsert(models.SettingSuccessRate, map[string]any{
		"value":       rate,
		"description": "Probability that a transaction settles successfully",
	}, &updatedBy)
}

func (s *SettingsService) UpdateDelayRange(minMs, maxMs int, updatedBy string) (models.Setting, error) {
	if minMs < 0 || maxMs < minMs {
		return models.Setting{}, ErrInvalidRequest
	}
	return s.r.Upsert(models.SettingDelayMs, map[string]any{
		"min":         minMs,
		"max":         maxMs,
		"description": "Simulated processing delay in milliseconds",
	}, &updatedBy)
}

func numField(m map[string]any, key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
