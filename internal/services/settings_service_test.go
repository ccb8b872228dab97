package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unifiedpay/wallet-backend/internal/models"
	"github.com/unifiedpay/wallet-backend/internal/repository/memory"
)

func TestResolve_DefaultsWhenEmpty(t *testing.T) {
	repos := memory.NewRepositories(memory.NewStore())
	svc := NewSettingsService(repos.Settings)

	got := svc.Resolve()

	assert.Equal(t, 0.9, got.SuccessRate)
	assert.Equal(t, 2000, got.MinDelayMs)
	assert.Equal(t, 8000, got.MaxDelayMs)
}

func TestResolve_ReadsStoredValues(t *testing.T) {
	repos := memory.NewRepositories(memory.NewStore())
	_, err := repos.Settings.Upsert(models.SettingSuccessRate, map[string]any{"value": 0.5}, nil)
	require.NoError(t, err)
	_, err = repos.Settings.Upsert(models.SettingDelayMs, map[string]any{"min": 100, "max": 300}, nil)
	require.NoError(t, err)

	got := NewSettingsService(repos.Settings).Resolve()

	assert.Equal(t, 0.5, got.SuccessRate)
	assert.Equal(t, 100, got.MinDelayMs)
	assert.Equal(t, 300, got.MaxDelayMs)
}

func TestResolve_MalformedFieldsFallBack(t *testing.T) {
	repos := memory.NewRepositories(memory.NewStore())
	_, err := repos.Settings.Upsert(models.SettingSuccessRate, map[string]any{"value": "high"}, nil)
	require.NoError(t, err)
	_, err = repos.Settings.Upsert(models.SettingDelayMs, map[string]any{"min": 500.0}, nil)
	require.NoError(t, err)

	got := NewSettingsService(repos.Settings).Resolve()

	assert.Equal(t, 0.9, got.SuccessRate)
	// present fields apply even when the sibling is missing
	assert.Equal(t, 500, got.MinDelayMs)
	assert.Equal(t, 8000, got.MaxDelayMs)
}

func TestResolve_OutOfRangeRateFallsBack(t *testing.T) {
	repos := memory.NewRepositories(memory.NewStore())
	_, err := repos.Settings.Upsert(models.SettingSuccessRate, map[string]any{"value": 1.7}, nil)
	require.NoError(t, err)

	got := NewSettingsService(repos.Settings).Resolve()
	assert.Equal(t, 0.9, got.SuccessRate)
}

func TestResolve_InvertedDelayRangeClamped(t *testing.T) {
	repos := memory.NewRepositories(memory.NewStore())
	_, err := repos.Settings.Upsert(models.SettingDelayMs, map[string]any{"min": 900, "max": 100}, nil)
	require.NoError(t, err)

	got := NewSettingsService(repos.Settings).Resolve()
	assert.Equal(t, 900, got.MinDelayMs)
	assert.Equal(t, 900, got.MaxDelayMs)
}

func TestUpdateSuccessRate_Bounds(t *testing.T) {
	repos := memory.NewRepositories(memory.NewStore())
	svc := NewSettingsService(repos.Settings)

	_, err := svc.UpdateSuccessRate(1.5, "admin")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	set, err := svc.UpdateSuccessRate(0.25, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.SettingSuccessRate, set.SettingKey)
	assert.Equal(t, 0.25, svc.Resolve().SuccessRate)
}

func TestUpdateDelayRange_Bounds(t *testing.T) {
	repos := memory.NewRepositories(memory.NewStore())
	svc := NewSettingsService(repos.Settings)

	_, err := svc.UpdateDelayRange(500, 100, "admin")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.UpdateDelayRange(100, 500, "admin")
	require.NoError(t, err)
	got := svc.Resolve()
	assert.Equal(t, 100, got.MinDelayMs)
	assert.Equal(t, 500, got.MaxDelayMs)
}
