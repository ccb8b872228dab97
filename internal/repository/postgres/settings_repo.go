package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/unifiedpay/wallet-backend/internal/models"
	repo "github.com/unifiedpay/wallet-backend/internal/repository"
)

type settingsRepo struct{ pool *pgxpool.Pool }

func (r *settingsRepo) Get(key string) (models.Setting, error) {
	var s models.Setting
	err := r.pool.QueryRow(context.Background(),
		`SELECT id, setting_key, setting_value, updated_at, updated_by
		   FROM system_settings WHERE setting_key=$1`, key,
	).Scan(&s.ID, &s.SettingKey, &s.SettingValue, &s.UpdatedAt, &s.UpdatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Setting{}, repo.ErrNotFound
	}
	return s, err
}

func (r *settingsRepo) Upsert(key string, value map[string]any, updatedBy *string) (models.Setting, error) {
	var s models.Setting
	err := r.pool.QueryRow(context.Background(),
		`INSERT INTO system_settings(setting_key, setting_value, updated_by)
		 VALUES($1,$2,$3)
		 ON CONFLICT (setting_key) DO UPDATE
		 SET setting_value=EXCLUDED.setting_value, updated_by=EXCLUDED.updated_by, updated_at=now()
		 RETURNING id, setting_key, setting_value, updated_at, updated_by`,
		key, value, updatedBy,
	).Scan(&s.ID, &s.SettingKey, &s.SettingValue, &s.UpdatedAt, &s.UpdatedBy)
	return s, err
}

func (r *settingsRepo) List() ([]models.Setting, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT id, setting_key, setting_value, updated_at, updated_by
		   FROM system_settings ORDER BY setting_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Setting
	for rows.Next() {
		var s models.Setting
		if err := rows.Scan(&s.ID, &s.SettingKey, &s.SettingValue, &s.UpdatedAt, &s.UpdatedBy); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
