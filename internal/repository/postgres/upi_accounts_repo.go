package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/unifiedpay/wallet-backend/internal/models"
)

type upiAccountsRepo struct{ pool *pgxpool.Pool }

func (r *upiAccountsRepo) Create(a models.UPIAccount) (models.UPIAccount, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(context.Background(),
		`INSERT INTO upi_accounts(id, user_id, display_name, upi_id, bank_name, is_primary)
		 VALUES($1,$2,$3,$4,$5,$6)
		 RETURNING id, user_id, display_name, upi_id, bank_name, is_primary, created_at`,
		a.ID, a.UserID, a.DisplayName, a.UPIID, a.BankName, a.IsPrimary,
	).Scan(&a.ID, &a.UserID, &a.DisplayName, &a.UPIID, &a.BankName, &a.IsPrimary, &a.CreatedAt)
	return a, err
}

func (r *upiAccountsRepo) ListByUser(userID string) ([]models.UPIAccount, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT id, user_id, display_name, upi_id, bank_name, is_primary, created_at
		   FROM upi_accounts WHERE user_id=$1 ORDER BY is_primary DESC, created_at`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.UPIAccount
	for rows.Next() {
		var a models.UPIAccount
		if err := rows.Scan(&a.ID, &a.UserID, &a.DisplayName, &a.UPIID, &a.BankName, &a.IsPrimary, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
