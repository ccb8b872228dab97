package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/unifiedpay/wallet-backend/internal/models"
	repo "github.com/unifiedpay/wallet-backend/internal/repository"
)

type profilesRepo struct{ pool *pgxpool.Pool }

const profileCols = `id, name, phone, email, password_hash, wallet_balance, avatar_url, created_at, updated_at`

func scanProfile(row pgx.Row) (models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Name, &p.Phone, &p.Email, &p.PasswordHash, &p.WalletBalance, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Profile{}, repo.ErrNotFound
	}
	return p, err
}

func (r *profilesRepo) Create(name, phone, email, passwordHash string, balance float64) (models.Profile, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(context.Background(),
		`INSERT INTO user_profiles(id, name, phone, email, password_hash, wallet_balance) VALUES($1,$2,$3,$4,$5,$6)`,
		id, name, phone, email, passwordHash, balance,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return models.Profile{}, repo.ErrDuplicateEmail
	}
	if err != nil {
		return models.Profile{}, err
	}
	return r.GetByID(id)
}

func (r *profilesRepo) GetByID(id string) (models.Profile, error) {
	return scanProfile(r.pool.QueryRow(context.Background(),
		`SELECT `+profileCols+` FROM user_profiles WHERE id=$1`, id))
}

func (r *profilesRepo) GetByEmail(email string) (models.Profile, error) {
	return scanProfile(r.pool.QueryRow(context.Background(),
		`SELECT `+profileCols+` FROM user_profiles WHERE email=$1`, email))
}

// DebitIfSufficient re-validates sufficiency at settlement time: the WHERE
// clause makes the read-check-write a single atomic statement, so concurrent
// settlements for one user cannot drive the balance negative.
func (r *profilesRepo) DebitIfSufficient(userID string, amount float64) (float64, bool, error) {
	var balance float64
	err := r.pool.QueryRow(context.Background(),
		`UPDATE user_profiles
		    SET wallet_balance = wallet_balance - $2,
		        updated_at = now()
		  WHERE id = $1 AND wallet_balance >= $2
		  RETURNING wallet_balance`,
		userID, amount,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return balance, true, nil
}
