package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/unifiedpay/wallet-backend/internal/models"
	repo "github.com/unifiedpay/wallet-backend/internal/repository"
)

type transactionsRepo struct{ pool *pgxpool.Pool }

const txnCols = `id, txn_id, from_user_id, to_upi_id, to_name, amount, provider, status, note,
	balance_before, balance_after, failure_reason, metadata, created_at, updated_at, processed_at`

func scanTxn(row pgx.Row) (models.Transaction, error) {
	var tx models.Transaction
	err := row.Scan(&tx.ID, &tx.TxnID, &tx.FromUserID, &tx.ToUPIID, &tx.ToName, &tx.Amount,
		&tx.Provider, &tx.Status, &tx.Note, &tx.BalanceBefore, &tx.BalanceAfter,
		&tx.FailureReason, &tx.Metadata, &tx.CreatedAt, &tx.UpdatedAt, &tx.ProcessedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Transaction{}, repo.ErrNotFound
	}
	return tx, err
}

func (r *transactionsRepo) Create(tx models.Transaction) (models.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	const q = `
INSERT INTO transactions (
  id, txn_id, from_user_id, to_upi_id, to_name, amount, provider, status, note, balance_before, metadata, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
RETURNING ` + txnCols + `;`
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	out, err := scanTxn(r.pool.QueryRow(context.Background(), q,
		tx.ID, tx.TxnID, tx.FromUserID, tx.ToUPIID, tx.ToName, tx.Amount,
		tx.Provider, tx.Status, tx.Note, tx.BalanceBefore, tx.Metadata, tx.CreatedAt,
	))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return models.Transaction{}, repo.ErrDuplicateTxnID
	}
	return out, err
}

func (r *transactionsRepo) GetByID(id string) (models.Transaction, error) {
	return scanTxn(r.pool.QueryRow(context.Background(),
		`SELECT `+txnCols+` FROM transactions WHERE id=$1`, id))
}

func (r *transactionsRepo) ListByUser(userID string, limit, offset int) ([]models.Transaction, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+txnCols+`
		   FROM transactions
		  WHERE from_user_id=$1
		  ORDER BY created_at DESC
		  LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		tx, err := scanTxn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *transactionsRepo) MarkProcessing(id string) error {
	_, err := r.pool.Exec(context.Background(),
		`UPDATE transactions SET status=$2, updated_at=now() WHERE id=$1`,
		id, models.TxnProcessing,
	)
	return err
}

func (r *transactionsRepo) MarkSuccess(id string, balanceAfter float64, processedAt time.Time) error {
	_, err := r.pool.Exec(context.Background(),
		`UPDATE transactions
		    SET status=$2, balance_after=$3, processed_at=$4, updated_at=now()
		  WHERE id=$1`,
		id, models.TxnSuccess, balanceAfter, processedAt,
	)
	return err
}

func (r *transactionsRepo) MarkFailed(id, reason string, processedAt time.Time) error {
	_, err := r.pool.Exec(context.Background(),
		`UPDATE transactions
		    SET status=$2, failure_reason=$3, processed_at=$4, updated_at=now()
		  WHERE id=$1`,
		id, models.TxnFailed, reason, processedAt,
	)
	return err
}
