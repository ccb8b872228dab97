package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/unifiedpay/wallet-backend/internal/models"
)

type contactsRepo struct{ pool *pgxpool.Pool }

func (r *contactsRepo) Upsert(c models.Contact) (models.Contact, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(context.Background(),
		`INSERT INTO contacts(id, owner_user_id, name, upi_id, phone, avatar_url)
		 VALUES($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (owner_user_id, upi_id) DO UPDATE
		 SET name=EXCLUDED.name, phone=EXCLUDED.phone, avatar_url=EXCLUDED.avatar_url
		 RETURNING id, owner_user_id, name, upi_id, phone, avatar_url, created_at`,
		c.ID, c.OwnerUserID, c.Name, c.UPIID, c.Phone, c.AvatarURL,
	).Scan(&c.ID, &c.OwnerUserID, &c.Name, &c.UPIID, &c.Phone, &c.AvatarURL, &c.CreatedAt)
	return c, err
}

func (r *contactsRepo) ListByOwner(ownerUserID string) ([]models.Contact, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT id, owner_user_id, name, upi_id, phone, avatar_url, created_at
		   FROM contacts WHERE owner_user_id=$1 ORDER BY name`,
		ownerUserID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Contact
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.ID, &c.OwnerUserID, &c.Name, &c.UPIID, &c.Phone, &c.AvatarURL, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *contactsRepo) Delete(ownerUserID, id string) error {
	_, err := r.pool.Exec(context.Background(),
		`DELETE FROM contacts WHERE owner_user_id=$1 AND id=$2`, ownerUserID, id)
	return err
}
