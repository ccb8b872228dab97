package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
	repo "github.com/unifiedpay/wallet-backend/internal/repository"
)

func NewRepositories(pool *pgxpool.Pool) repo.Registry {
	return repo.Registry{
		Profiles:     &profilesRepo{pool},
		Transactions: &transactionsRepo{pool},
		Settings:     &settingsRepo{pool},
		UPIAccounts:  &upiAccountsRepo{pool},
		Contacts:     &contactsRepo{pool},
	}
}
