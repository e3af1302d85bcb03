package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/kantorly/currency_exchange_app/internal/core/ports/repositories"
)

// RepositoryProvider bundles the pgsql repository implementations.
type RepositoryProvider struct {
	AccountRepo     portsrepo.AccountRepository
	TransactionRepo portsrepo.TransactionRepository
	UserRepo        portsrepo.UserRepository
}

// NewRepositoryProvider wires up the pgsql repositories over one pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool, accountRepo)
	userRepo := newPgxUserRepository(dbPool)

	return RepositoryProvider{
		AccountRepo:     accountRepo,
		TransactionRepo: transactionRepo,
		UserRepo:        userRepo,
	}
}
