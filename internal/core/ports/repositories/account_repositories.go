package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/kantorly/currency_exchange_app/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account, with its balances, by its
	// unique identifier. Returns apperrors.ErrNotFound if absent.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByUserID retrieves the account owned by the given user.
	FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account together with its seed balances.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateBalances persists the account's current balances map. The caller
	// is responsible for serializing calls per account (see LedgerService).
	UpdateBalances(ctx context.Context, account domain.Account) error
}

// AccountTransactionSupport defines operations used by other repositories
// persisting balance changes inside their own database transaction.
type AccountTransactionSupport interface {
	// LockAccountForUpdate locks the account row within the transaction so
	// the balance write below cannot race a concurrent writer.
	LockAccountForUpdate(ctx context.Context, tx pgx.Tx, accountID string) error

	// UpdateBalancesInTx persists the account's balances within the given
	// transaction.
	UpdateBalancesInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error
}

// AccountRepository combines all account-related repository interfaces.
type AccountRepository interface {
	AccountReader
	AccountWriter
}
