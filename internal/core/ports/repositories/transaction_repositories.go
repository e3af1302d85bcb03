package repositories

import (
	"context"

	"github.com/kantorly/currency_exchange_app/internal/core/domain"
)

// TransactionReader defines read operations for transaction data
type TransactionReader interface {
	// ListTransactionsByAccountID retrieves every transaction recorded for
	// the account, chronological, oldest first.
	ListTransactionsByAccountID(ctx context.Context, accountID string) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for transaction data.
// Transactions are append-only; there is no update or delete.
type TransactionWriter interface {
	// SaveTransaction appends a single transaction record.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// SaveExchange persists the account's updated balances and appends the
	// transaction documenting the exchange as one unit: a subsequent reader
	// sees both or, on failure, neither.
	SaveExchange(ctx context.Context, account domain.Account, txn domain.Transaction) error
}

// TransactionRepository combines all transaction-related repository interfaces.
type TransactionRepository interface {
	TransactionReader
	TransactionWriter
}
