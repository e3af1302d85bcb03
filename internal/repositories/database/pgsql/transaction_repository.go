package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kantorly/currency_exchange_app/internal/core/domain"
	portsrepo "github.com/kantorly/currency_exchange_app/internal/core/ports/repositories"
)

// PgxTransactionRepository persists the append-only transaction log.
type PgxTransactionRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountTransactionSupport
}

// newPgxTransactionRepository creates a new repository for transaction data.
func newPgxTransactionRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountTransactionSupport) *PgxTransactionRepository {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.TransactionRepository = (*PgxTransactionRepository)(nil)

const insertTransactionQuery = `
	INSERT INTO transactions (transaction_id, account_id, from_currency, to_currency, from_amount, to_amount, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
`

// SaveTransaction appends a single transaction record.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	_, err := r.Pool.Exec(ctx, insertTransactionQuery,
		txn.TransactionID,
		txn.AccountID,
		txn.FromCurrency,
		txn.ToCurrency,
		txn.FromAmount,
		txn.ToAmount,
		txn.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

// SaveExchange updates the account's balances and appends the transaction
// documenting them within a single database transaction. The account row is
// locked first so a concurrent writer cannot interleave.
func (r *PgxTransactionRepository) SaveExchange(ctx context.Context, account domain.Account, txn domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.accountRepo.LockAccountForUpdate(ctx, tx, account.AccountID); err != nil {
		return err
	}
	if err := r.accountRepo.UpdateBalancesInTx(ctx, tx, account); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, insertTransactionQuery,
		txn.TransactionID,
		txn.AccountID,
		txn.FromCurrency,
		txn.ToCurrency,
		txn.FromAmount,
		txn.ToAmount,
		txn.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", txn.TransactionID, err)
	}

	return r.Commit(ctx, tx)
}

// ListTransactionsByAccountID retrieves every transaction for the account,
// oldest first.
func (r *PgxTransactionRepository) ListTransactionsByAccountID(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	query := `
		SELECT transaction_id, account_id, from_currency, to_currency, from_amount, to_amount, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at ASC, transaction_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for account %s: %w", accountID, err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		var txn domain.Transaction
		err := rows.Scan(
			&txn.TransactionID,
			&txn.AccountID,
			&txn.FromCurrency,
			&txn.ToCurrency,
			&txn.FromAmount,
			&txn.ToAmount,
			&txn.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row for account %s: %w", accountID, err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows for account %s: %w", accountID, err)
	}
	return transactions, nil
}
