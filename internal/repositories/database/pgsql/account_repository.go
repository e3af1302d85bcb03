package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kantorly/currency_exchange_app/internal/apperrors"
	"github.com/kantorly/currency_exchange_app/internal/core/domain"
	portsrepo "github.com/kantorly/currency_exchange_app/internal/core/ports/repositories"
)

// PgxAccountRepository persists accounts as one row in accounts plus one row
// per currency in account_balances.
type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepository = (*PgxAccountRepository)(nil)
var _ portsrepo.AccountTransactionSupport = (*PgxAccountRepository)(nil)

// SaveAccount inserts a new account and its seed balance rows atomically.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO accounts (account_id, user_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err = tx.Exec(ctx, query,
		account.AccountID,
		account.UserID,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique violation
			return fmt.Errorf("%w: account for user %s already exists", apperrors.ErrDuplicate, account.UserID)
		}
		return fmt.Errorf("failed to save account %s: %w", account.AccountID, err)
	}

	if err := upsertBalances(ctx, tx, account); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// FindAccountByID retrieves an account, with its balances, by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return r.findAccount(ctx, `WHERE account_id = $1`, accountID)
}

// FindAccountByUserID retrieves the account owned by the given user.
func (r *PgxAccountRepository) FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	return r.findAccount(ctx, `WHERE user_id = $1`, userID)
}

func (r *PgxAccountRepository) findAccount(ctx context.Context, where string, arg any) (*domain.Account, error) {
	query := `
		SELECT account_id, user_id, created_at, created_by, last_updated_at, last_updated_by
		FROM accounts ` + where + `;`

	var account domain.Account
	err := r.Pool.QueryRow(ctx, query, arg).Scan(
		&account.AccountID,
		&account.UserID,
		&account.CreatedAt,
		&account.CreatedBy,
		&account.LastUpdatedAt,
		&account.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	balances, err := r.loadBalances(ctx, account.AccountID)
	if err != nil {
		return nil, err
	}
	account.Balances = balances
	return &account, nil
}

func (r *PgxAccountRepository) loadBalances(ctx context.Context, accountID string) (map[string]decimal.Decimal, error) {
	query := `
		SELECT currency_code, amount
		FROM account_balances
		WHERE account_id = $1;
	`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query balances for account %s: %w", accountID, err)
	}
	defer rows.Close()

	balances := make(map[string]decimal.Decimal)
	for rows.Next() {
		var code string
		var amount decimal.Decimal
		if err := rows.Scan(&code, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan balance row for account %s: %w", accountID, err)
		}
		balances[code] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance rows for account %s: %w", accountID, err)
	}
	return balances, nil
}

// UpdateBalances persists the account's balances in its own transaction.
func (r *PgxAccountRepository) UpdateBalances(ctx context.Context, account domain.Account) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.LockAccountForUpdate(ctx, tx, account.AccountID); err != nil {
		return err
	}
	if err := r.UpdateBalancesInTx(ctx, tx, account); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// LockAccountForUpdate locks the account row within the transaction.
func (r *PgxAccountRepository) LockAccountForUpdate(ctx context.Context, tx pgx.Tx, accountID string) error {
	var id string
	err := tx.QueryRow(ctx, `SELECT account_id FROM accounts WHERE account_id = $1 FOR UPDATE;`, accountID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to lock account %s: %w", accountID, err)
	}
	return nil
}

// UpdateBalancesInTx persists the account's balances within the given transaction.
func (r *PgxAccountRepository) UpdateBalancesInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	if err := upsertBalances(ctx, tx, account); err != nil {
		return err
	}

	_, err := tx.Exec(ctx,
		`UPDATE accounts SET last_updated_at = $2, last_updated_by = $3 WHERE account_id = $1;`,
		account.AccountID, account.LastUpdatedAt, account.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to touch account %s: %w", account.AccountID, err)
	}
	return nil
}

// upsertBalances writes every entry of the balances map as a batch.
func upsertBalances(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	batch := &pgx.Batch{}
	query := `
		INSERT INTO account_balances (account_id, currency_code, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, currency_code) DO UPDATE SET amount = EXCLUDED.amount;
	`
	for code, amount := range account.Balances {
		batch.Queue(query, account.AccountID, code, amount)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range account.Balances {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert balances for account %s: %w", account.AccountID, err)
		}
	}
	return nil
}
