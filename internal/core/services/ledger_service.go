package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kantorly/currency_exchange_app/internal/apperrors"
	"github.com/kantorly/currency_exchange_app/internal/core/domain"
	portsrepo "github.com/kantorly/currency_exchange_app/internal/core/ports/repositories"
	"github.com/kantorly/currency_exchange_app/internal/middleware"
)

// LedgerService provides the core balance-ledger operations: balance
// adjustments, currency exchanges and transaction history.
//
// Every read-modify-write on one account's balances runs under a lock scoped
// to that account ID, so concurrent operations on the same account are
// serialized while operations on distinct accounts proceed in parallel.
type LedgerService struct {
	accountRepo portsrepo.AccountRepository
	txnRepo     portsrepo.TransactionRepository

	locksMu sync.Mutex
	locks   map[string]*accountState
}

// accountState carries the per-account mutex and the state it guards.
type accountState struct {
	mu sync.Mutex
	// last transaction timestamp issued for this account; keeps timestamps
	// non-decreasing across a clock step
	lastTxnAt time.Time
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(
	accountRepo portsrepo.AccountRepository,
	txnRepo portsrepo.TransactionRepository,
) *LedgerService {
	return &LedgerService{
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		locks:       make(map[string]*accountState),
	}
}

// accountLock returns the state serializing operations on one account ID,
// creating it on first use.
func (s *LedgerService) accountLock(accountID string) *accountState {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	state, ok := s.locks[accountID]
	if !ok {
		state = &accountState{}
		s.locks[accountID] = state
	}
	return state
}

// nextTimestamp returns the timestamp for a new transaction on the account.
// Must be called with the account's mutex held.
func (state *accountState) nextTimestamp() time.Time {
	now := time.Now().UTC()
	if now.Before(state.lastTxnAt) {
		now = state.lastTxnAt
	}
	state.lastTxnAt = now
	return now
}

// CreateAccount creates the balance holder for a user, seeded with a zero
// balance in the home currency.
func (s *LedgerService) CreateAccount(ctx context.Context, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID: uuid.NewString(),
		UserID:    userID,
		Balances: map[string]decimal.Decimal{
			domain.HomeCurrency: decimal.Zero,
		},
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account in repository", slog.String("error", err.Error()), slog.String("account_id", account.AccountID))
		return nil, err
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("user_id", userID))
	return &account, nil
}

// GetAccount retrieves an account with its balances.
func (s *LedgerService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account by ID in repository", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

// GetAccountByUserID retrieves the account owned by the given user.
func (s *LedgerService) GetAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find account by user ID", slog.String("error", err.Error()), slog.String("user_id", userID))
		}
		return nil, err
	}
	return account, nil
}

// AdjustBalance applies a signed delta to one currency balance and returns
// the new balance. A debit that would drive the balance below zero fails
// with apperrors.ErrInsufficientBalance and leaves the account unmodified.
//
// Simple adjustments are not recorded in the transaction history; only
// exchanges are.
func (s *LedgerService) AdjustBalance(ctx context.Context, accountID, currency string, delta decimal.Decimal) (decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if currency == "" {
		return decimal.Zero, fmt.Errorf("%w: currency code is required", apperrors.ErrValidation)
	}

	state := s.accountLock(accountID)
	state.mu.Lock()
	defer state.mu.Unlock()

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to load account for adjustment", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return decimal.Zero, err
	}

	newBalance := account.Balance(currency).Add(delta)
	if newBalance.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w in %s", apperrors.ErrInsufficientBalance, currency)
	}

	balances := account.CloneBalances()
	balances[currency] = newBalance
	account.Balances = balances
	account.LastUpdatedAt = time.Now().UTC()

	if err := s.accountRepo.UpdateBalances(ctx, *account); err != nil {
		logger.Error("Failed to persist adjusted balances", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return decimal.Zero, fmt.Errorf("failed to persist balance adjustment: %w", err)
	}

	logger.Info("Balance adjusted",
		slog.String("account_id", accountID),
		slog.String("currency", currency),
		slog.String("delta", delta.String()),
		slog.String("new_balance", newBalance.String()),
	)
	return newBalance, nil
}

// GetBalance returns the balance held in the given currency. A currency the
// account has never touched reads as zero; no entry is created.
func (s *LedgerService) GetBalance(ctx context.Context, accountID, currency string) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance(currency), nil
}

// Exchange converts fromAmount of one currency into toAmount of another on a
// single account. Both legs and the transaction record become visible
// together or not at all. The service does not judge whether toAmount is a
// fair price for fromAmount; rate lookup belongs to the caller.
func (s *LedgerService) Exchange(ctx context.Context, accountID, fromCurrency, toCurrency string, fromAmount, toAmount decimal.Decimal) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if fromCurrency == "" || toCurrency == "" {
		return fmt.Errorf("%w: both currency codes are required", apperrors.ErrValidation)
	}
	if fromAmount.IsNegative() || toAmount.IsNegative() {
		return fmt.Errorf("%w: exchange amounts must not be negative", apperrors.ErrValidation)
	}

	state := s.accountLock(accountID)
	state.mu.Lock()
	defer state.mu.Unlock()

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to load account for exchange", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return err
	}

	balances := account.CloneBalances()

	currentFrom, ok := balances[fromCurrency]
	if !ok {
		currentFrom = decimal.Zero
	}
	if currentFrom.LessThan(fromAmount) {
		return fmt.Errorf("%w in %s", apperrors.ErrInsufficientBalance, fromCurrency)
	}

	// Apply the legs in sequence; when both codes are equal the credit leg
	// must observe the already-debited balance.
	balances[fromCurrency] = currentFrom.Sub(fromAmount)

	currentTo, ok := balances[toCurrency]
	if !ok {
		currentTo = decimal.Zero
	}
	balances[toCurrency] = currentTo.Add(toAmount)

	account.Balances = balances
	now := state.nextTimestamp()
	account.LastUpdatedAt = now

	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		AccountID:     accountID,
		FromCurrency:  fromCurrency,
		ToCurrency:    toCurrency,
		FromAmount:    fromAmount,
		ToAmount:      toAmount,
		Timestamp:     now,
	}

	if err := s.txnRepo.SaveExchange(ctx, *account, txn); err != nil {
		logger.Error("Failed to persist exchange", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return fmt.Errorf("failed to persist exchange: %w", err)
	}

	logger.Info("Exchange completed",
		slog.String("account_id", accountID),
		slog.String("transaction_id", txn.TransactionID),
		slog.String("from_currency", fromCurrency),
		slog.String("to_currency", toCurrency),
		slog.String("from_amount", fromAmount.String()),
		slog.String("to_amount", toAmount.String()),
	)
	return nil
}

// GetTransactionHistory returns every transaction recorded for the account,
// chronological, oldest first.
func (s *LedgerService) GetTransactionHistory(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	transactions, err := s.txnRepo.ListTransactionsByAccountID(ctx, accountID)
	if err != nil {
		logger.Error("Failed to list transactions", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to list transactions for account %s: %w", accountID, err)
	}
	if transactions == nil {
		return []domain.Transaction{}, nil
	}
	return transactions, nil
}
