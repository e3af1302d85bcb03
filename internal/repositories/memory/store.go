// Package memory provides an in-memory implementation of the repository
// ports. It backs tests and local runs without a database; the pgsql
// package is the durable implementation.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kantorly/currency_exchange_app/internal/apperrors"
	"github.com/kantorly/currency_exchange_app/internal/core/domain"
	portsrepo "github.com/kantorly/currency_exchange_app/internal/core/ports/repositories"
)

var _ portsrepo.AccountRepository = (*Store)(nil)
var _ portsrepo.TransactionRepository = (*Store)(nil)
var _ portsrepo.UserRepository = (*Store)(nil)

// Store holds accounts, the append-only transaction log and users behind a
// single mutex. Reads hand out copies so callers can't mutate stored state.
type Store struct {
	mu           sync.Mutex
	accounts     map[string]domain.Account
	transactions []domain.Transaction
	users        map[string]domain.User
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]domain.Account),
		users:    make(map[string]domain.User),
	}
}

func cloneAccount(a domain.Account) domain.Account {
	copied := a
	copied.Balances = a.CloneBalances()
	return copied
}

// --- AccountRepository ---

func (s *Store) SaveAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.AccountID)
	}
	s.accounts[account.AccountID] = cloneAccount(account)
	return nil
}

func (s *Store) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := cloneAccount(account)
	return &copied, nil
}

func (s *Store) FindAccountByUserID(_ context.Context, userID string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, account := range s.accounts {
		if account.UserID == userID {
			copied := cloneAccount(account)
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) UpdateBalances(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.AccountID]; !ok {
		return apperrors.ErrNotFound
	}
	s.accounts[account.AccountID] = cloneAccount(account)
	return nil
}

// --- TransactionRepository ---

func (s *Store) SaveTransaction(_ context.Context, txn domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = append(s.transactions, txn)
	return nil
}

// SaveExchange applies the balance update and the transaction append under
// one lock acquisition, so no reader observes one without the other.
func (s *Store) SaveExchange(_ context.Context, account domain.Account, txn domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.AccountID]; !ok {
		return apperrors.ErrNotFound
	}
	s.accounts[account.AccountID] = cloneAccount(account)
	s.transactions = append(s.transactions, txn)
	return nil
}

func (s *Store) ListTransactionsByAccountID(_ context.Context, accountID string) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// transactions are appended in apply order, which is chronological
	result := []domain.Transaction{}
	for _, txn := range s.transactions {
		if txn.AccountID == accountID {
			result = append(result, txn)
		}
	}
	return result, nil
}

// --- UserRepository ---

func (s *Store) SaveUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.FirstName == user.FirstName || existing.Email == user.Email {
			return fmt.Errorf("%w: user with that first name or email already exists", apperrors.ErrDuplicate)
		}
	}
	s.users[user.UserID] = user
	return nil
}

func (s *Store) FindUserByID(_ context.Context, userID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok || user.DeletedAt != nil {
		return nil, apperrors.ErrNotFound
	}
	copied := user
	return &copied, nil
}

func (s *Store) FindUserByFirstName(_ context.Context, firstName string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.FirstName == firstName && user.DeletedAt == nil {
			copied := user
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) FindUsers(_ context.Context, limit int, offset int) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}

	all := make([]domain.User, 0, len(s.users))
	for _, user := range s.users {
		if user.DeletedAt == nil {
			all = append(all, user)
		}
	}
	// oldest first, matching the pgsql ORDER BY; ties broken by ID so
	// pagination is stable
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].UserID < all[j].UserID
	})
	if offset >= len(all) {
		return []domain.User{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *Store) ExistsByFirstName(_ context.Context, firstName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.FirstName == firstName {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) MarkUserDeleted(_ context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok || user.DeletedAt != nil {
		return apperrors.ErrNotFound
	}
	user.DeletedAt = &deletedAt
	user.LastUpdatedAt = deletedAt
	user.LastUpdatedBy = deletedBy
	s.users[userID] = user
	return nil
}
