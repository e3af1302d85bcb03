package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kantorly/currency_exchange_app/internal/apperrors"
	"github.com/kantorly/currency_exchange_app/internal/core/domain"
	"github.com/kantorly/currency_exchange_app/internal/core/services"
)

// MockAccountRepository is a mock type for the AccountRepository interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateBalances(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// MockTransactionRepository is a mock type for the TransactionRepository interface
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) SaveExchange(ctx context.Context, account domain.Account, txn domain.Transaction) error {
	args := m.Called(ctx, account, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListTransactionsByAccountID(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// --- Test Suite Setup ---

type LedgerServiceTestSuite struct {
	suite.Suite
	mockAccounts *MockAccountRepository
	mockTxns     *MockTransactionRepository
	service      *services.LedgerService
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockAccounts = new(MockAccountRepository)
	suite.mockTxns = new(MockTransactionRepository)
	suite.service = services.NewLedgerService(suite.mockAccounts, suite.mockTxns)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func testAccount(balances map[string]decimal.Decimal) *domain.Account {
	return &domain.Account{
		AccountID: "acc-1",
		UserID:    "user-1",
		Balances:  balances,
	}
}

// --- CreateAccount ---

func (suite *LedgerServiceTestSuite) TestCreateAccount_SeedsHomeCurrency() {
	ctx := context.Background()

	suite.mockAccounts.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.NotEmpty(account.AccountID)
	suite.Equal("user-1", account.UserID)
	suite.Len(account.Balances, 1)
	suite.True(account.Balances[domain.HomeCurrency].IsZero())
	suite.WithinDuration(time.Now(), account.CreatedAt, time.Second)
	suite.mockAccounts.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestCreateAccount_MissingUserID() {
	_, err := suite.service.CreateAccount(context.Background(), "")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- AdjustBalance ---

func (suite *LedgerServiceTestSuite) TestAdjustBalance_Credit() {
	ctx := context.Background()
	account := testAccount(map[string]decimal.Decimal{"PLN": dec("0")})

	suite.mockAccounts.On("FindAccountByID", ctx, "acc-1").Return(account, nil).Once()
	suite.mockAccounts.On("UpdateBalances", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Balances["PLN"].Equal(dec("100"))
	})).Return(nil).Once()

	newBalance, err := suite.service.AdjustBalance(ctx, "acc-1", "PLN", dec("100"))

	suite.Require().NoError(err)
	suite.True(newBalance.Equal(dec("100")))
	suite.mockAccounts.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestAdjustBalance_DebitRoundTrip() {
	ctx := context.Background()

	first := testAccount(map[string]decimal.Decimal{"USD": dec("50")})
	suite.mockAccounts.On("FindAccountByID", ctx, "acc-1").Return(first, nil).Once()
	suite.mockAccounts.On("UpdateBalances", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Twice()

	afterCredit, err := suite.service.AdjustBalance(ctx, "acc-1", "USD", dec("25"))
	suite.Require().NoError(err)
	suite.True(afterCredit.Equal(dec("75")))

	second := testAccount(map[string]decimal.Decimal{"USD": dec("75")})
	suite.mockAccounts.On("FindAccountByID", ctx, "acc-1").Return(second, nil).Once()

	afterDebit, err := suite.service.AdjustBalance(ctx, "acc-1", "USD", dec("-25"))
	suite.Require().NoError(err)
	suite.True(afterDebit.Equal(dec("50")))
}

func (suite *LedgerServiceTestSuite) TestAdjustBalance_InsufficientBalance() {
	ctx := context.Background()
	account := testAccount(map[string]decimal.Decimal{"PLN": dec("10")})

	suite.mockAccounts.On("FindAccountByID", ctx, "acc-1").Return(account, nil).Once()

	_, err := suite.service.AdjustBalance(ctx, "acc-1", "PLN", dec("-20"))

	suite.ErrorIs(err, apperrors.ErrInsufficientBalance)
	// the account is left unmodified: no persistence call happened
	suite.mockAccounts.AssertNotCalled(suite.T(), "UpdateBalances", mock.Anything, mock.Anything)
	suite.True(account.Balances["PLN"].Equal(dec("10")))
}

func (suite *LedgerServiceTestSuite) TestAdjustBalance_DebitUntouchedCurrency() {
	ctx := context.Background()
	account := testAccount(map[string]decimal.Decimal{"PLN": dec("10")})

	suite.mockAccounts.On("FindAccountByID", ctx, "acc-1").Return(account, nil).Once()

	// EUR reads as zero, so any debit fails
	_, err := suite.service.AdjustBalance(ctx, "acc-1", "EUR", dec("-0.01"))
	suite.ErrorIs(err, apperrors.ErrInsufficientBalance)
}

func (suite *LedgerServiceTestSuite) TestAdjustBalance_AccountNotFound() {
	ctx := context.Background()
	suite.mockAccounts.On("FindAccountByID", ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.AdjustBalance(ctx, "missing", "PLN", dec("1"))
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestAdjustBalance_EmptyCurrency() {
	_, err := suite.service.AdjustBalance(context.Background(), "acc-1", "", dec("1"))
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- GetBalance ---

func (suite *LedgerServiceTestSuite) TestGetBalance_UntouchedCurrencyIsZero() {
	ctx := context.Background()
	account := testAccount(map[string]decimal.Decimal{"PLN": dec("60")})
	suite.mockAccounts.On("FindAccountByID", ctx, "acc-1").Return(account, nil).Once()

	balance, err := suite.service.GetBalance(ctx, "acc-1", "CHF")

	suite.Require().NoError(err)
	suite.True(balance.IsZero())
	// reading must not create a currency entry
	suite.Len(account.Balances, 1)
}

// --- Exchange ---

func (suite *LedgerServiceTestSuite) TestExchange_DrainsSourceLeg() {
	ctx := context.Background()
	account := testAccount(map[string]decimal.Decimal{"PLN": dec("40")})

	suite.mockAccounts.On("FindAccountByID", ctx, "acc-1").Return(account, nil).Once()

	var saved domain.Account
	var savedTxn domain.Transaction
	suite.mockTxns.On("SaveExchange", ctx, mock.AnythingOfType("domain.Account"), mock.AnythingOfType("domain.Transaction")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.Account)
			savedTxn = args.Get(2).(domain.Transaction)
		}).Return(nil).Once()

	err := suite.service.Exchange(ctx, "acc-1", "PLN", "USD", dec("40"), dec("10"))

	suite.Require().NoError(err)
	suite.True(saved.Balances["PLN"].IsZero())
	suite.True(saved.Balances["USD"].Equal(dec("10")))
	suite.NotEmpty(savedTxn.TransactionID)
	suite.Equal("acc-1", savedTxn.AccountID)
	suite.Equal("PLN", savedTxn.FromCurrency)
	suite.Equal("USD", savedTxn.ToCurrency)
	suite.True(savedTxn.FromAmount.Equal(dec("40")))
	suite.True(savedTxn.ToAmount.Equal(dec("10")))
	suite.WithinDuration(time.Now(), savedTxn.Timestamp, time.Second)
	suite.mockTxns.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestExchange_InsufficientBalance() {
	ctx := context.Background()
	account := testAccount(map[string]decimal.Decimal{"PLN": dec("60"), "USD": dec("10")})

	suite.mockAccounts.On("FindAccountByID", ctx, "acc-1").Return(account, nil).Once()

	err := suite.service.Exchange(ctx, "acc-1", "PLN", "USD", dec("1000"), dec("1"))

	suite.ErrorIs(err, apperrors.ErrInsufficientBalance)
	suite.mockTxns.AssertNotCalled(suite.T(), "SaveExchange", mock.Anything, mock.Anything, mock.Anything)
	suite.True(account.Balances["PLN"].Equal(dec("60")))
	suite.True(account.Balances["USD"].Equal(dec("10")))
}

func (suite *LedgerServiceTestSuite) TestExchange_SameCurrency() {
	ctx := context.Background()
	account := testAccount(map[string]decimal.Decimal{"PLN": dec("100")})

	suite.mockAccounts.On("FindAccountByID", ctx, "acc-1").Return(account, nil).Once()

	var saved domain.Account
	suite.mockTxns.On("SaveExchange", ctx, mock.AnythingOfType("domain.Account"), mock.AnythingOfType("domain.Transaction")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.Account)
		}).Return(nil).Once()

	// degenerate case: net effect is toAmount - fromAmount in one currency
	err := suite.service.Exchange(ctx, "acc-1", "PLN", "PLN", dec("30"), dec("5"))

	suite.Require().NoError(err)
	suite.True(saved.Balances["PLN"].Equal(dec("75")))
}

func (suite *LedgerServiceTestSuite) TestExchange_NegativeAmount() {
	err := suite.service.Exchange(context.Background(), "acc-1", "PLN", "USD", dec("-1"), dec("1"))
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestExchange_EmptyCurrency() {
	err := suite.service.Exchange(context.Background(), "acc-1", "", "USD", dec("1"), dec("1"))
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestExchange_AccountNotFound() {
	ctx := context.Background()
	suite.mockAccounts.On("FindAccountByID", ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.Exchange(ctx, "missing", "PLN", "USD", dec("1"), dec("1"))
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- GetTransactionHistory ---

func (suite *LedgerServiceTestSuite) TestGetTransactionHistory_NilBecomesEmpty() {
	ctx := context.Background()
	suite.mockTxns.On("ListTransactionsByAccountID", ctx, "acc-1").Return(nil, nil).Once()

	history, err := suite.service.GetTransactionHistory(ctx, "acc-1")

	suite.Require().NoError(err)
	suite.NotNil(history)
	suite.Empty(history)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
