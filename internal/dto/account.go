package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kantorly/currency_exchange_app/internal/core/domain"
)

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID string                     `json:"accountID"`
	UserID    string                     `json:"userID"`
	Balances  map[string]decimal.Decimal `json:"balances"`
	CreatedAt time.Time                  `json:"createdAt"`
}

// ToAccountResponse converts a domain.Account to an AccountResponse DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID: acc.AccountID,
		UserID:    acc.UserID,
		Balances:  acc.CloneBalances(),
		CreatedAt: acc.CreatedAt,
	}
}

// AdjustBalanceRequest defines a signed balance adjustment in one currency.
type AdjustBalanceRequest struct {
	Currency string          `json:"currency" binding:"required,currencycode"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
}

// BalanceResponse defines the data returned for a single-currency balance query.
type BalanceResponse struct {
	AccountID string          `json:"accountID"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
}

// ExchangeRequest defines a currency exchange on one account. The caller
// supplies both leg amounts; the price is not derived from a rate here.
type ExchangeRequest struct {
	FromCurrency string          `json:"fromCurrency" binding:"required,currencycode"`
	ToCurrency   string          `json:"toCurrency" binding:"required,currencycode"`
	FromAmount   decimal.Decimal `json:"fromAmount" binding:"required"`
	ToAmount     decimal.Decimal `json:"toAmount" binding:"required"`
}

// TransactionResponse defines the data returned for one history entry.
type TransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	AccountID     string          `json:"accountID"`
	FromCurrency  string          `json:"fromCurrency"`
	ToCurrency    string          `json:"toCurrency"`
	FromAmount    decimal.Decimal `json:"fromAmount"`
	ToAmount      decimal.Decimal `json:"toAmount"`
	Timestamp     time.Time       `json:"timestamp"`
}

// ToTransactionResponse converts a domain.Transaction to a TransactionResponse DTO.
func ToTransactionResponse(txn domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: txn.TransactionID,
		AccountID:     txn.AccountID,
		FromCurrency:  txn.FromCurrency,
		ToCurrency:    txn.ToCurrency,
		FromAmount:    txn.FromAmount,
		ToAmount:      txn.ToAmount,
		Timestamp:     txn.Timestamp,
	}
}

// ToListTransactionResponse converts a slice of domain.Transaction to DTOs.
func ToListTransactionResponse(txns []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i, txn := range txns {
		res[i] = ToTransactionResponse(txn)
	}
	return res
}
