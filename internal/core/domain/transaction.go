package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the immutable record of one completed currency exchange.
// For a pure adjustment both currency codes would be equal; the ledger only
// records exchanges, so in practice every row documents two legs.
// Once persisted a transaction is never updated or deleted.
type Transaction struct {
	TransactionID string          `json:"transactionID"` // Primary Key (UUID)
	AccountID     string          `json:"accountID"`     // FK -> accounts.account_id (back-reference only)
	FromCurrency  string          `json:"fromCurrency"`  // source leg currency code
	ToCurrency    string          `json:"toCurrency"`    // destination leg currency code
	FromAmount    decimal.Decimal `json:"fromAmount"`    // amount that left FromCurrency, >= 0
	ToAmount      decimal.Decimal `json:"toAmount"`      // amount that entered ToCurrency, >= 0
	Timestamp     time.Time       `json:"timestamp"`     // non-decreasing per account in apply order
}
