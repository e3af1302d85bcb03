package domain

import (
	"github.com/shopspring/decimal"
)

// Account is a user's multi-currency balance holder.
// This is the primary representation used by services.
type Account struct {
	AccountID string                     `json:"accountID"` // Primary Key (UUID), immutable after creation
	UserID    string                     `json:"userID"`    // FK -> users.user_id (NON-NULL)
	Balances  map[string]decimal.Decimal `json:"balances"`  // currency code -> non-negative amount
	AuditFields
}

// Balance returns the balance held in the given currency. A currency the
// account has never touched reads as zero, it is not an error.
func (a *Account) Balance(currency string) decimal.Decimal {
	if amount, ok := a.Balances[currency]; ok {
		return amount
	}
	return decimal.Zero
}

// CloneBalances returns a copy of the balances map so callers can stage
// changes without mutating the account they read.
func (a *Account) CloneBalances() map[string]decimal.Decimal {
	copied := make(map[string]decimal.Decimal, len(a.Balances))
	for code, amount := range a.Balances {
		copied[code] = amount
	}
	return copied
}
