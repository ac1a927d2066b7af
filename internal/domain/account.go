package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a cash vault ("bóveda") holding a cached balance.
// The balance is derived state: it only changes by applying movements,
// and RecomputeBalance over the full movement history must reproduce it.
type Account struct {
	ID                   string
	Name                 string
	Currency             string
	Balance              decimal.Decimal
	Version              int64
	AllowNegativeBalance bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ValidateDebit checks if account can be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	newBalance := a.Balance.Sub(amount)
	if !a.AllowNegativeBalance && newBalance.IsNegative() {
		return ErrNegativeBalanceNotAllowed
	}
	return nil
}

// ApplyDebit returns new balance after debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns new balance after credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}
