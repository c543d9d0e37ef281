package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"smm-bot/internal/apperr"
)

// Account is a user's balance as seen inside one ledger transaction.
// Mutations are only persisted when the surrounding Transact commits.
type Account struct {
	UserID  int64
	balance decimal.Decimal
	changed bool
}

func (a *Account) Balance() decimal.Decimal {
	return a.balance
}

// Credit increases the balance. amount must be positive.
func (a *Account) Credit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: credit amount must be positive, got %s", apperr.ErrValidation, amount)
	}
	a.balance = a.balance.Add(amount)
	a.changed = true
	return nil
}

// Debit decreases the balance, refusing to drive it below zero.
func (a *Account) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: debit amount must be positive, got %s", apperr.ErrValidation, amount)
	}
	if a.balance.LessThan(amount) {
		return fmt.Errorf("%w: balance %s, requested %s", apperr.ErrInsufficientFunds, a.balance, amount)
	}
	a.balance = a.balance.Sub(amount)
	a.changed = true
	return nil
}
