package deposits

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending         Status = "pending"
	StatusWaitingApproval Status = "waiting_approval"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
)

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type Currency string

const (
	CurrencyBTC  Currency = "BTC"
	CurrencyUSDT Currency = "USDT"
	CurrencyETH  Currency = "ETH"
	CurrencyBNB  Currency = "BNB"
)

// Currencies is the fixed set of accepted deposit currencies, in display order.
var Currencies = []Currency{CurrencyBTC, CurrencyUSDT, CurrencyETH, CurrencyBNB}

func ParseCurrency(s string) (Currency, bool) {
	for _, c := range Currencies {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

type Deposit struct {
	ID        string
	UserID    int64
	Amount    decimal.Decimal
	Currency  Currency
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ListCriteria struct {
	UserID *int64
	Status *Status
	// UpdatedBefore also orders the result by updated_at, newest first.
	UpdatedBefore *time.Time
	Limit         int
}

// Submission is what Submit hands back to the caller: the stored deposit and
// where the user should send the funds.
type Submission struct {
	Deposit *Deposit
	Address string
}

// Resolution is the outcome of an administrator decision.
type Resolution struct {
	Deposit    *Deposit
	NewBalance decimal.Decimal
}
