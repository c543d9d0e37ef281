package deposits

import (
	"context"

	"github.com/shopspring/decimal"

	"smm-bot/internal/stories/ledger"
)

type (
	Storage interface {
		Atomic(ctx context.Context, fn func(ctx context.Context) error) error
		EnsureUser(ctx context.Context, userID int64) error
		CreateDeposit(ctx context.Context, deposit Deposit) (*Deposit, error)
		GetDeposit(ctx context.Context, id string) (*Deposit, error)
		ListDeposits(ctx context.Context, criteria ListCriteria) ([]*Deposit, error)
		// TransitionDeposit moves id from one status to another only if it is
		// currently in from. It reports whether the row changed.
		TransitionDeposit(ctx context.Context, id string, from, to Status) (bool, error)
	}

	Ledger interface {
		Transact(ctx context.Context, userID int64, fn func(ctx context.Context, acc *ledger.Account) error) error
	}

	// AddressBook maps a currency to the address users pay into.
	AddressBook interface {
		Address(currency Currency) (string, bool)
	}

	idGenerator interface {
		NewDepositID() string
	}
)

// StaticAddressBook is an AddressBook backed by configuration.
type StaticAddressBook map[Currency]string

func (b StaticAddressBook) Address(currency Currency) (string, bool) {
	addr, ok := b[currency]
	return addr, ok && addr != ""
}

var _ AddressBook = StaticAddressBook(nil)

// MinimumDeposit is the default lower bound for a deposit amount.
var MinimumDeposit = decimal.NewFromInt(10)
