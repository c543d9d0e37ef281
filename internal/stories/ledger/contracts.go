package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

type (
	// Storage persists balances. Atomic runs fn in one transaction that the
	// other Storage methods join through ctx.
	Storage interface {
		Atomic(ctx context.Context, fn func(ctx context.Context) error) error
		GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
		SetBalance(ctx context.Context, userID int64, balance decimal.Decimal) error
	}
)
