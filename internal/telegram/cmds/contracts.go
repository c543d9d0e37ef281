package cmds

import (
	"context"

	"github.com/shopspring/decimal"

	"smm-bot/internal/stories/deposits"
	"smm-bot/internal/stories/orders"
	"smm-bot/internal/stories/users"
)

type (
	userService interface {
		Register(ctx context.Context, id int64, displayName string) (*users.User, bool, error)
		ListUsers(ctx context.Context, limit int) ([]*users.User, error)
	}

	balanceReader interface {
		BalanceOf(ctx context.Context, userID int64) (decimal.Decimal, error)
	}

	depositLister interface {
		ListDeposits(ctx context.Context, criteria deposits.ListCriteria) ([]*deposits.Deposit, error)
	}

	orderLister interface {
		ListByUser(ctx context.Context, userID int64, limit int) ([]*orders.Order, error)
		List(ctx context.Context, criteria orders.ListCriteria) ([]*orders.Order, error)
	}

	stateManager interface {
		Begin(actorID int64)
	}

	adminChecker interface {
		IsAdmin(actorID int64) bool
	}

	localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
