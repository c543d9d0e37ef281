package order

import (
	"context"

	"github.com/shopspring/decimal"

	"smm-bot/internal/stories/catalog"
	"smm-bot/internal/stories/orders"
	"smm-bot/internal/telegram/states"
)

type (
	stateManager interface {
		Begin(actorID int64)
		Get(actorID int64) states.Session
		Update(actorID int64, fn func(s *states.Session))
	}

	orderService interface {
		SelectService(serviceID string) (*orders.ServiceRef, error)
		Confirm(ctx context.Context, userID int64, draft orders.Draft) (*orders.Placement, error)
		UpdateStatus(ctx context.Context, orderID string, status orders.Status) (*orders.Order, error)
	}

	catalogReader interface {
		Platforms() []string
		Categories(platform string) ([]string, bool)
		Services(platform, category string) ([]*catalog.Service, bool)
		Lookup(id string) (*catalog.Service, bool)
	}

	balanceReader interface {
		BalanceOf(ctx context.Context, userID int64) (decimal.Decimal, error)
	}

	localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
