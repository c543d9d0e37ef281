package orders

import (
	"context"

	"smm-bot/internal/stories/catalog"
	"smm-bot/internal/stories/ledger"
)

type (
	Storage interface {
		Atomic(ctx context.Context, fn func(ctx context.Context) error) error
		CreateOrder(ctx context.Context, order Order) (*Order, error)
		GetOrder(ctx context.Context, id string) (*Order, error)
		ListOrders(ctx context.Context, criteria ListCriteria) ([]*Order, error)
		// UpdateOrderStatus reports whether an order with id exists.
		UpdateOrderStatus(ctx context.Context, id string, status Status) (bool, error)
	}

	Ledger interface {
		Transact(ctx context.Context, userID int64, fn func(ctx context.Context, acc *ledger.Account) error) error
	}

	Catalog interface {
		Lookup(id string) (*catalog.Service, bool)
	}

	idGenerator interface {
		NewOrderID() string
	}
)
