package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

// Settable reports whether an administrator may move an order into s.
func (s Status) Settable() bool {
	switch s {
	case StatusProcessing, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// ServiceRef is the catalog entry as it was when the user picked it. Orders
// keep this snapshot so later catalog edits never touch placed orders.
type ServiceRef struct {
	ID          string
	Name        string
	PricePer100 decimal.Decimal
	Minimum     int64
}

type Order struct {
	ID        string
	UserID    int64
	Service   ServiceRef
	Quantity  int64
	Link      string
	Total     decimal.Decimal
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Draft is an order being assembled step by step before confirmation.
type Draft struct {
	Service  *ServiceRef
	Quantity int64
	Link     string
}

func (d Draft) Complete() bool {
	return d.Service != nil && d.Quantity > 0 && d.Link != ""
}

type ListCriteria struct {
	UserID *int64
	Status *Status
	Limit  int
}

// Placement is the result of a confirmed order.
type Placement struct {
	Order      *Order
	NewBalance decimal.Decimal
}
