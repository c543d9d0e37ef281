package users

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is an actor known to the shop. ID is the transport's actor id.
type User struct {
	ID          int64
	DisplayName string
	Balance     decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type GetCriteria struct {
	ID *int64
}

type ListCriteria struct {
	Limit  int
	Offset int
}
