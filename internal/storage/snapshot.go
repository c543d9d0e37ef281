package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// State is the whole durable shop state: users with balances, deposits and
// orders, keyed by id. Zero timestamps are filled in on Restore.
type State struct {
	Users    map[int64]UserState     `json:"users"`
	Deposits map[string]DepositState `json:"deposits"`
	Orders   map[string]OrderState   `json:"orders"`
}

type UserState struct {
	Balance     decimal.Decimal `json:"balance"`
	DisplayName string          `json:"displayName"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type DepositState struct {
	UserID    int64           `json:"userId"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type OrderState struct {
	UserID      int64           `json:"userId"`
	ServiceID   string          `json:"serviceId"`
	ServiceName string          `json:"serviceRef"`
	PricePer100 decimal.Decimal `json:"pricePer100"`
	Quantity    int64           `json:"quantity"`
	Link        string          `json:"link"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func NewState() *State {
	return &State{
		Users:    make(map[int64]UserState),
		Deposits: make(map[string]DepositState),
		Orders:   make(map[string]OrderState),
	}
}

// Snapshot reads the full state inside one transaction.
func (s *storageImpl) Snapshot(ctx context.Context) (*State, error) {
	state := NewState()

	err := s.Atomic(ctx, func(ctx context.Context) error {
		var userRows []userRow
		if err := s.conn(ctx).SelectContext(ctx, &userRows, "SELECT "+userRowFields+" FROM "+usersTable); err != nil {
			return fmt.Errorf("select users: %w", err)
		}
		for _, u := range userRows {
			state.Users[u.ID] = UserState{
				Balance:     u.Balance,
				DisplayName: u.DisplayName,
				CreatedAt:   u.CreatedAt,
				UpdatedAt:   u.UpdatedAt,
			}
		}

		var depositRows []depositRow
		if err := s.conn(ctx).SelectContext(ctx, &depositRows, "SELECT "+depositRowFields+" FROM "+depositsTable); err != nil {
			return fmt.Errorf("select deposits: %w", err)
		}
		for _, d := range depositRows {
			state.Deposits[d.ID] = DepositState{
				UserID:    d.UserID,
				Amount:    d.Amount,
				Currency:  d.Currency,
				Status:    d.Status,
				CreatedAt: d.CreatedAt,
				UpdatedAt: d.UpdatedAt,
			}
		}

		var orderRows []orderRow
		if err := s.conn(ctx).SelectContext(ctx, &orderRows, "SELECT "+orderRowFields+" FROM "+ordersTable); err != nil {
			return fmt.Errorf("select orders: %w", err)
		}
		for _, o := range orderRows {
			state.Orders[o.ID] = OrderState{
				UserID:      o.UserID,
				ServiceID:   o.ServiceID,
				ServiceName: o.ServiceName,
				PricePer100: o.PricePer100,
				Quantity:    o.Quantity,
				Link:        o.Link,
				Total:       o.Total,
				Status:      o.Status,
				CreatedAt:   o.CreatedAt,
				UpdatedAt:   o.UpdatedAt,
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return state, nil
}

// Restore replaces everything stored with state in one transaction. Users
// referenced only by deposits or orders are created with a zero balance.
func (s *storageImpl) Restore(ctx context.Context, state *State) error {
	return s.Atomic(ctx, func(ctx context.Context) error {
		for _, table := range []string{ordersTable, depositsTable, usersTable} {
			if _, err := s.conn(ctx).ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		now := s.now()
		stamp := func(t time.Time) time.Time {
			if t.IsZero() {
				return now
			}
			return t
		}

		for id, u := range state.Users {
			q, args, err := s.stmpBuilder().
				Insert(usersTable).
				SetMap(map[string]interface{}{
					"id":           id,
					"display_name": u.DisplayName,
					"balance":      u.Balance.String(),
					"created_at":   stamp(u.CreatedAt),
					"updated_at":   stamp(u.UpdatedAt),
				}).
				ToSql()
			if err != nil {
				return fmt.Errorf("build sql query: %w", err)
			}
			if _, err := s.conn(ctx).ExecContext(ctx, q, args...); err != nil {
				return fmt.Errorf("insert user %d: %w", id, err)
			}
		}

		ensureUser := func(id int64) error {
			q, args, err := s.stmpBuilder().
				Insert(usersTable).
				Options("OR IGNORE").
				Columns("id", "created_at", "updated_at").
				Values(id, now, now).
				ToSql()
			if err != nil {
				return fmt.Errorf("build sql query: %w", err)
			}
			_, err = s.conn(ctx).ExecContext(ctx, q, args...)
			return err
		}

		for id, d := range state.Deposits {
			if err := ensureUser(d.UserID); err != nil {
				return fmt.Errorf("ensure user %d: %w", d.UserID, err)
			}
			q, args, err := s.stmpBuilder().
				Insert(depositsTable).
				SetMap(map[string]interface{}{
					"id":         id,
					"user_id":    d.UserID,
					"amount":     d.Amount.String(),
					"currency":   d.Currency,
					"status":     d.Status,
					"created_at": stamp(d.CreatedAt),
					"updated_at": stamp(d.UpdatedAt),
				}).
				ToSql()
			if err != nil {
				return fmt.Errorf("build sql query: %w", err)
			}
			if _, err := s.conn(ctx).ExecContext(ctx, q, args...); err != nil {
				return fmt.Errorf("insert deposit %s: %w", id, err)
			}
		}

		for id, o := range state.Orders {
			if err := ensureUser(o.UserID); err != nil {
				return fmt.Errorf("ensure user %d: %w", o.UserID, err)
			}
			q, args, err := s.stmpBuilder().
				Insert(ordersTable).
				SetMap(map[string]interface{}{
					"id":            id,
					"user_id":       o.UserID,
					"service_id":    o.ServiceID,
					"service_name":  o.ServiceName,
					"price_per_100": o.PricePer100.String(),
					"quantity":      o.Quantity,
					"link":          o.Link,
					"total":         o.Total.String(),
					"status":        o.Status,
					"created_at":    stamp(o.CreatedAt),
					"updated_at":    stamp(o.UpdatedAt),
				}).
				ToSql()
			if err != nil {
				return fmt.Errorf("build sql query: %w", err)
			}
			if _, err := s.conn(ctx).ExecContext(ctx, q, args...); err != nil {
				return fmt.Errorf("insert order %s: %w", id, err)
			}
		}

		return nil
	})
}
