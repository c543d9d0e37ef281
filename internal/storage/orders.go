package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"smm-bot/internal/stories/orders"
)

const ordersTable = "orders"

var orderRowFields = fields(orderRow{})

type orderRow struct {
	ID          string          `db:"id"`
	UserID      int64           `db:"user_id"`
	ServiceID   string          `db:"service_id"`
	ServiceName string          `db:"service_name"`
	PricePer100 decimal.Decimal `db:"price_per_100"`
	Quantity    int64           `db:"quantity"`
	Link        string          `db:"link"`
	Total       decimal.Decimal `db:"total"`
	Status      string          `db:"status"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (o orderRow) ToModel() *orders.Order {
	return &orders.Order{
		ID:     o.ID,
		UserID: o.UserID,
		Service: orders.ServiceRef{
			ID:          o.ServiceID,
			Name:        o.ServiceName,
			PricePer100: o.PricePer100,
		},
		Quantity:  o.Quantity,
		Link:      o.Link,
		Total:     o.Total,
		Status:    orders.Status(o.Status),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func (s *storageImpl) CreateOrder(ctx context.Context, order orders.Order) (*orders.Order, error) {
	now := s.now()
	q, args, err := s.stmpBuilder().
		Insert(ordersTable).
		SetMap(map[string]interface{}{
			"id":            order.ID,
			"user_id":       order.UserID,
			"service_id":    order.Service.ID,
			"service_name":  order.Service.Name,
			"price_per_100": order.Service.PricePer100.String(),
			"quantity":      order.Quantity,
			"link":          order.Link,
			"total":         order.Total.String(),
			"status":        string(order.Status),
			"created_at":    now,
			"updated_at":    now,
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	if _, err := s.conn(ctx).ExecContext(ctx, q, args...); err != nil {
		return nil, fmt.Errorf("db.ExecContext: %w", err)
	}

	return s.GetOrder(ctx, order.ID)
}

func (s *storageImpl) GetOrder(ctx context.Context, id string) (*orders.Order, error) {
	q, args, err := s.stmpBuilder().
		Select(orderRowFields).
		From(ordersTable).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var row orderRow
	err = s.conn(ctx).GetContext(ctx, &row, q, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return row.ToModel(), nil
}

func (s *storageImpl) ListOrders(ctx context.Context, criteria orders.ListCriteria) ([]*orders.Order, error) {
	query := s.stmpBuilder().
		Select(orderRowFields).
		From(ordersTable).
		OrderBy("created_at DESC", "id DESC")

	if criteria.UserID != nil {
		query = query.Where(sq.Eq{"user_id": *criteria.UserID})
	}
	if criteria.Status != nil {
		query = query.Where(sq.Eq{"status": string(*criteria.Status)})
	}
	if criteria.Limit > 0 {
		query = query.Limit(uint64(criteria.Limit))
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []orderRow
	if err := s.conn(ctx).SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	result := make([]*orders.Order, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.ToModel())
	}

	return result, nil
}

func (s *storageImpl) UpdateOrderStatus(ctx context.Context, id string, status orders.Status) (bool, error) {
	q, args, err := s.stmpBuilder().
		Update(ordersTable).
		Set("status", string(status)).
		Set("updated_at", s.now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build sql query: %w", err)
	}

	result, err := s.conn(ctx).ExecContext(ctx, q, args...)
	if err != nil {
		return false, fmt.Errorf("db.ExecContext: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("result.RowsAffected: %w", err)
	}

	return affected > 0, nil
}
