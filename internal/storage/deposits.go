package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"smm-bot/internal/stories/deposits"
)

const depositsTable = "deposits"

var depositRowFields = fields(depositRow{})

type depositRow struct {
	ID        string          `db:"id"`
	UserID    int64           `db:"user_id"`
	Amount    decimal.Decimal `db:"amount"`
	Currency  string          `db:"currency"`
	Status    string          `db:"status"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func (d depositRow) ToModel() *deposits.Deposit {
	return &deposits.Deposit{
		ID:        d.ID,
		UserID:    d.UserID,
		Amount:    d.Amount,
		Currency:  deposits.Currency(d.Currency),
		Status:    deposits.Status(d.Status),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (s *storageImpl) CreateDeposit(ctx context.Context, deposit deposits.Deposit) (*deposits.Deposit, error) {
	now := s.now()
	q, args, err := s.stmpBuilder().
		Insert(depositsTable).
		SetMap(map[string]interface{}{
			"id":         deposit.ID,
			"user_id":    deposit.UserID,
			"amount":     deposit.Amount.String(),
			"currency":   string(deposit.Currency),
			"status":     string(deposit.Status),
			"created_at": now,
			"updated_at": now,
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	if _, err := s.conn(ctx).ExecContext(ctx, q, args...); err != nil {
		return nil, fmt.Errorf("db.ExecContext: %w", err)
	}

	return s.GetDeposit(ctx, deposit.ID)
}

func (s *storageImpl) GetDeposit(ctx context.Context, id string) (*deposits.Deposit, error) {
	q, args, err := s.stmpBuilder().
		Select(depositRowFields).
		From(depositsTable).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var row depositRow
	err = s.conn(ctx).GetContext(ctx, &row, q, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return row.ToModel(), nil
}

func (s *storageImpl) ListDeposits(ctx context.Context, criteria deposits.ListCriteria) ([]*deposits.Deposit, error) {
	query := s.stmpBuilder().
		Select(depositRowFields).
		From(depositsTable)

	if criteria.UpdatedBefore != nil {
		query = query.Where(sq.Lt{"updated_at": *criteria.UpdatedBefore}).
			OrderBy("updated_at DESC", "id DESC")
	} else {
		query = query.OrderBy("created_at DESC", "id DESC")
	}

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

	var rows []depositRow
	if err := s.conn(ctx).SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	result := make([]*deposits.Deposit, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.ToModel())
	}

	return result, nil
}

// TransitionDeposit is a compare-and-set on the deposit status.
func (s *storageImpl) TransitionDeposit(ctx context.Context, id string, from, to deposits.Status) (bool, error) {
	q, args, err := s.stmpBuilder().
		Update(depositsTable).
		Set("status", string(to)).
		Set("updated_at", s.now()).
		Where(sq.Eq{"id": id, "status": string(from)}).
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

	return affected == 1, nil
}
