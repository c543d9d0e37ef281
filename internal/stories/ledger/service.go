package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("smm-bot/ledger")

// Service is the authoritative store of spendable balances. All mutations for
// one user are serialized by a per-user lock; different users proceed in
// parallel. The lock is always taken before the storage transaction opens.
type Service struct {
	storage Storage
	locks   *userLocks
	logger  *slog.Logger
}

func NewService(storage Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		locks:   newUserLocks(),
		logger:  logger,
	}
}

// Transact runs fn against the user's account under the user's lock and inside
// one storage transaction. Anything else fn writes through ctx commits or
// rolls back together with the balance.
func (s *Service) Transact(ctx context.Context, userID int64, fn func(ctx context.Context, acc *Account) error) error {
	ctx, span := tracer.Start(ctx, "ledger.Transact", trace.WithAttributes(attribute.Int64("user_id", userID)))
	defer span.End()

	unlock := s.locks.lock(userID)
	defer unlock()

	return s.storage.Atomic(ctx, func(ctx context.Context) error {
		balance, err := s.storage.GetBalance(ctx, userID)
		if err != nil {
			return fmt.Errorf("get balance: %w", err)
		}

		acc := &Account{UserID: userID, balance: balance}
		if err := fn(ctx, acc); err != nil {
			return err
		}

		if !acc.changed {
			return nil
		}
		if acc.balance.IsNegative() {
			return fmt.Errorf("balance of user %d would become negative: %s", userID, acc.balance)
		}
		if err := s.storage.SetBalance(ctx, userID, acc.balance); err != nil {
			return fmt.Errorf("set balance: %w", err)
		}

		s.logger.Debug("Balance updated",
			"user_id", userID,
			"old_balance", balance.String(),
			"new_balance", acc.balance.String(),
		)
		return nil
	})
}

// Credit adds amount to the user's balance and returns the new balance.
func (s *Service) Credit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.Transact(ctx, userID, func(_ context.Context, acc *Account) error {
		if err := acc.Credit(amount); err != nil {
			return err
		}
		balance = acc.Balance()
		return nil
	})
	return balance, err
}

// Debit subtracts amount from the user's balance, failing with
// apperr.ErrInsufficientFunds when the balance does not cover it.
func (s *Service) Debit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.Transact(ctx, userID, func(_ context.Context, acc *Account) error {
		if err := acc.Debit(amount); err != nil {
			return err
		}
		balance = acc.Balance()
		return nil
	})
	return balance, err
}

// BalanceOf returns a read-only snapshot of the user's balance.
func (s *Service) BalanceOf(ctx context.Context, userID int64) (decimal.Decimal, error) {
	balance, err := s.storage.GetBalance(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}
