package deposits

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"smm-bot/internal/apperr"
	"smm-bot/internal/stories/ledger"
)

var tracer = otel.Tracer("smm-bot/deposits")

// Service drives the deposit lifecycle:
// pending -> waiting_approval -> approved | rejected.
type Service struct {
	storage        Storage
	ledger         Ledger
	addresses      AddressBook
	ids            idGenerator
	minimumDeposit decimal.Decimal
	logger         *slog.Logger
}

func NewService(
	storage Storage,
	ledger Ledger,
	addresses AddressBook,
	ids idGenerator,
	minimumDeposit decimal.Decimal,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:        storage,
		ledger:         ledger,
		addresses:      addresses,
		ids:            ids,
		minimumDeposit: minimumDeposit,
		logger:         logger,
	}
}

func (s *Service) MinimumDeposit() decimal.Decimal {
	return s.minimumDeposit
}

// ValidateAmount checks a user-entered amount against the minimum.
func (s *Service) ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThan(s.minimumDeposit) {
		return fmt.Errorf("%w: amount %s is below the minimum %s", apperr.ErrValidation, amount, s.minimumDeposit)
	}
	return nil
}

// Submit records a new pending deposit and returns the address to pay into.
func (s *Service) Submit(ctx context.Context, userID int64, amount decimal.Decimal, currency Currency) (*Submission, error) {
	ctx, span := tracer.Start(ctx, "deposits.Submit", trace.WithAttributes(attribute.Int64("user_id", userID)))
	defer span.End()

	if err := s.ValidateAmount(amount); err != nil {
		return nil, err
	}
	address, ok := s.addresses.Address(currency)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported currency %q", apperr.ErrValidation, currency)
	}

	// The actor may never have sent /start.
	var deposit *Deposit
	err := s.storage.Atomic(ctx, func(ctx context.Context) error {
		if err := s.storage.EnsureUser(ctx, userID); err != nil {
			return fmt.Errorf("ensure user: %w", err)
		}

		created, err := s.storage.CreateDeposit(ctx, Deposit{
			ID:       s.ids.NewDepositID(),
			UserID:   userID,
			Amount:   amount,
			Currency: currency,
			Status:   StatusPending,
		})
		if err != nil {
			return fmt.Errorf("create deposit: %w", err)
		}
		deposit = created
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create deposit", "error", err, "user_id", userID)
		return nil, err
	}

	s.logger.Info("Deposit submitted",
		"deposit_id", deposit.ID,
		"user_id", userID,
		"amount", amount.String(),
		"currency", currency,
	)

	return &Submission{Deposit: deposit, Address: address}, nil
}

// ClaimPaid records the user's unverified assertion that the funds were sent.
func (s *Service) ClaimPaid(ctx context.Context, depositID string, actorID int64) (*Deposit, error) {
	ctx, span := tracer.Start(ctx, "deposits.ClaimPaid", trace.WithAttributes(attribute.String("deposit_id", depositID)))
	defer span.End()

	var claimed *Deposit
	err := s.storage.Atomic(ctx, func(ctx context.Context) error {
		deposit, err := s.storage.GetDeposit(ctx, depositID)
		if err != nil {
			return fmt.Errorf("get deposit: %w", err)
		}
		if deposit == nil {
			return fmt.Errorf("%w: deposit %s", apperr.ErrNotFound, depositID)
		}
		if deposit.UserID != actorID {
			return fmt.Errorf("%w: deposit %s belongs to another user", apperr.ErrForbidden, depositID)
		}
		if deposit.Status != StatusPending {
			return fmt.Errorf("%w: deposit %s is %s", apperr.ErrStateConflict, depositID, deposit.Status)
		}

		ok, err := s.storage.TransitionDeposit(ctx, depositID, StatusPending, StatusWaitingApproval)
		if err != nil {
			return fmt.Errorf("transition deposit: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: deposit %s changed concurrently", apperr.ErrStateConflict, depositID)
		}

		deposit.Status = StatusWaitingApproval
		claimed = deposit
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Deposit marked as paid", "deposit_id", depositID, "user_id", actorID)
	return claimed, nil
}

// Approve credits the deposit amount and marks it approved in one commit.
// Anything but waiting_approval yields apperr.ErrStateConflict.
func (s *Service) Approve(ctx context.Context, depositID string) (*Resolution, error) {
	ctx, span := tracer.Start(ctx, "deposits.Approve", trace.WithAttributes(attribute.String("deposit_id", depositID)))
	defer span.End()

	deposit, err := s.storage.GetDeposit(ctx, depositID)
	if err != nil {
		return nil, fmt.Errorf("get deposit: %w", err)
	}
	if deposit == nil {
		return nil, fmt.Errorf("%w: deposit %s", apperr.ErrNotFound, depositID)
	}

	var balance decimal.Decimal
	err = s.ledger.Transact(ctx, deposit.UserID, func(ctx context.Context, acc *ledger.Account) error {
		ok, err := s.storage.TransitionDeposit(ctx, depositID, StatusWaitingApproval, StatusApproved)
		if err != nil {
			return fmt.Errorf("transition deposit: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: deposit %s is not awaiting approval", apperr.ErrStateConflict, depositID)
		}
		if err := acc.Credit(deposit.Amount); err != nil {
			return err
		}
		balance = acc.Balance()
		return nil
	})
	if err != nil {
		return nil, err
	}

	deposit.Status = StatusApproved
	s.logger.Info("Deposit approved",
		"deposit_id", depositID,
		"user_id", deposit.UserID,
		"amount", deposit.Amount.String(),
		"balance", balance.String(),
	)

	return &Resolution{Deposit: deposit, NewBalance: balance}, nil
}

// Reject marks a deposit awaiting approval as rejected. The ledger is untouched.
func (s *Service) Reject(ctx context.Context, depositID string) (*Resolution, error) {
	ctx, span := tracer.Start(ctx, "deposits.Reject", trace.WithAttributes(attribute.String("deposit_id", depositID)))
	defer span.End()

	var rejected *Deposit
	err := s.storage.Atomic(ctx, func(ctx context.Context) error {
		deposit, err := s.storage.GetDeposit(ctx, depositID)
		if err != nil {
			return fmt.Errorf("get deposit: %w", err)
		}
		if deposit == nil {
			return fmt.Errorf("%w: deposit %s", apperr.ErrNotFound, depositID)
		}

		ok, err := s.storage.TransitionDeposit(ctx, depositID, StatusWaitingApproval, StatusRejected)
		if err != nil {
			return fmt.Errorf("transition deposit: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: deposit %s is not awaiting approval", apperr.ErrStateConflict, depositID)
		}

		deposit.Status = StatusRejected
		rejected = deposit
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Deposit rejected", "deposit_id", depositID, "user_id", rejected.UserID)
	return &Resolution{Deposit: rejected}, nil
}

func (s *Service) GetDeposit(ctx context.Context, id string) (*Deposit, error) {
	return s.storage.GetDeposit(ctx, id)
}

func (s *Service) ListDeposits(ctx context.Context, criteria ListCriteria) ([]*Deposit, error) {
	return s.storage.ListDeposits(ctx, criteria)
}

// ListAwaitingApproval returns deposits claimed as paid before the cutoff,
// oldest claims last. A waiting deposit's updated_at is its claim time.
func (s *Service) ListAwaitingApproval(ctx context.Context, claimedBefore time.Time) ([]*Deposit, error) {
	status := StatusWaitingApproval
	return s.storage.ListDeposits(ctx, ListCriteria{Status: &status, UpdatedBefore: &claimedBefore})
}
