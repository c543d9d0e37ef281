package deposit

import (
	"context"

	"github.com/shopspring/decimal"

	"smm-bot/internal/stories/deposits"
	"smm-bot/internal/telegram/states"
)

type (
	stateManager interface {
		Begin(actorID int64)
		Get(actorID int64) states.Session
		SetStep(actorID int64, step states.Step)
		Update(actorID int64, fn func(s *states.Session))
	}

	depositService interface {
		MinimumDeposit() decimal.Decimal
		ValidateAmount(amount decimal.Decimal) error
		Submit(ctx context.Context, userID int64, amount decimal.Decimal, currency deposits.Currency) (*deposits.Submission, error)
		ClaimPaid(ctx context.Context, depositID string, actorID int64) (*deposits.Deposit, error)
		Approve(ctx context.Context, depositID string) (*deposits.Resolution, error)
		Reject(ctx context.Context, depositID string) (*deposits.Resolution, error)
	}

	localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
