package pendingdeposits

import (
	"context"
	"time"

	"smm-bot/internal/stories/deposits"
	"smm-bot/internal/telegram/messages"
)

type (
	depositLister interface {
		ListAwaitingApproval(ctx context.Context, claimedBefore time.Time) ([]*deposits.Deposit, error)
	}

	adminNotifier interface {
		NotifyAdmin(ctx context.Context, text string, opts messages.Options) error
	}

	localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
