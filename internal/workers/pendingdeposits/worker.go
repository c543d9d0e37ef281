package pendingdeposits

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"smm-bot/internal/stories/deposits"
	"smm-bot/internal/telegram/actions"
	"smm-bot/internal/telegram/messages"
)

// digestLimit caps how many deposits one run reports.
const digestLimit = 20

// Worker reminds the administrator of claimed deposits that have waited for
// approval longer than minAge. It only sends messages.
type Worker struct {
	deposits depositLister
	notifier adminNotifier
	l10n     localizer
	lang     string
	schedule string
	minAge   time.Duration
	now      func() time.Time
	logger   *slog.Logger
	cron     *cron.Cron
}

func NewWorker(
	deposits depositLister,
	notifier adminNotifier,
	l10n localizer,
	lang string,
	schedule string,
	minAge time.Duration,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		deposits: deposits,
		notifier: notifier,
		l10n:     l10n,
		lang:     lang,
		schedule: schedule,
		minAge:   minAge,
		now:      time.Now,
		logger:   logger,
		cron:     cron.New(),
	}
}

func (w *Worker) Name() string {
	return "pending_deposits"
}

func (w *Worker) Start() error {
	_, err := w.cron.AddFunc(w.schedule, func() {
		ctx := context.Background()
		if err := w.run(ctx); err != nil {
			w.logger.Error("Pending deposits worker failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule pending deposits worker: %w", err)
	}

	w.cron.Start()
	return nil
}

func (w *Worker) Stop() {
	<-w.cron.Stop().Done()
}

// run sends a title followed by one message per deposit so that resolving
// one deposit edits only its own message.
func (w *Worker) run(ctx context.Context) error {
	pending, err := w.deposits.ListAwaitingApproval(ctx, w.now().Add(-w.minAge))
	if err != nil {
		return fmt.Errorf("list deposits awaiting approval: %w", err)
	}
	if len(pending) == 0 {
		w.logger.Debug("No deposits awaiting approval")
		return nil
	}

	w.logger.Info("Reminding admin of deposits awaiting approval", "count", len(pending))

	if err := w.notifier.NotifyAdmin(ctx, w.l10n.Get(w.lang, "deposit.digest_title", nil), messages.Options{}); err != nil {
		return fmt.Errorf("notify admin: %w", err)
	}

	// Newest first; the oldest claims are the ones worth reporting.
	if len(pending) > digestLimit {
		pending = pending[len(pending)-digestLimit:]
	}
	for _, d := range pending {
		if err := w.notifier.NotifyAdmin(ctx, w.itemText(d), messages.Options{Keyboard: w.controls(d.ID)}); err != nil {
			w.logger.Warn("Failed to send deposit reminder", "deposit_id", d.ID, "error", err)
		}
	}

	return nil
}

func (w *Worker) itemText(d *deposits.Deposit) string {
	return w.l10n.Get(w.lang, "deposit.digest_item", map[string]interface{}{
		"deposit_id": d.ID,
		"user_id":    d.UserID,
		"amount":     d.Amount.String(),
		"currency":   string(d.Currency),
		"since":      d.UpdatedAt.UTC().Format("2006-01-02 15:04 UTC"),
	})
}

func (w *Worker) controls(depositID string) messages.Keyboard {
	return messages.Keyboard{messages.Row(
		messages.Btn(w.l10n.Get(w.lang, "deposit.button_approve", nil), actions.Approve(depositID)),
		messages.Btn(w.l10n.Get(w.lang, "deposit.button_reject", nil), actions.Reject(depositID)),
	)}
}
