package pendingdeposits

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"smm-bot/internal/localization"
	"smm-bot/internal/stories/deposits"
	"smm-bot/internal/telegram/actions"
	"smm-bot/internal/telegram/messages"
)

type fakeLister struct {
	deposits []*deposits.Deposit
	err      error
	cutoff   time.Time
}

func (f *fakeLister) ListAwaitingApproval(_ context.Context, claimedBefore time.Time) ([]*deposits.Deposit, error) {
	f.cutoff = claimedBefore
	return f.deposits, f.err
}

type sentMessage struct {
	text string
	opts messages.Options
}

type fakeNotifier struct {
	sent []sentMessage
}

func (f *fakeNotifier) NotifyAdmin(_ context.Context, text string, opts messages.Options) error {
	f.sent = append(f.sent, sentMessage{text: text, opts: opts})
	return nil
}

func newTestWorker(t *testing.T, lister *fakeLister, notifier *fakeNotifier, now time.Time) *Worker {
	t.Helper()
	l10n, err := localization.NewService("en")
	require.NoError(t, err)

	w := NewWorker(lister, notifier, l10n, "en", "*/5 * * * *", 30*time.Minute, slog.Default())
	w.now = func() time.Time { return now }
	return w
}

func TestRunRemindsWithControls(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	lister := &fakeLister{deposits: []*deposits.Deposit{{
		ID:        "D01",
		UserID:    7,
		Amount:    decimal.NewFromInt(50),
		Currency:  deposits.CurrencyUSDT,
		Status:    deposits.StatusWaitingApproval,
		CreatedAt: now.Add(-48 * time.Hour),
		UpdatedAt: now.Add(-2 * time.Hour),
	}}}
	notifier := &fakeNotifier{}

	require.NoError(t, newTestWorker(t, lister, notifier, now).run(context.Background()))

	require.Equal(t, now.Add(-30*time.Minute), lister.cutoff)
	require.Len(t, notifier.sent, 2)
	require.Contains(t, notifier.sent[0].text, "waiting for approval")

	item := notifier.sent[1]
	require.Contains(t, item.text, "User 7 | $50 | USDT | since 2024-05-01 10:00 UTC")
	require.Equal(t, actions.Approve("D01"), item.opts.Keyboard[0][0].Action)
	require.Equal(t, actions.Reject("D01"), item.opts.Keyboard[0][1].Action)
}

func TestRunWithNothingPendingIsQuiet(t *testing.T) {
	notifier := &fakeNotifier{}

	require.NoError(t, newTestWorker(t, &fakeLister{}, notifier, time.Now()).run(context.Background()))

	require.Empty(t, notifier.sent)
}

func TestRunCapsDigestAtOldest(t *testing.T) {
	now := time.Now()
	lister := &fakeLister{}
	for i := 0; i < digestLimit+5; i++ {
		lister.deposits = append(lister.deposits, &deposits.Deposit{
			ID:        fmt.Sprintf("D%02d", i),
			Amount:    decimal.NewFromInt(10),
			Currency:  deposits.CurrencyBTC,
			UpdatedAt: now.Add(-time.Duration(i+1) * time.Hour),
		})
	}
	notifier := &fakeNotifier{}

	require.NoError(t, newTestWorker(t, lister, notifier, now).run(context.Background()))

	require.Len(t, notifier.sent, digestLimit+1)
	require.Equal(t, "D05", notifier.sent[1].opts.Keyboard[0][0].Action.ID)
	require.Equal(t, fmt.Sprintf("D%02d", digestLimit+4), notifier.sent[digestLimit].opts.Keyboard[0][0].Action.ID)
}

func TestRunPropagatesListError(t *testing.T) {
	boom := errors.New("database is locked")

	err := newTestWorker(t, &fakeLister{err: boom}, &fakeNotifier{}, time.Now()).run(context.Background())

	require.ErrorIs(t, err, boom)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	l10n, err := localization.NewService("en")
	require.NoError(t, err)
	w := NewWorker(&fakeLister{}, &fakeNotifier{}, l10n, "en", "not a schedule", time.Minute, slog.Default())

	require.Error(t, w.Start())
}
