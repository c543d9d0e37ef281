// Package messages describes what the bot sends: text plus an optional
// inline keyboard of action tokens, delivered through a Notifier.
package messages

import (
	"context"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"smm-bot/internal/telegram/actions"
)

type Button struct {
	Text   string
	Action actions.Action
}

type Keyboard [][]Button

type Options struct {
	Keyboard Keyboard
	// ReplaceMessageID edits that message instead of sending a new one.
	ReplaceMessageID int
	// HTML marks text as Telegram HTML. Interpolated user input must be escaped.
	HTML bool
}

// Notifier delivers outbound messages. NotifyAdmin always targets the single
// administrator. Ack answers a button press; an alert is shown as a popup.
type Notifier interface {
	Notify(ctx context.Context, actorID int64, text string, opts Options) error
	NotifyAdmin(ctx context.Context, text string, opts Options) error
	Ack(ctx context.Context, callbackID, text string, alert bool) error
}

func Btn(text string, action actions.Action) Button {
	return Button{Text: text, Action: action}
}

func Row(buttons ...Button) []Button {
	return buttons
}

// Column puts each button on its own row.
func Column(buttons ...Button) Keyboard {
	return lo.Map(buttons, func(b Button, _ int) []Button {
		return []Button{b}
	})
}

// Chunk lays buttons out in rows of at most size.
func Chunk(buttons []Button, size int) Keyboard {
	return lo.Chunk(buttons, size)
}

// Money renders an amount truncated to cents.
func Money(d decimal.Decimal) string {
	return d.Truncate(2).StringFixed(2)
}
