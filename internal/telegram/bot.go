package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"smm-bot/internal/telegram/messages"
)

type botAPI interface {
	Send(ctx context.Context, c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(ctx context.Context, c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot implements messages.Notifier on top of the Bot API. Actor ids are
// private chat ids.
type Bot struct {
	api     botAPI
	adminID int64
}

func NewBot(api botAPI, adminID int64) *Bot {
	return &Bot{
		api:     api,
		adminID: adminID,
	}
}

func (b *Bot) Notify(ctx context.Context, actorID int64, text string, opts messages.Options) error {
	markup := inlineKeyboard(opts.Keyboard)
	parseMode := ""
	if opts.HTML {
		parseMode = tgbotapi.ModeHTML
	}

	if opts.ReplaceMessageID != 0 {
		edit := tgbotapi.NewEditMessageText(actorID, opts.ReplaceMessageID, text)
		edit.ParseMode = parseMode
		edit.ReplyMarkup = markup
		_, err := b.api.Send(ctx, edit)
		return err
	}

	msg := tgbotapi.NewMessage(actorID, text)
	msg.ParseMode = parseMode
	msg.DisableWebPagePreview = true
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	_, err := b.api.Send(ctx, msg)
	return err
}

func (b *Bot) NotifyAdmin(ctx context.Context, text string, opts messages.Options) error {
	if b.adminID == 0 {
		return errors.New("administrator is not configured")
	}
	return b.Notify(ctx, b.adminID, text, opts)
}

func (b *Bot) Ack(ctx context.Context, callbackID, text string, alert bool) error {
	cfg := tgbotapi.NewCallback(callbackID, text)
	if alert {
		cfg = tgbotapi.NewCallbackWithAlert(callbackID, text)
	}
	_, err := b.api.Request(ctx, cfg)
	return err
}

// SetupCommands publishes /start and /menu in the client's command menu.
func (b *Bot) SetupCommands(ctx context.Context, l10n localizer, lang string) error {
	cfg := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: l10n.Get(lang, "menu.command_start", nil)},
		tgbotapi.BotCommand{Command: "menu", Description: l10n.Get(lang, "menu.command_menu", nil)},
	)
	_, err := b.api.Request(ctx, cfg)
	return err
}

func inlineKeyboard(keyboard messages.Keyboard) *tgbotapi.InlineKeyboardMarkup {
	if len(keyboard) == 0 {
		return nil
	}

	rows := lo.Map(keyboard, func(row []messages.Button, _ int) []tgbotapi.InlineKeyboardButton {
		return lo.Map(row, func(btn messages.Button, _ int) tgbotapi.InlineKeyboardButton {
			return tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Action.Encode())
		})
	})
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

// EventFromUpdate converts an update into an Event. Updates the bot does not
// react to, including commands other than /start and /menu, yield false.
func EventFromUpdate(update tgbotapi.Update) (Event, bool) {
	if q := update.CallbackQuery; q != nil && q.From != nil {
		ev := ActionEvent{
			ActorID:    q.From.ID,
			Token:      q.Data,
			CallbackID: q.ID,
		}
		if q.Message != nil {
			ev.MessageID = q.Message.MessageID
		}
		return ev, true
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil || !msg.Chat.IsPrivate() {
		return nil, false
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "menu":
			return StartEvent{ActorID: msg.From.ID, DisplayName: displayName(msg.From)}, true
		}
		return nil, false
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return nil, false
	}
	return TextEvent{ActorID: msg.From.ID, DisplayName: displayName(msg.From), Text: text}, true
}

func displayName(u *tgbotapi.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.UserName
	}
	return name
}
