package support

import (
	"context"
	"log/slog"

	"smm-bot/internal/telegram/actions"
	"smm-bot/internal/telegram/messages"
	"smm-bot/internal/telegram/states"
)

// Handler relays free-text support messages between users and the
// administrator.
type Handler struct {
	notifier     messages.Notifier
	stateManager stateManager
	l10n         localizer
	lang         string
	logger       *slog.Logger
}

func NewHandler(notifier messages.Notifier, sm stateManager, l10n localizer, lang string, logger *slog.Logger) *Handler {
	return &Handler{
		notifier:     notifier,
		stateManager: sm,
		l10n:         l10n,
		lang:         lang,
		logger:       logger,
	}
}

func (h *Handler) Start(ctx context.Context, actorID int64) error {
	h.stateManager.Begin(actorID)
	h.stateManager.Update(actorID, func(s *states.Session) {
		s.Step = states.StepSupportMessage
	})

	return h.notifier.Notify(ctx, actorID, h.t("support.prompt", nil), messages.Options{
		Keyboard: messages.Keyboard{h.menuRow()},
	})
}

// HandleMessage forwards the user's text to the administrator with a Reply control.
func (h *Handler) HandleMessage(ctx context.Context, actorID int64, displayName, text string) error {
	err := h.notifier.NotifyAdmin(ctx, h.t("support.admin_message", map[string]interface{}{
		"name":    displayName,
		"user_id": actorID,
		"text":    text,
	}), messages.Options{
		Keyboard: messages.Keyboard{
			messages.Row(messages.Btn(h.t("support.button_reply", nil), actions.Reply(actorID))),
		},
	})
	if err != nil {
		return err
	}

	h.stateManager.Begin(actorID)
	h.logger.Info("Support message forwarded", "user_id", actorID)

	return h.notifier.Notify(ctx, actorID, h.t("support.sent", nil), messages.Options{
		Keyboard: messages.Keyboard{h.menuRow()},
	})
}

func (h *Handler) StartReply(ctx context.Context, adminID, targetID int64) error {
	h.stateManager.Begin(adminID)
	h.stateManager.Update(adminID, func(s *states.Session) {
		s.Step = states.StepAdminReply
		s.ReplyTarget = targetID
	})

	return h.notifier.Notify(ctx, adminID, h.t("support.reply_prompt", map[string]interface{}{"user_id": targetID}), messages.Options{
		Keyboard: messages.Keyboard{h.menuRow()},
	})
}

// HandleReply delivers the administrator's text to the user being replied to.
func (h *Handler) HandleReply(ctx context.Context, adminID int64, text string) error {
	session := h.stateManager.Get(adminID)
	if session.ReplyTarget == 0 {
		h.stateManager.Begin(adminID)
		return h.notifier.Notify(ctx, adminID, h.t("common.session_expired", nil), messages.Options{})
	}

	err := h.notifier.Notify(ctx, session.ReplyTarget, h.t("support.reply_to_user", map[string]interface{}{"text": text}), messages.Options{})
	if err != nil {
		return err
	}

	h.stateManager.Begin(adminID)
	h.logger.Info("Support reply sent", "user_id", session.ReplyTarget)

	return h.notifier.Notify(ctx, adminID, h.t("support.reply_sent", nil), messages.Options{
		Keyboard: messages.Keyboard{h.menuRow()},
	})
}

func (h *Handler) menuRow() []messages.Button {
	return messages.Row(messages.Btn(h.t("common.button_main_menu", nil), actions.Menu()))
}

func (h *Handler) t(key string, params map[string]interface{}) string {
	return h.l10n.Get(h.lang, key, params)
}
