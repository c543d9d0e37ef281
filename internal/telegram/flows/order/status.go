package order

import (
	"smm-bot/internal/stories/orders"
	"smm-bot/internal/telegram/actions"
	"smm-bot/internal/telegram/messages"
)

var statusByCode = map[string]orders.Status{
	actions.StatusProcessing: orders.StatusProcessing,
	actions.StatusCompleted:  orders.StatusCompleted,
	actions.StatusRejected:   orders.StatusRejected,
}

// StatusKeyboard is the administrator's Processing/Complete/Reject control
// for one order.
func StatusKeyboard(l10n localizer, lang, orderID string) messages.Keyboard {
	return messages.Keyboard{StatusRow(l10n, lang, orderID)}
}

func StatusRow(l10n localizer, lang, orderID string) []messages.Button {
	return messages.Row(
		messages.Btn(l10n.Get(lang, "order.button_processing", nil), actions.SetStatus(actions.StatusProcessing, orderID)),
		messages.Btn(l10n.Get(lang, "order.button_completed", nil), actions.SetStatus(actions.StatusCompleted, orderID)),
		messages.Btn(l10n.Get(lang, "order.button_rejected", nil), actions.SetStatus(actions.StatusRejected, orderID)),
	)
}

func StatusText(l10n localizer, lang string, status orders.Status) string {
	return l10n.Get(lang, "order.status."+string(status), nil)
}
