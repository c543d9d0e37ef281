package cmds

import (
	"context"
	"fmt"
	"strings"

	"smm-bot/internal/telegram/actions"
	"smm-bot/internal/telegram/flows/order"
	"smm-bot/internal/telegram/messages"
)

const myOrdersLimit = 20

type MyOrdersCommand struct {
	notifier messages.Notifier
	orders   orderLister
	l10n     localizer
	lang     string
}

func NewMyOrdersCommand(notifier messages.Notifier, orders orderLister, l10n localizer, lang string) *MyOrdersCommand {
	return &MyOrdersCommand{
		notifier: notifier,
		orders:   orders,
		l10n:     l10n,
		lang:     lang,
	}
}

func (c *MyOrdersCommand) Execute(ctx context.Context, actorID int64) error {
	list, err := c.orders.ListByUser(ctx, actorID, myOrdersLimit)
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}

	opts := messages.Options{Keyboard: messages.Keyboard{
		messages.Row(messages.Btn(c.l10n.Get(c.lang, "common.button_main_menu", nil), actions.Menu())),
	}}

	if len(list) == 0 {
		return c.notifier.Notify(ctx, actorID, c.l10n.Get(c.lang, "order.none", nil), opts)
	}

	lines := make([]string, 0, len(list))
	for _, o := range list {
		lines = append(lines, c.l10n.Get(c.lang, "order.item", map[string]interface{}{
			"service":  o.Service.Name,
			"quantity": o.Quantity,
			"total":    messages.Money(o.Total),
			"status":   order.StatusText(c.l10n, c.lang, o.Status),
		}))
	}

	return c.notifier.Notify(ctx, actorID, strings.Join(lines, "\n"), opts)
}
