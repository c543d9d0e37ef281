package cmds

import (
	"context"
	"fmt"
	"strings"

	"smm-bot/internal/stories/deposits"
	"smm-bot/internal/stories/orders"
	"smm-bot/internal/telegram/actions"
	"smm-bot/internal/telegram/flows/order"
	"smm-bot/internal/telegram/messages"
)

const (
	adminUsersLimit    = 50
	adminDepositsLimit = 30
	adminOrdersLimit   = 10
)

// AdminCommand renders the administrator dashboard and its listings.
type AdminCommand struct {
	notifier messages.Notifier
	users    userService
	deposits depositLister
	orders   orderLister
	l10n     localizer
	lang     string
}

func NewAdminCommand(
	notifier messages.Notifier,
	users userService,
	deposits depositLister,
	orders orderLister,
	l10n localizer,
	lang string,
) *AdminCommand {
	return &AdminCommand{
		notifier: notifier,
		users:    users,
		deposits: deposits,
		orders:   orders,
		l10n:     l10n,
		lang:     lang,
	}
}

func (c *AdminCommand) Dashboard(ctx context.Context, adminID int64) error {
	keyboard := messages.Column(
		messages.Btn(c.t("admin.button_users", nil), actions.AdminUsers()),
		messages.Btn(c.t("admin.button_orders", nil), actions.AdminOrders()),
		messages.Btn(c.t("admin.button_deposits", nil), actions.AdminDeposits()),
	)
	keyboard = append(keyboard, c.menuRow())

	return c.notifier.Notify(ctx, adminID, c.t("admin.dashboard", nil), messages.Options{Keyboard: keyboard})
}

func (c *AdminCommand) Users(ctx context.Context, adminID int64) error {
	list, err := c.users.ListUsers(ctx, adminUsersLimit)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	lines := []string{c.t("admin.users_title", nil)}
	for _, u := range list {
		lines = append(lines, c.t("admin.user_item", map[string]interface{}{
			"user_id": u.ID,
			"name":    u.DisplayName,
			"balance": messages.Money(u.Balance),
		}))
	}

	return c.send(ctx, adminID, lines, messages.Keyboard{c.menuRow()})
}

func (c *AdminCommand) Deposits(ctx context.Context, adminID int64) error {
	list, err := c.deposits.ListDeposits(ctx, deposits.ListCriteria{Limit: adminDepositsLimit})
	if err != nil {
		return fmt.Errorf("list deposits: %w", err)
	}

	lines := []string{c.t("admin.deposits_title", nil)}
	for _, d := range list {
		lines = append(lines, c.t("admin.deposit_item", map[string]interface{}{
			"deposit_id": d.ID,
			"user_id":    d.UserID,
			"amount":     d.Amount.String(),
			"currency":   string(d.Currency),
			"status":     string(d.Status),
		}))
	}

	return c.send(ctx, adminID, lines, messages.Keyboard{c.menuRow()})
}

// Orders lists recent orders, each with its own row of status controls.
func (c *AdminCommand) Orders(ctx context.Context, adminID int64) error {
	list, err := c.orders.List(ctx, orders.ListCriteria{Limit: adminOrdersLimit})
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}

	if len(list) == 0 {
		return c.notifier.Notify(ctx, adminID, c.t("order.none", nil), messages.Options{
			Keyboard: messages.Keyboard{c.menuRow()},
		})
	}

	lines := []string{c.t("admin.orders_title", nil)}
	var keyboard messages.Keyboard
	for _, o := range list {
		lines = append(lines, c.t("admin.order_item", map[string]interface{}{
			"order_id": o.ID,
			"user_id":  o.UserID,
			"service":  o.Service.Name,
			"quantity": o.Quantity,
			"status":   order.StatusText(c.l10n, c.lang, o.Status),
		})+"\n")
		keyboard = append(keyboard, order.StatusRow(c.l10n, c.lang, o.ID))
	}
	keyboard = append(keyboard, c.menuRow())

	return c.send(ctx, adminID, lines, keyboard)
}

func (c *AdminCommand) send(ctx context.Context, adminID int64, lines []string, keyboard messages.Keyboard) error {
	if len(lines) == 1 {
		lines = append(lines, c.t("admin.empty", nil))
	}
	return c.notifier.Notify(ctx, adminID, strings.Join(lines, "\n"), messages.Options{Keyboard: keyboard})
}

func (c *AdminCommand) menuRow() []messages.Button {
	return messages.Row(messages.Btn(c.t("common.button_main_menu", nil), actions.Menu()))
}

func (c *AdminCommand) t(key string, params map[string]interface{}) string {
	return c.l10n.Get(c.lang, key, params)
}
