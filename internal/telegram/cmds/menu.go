package cmds

import (
	"context"
	"fmt"
	"log/slog"

	"smm-bot/internal/telegram/actions"
	"smm-bot/internal/telegram/messages"
)

// MenuCommand registers actors and shows the main menu.
type MenuCommand struct {
	notifier     messages.Notifier
	stateManager stateManager
	users        userService
	ledger       balanceReader
	adminChecker adminChecker
	l10n         localizer
	lang         string
	logger       *slog.Logger
}

func NewMenuCommand(
	notifier messages.Notifier,
	sm stateManager,
	users userService,
	ledger balanceReader,
	adminChecker adminChecker,
	l10n localizer,
	lang string,
	logger *slog.Logger,
) *MenuCommand {
	return &MenuCommand{
		notifier:     notifier,
		stateManager: sm,
		users:        users,
		ledger:       ledger,
		adminChecker: adminChecker,
		l10n:         l10n,
		lang:         lang,
		logger:       logger,
	}
}

// Start registers the actor on first contact, telling the administrator, and
// shows the menu.
func (c *MenuCommand) Start(ctx context.Context, actorID int64, displayName string) error {
	_, created, err := c.users.Register(ctx, actorID, displayName)
	if err != nil {
		return fmt.Errorf("register user: %w", err)
	}

	if created {
		c.logger.Info("New user registered", "user_id", actorID)
		text := c.l10n.Get(c.lang, "menu.admin_new_user", map[string]interface{}{
			"name":    displayName,
			"user_id": actorID,
		})
		if err := c.notifier.NotifyAdmin(ctx, text, messages.Options{}); err != nil {
			c.logger.Warn("Failed to notify admin about new user", "error", err, "user_id", actorID)
		}
	}

	return c.Show(ctx, actorID)
}

// Show resets the actor's session and renders the menu with the balance.
func (c *MenuCommand) Show(ctx context.Context, actorID int64) error {
	c.stateManager.Begin(actorID)

	balance, err := c.ledger.BalanceOf(ctx, actorID)
	if err != nil {
		return fmt.Errorf("get balance: %w", err)
	}

	keyboard := messages.Keyboard{
		messages.Row(
			messages.Btn(c.l10n.Get(c.lang, "menu.button_deposit", nil), actions.Deposit()),
			messages.Btn(c.l10n.Get(c.lang, "menu.button_services", nil), actions.Services()),
		),
		messages.Row(
			messages.Btn(c.l10n.Get(c.lang, "menu.button_orders", nil), actions.MyOrders()),
			messages.Btn(c.l10n.Get(c.lang, "menu.button_support", nil), actions.Support()),
		),
	}
	if c.adminChecker.IsAdmin(actorID) {
		keyboard = append(keyboard, messages.Row(
			messages.Btn(c.l10n.Get(c.lang, "menu.button_admin", nil), actions.Admin()),
		))
	}

	text := c.l10n.Get(c.lang, "menu.text", map[string]interface{}{"balance": messages.Money(balance)})
	return c.notifier.Notify(ctx, actorID, text, messages.Options{Keyboard: keyboard})
}
