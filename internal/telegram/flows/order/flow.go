package order

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"smm-bot/internal/apperr"
	"smm-bot/internal/metrics"
	"smm-bot/internal/stories/catalog"
	"smm-bot/internal/stories/orders"
	"smm-bot/internal/telegram/actions"
	"smm-bot/internal/telegram/messages"
	"smm-bot/internal/telegram/states"
)

type Handler struct {
	notifier     messages.Notifier
	stateManager stateManager
	orders       orderService
	catalog      catalogReader
	ledger       balanceReader
	l10n         localizer
	lang         string
	logger       *slog.Logger
}

func NewHandler(
	notifier messages.Notifier,
	sm stateManager,
	osvc orderService,
	cat catalogReader,
	ledger balanceReader,
	l10n localizer,
	lang string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		notifier:     notifier,
		stateManager: sm,
		orders:       osvc,
		catalog:      cat,
		ledger:       ledger,
		l10n:         l10n,
		lang:         lang,
		logger:       logger,
	}
}

// ShowPlatforms discards any flow in progress and starts catalog browsing.
func (h *Handler) ShowPlatforms(ctx context.Context, actorID int64) error {
	h.stateManager.Begin(actorID)

	buttons := lo.Map(h.catalog.Platforms(), func(p string, _ int) messages.Button {
		return messages.Btn(p, actions.Platform(p))
	})
	keyboard := append(messages.Column(buttons...), h.menuRow())

	return h.notifier.Notify(ctx, actorID, h.t("services.select_platform", nil), messages.Options{Keyboard: keyboard})
}

func (h *Handler) ShowCategories(ctx context.Context, actorID int64, platform string) error {
	categories, ok := h.catalog.Categories(platform)
	if !ok {
		return h.notify(ctx, actorID, h.t("services.not_found", nil), h.menuRow())
	}
	if len(categories) == 0 {
		return h.notify(ctx, actorID, h.t("services.no_categories", nil), h.menuRow())
	}

	buttons := lo.Map(categories, func(c string, _ int) messages.Button {
		return messages.Btn(c, actions.Category(platform, c))
	})
	keyboard := append(messages.Column(buttons...), h.menuRow())

	return h.notifier.Notify(ctx, actorID, h.t("services.select_category", nil), messages.Options{Keyboard: keyboard})
}

func (h *Handler) ShowServices(ctx context.Context, actorID int64, platform, category string) error {
	services, ok := h.catalog.Services(platform, category)
	if !ok {
		return h.notify(ctx, actorID, h.t("services.not_found", nil), h.menuRow())
	}
	if len(services) == 0 {
		return h.notify(ctx, actorID, h.t("services.no_services", nil), h.menuRow())
	}

	buttons := lo.Map(services, func(s *catalog.Service, _ int) messages.Button {
		label := h.t("services.button_service", map[string]interface{}{
			"name":  s.Name,
			"price": s.PricePer100.String(),
		})
		return messages.Btn(label, actions.Service(s.ID))
	})
	keyboard := append(messages.Column(buttons...), h.menuRow())

	return h.notifier.Notify(ctx, actorID, h.t("services.select_service", nil), messages.Options{Keyboard: keyboard})
}

// SelectService snapshots the service into the session and asks for a quantity.
func (h *Handler) SelectService(ctx context.Context, actorID int64, serviceID string) error {
	ref, err := h.orders.SelectService(serviceID)
	if err != nil {
		if apperr.Kind(err) == apperr.ErrNotFound {
			return h.notify(ctx, actorID, h.t("services.not_found", nil), h.menuRow())
		}
		return fmt.Errorf("select service: %w", err)
	}

	h.stateManager.Update(actorID, func(s *states.Session) {
		s.Step = states.StepOrderQuantity
		s.SelectedService = ref
		s.Quantity = 0
		s.Link = ""
	})

	var description string
	if svc, ok := h.catalog.Lookup(serviceID); ok {
		description = svc.Description
	}

	text := h.t("services.card", map[string]interface{}{
		"name":        html.EscapeString(ref.Name),
		"description": html.EscapeString(description),
		"price":       ref.PricePer100.String(),
		"minimum":     ref.Minimum,
	})
	return h.notifier.Notify(ctx, actorID, text, messages.Options{
		HTML:     true,
		Keyboard: messages.Keyboard{h.menuRow()},
	})
}

// HandleText consumes the quantity or the link, depending on the step.
func (h *Handler) HandleText(ctx context.Context, actorID int64, text string) error {
	session := h.stateManager.Get(actorID)
	if session.SelectedService == nil {
		h.stateManager.Begin(actorID)
		return h.notify(ctx, actorID, h.t("common.session_expired", nil), h.menuRow())
	}

	switch session.Step {
	case states.StepOrderQuantity:
		return h.handleQuantity(ctx, actorID, *session.SelectedService, text)
	case states.StepOrderLink:
		return h.handleLink(ctx, actorID, session, text)
	default:
		return fmt.Errorf("unexpected step %s", session.Step)
	}
}

func (h *Handler) handleQuantity(ctx context.Context, actorID int64, ref orders.ServiceRef, text string) error {
	quantity, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err == nil {
		err = orders.ValidateQuantity(ref, quantity)
	}
	if err != nil {
		msg := h.t("order.invalid_quantity", map[string]interface{}{"minimum": ref.Minimum})
		return h.notifier.Notify(ctx, actorID, msg, messages.Options{})
	}

	h.stateManager.Update(actorID, func(s *states.Session) {
		s.Quantity = quantity
		s.Step = states.StepOrderLink
	})

	return h.notifier.Notify(ctx, actorID, h.t("order.enter_link", nil), messages.Options{})
}

func (h *Handler) handleLink(ctx context.Context, actorID int64, session states.Session, text string) error {
	link := strings.TrimSpace(text)
	if err := orders.ValidateLink(link); err != nil {
		return h.notifier.Notify(ctx, actorID, h.t("order.invalid_link", nil), messages.Options{})
	}

	h.stateManager.Update(actorID, func(s *states.Session) {
		s.Link = link
		s.Step = states.StepOrderConfirm
	})

	total := orders.ComputeTotal(*session.SelectedService, session.Quantity)
	summary := h.t("order.summary", map[string]interface{}{
		"service":  session.SelectedService.Name,
		"quantity": session.Quantity,
		"total":    messages.Money(total),
		"link":     link,
	})

	return h.notifier.Notify(ctx, actorID, summary, messages.Options{
		Keyboard: messages.Keyboard{
			messages.Row(messages.Btn(h.t("order.button_confirm", nil), actions.Buy())),
			h.menuRow(),
		},
	})
}

// Confirm pays for the order assembled in the session.
func (h *Handler) Confirm(ctx context.Context, actorID int64) error {
	session := h.stateManager.Get(actorID)
	draft := session.Draft()

	placement, err := h.orders.Confirm(ctx, actorID, draft)
	if err != nil {
		return h.refuseConfirm(ctx, actorID, draft, err)
	}

	h.stateManager.Begin(actorID)
	metrics.OrdersPlacedTotal.Inc()

	text := h.t("order.placed", map[string]interface{}{"balance": messages.Money(placement.NewBalance)})
	if err := h.notify(ctx, actorID, text, h.menuRow()); err != nil {
		return err
	}

	o := placement.Order
	return h.notifier.NotifyAdmin(ctx, h.t("order.admin_new", map[string]interface{}{
		"order_id": o.ID,
		"user_id":  o.UserID,
		"service":  o.Service.Name,
		"quantity": o.Quantity,
		"link":     o.Link,
		"total":    messages.Money(o.Total),
	}), messages.Options{Keyboard: StatusKeyboard(h.l10n, h.lang, o.ID)})
}

// refuseConfirm tells the user why the order was not placed. Errors that are
// not a refusal are returned.
func (h *Handler) refuseConfirm(ctx context.Context, actorID int64, draft orders.Draft, err error) error {
	switch apperr.Kind(err) {
	case apperr.ErrStateConflict, apperr.ErrValidation:
		h.stateManager.Begin(actorID)
		return h.notify(ctx, actorID, h.t("common.session_expired", nil), h.menuRow())
	case apperr.ErrInsufficientFunds:
		balance, balErr := h.ledger.BalanceOf(ctx, actorID)
		if balErr != nil {
			return fmt.Errorf("get balance: %w", balErr)
		}
		text := h.t("order.low_balance", map[string]interface{}{
			"total":   messages.Money(orders.ComputeTotal(*draft.Service, draft.Quantity)),
			"balance": messages.Money(balance),
		})
		return h.notify(ctx, actorID, text, h.menuRow())
	}
	return fmt.Errorf("confirm order: %w", err)
}

// SetStatus applies an administrator status change and rewrites the
// administrator's message. No refund is issued on rejection.
func (h *Handler) SetStatus(ctx context.Context, orderID, code string, messageID int, callbackID string) error {
	status, ok := statusByCode[code]
	if !ok {
		return h.notifier.Ack(ctx, callbackID, "", false)
	}

	o, err := h.orders.UpdateStatus(ctx, orderID, status)
	if err != nil {
		if apperr.Kind(err) == apperr.ErrNotFound {
			return h.notifier.Ack(ctx, callbackID, h.t("order.not_found", nil), true)
		}
		return fmt.Errorf("update order status: %w", err)
	}

	if err := h.notifier.Ack(ctx, callbackID, "", false); err != nil {
		h.logger.Warn("Failed to answer callback", "error", err)
	}
	metrics.OrderStatusUpdatesTotal.WithLabelValues(string(status)).Inc()

	statusText := StatusText(h.l10n, h.lang, status)
	userText := h.t("order.status_changed_user", map[string]interface{}{
		"service": o.Service.Name,
		"status":  statusText,
	})
	if err := h.notifier.Notify(ctx, o.UserID, userText, messages.Options{}); err != nil {
		h.logger.Warn("Failed to notify user about order status", "error", err, "user_id", o.UserID)
	}

	adminText := h.t("order.status_updated_admin", map[string]interface{}{
		"order_id": o.ID,
		"status":   statusText,
	})
	return h.notifier.NotifyAdmin(ctx, adminText, messages.Options{ReplaceMessageID: messageID})
}

func (h *Handler) notify(ctx context.Context, actorID int64, text string, rows ...[]messages.Button) error {
	return h.notifier.Notify(ctx, actorID, text, messages.Options{Keyboard: rows})
}

func (h *Handler) menuRow() []messages.Button {
	return messages.Row(messages.Btn(h.t("common.button_main_menu", nil), actions.Menu()))
}

func (h *Handler) t(key string, params map[string]interface{}) string {
	return h.l10n.Get(h.lang, key, params)
}
