package deposit

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"smm-bot/internal/apperr"
	"smm-bot/internal/metrics"
	"smm-bot/internal/stories/deposits"
	"smm-bot/internal/telegram/actions"
	"smm-bot/internal/telegram/messages"
	"smm-bot/internal/telegram/states"
)

type Handler struct {
	notifier     messages.Notifier
	stateManager stateManager
	deposits     depositService
	l10n         localizer
	presets      []decimal.Decimal
	currencies   []deposits.Currency
	lang         string
	logger       *slog.Logger
}

func NewHandler(
	notifier messages.Notifier,
	sm stateManager,
	ds depositService,
	l10n localizer,
	presets []decimal.Decimal,
	currencies []deposits.Currency,
	lang string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		notifier:     notifier,
		stateManager: sm,
		deposits:     ds,
		l10n:         l10n,
		presets:      presets,
		currencies:   currencies,
		lang:         lang,
		logger:       logger,
	}
}

// Start discards any flow in progress and offers the preset amounts.
func (h *Handler) Start(ctx context.Context, actorID int64) error {
	h.stateManager.Begin(actorID)

	buttons := lo.Map(h.presets, func(amount decimal.Decimal, _ int) messages.Button {
		label := h.t("deposit.button_amount", map[string]interface{}{"amount": amount.String()})
		return messages.Btn(label, actions.Amount(amount))
	})

	keyboard := messages.Chunk(buttons, 3)
	keyboard = append(keyboard,
		messages.Row(messages.Btn(h.t("deposit.button_custom", nil), actions.CustomAmount())),
		h.menuRow(),
	)

	return h.notifier.Notify(ctx, actorID, h.t("deposit.select_amount", nil), messages.Options{Keyboard: keyboard})
}

// SelectAmount stores the amount in the session and asks for a currency.
func (h *Handler) SelectAmount(ctx context.Context, actorID int64, amount decimal.Decimal) error {
	if err := h.deposits.ValidateAmount(amount); err != nil {
		return h.notifyInvalidAmount(ctx, actorID)
	}

	h.stateManager.Update(actorID, func(s *states.Session) {
		s.Step = states.StepNone
		s.PendingDepositAmount = &amount
	})

	buttons := lo.Map(h.currencies, func(c deposits.Currency, _ int) messages.Button {
		return messages.Btn(string(c), actions.Pay(string(c)))
	})
	keyboard := append(messages.Column(buttons...), h.menuRow())

	text := h.t("deposit.select_currency", map[string]interface{}{"amount": amount.String()})
	return h.notifier.Notify(ctx, actorID, text, messages.Options{Keyboard: keyboard})
}

func (h *Handler) StartCustomAmount(ctx context.Context, actorID int64) error {
	h.stateManager.SetStep(actorID, states.StepDepositCustomAmount)

	text := h.t("deposit.enter_custom", map[string]interface{}{"minimum": h.deposits.MinimumDeposit().String()})
	return h.notifier.Notify(ctx, actorID, text, messages.Options{Keyboard: messages.Keyboard{h.menuRow()}})
}

// HandleText consumes the custom amount. Bad input keeps the step so the user
// can try again.
func (h *Handler) HandleText(ctx context.Context, actorID int64, text string) error {
	raw := strings.TrimPrefix(strings.TrimSpace(text), "$")
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return h.notifyInvalidAmount(ctx, actorID)
	}

	return h.SelectAmount(ctx, actorID, amount)
}

// SelectCurrency submits the deposit for the amount held in the session.
func (h *Handler) SelectCurrency(ctx context.Context, actorID int64, rawCurrency string) error {
	session := h.stateManager.Get(actorID)
	if session.PendingDepositAmount == nil {
		return h.notify(ctx, actorID, h.t("common.session_expired", nil), h.menuRow())
	}

	currency, ok := deposits.ParseCurrency(rawCurrency)
	if !ok {
		return h.notify(ctx, actorID, h.t("deposit.unsupported_currency", nil), h.menuRow())
	}

	sub, err := h.deposits.Submit(ctx, actorID, *session.PendingDepositAmount, currency)
	if err != nil {
		if apperr.Kind(err) == apperr.ErrValidation {
			return h.notify(ctx, actorID, h.t("deposit.unsupported_currency", nil), h.menuRow())
		}
		return fmt.Errorf("submit deposit: %w", err)
	}

	h.stateManager.Update(actorID, func(s *states.Session) {
		s.PendingDepositAmount = nil
	})
	metrics.DepositsSubmittedTotal.WithLabelValues(string(currency)).Inc()

	params := depositParams(sub.Deposit)
	params["address"] = html.EscapeString(sub.Address)

	err = h.notifier.Notify(ctx, actorID, h.t("deposit.payment_required", params), messages.Options{
		HTML: true,
		Keyboard: messages.Keyboard{
			messages.Row(messages.Btn(h.t("deposit.button_paid", nil), actions.Paid(sub.Deposit.ID))),
			h.menuRow(),
		},
	})
	if err != nil {
		return err
	}

	return h.notifier.NotifyAdmin(ctx, h.t("deposit.admin_submitted", params), messages.Options{
		Keyboard: h.resolutionKeyboard(sub.Deposit.ID),
	})
}

// ClaimPaid records the user's "I have paid". Refusals are shown as alerts.
func (h *Handler) ClaimPaid(ctx context.Context, actorID int64, depositID, callbackID string) error {
	deposit, err := h.deposits.ClaimPaid(ctx, depositID, actorID)
	if err != nil {
		return h.refuseClaim(ctx, callbackID, err)
	}

	if err := h.notifier.Ack(ctx, callbackID, h.t("deposit.marked_ack", nil), false); err != nil {
		h.logger.Warn("Failed to answer callback", "error", err)
	}
	if err := h.notify(ctx, actorID, h.t("deposit.marked", nil), h.menuRow()); err != nil {
		return err
	}

	return h.notifier.NotifyAdmin(ctx, h.t("deposit.admin_claimed", depositParams(deposit)), messages.Options{
		Keyboard: h.resolutionKeyboard(deposit.ID),
	})
}

// refuseClaim answers a refused claim with an alert. Any other error is
// returned.
func (h *Handler) refuseClaim(ctx context.Context, callbackID string, err error) error {
	switch apperr.Kind(err) {
	case apperr.ErrNotFound:
		return h.notifier.Ack(ctx, callbackID, h.t("deposit.not_found", nil), true)
	case apperr.ErrForbidden:
		return h.notifier.Ack(ctx, callbackID, h.t("deposit.not_yours", nil), true)
	case apperr.ErrStateConflict:
		return h.notifier.Ack(ctx, callbackID, h.t("deposit.already_marked", nil), true)
	}
	return fmt.Errorf("claim paid: %w", err)
}

// Approve credits the deposit and rewrites the administrator's message.
// A deposit that is no longer awaiting approval is acknowledged and ignored.
func (h *Handler) Approve(ctx context.Context, depositID string, messageID int, callbackID string) error {
	res, err := h.deposits.Approve(ctx, depositID)
	if err != nil {
		return h.refuseResolution(ctx, callbackID, err)
	}
	h.ack(ctx, callbackID)
	metrics.DepositsResolvedTotal.WithLabelValues(string(deposits.StatusApproved)).Inc()

	text := h.t("deposit.approved_user", map[string]interface{}{"balance": messages.Money(res.NewBalance)})
	if err := h.notify(ctx, res.Deposit.UserID, text, h.menuRow()); err != nil {
		h.logger.Warn("Failed to notify user about approval", "error", err, "user_id", res.Deposit.UserID)
	}

	return h.notifier.NotifyAdmin(ctx, h.t("deposit.approved_admin", depositParams(res.Deposit)), messages.Options{
		ReplaceMessageID: messageID,
	})
}

func (h *Handler) Reject(ctx context.Context, depositID string, messageID int, callbackID string) error {
	res, err := h.deposits.Reject(ctx, depositID)
	if err != nil {
		return h.refuseResolution(ctx, callbackID, err)
	}
	h.ack(ctx, callbackID)
	metrics.DepositsResolvedTotal.WithLabelValues(string(deposits.StatusRejected)).Inc()

	if err := h.notify(ctx, res.Deposit.UserID, h.t("deposit.rejected_user", nil), h.menuRow()); err != nil {
		h.logger.Warn("Failed to notify user about rejection", "error", err, "user_id", res.Deposit.UserID)
	}

	return h.notifier.NotifyAdmin(ctx, h.t("deposit.rejected_admin", depositParams(res.Deposit)), messages.Options{
		ReplaceMessageID: messageID,
	})
}

// refuseResolution answers a button press on a deposit that cannot be
// resolved. Any other error is returned.
func (h *Handler) refuseResolution(ctx context.Context, callbackID string, err error) error {
	switch apperr.Kind(err) {
	case apperr.ErrStateConflict:
		return h.notifier.Ack(ctx, callbackID, h.t("deposit.already_resolved", nil), false)
	case apperr.ErrNotFound:
		return h.notifier.Ack(ctx, callbackID, h.t("deposit.not_found", nil), true)
	}
	return err
}

func (h *Handler) ack(ctx context.Context, callbackID string) {
	if err := h.notifier.Ack(ctx, callbackID, "", false); err != nil {
		h.logger.Warn("Failed to answer callback", "error", err)
	}
}

func (h *Handler) resolutionKeyboard(depositID string) messages.Keyboard {
	return messages.Keyboard{
		messages.Row(messages.Btn(h.t("deposit.button_approve", nil), actions.Approve(depositID))),
		messages.Row(messages.Btn(h.t("deposit.button_reject", nil), actions.Reject(depositID))),
	}
}

func (h *Handler) notifyInvalidAmount(ctx context.Context, actorID int64) error {
	text := h.t("deposit.invalid_amount", map[string]interface{}{"minimum": h.deposits.MinimumDeposit().String()})
	return h.notifier.Notify(ctx, actorID, text, messages.Options{})
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

func depositParams(d *deposits.Deposit) map[string]interface{} {
	return map[string]interface{}{
		"deposit_id": d.ID,
		"user_id":    d.UserID,
		"amount":     d.Amount.String(),
		"currency":   string(d.Currency),
	}
}
