package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"smm-bot/internal/metrics"
	"smm-bot/internal/telegram/actions"
	"smm-bot/internal/telegram/cmds"
	"smm-bot/internal/telegram/flows/deposit"
	"smm-bot/internal/telegram/flows/order"
	"smm-bot/internal/telegram/flows/support"
	"smm-bot/internal/telegram/messages"
	"smm-bot/internal/telegram/states"
)

var tracer = otel.Tracer("smm-bot/telegram")

type stateManager interface {
	Get(actorID int64) states.Session
}

type adminChecker interface {
	IsAdmin(actorID int64) bool
}

type localizer interface {
	Get(lang, key string, params map[string]interface{}) string
}

// Router routes inbound events to the workflows. Text goes to the handler of
// the actor's current step; button presses are decoded into actions.
type Router struct {
	notifier     messages.Notifier
	stateManager stateManager
	adminChecker adminChecker
	l10n         localizer
	lang         string
	logger       *slog.Logger

	// Handlers
	menuCommand     *cmds.MenuCommand
	myOrdersCommand *cmds.MyOrdersCommand
	adminCommand    *cmds.AdminCommand
	depositHandler  *deposit.Handler
	orderHandler    *order.Handler
	supportHandler  *support.Handler
}

func NewRouter(
	notifier messages.Notifier,
	stateManager stateManager,
	adminChecker adminChecker,
	l10n localizer,
	lang string,
	logger *slog.Logger,
	menuCommand *cmds.MenuCommand,
	myOrdersCommand *cmds.MyOrdersCommand,
	adminCommand *cmds.AdminCommand,
	depositHandler *deposit.Handler,
	orderHandler *order.Handler,
	supportHandler *support.Handler,
) *Router {
	return &Router{
		notifier:        notifier,
		stateManager:    stateManager,
		adminChecker:    adminChecker,
		l10n:            l10n,
		lang:            lang,
		logger:          logger,
		menuCommand:     menuCommand,
		myOrdersCommand: myOrdersCommand,
		adminCommand:    adminCommand,
		depositHandler:  depositHandler,
		orderHandler:    orderHandler,
		supportHandler:  supportHandler,
	}
}

// Dispatch handles one event. A failure is logged, counted and reported to
// the actor as a generic error; it is also returned to the caller.
func (r *Router) Dispatch(ctx context.Context, ev Event) error {
	requestID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "telegram.Dispatch", trace.WithAttributes(
		attribute.String("event.kind", ev.kind()),
		attribute.Int64("user_id", ev.Actor()),
		attribute.String("request_id", requestID),
	))
	defer span.End()

	timer := prometheus.NewTimer(metrics.DispatchDuration)
	defer timer.ObserveDuration()
	metrics.EventsTotal.WithLabelValues(ev.kind()).Inc()

	logger := r.logger.With("request_id", requestID, "user_id", ev.Actor())

	var err error
	switch e := ev.(type) {
	case StartEvent:
		err = r.menuCommand.Start(ctx, e.ActorID, e.DisplayName)
	case TextEvent:
		err = r.routeText(ctx, e)
	case ActionEvent:
		err = r.routeAction(ctx, logger, e)
	default:
		err = fmt.Errorf("unsupported event %T", ev)
	}
	if err == nil {
		return nil
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	metrics.DispatchErrorsTotal.Inc()
	logger.Error("Failed to handle event", "kind", ev.kind(), "error", err)

	if notifyErr := r.notifier.Notify(ctx, ev.Actor(), r.l10n.Get(r.lang, "common.error", nil), messages.Options{}); notifyErr != nil {
		logger.Warn("Failed to report error to user", "error", notifyErr)
	}
	return err
}

// routeText gives free text to the step waiting for it. Without such a step
// the menu is shown again.
func (r *Router) routeText(ctx context.Context, e TextEvent) error {
	session := r.stateManager.Get(e.ActorID)

	switch session.Step {
	case states.StepDepositCustomAmount:
		return r.depositHandler.HandleText(ctx, e.ActorID, e.Text)
	case states.StepOrderQuantity, states.StepOrderLink:
		return r.orderHandler.HandleText(ctx, e.ActorID, e.Text)
	case states.StepSupportMessage:
		return r.supportHandler.HandleMessage(ctx, e.ActorID, e.DisplayName, e.Text)
	case states.StepAdminReply:
		if r.adminChecker.IsAdmin(e.ActorID) {
			return r.supportHandler.HandleReply(ctx, e.ActorID, e.Text)
		}
	}

	return r.menuCommand.Show(ctx, e.ActorID)
}

func (r *Router) routeAction(ctx context.Context, logger *slog.Logger, e ActionEvent) error {
	action, err := actions.Parse(e.Token)
	if err != nil {
		logger.Debug("Dropping unknown token", "token", e.Token, "error", err)
		r.ack(ctx, logger, e.CallbackID)
		return nil
	}

	if action.Kind.AdminOnly() && !r.adminChecker.IsAdmin(e.ActorID) {
		logger.Warn("Dropping admin action from non-admin", "token", e.Token)
		r.ack(ctx, logger, e.CallbackID)
		return nil
	}

	// These handlers answer the button press themselves.
	switch action.Kind {
	case actions.KindPaid:
		return r.depositHandler.ClaimPaid(ctx, e.ActorID, action.ID, e.CallbackID)
	case actions.KindApprove:
		return r.depositHandler.Approve(ctx, action.ID, e.MessageID, e.CallbackID)
	case actions.KindReject:
		return r.depositHandler.Reject(ctx, action.ID, e.MessageID, e.CallbackID)
	case actions.KindSetStatus:
		return r.orderHandler.SetStatus(ctx, action.ID, action.Status, e.MessageID, e.CallbackID)
	}

	r.ack(ctx, logger, e.CallbackID)

	switch action.Kind {
	case actions.KindMenu:
		return r.menuCommand.Show(ctx, e.ActorID)
	case actions.KindDeposit:
		return r.depositHandler.Start(ctx, e.ActorID)
	case actions.KindAmount:
		return r.depositHandler.SelectAmount(ctx, e.ActorID, action.Amount)
	case actions.KindCustomAmount:
		return r.depositHandler.StartCustomAmount(ctx, e.ActorID)
	case actions.KindPay:
		return r.depositHandler.SelectCurrency(ctx, e.ActorID, action.Currency)
	case actions.KindServices:
		return r.orderHandler.ShowPlatforms(ctx, e.ActorID)
	case actions.KindPlatform:
		return r.orderHandler.ShowCategories(ctx, e.ActorID, action.Platform)
	case actions.KindCategory:
		return r.orderHandler.ShowServices(ctx, e.ActorID, action.Platform, action.Category)
	case actions.KindService:
		return r.orderHandler.SelectService(ctx, e.ActorID, action.ID)
	case actions.KindBuy:
		return r.orderHandler.Confirm(ctx, e.ActorID)
	case actions.KindMyOrders:
		return r.myOrdersCommand.Execute(ctx, e.ActorID)
	case actions.KindSupport:
		return r.supportHandler.Start(ctx, e.ActorID)
	case actions.KindReply:
		return r.supportHandler.StartReply(ctx, e.ActorID, action.UserID)
	case actions.KindAdmin:
		return r.adminCommand.Dashboard(ctx, e.ActorID)
	case actions.KindAdminUsers:
		return r.adminCommand.Users(ctx, e.ActorID)
	case actions.KindAdminDeposits:
		return r.adminCommand.Deposits(ctx, e.ActorID)
	case actions.KindAdminOrders:
		return r.adminCommand.Orders(ctx, e.ActorID)
	}

	logger.Warn("Unrouted action", "kind", action.Kind.String())
	return nil
}

// ack answers a button press with nothing to show. Failures are only logged.
func (r *Router) ack(ctx context.Context, logger *slog.Logger, callbackID string) {
	if callbackID == "" {
		return
	}
	if err := r.notifier.Ack(ctx, callbackID, "", false); err != nil {
		logger.Warn("Failed to answer callback", "error", err)
	}
}
