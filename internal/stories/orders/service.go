package orders

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"smm-bot/internal/apperr"
	"smm-bot/internal/stories/ledger"
)

var tracer = otel.Tracer("smm-bot/orders")

type Service struct {
	storage Storage
	ledger  Ledger
	catalog Catalog
	ids     idGenerator
	logger  *slog.Logger
}

func NewService(storage Storage, ledger Ledger, catalog Catalog, ids idGenerator, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		ledger:  ledger,
		catalog: catalog,
		ids:     ids,
		logger:  logger,
	}
}

// SelectService snapshots the catalog entry with the given id.
func (s *Service) SelectService(serviceID string) (*ServiceRef, error) {
	svc, ok := s.catalog.Lookup(serviceID)
	if !ok {
		return nil, fmt.Errorf("%w: service %q", apperr.ErrNotFound, serviceID)
	}

	return &ServiceRef{
		ID:          svc.ID,
		Name:        svc.Name,
		PricePer100: svc.PricePer100,
		Minimum:     int64(svc.Minimum),
	}, nil
}

func ValidateQuantity(ref ServiceRef, quantity int64) error {
	if quantity < ref.Minimum || quantity <= 0 {
		return fmt.Errorf("%w: quantity %d is below the minimum %d", apperr.ErrValidation, quantity, ref.Minimum)
	}
	return nil
}

func ValidateLink(link string) error {
	if strings.TrimSpace(link) == "" {
		return fmt.Errorf("%w: empty link", apperr.ErrValidation)
	}
	return nil
}

// ComputeTotal returns quantity/100 * price at full precision.
func ComputeTotal(ref ServiceRef, quantity int64) decimal.Decimal {
	return ref.PricePer100.Mul(decimal.NewFromInt(quantity)).Shift(-2)
}

// Confirm debits the draft's total and stores the order in one commit.
// An incomplete draft yields apperr.ErrStateConflict.
func (s *Service) Confirm(ctx context.Context, userID int64, draft Draft) (*Placement, error) {
	ctx, span := tracer.Start(ctx, "orders.Confirm", trace.WithAttributes(attribute.Int64("user_id", userID)))
	defer span.End()

	if !draft.Complete() {
		return nil, fmt.Errorf("%w: order session expired", apperr.ErrStateConflict)
	}
	if err := ValidateQuantity(*draft.Service, draft.Quantity); err != nil {
		return nil, err
	}

	total := ComputeTotal(*draft.Service, draft.Quantity)

	var placement Placement
	err := s.ledger.Transact(ctx, userID, func(ctx context.Context, acc *ledger.Account) error {
		if err := acc.Debit(total); err != nil {
			return err
		}

		order, err := s.storage.CreateOrder(ctx, Order{
			ID:       s.ids.NewOrderID(),
			UserID:   userID,
			Service:  *draft.Service,
			Quantity: draft.Quantity,
			Link:     draft.Link,
			Total:    total,
			Status:   StatusPending,
		})
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		placement = Placement{Order: order, NewBalance: acc.Balance()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order placed",
		"order_id", placement.Order.ID,
		"user_id", userID,
		"service_id", draft.Service.ID,
		"quantity", draft.Quantity,
		"total", total.String(),
	)

	return &placement, nil
}

// UpdateStatus sets any administrator-settable status regardless of the
// current one. Rejection does not refund the user.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status Status) (*Order, error) {
	ctx, span := tracer.Start(ctx, "orders.UpdateStatus", trace.WithAttributes(
		attribute.String("order_id", orderID),
		attribute.String("status", string(status)),
	))
	defer span.End()

	if !status.Settable() {
		return nil, fmt.Errorf("%w: status %q cannot be set", apperr.ErrValidation, status)
	}

	var order *Order
	err := s.storage.Atomic(ctx, func(ctx context.Context) error {
		found, err := s.storage.UpdateOrderStatus(ctx, orderID, status)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if !found {
			return fmt.Errorf("%w: order %s", apperr.ErrNotFound, orderID)
		}

		order, err = s.storage.GetOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("get order: %w", err)
		}
		if order == nil {
			return fmt.Errorf("%w: order %s", apperr.ErrNotFound, orderID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status updated", "order_id", orderID, "user_id", order.UserID, "status", status)
	return order, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64, limit int) ([]*Order, error) {
	return s.storage.ListOrders(ctx, ListCriteria{UserID: &userID, Limit: limit})
}

func (s *Service) List(ctx context.Context, criteria ListCriteria) ([]*Order, error) {
	return s.storage.ListOrders(ctx, criteria)
}
