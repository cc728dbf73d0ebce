package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/garage-platform/internal/apperr"
	"github.com/vasiliy-maslov/garage-platform/internal/events"
	"github.com/vasiliy-maslov/garage-platform/internal/inventory"
)

var (
	ErrMissingCustomerInfo  = errors.New("customerInfo is required")
	ErrMissingItems         = errors.New("items are required")
	ErrMissingTotal         = errors.New("totalAmount is required")
	ErrMissingCustomerField = errors.New("customer info field is required")
	ErrEmptyItems           = errors.New("order must contain at least one item")
	ErrMissingPartID        = errors.New("item partId is required")
	ErrInvalidQuantity      = errors.New("item quantity must be at least 1")
	ErrNegativePrice        = errors.New("item price cannot be negative")
	ErrTotalMismatch        = errors.New("totalAmount does not match the items total")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrNothingToUpdate      = errors.New("no updatable fields supplied")
	ErrNotOrderOwner        = errors.New("order belongs to another customer")
)

// totalTolerance is the largest accepted difference between the client total and the computed one.
var totalTolerance = decimal.New(1, -2)

// PartCatalog resolves part references. inventory.Repository satisfies it.
type PartCatalog interface {
	GetByID(ctx context.Context, id string) (*inventory.Part, error)
}

type Service interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, error)
	GetOrderByID(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context, scope ListScope) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status Status) (*Order, error)
	UpdateOrder(ctx context.Context, id string, in UpdateOrderInput) (*Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

type service struct {
	orderRepo Repository
	parts     PartCatalog
	events    events.Emitter
}

func NewService(orderRepo Repository, parts PartCatalog, emitter events.Emitter) Service {
	return &service{
		orderRepo: orderRepo,
		parts:     parts,
		events:    emitter,
	}
}

func (s *service) CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, error) {
	if err := validatePresence(in); err != nil {
		log.Warn().Err(err).Msg("service: rejected order input")
		return nil, err
	}

	items := make([]Item, 0, len(in.Items))
	for i, item := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		switch {
		case strings.TrimSpace(item.PartID) == "":
			return nil, apperr.Invalid(ErrMissingPartID, field+".partId")
		case item.Quantity < 1:
			return nil, apperr.Invalidf(ErrInvalidQuantity, field+".quantity", "quantity for part %s must be at least 1", item.PartID)
		case item.Price != nil && *item.Price < 0:
			return nil, apperr.Invalidf(ErrNegativePrice, field+".price", "price for part %s cannot be negative", item.PartID)
		}
	}

	total := decimal.Zero
	for _, item := range in.Items {
		part, err := s.parts.GetByID(ctx, item.PartID)
		if err != nil {
			if errors.Is(err, inventory.ErrPartNotFound) {
				log.Warn().Str("part_id", item.PartID).Msg("service: order references unknown part")
				return nil, apperr.NotFound(inventory.ErrPartNotFound, item.PartID)
			}
			log.Error().Err(err).Str("part_id", item.PartID).Msg("service: failed to resolve part")
			return nil, fmt.Errorf("service: failed to resolve part %s: %w", item.PartID, err)
		}

		price := part.Price
		if item.Price != nil {
			price = *item.Price
		}

		total = total.Add(decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(item.Quantity))))
		items = append(items, Item{PartID: item.PartID, Quantity: item.Quantity, Price: price})
	}

	claimed := decimal.NewFromFloat(*in.TotalAmount)
	if claimed.Sub(total).Abs().GreaterThan(totalTolerance) {
		log.Warn().Str("claimed", claimed.String()).Str("computed", total.String()).Msg("service: order total mismatch")
		return nil, apperr.Invalidf(ErrTotalMismatch, "totalAmount",
			"totalAmount %s does not match the items total %s", claimed.StringFixed(2), total.StringFixed(2))
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate order id: %w", err)
	}

	order := &Order{
		ID:           id.String(),
		UserID:       in.UserID,
		CustomerInfo: trimCustomer(*in.CustomerInfo),
		Items:        items,
		TotalAmount:  total.Round(2).InexactFloat64(),
		Status:       StatusPending,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		log.Error().Err(err).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().Str("order_id", order.ID).Str("user_id", order.UserID).Float64("total", order.TotalAmount).Msg("service: order created")
	s.events.Emit(ctx, events.TypeOrderCreated, order.ID, order)

	return order, nil
}

func (s *service) GetOrderByID(ctx context.Context, id string) (*Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Str("order_id", id).Msg("service: order not found by id")
			return nil, apperr.NotFound(ErrOrderNotFound, id)
		}

		log.Error().Err(err).Str("order_id", id).Msg("service: failed to fetch order by id in repository")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	return order, nil
}

func (s *service) ListOrders(ctx context.Context, scope ListScope) ([]Order, error) {
	orders, err := s.orderRepo.ListOrders(ctx, scope)
	if err != nil {
		log.Error().Err(err).Str("user_id", scope.UserID).Msg("service: failed to list orders in repository")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}

	return orders, nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, id string, status Status) (*Order, error) {
	if !status.Valid() {
		log.Warn().Str("order_id", id).Stringer("status", status).Msg("service: invalid status requested")
		return nil, apperr.Invalidf(ErrInvalidStatus, "status", "invalid order status %q", status)
	}

	order, err := s.orderRepo.UpdateOrder(ctx, id, map[string]any{"status": status})
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Str("order_id", id).Stringer("new_status", status).Msg("service: order not found, cannot update status")
			return nil, apperr.NotFound(ErrOrderNotFound, id)
		}
		log.Error().Err(err).Str("order_id", id).Stringer("new_status", status).Msg("service: failed to update order status in repository")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Str("order_id", id).Stringer("new_status", status).Msg("service: order status updated successfully")
	s.events.Emit(ctx, events.TypeOrderStatusChanged, id, statusChangedPayload{OrderID: id, Status: status})

	return order, nil
}

func (s *service) UpdateOrder(ctx context.Context, id string, in UpdateOrderInput) (*Order, error) {
	if in.CustomerInfo == nil {
		return nil, apperr.Invalid(ErrNothingToUpdate, "customerInfo")
	}
	if err := validateCustomer(*in.CustomerInfo); err != nil {
		return nil, err
	}

	if in.RequesterID != "" {
		current, err := s.GetOrderByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.UserID != in.RequesterID {
			log.Warn().Str("order_id", id).Str("user_id", in.RequesterID).Msg("service: order update denied")
			return nil, apperr.Forbidden(ErrNotOrderOwner)
		}
	}

	order, err := s.orderRepo.UpdateOrder(ctx, id, map[string]any{"customerInfo": trimCustomer(*in.CustomerInfo)})
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Str("order_id", id).Msg("service: order not found, cannot update")
			return nil, apperr.NotFound(ErrOrderNotFound, id)
		}
		log.Error().Err(err).Str("order_id", id).Msg("service: failed to update order in repository")
		return nil, fmt.Errorf("service: failed to update order: %w", err)
	}

	log.Info().Str("order_id", id).Msg("service: order updated")
	return order, nil
}

func (s *service) DeleteOrder(ctx context.Context, id string) error {
	if err := s.orderRepo.DeleteOrder(ctx, id); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Str("order_id", id).Msg("service: order not found, nothing to delete")
			return apperr.NotFound(ErrOrderNotFound, id)
		}
		log.Error().Err(err).Str("order_id", id).Msg("service: failed to delete order in repository")
		return fmt.Errorf("service: failed to delete order: %w", err)
	}

	log.Info().Str("order_id", id).Msg("service: order deleted")
	s.events.Emit(ctx, events.TypeOrderDeleted, id, map[string]string{"orderId": id})

	return nil
}

type statusChangedPayload struct {
	OrderID string `json:"orderId"`
	Status  Status `json:"status"`
}

// validatePresence checks, in order: top-level fields, customer sub-fields, non-empty items.
func validatePresence(in CreateOrderInput) error {
	switch {
	case in.CustomerInfo == nil:
		return apperr.Invalid(ErrMissingCustomerInfo, "customerInfo")
	case in.Items == nil:
		return apperr.Invalid(ErrMissingItems, "items")
	case in.TotalAmount == nil:
		return apperr.Invalid(ErrMissingTotal, "totalAmount")
	}

	if err := validateCustomer(*in.CustomerInfo); err != nil {
		return err
	}

	if len(in.Items) == 0 {
		return apperr.Invalid(ErrEmptyItems, "items")
	}
	return nil
}

func validateCustomer(c CustomerInfo) error {
	fields := []struct {
		name  string
		value string
	}{
		{"name", c.Name},
		{"email", c.Email},
		{"phone", c.Phone},
		{"address", c.Address},
	}

	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return apperr.Invalidf(ErrMissingCustomerField, "customerInfo."+f.name, "customerInfo.%s is required", f.name)
		}
	}
	return nil
}

func trimCustomer(c CustomerInfo) CustomerInfo {
	return CustomerInfo{
		Name:    strings.TrimSpace(c.Name),
		Email:   strings.TrimSpace(c.Email),
		Phone:   strings.TrimSpace(c.Phone),
		Address: strings.TrimSpace(c.Address),
	}
}
