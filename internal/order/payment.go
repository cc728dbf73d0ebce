package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/garage-platform/internal/apperr"
	"github.com/vasiliy-maslov/garage-platform/internal/events"
)

var (
	ErrMissingOrderID       = errors.New("orderId is required")
	ErrMissingPaymentMethod = errors.New("paymentMethod is required")
	ErrUnsupportedMethod    = errors.New("unsupported payment method")
	ErrPaymentDeclined      = errors.New("payment was declined")
)

// ProcessPaymentInput describes one payment attempt. Details is method-specific and is not persisted.
// SimulateFailure makes the simulated gateway decline the attempt.
type ProcessPaymentInput struct {
	OrderID         string
	Method          PaymentMethod
	Details         map[string]any
	SimulateFailure bool
}

type PaymentResult struct {
	OrderID        string          `json:"orderId"`
	Status         Status          `json:"status"`
	PaymentDetails *PaymentDetails `json:"paymentDetails"`
}

type PaymentStatusView struct {
	OrderID        string          `json:"orderId"`
	OrderStatus    Status          `json:"orderStatus"`
	PaymentStatus  PaymentStatus   `json:"paymentStatus"`
	TotalAmount    float64         `json:"totalAmount"`
	PaymentDetails *PaymentDetails `json:"paymentDetails"`
}

type PaymentService interface {
	ProcessPayment(ctx context.Context, in ProcessPaymentInput) (*PaymentResult, error)
	GetPaymentStatus(ctx context.Context, orderID string) (*PaymentStatusView, error)
	ListPayments(ctx context.Context) ([]Order, error)
	DeletePayment(ctx context.Context, orderID string) (*Order, error)
}

type paymentService struct {
	orderRepo Repository
	events    events.Emitter
	now       func() time.Time
}

func NewPaymentService(orderRepo Repository, emitter events.Emitter) PaymentService {
	return &paymentService{
		orderRepo: orderRepo,
		events:    emitter,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ProcessPayment loads the order, runs the simulated gateway and stores the outcome. A declined attempt is
// persisted with status failed and reported as a payment-failed error together with the result.
// Repeated calls overwrite the previous payment details.
func (s *paymentService) ProcessPayment(ctx context.Context, in ProcessPaymentInput) (*PaymentResult, error) {
	switch {
	case strings.TrimSpace(in.OrderID) == "":
		return nil, apperr.Invalid(ErrMissingOrderID, "orderId")
	case in.Method == "":
		return nil, apperr.Invalid(ErrMissingPaymentMethod, "paymentMethod")
	case !in.Method.Valid():
		return nil, apperr.Invalidf(ErrUnsupportedMethod, "paymentMethod", "unsupported payment method %q", in.Method)
	}

	current, err := s.orderRepo.GetOrderByID(ctx, in.OrderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Str("order_id", in.OrderID).Msg("service: payment for unknown order")
			return nil, apperr.NotFound(ErrOrderNotFound, in.OrderID)
		}
		log.Error().Err(err).Str("order_id", in.OrderID).Msg("service: failed to load order for payment")
		return nil, fmt.Errorf("service: failed to load order for payment: %w", err)
	}

	txID, err := s.transactionID()
	if err != nil {
		return nil, err
	}

	details := &PaymentDetails{
		Method:        in.Method,
		TransactionID: txID,
		Status:        PaymentCompleted,
		Timestamp:     s.now(),
	}
	set := map[string]any{"paymentDetails": details}

	declined := simulateGateway(in)
	if declined {
		details.Status = PaymentFailed
	} else {
		set["status"] = StatusProcessing
	}

	updated, err := s.orderRepo.UpdateOrder(ctx, current.ID, set)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, apperr.NotFound(ErrOrderNotFound, in.OrderID)
		}
		log.Error().Err(err).Str("order_id", in.OrderID).Msg("service: failed to persist payment")
		return nil, fmt.Errorf("service: failed to persist payment: %w", err)
	}

	result := &PaymentResult{OrderID: updated.ID, Status: updated.Status, PaymentDetails: updated.PaymentDetails}

	if declined {
		log.Warn().Str("order_id", updated.ID).Str("transaction_id", txID).Msg("service: payment declined")
		s.events.Emit(ctx, events.TypePaymentFailed, updated.ID, result)
		return result, apperr.PaymentFailed(ErrPaymentDeclined)
	}

	log.Info().Str("order_id", updated.ID).Str("transaction_id", txID).Str("method", string(in.Method)).Msg("service: payment processed")
	s.events.Emit(ctx, events.TypePaymentProcessed, updated.ID, result)

	return result, nil
}

func (s *paymentService) GetPaymentStatus(ctx context.Context, orderID string) (*PaymentStatusView, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Str("order_id", orderID).Msg("service: payment status for unknown order")
			return nil, apperr.NotFound(ErrOrderNotFound, orderID)
		}
		log.Error().Err(err).Str("order_id", orderID).Msg("service: failed to load order for payment status")
		return nil, fmt.Errorf("service: failed to get payment status: %w", err)
	}

	return &PaymentStatusView{
		OrderID:        order.ID,
		OrderStatus:    order.Status,
		PaymentStatus:  order.PaymentState(),
		TotalAmount:    order.TotalAmount,
		PaymentDetails: order.PaymentDetails,
	}, nil
}

func (s *paymentService) ListPayments(ctx context.Context) ([]Order, error) {
	orders, err := s.orderRepo.ListPaidOrders(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list payments")
		return nil, fmt.Errorf("service: failed to list payments: %w", err)
	}
	return orders, nil
}

// DeletePayment clears the payment details and resets the order to pending in one update.
func (s *paymentService) DeletePayment(ctx context.Context, orderID string) (*Order, error) {
	order, err := s.orderRepo.UpdateOrder(ctx, orderID, map[string]any{"status": StatusPending}, "paymentDetails")
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Str("order_id", orderID).Msg("service: cannot clear payment of unknown order")
			return nil, apperr.NotFound(ErrOrderNotFound, orderID)
		}
		log.Error().Err(err).Str("order_id", orderID).Msg("service: failed to clear payment")
		return nil, fmt.Errorf("service: failed to delete payment: %w", err)
	}

	log.Info().Str("order_id", orderID).Msg("service: payment cleared, order reset to pending")
	s.events.Emit(ctx, events.TypePaymentCleared, orderID, map[string]string{"orderId": orderID})

	return order, nil
}

// transactionID returns "TXN-<unix millis>-<6 random hex chars>".
func (s *paymentService) transactionID() (string, error) {
	suffix, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("service: failed to generate transaction id: %w", err)
	}
	return fmt.Sprintf("TXN-%d-%s", s.now().UnixMilli(), strings.ToUpper(suffix.String()[:6])), nil
}

// simulateGateway reports whether the attempt is declined. There is no real gateway behind it.
func simulateGateway(in ProcessPaymentInput) bool {
	return in.SimulateFailure
}
