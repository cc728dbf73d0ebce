package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vasiliy-maslov/garage-platform/internal/apperr"
	"github.com/vasiliy-maslov/garage-platform/internal/auth"
	"github.com/vasiliy-maslov/garage-platform/internal/order"
)

type ProcessPaymentRequest struct {
	OrderID         string         `json:"orderId"`
	PaymentMethod   string         `json:"paymentMethod"`
	PaymentDetails  map[string]any `json:"paymentDetails"`
	SimulateFailure bool           `json:"simulateFailure"`
}

type PaymentHandler struct {
	service  order.PaymentService
	validate *validator.Validate
}

func NewPaymentHandler(service order.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service, validate: newValidator()}
}

func (h *PaymentHandler) RegisterRoutes(router chi.Router) {
	router.Post("/payments/process", h.handleProcessPayment)
	router.Get("/payments/{orderId}", h.handleGetPaymentStatus)

	router.Group(func(admin chi.Router) {
		admin.Use(auth.RequireAdmin)
		admin.Get("/payments", h.handleListPayments)
		admin.Delete("/payments/{orderId}", h.handleDeletePayment)
	})
}

// handleProcessPayment answers a declined payment with 402 and the persisted outcome in data.
func (h *PaymentHandler) handleProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req ProcessPaymentRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	result, err := h.service.ProcessPayment(r.Context(), order.ProcessPaymentInput{
		OrderID:         req.OrderID,
		Method:          order.PaymentMethod(req.PaymentMethod),
		Details:         req.PaymentDetails,
		SimulateFailure: req.SimulateFailure,
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindPaymentFailed && result != nil {
			respondWithJSON(w, http.StatusPaymentRequired, Response{
				Success: false,
				Message: apperr.Message(err, "Payment failed"),
				Data:    result,
			})
			return
		}
		respondWithServiceError(w, err, "Failed to process payment")
		return
	}

	respondWithData(w, http.StatusOK, "Payment processed successfully", result)
}

func (h *PaymentHandler) handleGetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.GetPaymentStatus(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		respondWithServiceError(w, err, "Failed to get payment status")
		return
	}

	respondWithData(w, http.StatusOK, "", status)
}

func (h *PaymentHandler) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.ListPayments(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to list payments")
		return
	}

	respondWithData(w, http.StatusOK, "", nonNil(payments))
}

func (h *PaymentHandler) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	updated, err := h.service.DeletePayment(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		respondWithServiceError(w, err, "Failed to delete payment")
		return
	}

	respondWithData(w, http.StatusOK, "Payment details deleted, order reset to pending", updated)
}
