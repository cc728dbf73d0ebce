package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vasiliy-maslov/garage-platform/internal/auth"
	"github.com/vasiliy-maslov/garage-platform/internal/order"
)

// CreateOrderRequest keeps presence information: field checks run in the service in a fixed order.
type CreateOrderRequest struct {
	CustomerInfo *order.CustomerInfo `json:"customerInfo"`
	Items        []OrderItemRequest  `json:"items"`
	TotalAmount  *float64            `json:"totalAmount"`
}

type OrderItemRequest struct {
	PartID   string   `json:"partId"`
	Quantity int      `json:"quantity"`
	Price    *float64 `json:"price"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type UpdateOrderRequest struct {
	CustomerInfo *order.CustomerInfo `json:"customerInfo" validate:"required"`
}

type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{service: service, validate: newValidator()}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Post("/orders", h.handleCreateOrder)
	router.Get("/orders", h.handleListOrders)
	router.Get("/orders/{id}", h.handleGetOrder)
	router.With(auth.RequireAuth).Put("/orders/{id}", h.handleUpdateOrder)

	router.Group(func(admin chi.Router) {
		admin.Use(auth.RequireAdmin)
		admin.Patch("/orders/{id}/status", h.handleUpdateOrderStatus)
		admin.Delete("/orders/{id}", h.handleDeleteOrder)
	})
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	in := order.CreateOrderInput{
		CustomerInfo: req.CustomerInfo,
		TotalAmount:  req.TotalAmount,
	}
	if req.Items != nil {
		in.Items = make([]order.ItemInput, 0, len(req.Items))
		for _, item := range req.Items {
			in.Items = append(in.Items, order.ItemInput{PartID: item.PartID, Quantity: item.Quantity, Price: item.Price})
		}
	}
	if id, ok := auth.FromContext(r.Context()); ok {
		in.UserID = id.UserID
	}

	created, err := h.service.CreateOrder(r.Context(), in)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create order")
		return
	}

	respondWithData(w, http.StatusCreated, "Order created successfully", created)
}

// handleListOrders scopes the list to the caller's own orders unless the caller is an admin or anonymous.
func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	var scope order.ListScope
	if id, ok := auth.FromContext(r.Context()); ok && !id.IsAdmin() {
		scope.UserID = id.UserID
	}

	orders, err := h.service.ListOrders(r.Context(), scope)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list orders")
		return
	}

	respondWithData(w, http.StatusOK, "", nonNil(orders))
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.GetOrderByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, err, "Failed to get order")
		return
	}

	respondWithData(w, http.StatusOK, "", found)
}

func (h *OrderHandler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderStatusRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	updated, err := h.service.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), order.Status(req.Status))
	if err != nil {
		respondWithServiceError(w, err, "Failed to update order status")
		return
	}

	respondWithData(w, http.StatusOK, "Order status updated", updated)
}

func (h *OrderHandler) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	in := order.UpdateOrderInput{CustomerInfo: req.CustomerInfo}
	if id, ok := auth.FromContext(r.Context()); ok && !id.IsAdmin() {
		in.RequesterID = id.UserID
	}

	updated, err := h.service.UpdateOrder(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update order")
		return
	}

	respondWithData(w, http.StatusOK, "Order updated", updated)
}

func (h *OrderHandler) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, err, "Failed to delete order")
		return
	}

	respondWithData(w, http.StatusOK, "Order deleted", nil)
}
