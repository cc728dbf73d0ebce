package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vasiliy-maslov/garage-platform/internal/auth"
	"github.com/vasiliy-maslov/garage-platform/internal/inventory"
)

// PartRequest is used for both create and update; absent fields are left unchanged on update.
type PartRequest struct {
	Name        *string  `json:"name"`
	Brand       *string  `json:"brand"`
	ModelNumber *string  `json:"modelNumber"`
	Quantity    *int     `json:"quantity" validate:"omitempty,gte=0"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Color       *string  `json:"color"`
	Dimensions  *string  `json:"dimensions"`
	ImageURL    *string  `json:"imageUrl"`
}

func (p PartRequest) toInput() inventory.PartInput {
	return inventory.PartInput{
		Name:        p.Name,
		Brand:       p.Brand,
		ModelNumber: p.ModelNumber,
		Quantity:    p.Quantity,
		Price:       p.Price,
		Color:       p.Color,
		Dimensions:  p.Dimensions,
		ImageURL:    p.ImageURL,
	}
}

type InventoryHandler struct {
	service  inventory.Service
	validate *validator.Validate
}

func NewInventoryHandler(service inventory.Service) *InventoryHandler {
	return &InventoryHandler{service: service, validate: newValidator()}
}

func (h *InventoryHandler) RegisterRoutes(router chi.Router) {
	router.Get("/inventory", h.handleListParts)
	router.Get("/inventory/{id}", h.handleGetPart)

	router.Group(func(admin chi.Router) {
		admin.Use(auth.RequireAdmin)
		admin.Post("/inventory", h.handleCreatePart)
		admin.Put("/inventory/{id}", h.handleUpdatePart)
		admin.Delete("/inventory/{id}", h.handleDeletePart)
	})
}

func (h *InventoryHandler) handleCreatePart(w http.ResponseWriter, r *http.Request) {
	var req PartRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	part, err := h.service.CreatePart(r.Context(), req.toInput())
	if err != nil {
		respondWithServiceError(w, err, "Failed to create part")
		return
	}

	respondWithData(w, http.StatusCreated, "Part created successfully", part)
}

func (h *InventoryHandler) handleGetPart(w http.ResponseWriter, r *http.Request) {
	part, err := h.service.GetPartByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, err, "Failed to get part")
		return
	}

	respondWithData(w, http.StatusOK, "", part)
}

func (h *InventoryHandler) handleListParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.service.ListParts(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to list parts")
		return
	}

	respondWithData(w, http.StatusOK, "", nonNil(parts))
}

func (h *InventoryHandler) handleUpdatePart(w http.ResponseWriter, r *http.Request) {
	var req PartRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	part, err := h.service.UpdatePart(r.Context(), chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		respondWithServiceError(w, err, "Failed to update part")
		return
	}

	respondWithData(w, http.StatusOK, "Part updated successfully", part)
}

func (h *InventoryHandler) handleDeletePart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePart(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, err, "Failed to delete part")
		return
	}

	respondWithData(w, http.StatusOK, "Part deleted successfully", nil)
}
