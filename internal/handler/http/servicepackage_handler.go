package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vasiliy-maslov/garage-platform/internal/auth"
	"github.com/vasiliy-maslov/garage-platform/internal/servicepackage"
)

type ServicePackageRequest struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	Price           *float64 `json:"price" validate:"omitempty,gte=0"`
	Services        []string `json:"services"`
	DurationMinutes *int     `json:"durationMinutes" validate:"omitempty,gte=0"`
	ImageURL        *string  `json:"imageUrl"`
}

func (p ServicePackageRequest) toInput() servicepackage.PackageInput {
	return servicepackage.PackageInput{
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		Services:        p.Services,
		DurationMinutes: p.DurationMinutes,
		ImageURL:        p.ImageURL,
	}
}

type ServicePackageHandler struct {
	service  servicepackage.Service
	validate *validator.Validate
}

func NewServicePackageHandler(service servicepackage.Service) *ServicePackageHandler {
	return &ServicePackageHandler{service: service, validate: newValidator()}
}

func (h *ServicePackageHandler) RegisterRoutes(router chi.Router) {
	router.Get("/service-packages", h.handleListPackages)
	router.Get("/service-packages/{id}", h.handleGetPackage)

	router.Group(func(admin chi.Router) {
		admin.Use(auth.RequireAdmin)
		admin.Post("/service-packages", h.handleCreatePackage)
		admin.Put("/service-packages/{id}", h.handleUpdatePackage)
		admin.Delete("/service-packages/{id}", h.handleDeletePackage)
	})
}

func (h *ServicePackageHandler) handleCreatePackage(w http.ResponseWriter, r *http.Request) {
	var req ServicePackageRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	created, err := h.service.CreatePackage(r.Context(), req.toInput())
	if err != nil {
		respondWithServiceError(w, err, "Failed to create service package")
		return
	}

	respondWithData(w, http.StatusCreated, "Service package created successfully", created)
}

func (h *ServicePackageHandler) handleGetPackage(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.GetPackageByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, err, "Failed to get service package")
		return
	}

	respondWithData(w, http.StatusOK, "", found)
}

func (h *ServicePackageHandler) handleListPackages(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListPackages(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to list service packages")
		return
	}

	respondWithData(w, http.StatusOK, "", nonNil(list))
}

func (h *ServicePackageHandler) handleUpdatePackage(w http.ResponseWriter, r *http.Request) {
	var req ServicePackageRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	updated, err := h.service.UpdatePackage(r.Context(), chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		respondWithServiceError(w, err, "Failed to update service package")
		return
	}

	respondWithData(w, http.StatusOK, "Service package updated", updated)
}

func (h *ServicePackageHandler) handleDeletePackage(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePackage(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, err, "Failed to delete service package")
		return
	}

	respondWithData(w, http.StatusOK, "Service package deleted", nil)
}
