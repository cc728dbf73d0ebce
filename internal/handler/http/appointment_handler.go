package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vasiliy-maslov/garage-platform/internal/appointment"
	"github.com/vasiliy-maslov/garage-platform/internal/auth"
)

type AppointmentRequest struct {
	CustomerName *string  `json:"customerName"`
	Email        *string  `json:"email" validate:"omitempty,email"`
	Phone        *string  `json:"phone"`
	VehicleMake  *string  `json:"vehicleMake"`
	VehicleModel *string  `json:"vehicleModel"`
	VehicleYear  *int     `json:"vehicleYear"`
	LicensePlate *string  `json:"licensePlate"`
	Services     []string `json:"services"`
	Date         *string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	TimeSlot     *string  `json:"timeSlot"`
	Notes        *string  `json:"notes"`
}

func (a AppointmentRequest) toInput() appointment.BookingInput {
	return appointment.BookingInput{
		CustomerName: a.CustomerName,
		Email:        a.Email,
		Phone:        a.Phone,
		VehicleMake:  a.VehicleMake,
		VehicleModel: a.VehicleModel,
		VehicleYear:  a.VehicleYear,
		LicensePlate: a.LicensePlate,
		Services:     a.Services,
		Date:         a.Date,
		TimeSlot:     a.TimeSlot,
		Notes:        a.Notes,
	}
}

type SlotsResponse struct {
	Date           string   `json:"date"`
	AvailableSlots []string `json:"availableSlots"`
}

type AppointmentHandler struct {
	service  appointment.Service
	validate *validator.Validate
}

func NewAppointmentHandler(service appointment.Service) *AppointmentHandler {
	return &AppointmentHandler{service: service, validate: newValidator()}
}

func (h *AppointmentHandler) RegisterRoutes(router chi.Router) {
	router.Post("/appointments", h.handleBook)
	router.Get("/appointments/slots", h.handleAvailableSlots)
	router.Get("/appointments/{id}", h.handleGetAppointment)
	router.Put("/appointments/{id}", h.handleUpdateAppointment)

	router.Group(func(admin chi.Router) {
		admin.Use(auth.RequireAdmin)
		admin.Get("/appointments", h.handleListAppointments)
		admin.Patch("/appointments/{id}/approve", h.handleApproveAppointment)
		admin.Delete("/appointments/{id}", h.handleDeleteAppointment)
	})
}

func (h *AppointmentHandler) handleBook(w http.ResponseWriter, r *http.Request) {
	var req AppointmentRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	in := req.toInput()
	if id, ok := auth.FromContext(r.Context()); ok {
		in.UserID = id.UserID
	}

	booked, err := h.service.Book(r.Context(), in)
	if err != nil {
		respondWithServiceError(w, err, "Failed to book appointment")
		return
	}

	respondWithData(w, http.StatusCreated, "Appointment booked successfully", booked)
}

func (h *AppointmentHandler) handleAvailableSlots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		respondWithError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}

	slots, err := h.service.AvailableSlots(r.Context(), date)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get available slots")
		return
	}

	respondWithData(w, http.StatusOK, "", SlotsResponse{Date: date, AvailableSlots: nonNil(slots)})
}

func (h *AppointmentHandler) handleGetAppointment(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.GetAppointment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, err, "Failed to get appointment")
		return
	}

	respondWithData(w, http.StatusOK, "", found)
}

func (h *AppointmentHandler) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	filter := appointment.ListFilter{Date: r.URL.Query().Get("date")}
	if raw := r.URL.Query().Get("includeDeleted"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "includeDeleted must be a boolean")
			return
		}
		filter.IncludeDeleted = include
	}

	list, err := h.service.ListAppointments(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list appointments")
		return
	}

	respondWithData(w, http.StatusOK, "", nonNil(list))
}

func (h *AppointmentHandler) handleUpdateAppointment(w http.ResponseWriter, r *http.Request) {
	var req AppointmentRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	updated, err := h.service.UpdateAppointment(r.Context(), chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		respondWithServiceError(w, err, "Failed to update appointment")
		return
	}

	respondWithData(w, http.StatusOK, "Appointment updated", updated)
}

func (h *AppointmentHandler) handleApproveAppointment(w http.ResponseWriter, r *http.Request) {
	approved, err := h.service.ApproveAppointment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, err, "Failed to approve appointment")
		return
	}

	respondWithData(w, http.StatusOK, "Appointment approved", approved)
}

func (h *AppointmentHandler) handleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAppointment(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, err, "Failed to delete appointment")
		return
	}

	respondWithData(w, http.StatusOK, "Appointment deleted", nil)
}
