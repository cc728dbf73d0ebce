package appointment

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
	ErrMissingField    = errors.New("required field is missing")
	ErrNoServices      = errors.New("at least one service must be selected")
	ErrInvalidDate     = errors.New("date must be formatted as YYYY-MM-DD")
	ErrPastDate        = errors.New("date cannot be in the past")
	ErrInvalidTimeSlot = errors.New("invalid time slot")
	ErrSlotTaken       = errors.New("time slot is already booked")
	ErrInvalidYear     = errors.New("vehicleYear is out of range")
)

type Service interface {
	Book(ctx context.Context, in BookingInput) (*Appointment, error)
	AvailableSlots(ctx context.Context, date string) ([]string, error)
	GetAppointment(ctx context.Context, id string) (*Appointment, error)
	ListAppointments(ctx context.Context, filter ListFilter) ([]Appointment, error)
	UpdateAppointment(ctx context.Context, id string, in BookingInput) (*Appointment, error)
	ApproveAppointment(ctx context.Context, id string) (*Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	events events.Emitter
	now    func() time.Time
}

func NewService(repo Repository, emitter events.Emitter) Service {
	return &service{
		repo:   repo,
		events: emitter,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Book(ctx context.Context, in BookingInput) (*Appointment, error) {
	required := []struct {
		field string
		value *string
	}{
		{"customerName", in.CustomerName},
		{"email", in.Email},
		{"phone", in.Phone},
		{"vehicleMake", in.VehicleMake},
		{"vehicleModel", in.VehicleModel},
		{"date", in.Date},
		{"timeSlot", in.TimeSlot},
	}
	for _, r := range required {
		if r.value == nil || strings.TrimSpace(*r.value) == "" {
			return nil, apperr.Invalidf(ErrMissingField, r.field, "%s is required", r.field)
		}
	}

	a := &Appointment{UserID: in.UserID, CreatedAt: s.now()}
	if err := s.apply(a, in); err != nil {
		log.Warn().Err(err).Msg("service: rejected booking input")
		return nil, err
	}
	if len(a.Services) == 0 {
		return nil, apperr.Invalid(ErrNoServices, "services")
	}

	if err := s.ensureSlotFree(ctx, a.Date, a.TimeSlot); err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate appointment id: %w", err)
	}
	a.ID = id.String()

	if err := s.repo.Create(ctx, a); err != nil {
		log.Error().Err(err).Msg("service: failed to create appointment in repository")
		return nil, fmt.Errorf("service: failed to book appointment: %w", err)
	}

	log.Info().Str("appointment_id", a.ID).Str("date", a.Date).Str("time_slot", a.TimeSlot).Msg("service: appointment booked")
	s.events.Emit(ctx, events.TypeAppointmentBooked, a.ID, a)

	return a, nil
}

func (s *service) AvailableSlots(ctx context.Context, date string) ([]string, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, apperr.Invalid(ErrInvalidDate, "date")
	}

	booked, err := s.repo.Booked(ctx, date)
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("service: failed to load booked slots")
		return nil, fmt.Errorf("service: failed to load available slots: %w", err)
	}

	taken := make(map[string]struct{}, len(booked))
	for _, a := range booked {
		taken[a.TimeSlot] = struct{}{}
	}

	free := make([]string, 0, len(TimeSlots))
	for _, slot := range TimeSlots {
		if _, ok := taken[slot]; !ok {
			free = append(free, slot)
		}
	}
	return free, nil
}

// GetAppointment returns the record even when it has been soft-deleted.
func (s *service) GetAppointment(ctx context.Context, id string) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			log.Warn().Str("appointment_id", id).Msg("service: appointment not found")
			return nil, apperr.NotFound(ErrAppointmentNotFound, id)
		}
		log.Error().Err(err).Str("appointment_id", id).Msg("service: failed to get appointment")
		return nil, fmt.Errorf("service: failed to get appointment: %w", err)
	}
	return a, nil
}

func (s *service) ListAppointments(ctx context.Context, filter ListFilter) ([]Appointment, error) {
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list appointments")
		return nil, fmt.Errorf("service: failed to list appointments: %w", err)
	}
	return list, nil
}

func (s *service) UpdateAppointment(ctx context.Context, id string, in BookingInput) (*Appointment, error) {
	current, err := s.active(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *current
	if err := s.apply(&next, in); err != nil {
		return nil, err
	}

	set := diff(current, &next)
	if len(set) == 0 {
		return current, nil
	}

	if next.Date != current.Date || next.TimeSlot != current.TimeSlot {
		if err := s.ensureSlotFree(ctx, next.Date, next.TimeSlot); err != nil {
			return nil, err
		}
	}

	return s.update(ctx, id, set, "service: appointment updated")
}

func (s *service) ApproveAppointment(ctx context.Context, id string) (*Appointment, error) {
	if _, err := s.active(ctx, id); err != nil {
		return nil, err
	}

	a, err := s.update(ctx, id, map[string]any{"approved": true}, "service: appointment approved")
	if err != nil {
		return nil, err
	}

	s.events.Emit(ctx, events.TypeAppointmentApproved, id, a)
	return a, nil
}

// DeleteAppointment soft-deletes: the record is kept with deleted set and its slot is released.
func (s *service) DeleteAppointment(ctx context.Context, id string) error {
	if _, err := s.active(ctx, id); err != nil {
		return err
	}

	a, err := s.update(ctx, id, map[string]any{"deleted": true}, "service: appointment cancelled")
	if err != nil {
		return err
	}

	s.events.Emit(ctx, events.TypeAppointmentCancelled, id, a)
	return nil
}

// active loads an appointment that has not been soft-deleted.
func (s *service) active(ctx context.Context, id string) (*Appointment, error) {
	a, err := s.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Deleted {
		log.Warn().Str("appointment_id", id).Msg("service: appointment is cancelled")
		return nil, apperr.NotFound(ErrAppointmentNotFound, id)
	}
	return a, nil
}

func (s *service) update(ctx context.Context, id string, set map[string]any, msg string) (*Appointment, error) {
	a, err := s.repo.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, apperr.NotFound(ErrAppointmentNotFound, id)
		}
		log.Error().Err(err).Str("appointment_id", id).Msg("service: failed to update appointment in repository")
		return nil, fmt.Errorf("service: failed to update appointment: %w", err)
	}

	log.Info().Str("appointment_id", id).Msg(msg)
	return a, nil
}

// ensureSlotFree is only called for a date and slot the caller does not already hold.
func (s *service) ensureSlotFree(ctx context.Context, date, slot string) error {
	n, err := s.repo.CountBooked(ctx, date, slot)
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("service: failed to check slot")
		return fmt.Errorf("service: failed to check slot availability: %w", err)
	}

	if n > 0 {
		log.Warn().Str("date", date).Str("time_slot", slot).Msg("service: slot already booked")
		return apperr.Conflict(fmt.Errorf("%w: %s %s", ErrSlotTaken, date, slot))
	}
	return nil
}

// apply validates and copies the non-nil fields of in onto a.
func (s *service) apply(a *Appointment, in BookingInput) error {
	text := []struct {
		field string
		src   *string
		dst   *string
	}{
		{"customerName", in.CustomerName, &a.CustomerName},
		{"email", in.Email, &a.Email},
		{"phone", in.Phone, &a.Phone},
		{"vehicleMake", in.VehicleMake, &a.VehicleMake},
		{"vehicleModel", in.VehicleModel, &a.VehicleModel},
	}
	for _, t := range text {
		if t.src == nil {
			continue
		}
		v := strings.TrimSpace(*t.src)
		if v == "" {
			return apperr.Invalidf(ErrMissingField, t.field, "%s is required", t.field)
		}
		*t.dst = v
	}

	if in.VehicleYear != nil {
		if *in.VehicleYear < 1900 || *in.VehicleYear > s.now().Year()+1 {
			return apperr.Invalid(ErrInvalidYear, "vehicleYear")
		}
		a.VehicleYear = *in.VehicleYear
	}
	if in.LicensePlate != nil {
		a.LicensePlate = strings.ToUpper(strings.TrimSpace(*in.LicensePlate))
	}
	if in.Notes != nil {
		a.Notes = strings.TrimSpace(*in.Notes)
	}

	if in.Services != nil {
		services := make([]string, 0, len(in.Services))
		for _, name := range in.Services {
			if name = strings.TrimSpace(name); name != "" {
				services = append(services, name)
			}
		}
		if len(services) == 0 {
			return apperr.Invalid(ErrNoServices, "services")
		}
		a.Services = services
	}

	if in.Date != nil {
		date := strings.TrimSpace(*in.Date)
		if _, err := time.Parse(DateLayout, date); err != nil {
			return apperr.Invalid(ErrInvalidDate, "date")
		}
		if date != a.Date && date < s.now().Format(DateLayout) {
			return apperr.Invalidf(ErrPastDate, "date", "date %s is in the past", date)
		}
		a.Date = date
	}
	if in.TimeSlot != nil {
		slot := strings.TrimSpace(*in.TimeSlot)
		if !validSlot(slot) {
			return apperr.Invalidf(ErrInvalidTimeSlot, "timeSlot", "invalid time slot %q, expected one of %s", slot, strings.Join(TimeSlots, ", "))
		}
		a.TimeSlot = slot
	}
	return nil
}

// diff returns the fields of next that differ from current, keyed by document field name.
func diff(current, next *Appointment) map[string]any {
	set := map[string]any{}
	add := func(field string, changed bool, v any) {
		if changed {
			set[field] = v
		}
	}

	add("customerName", current.CustomerName != next.CustomerName, next.CustomerName)
	add("email", current.Email != next.Email, next.Email)
	add("phone", current.Phone != next.Phone, next.Phone)
	add("vehicleMake", current.VehicleMake != next.VehicleMake, next.VehicleMake)
	add("vehicleModel", current.VehicleModel != next.VehicleModel, next.VehicleModel)
	add("vehicleYear", current.VehicleYear != next.VehicleYear, next.VehicleYear)
	add("licensePlate", current.LicensePlate != next.LicensePlate, next.LicensePlate)
	add("notes", current.Notes != next.Notes, next.Notes)
	add("services", strings.Join(current.Services, "\x00") != strings.Join(next.Services, "\x00"), next.Services)
	add("date", current.Date != next.Date, next.Date)
	add("timeSlot", current.TimeSlot != next.TimeSlot, next.TimeSlot)
	return set
}
