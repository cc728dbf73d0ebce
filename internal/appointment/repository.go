package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/vasiliy-maslov/garage-platform/internal/store"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id string) (*Appointment, error)
	List(ctx context.Context, filter ListFilter) ([]Appointment, error)
	// Booked returns the active appointments holding slots on date.
	Booked(ctx context.Context, date string) ([]Appointment, error)
	// CountBooked returns how many active appointments hold slot on date.
	CountBooked(ctx context.Context, date, slot string) (int64, error)
	Update(ctx context.Context, id string, set map[string]any) (*Appointment, error)
}

type repository struct {
	appointments store.Collection[Appointment]
}

func NewRepository(appointments store.Collection[Appointment]) Repository {
	return &repository{appointments: appointments}
}

func (r *repository) Create(ctx context.Context, a *Appointment) error {
	if err := r.appointments.Insert(ctx, a.ID, a); err != nil {
		return fmt.Errorf("repository: insert appointment: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	a, err := r.appointments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("repository: get appointment: %w", err)
	}
	return a, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Appointment, error) {
	q := store.Query{Filter: map[string]any{}, OrderBy: "createdAt", Desc: true}
	if !filter.IncludeDeleted {
		q.Filter["deleted"] = false
	}
	if filter.Date != "" {
		q.Filter["date"] = filter.Date
	}

	list, err := r.appointments.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repository: list appointments: %w", err)
	}
	return list, nil
}

func (r *repository) Booked(ctx context.Context, date string) ([]Appointment, error) {
	list, err := r.appointments.Find(ctx, store.Query{Filter: map[string]any{"date": date, "deleted": false}})
	if err != nil {
		return nil, fmt.Errorf("repository: find booked slots: %w", err)
	}
	return list, nil
}

func (r *repository) CountBooked(ctx context.Context, date, slot string) (int64, error) {
	n, err := r.appointments.Count(ctx, map[string]any{"date": date, "timeSlot": slot, "deleted": false})
	if err != nil {
		return 0, fmt.Errorf("repository: count booked slot: %w", err)
	}
	return n, nil
}

func (r *repository) Update(ctx context.Context, id string, set map[string]any) (*Appointment, error) {
	a, err := r.appointments.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("repository: update appointment: %w", err)
	}
	return a, nil
}
