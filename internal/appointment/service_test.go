package appointment_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/garage-platform/internal/apperr"
	"github.com/vasiliy-maslov/garage-platform/internal/appointment"
	"github.com/vasiliy-maslov/garage-platform/internal/events"
	"github.com/vasiliy-maslov/garage-platform/internal/store"
)

type recordingEmitter struct {
	mu    sync.Mutex
	types []string
}

func (e *recordingEmitter) Emit(_ context.Context, eventType, _ string, _ any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.types = append(e.types, eventType)
}

func ptr[T any](v T) *T { return &v }

func daysFromNow(n int) string {
	return time.Now().UTC().AddDate(0, 0, n).Format(appointment.DateLayout)
}

func newService() (appointment.Service, *recordingEmitter) {
	emitter := &recordingEmitter{}
	repo := appointment.NewRepository(store.NewMemoryCollection[appointment.Appointment]())
	return appointment.NewService(repo, emitter), emitter
}

func booking(date, slot string) appointment.BookingInput {
	return appointment.BookingInput{
		CustomerName: ptr("Dana Novak"),
		Email:        ptr("dana@example.com"),
		Phone:        ptr("+420 777 123 456"),
		VehicleMake:  ptr("Skoda"),
		VehicleModel: ptr("Octavia"),
		VehicleYear:  ptr(2019),
		LicensePlate: ptr("1ab 2345"),
		Services:     []string{"Oil change", " Tyre rotation "},
		Date:         ptr(date),
		TimeSlot:     ptr(slot),
	}
}

func TestService_Book(t *testing.T) {
	ctx := context.Background()
	svc, emitter := newService()

	a, err := svc.Book(ctx, booking(daysFromNow(3), "10:00"))
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.False(t, a.Approved)
	assert.False(t, a.Deleted)
	assert.Equal(t, "1AB 2345", a.LicensePlate)
	assert.Equal(t, []string{"Oil change", "Tyre rotation"}, a.Services)
	assert.Equal(t, []string{events.TypeAppointmentBooked}, emitter.types)
}

func TestService_Book_Validation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(in *appointment.BookingInput)
		wantErr  error
		wantKind apperr.Kind
	}{
		{
			name:     "missing_customer_name",
			mutate:   func(in *appointment.BookingInput) { in.CustomerName = nil },
			wantErr:  appointment.ErrMissingField,
			wantKind: apperr.KindValidation,
		},
		{
			name:     "blank_phone",
			mutate:   func(in *appointment.BookingInput) { in.Phone = ptr("  ") },
			wantErr:  appointment.ErrMissingField,
			wantKind: apperr.KindValidation,
		},
		{
			name:     "no_services",
			mutate:   func(in *appointment.BookingInput) { in.Services = nil },
			wantErr:  appointment.ErrNoServices,
			wantKind: apperr.KindValidation,
		},
		{
			name:     "blank_services",
			mutate:   func(in *appointment.BookingInput) { in.Services = []string{" "} },
			wantErr:  appointment.ErrNoServices,
			wantKind: apperr.KindValidation,
		},
		{
			name:     "malformed_date",
			mutate:   func(in *appointment.BookingInput) { in.Date = ptr("12/31/2030") },
			wantErr:  appointment.ErrInvalidDate,
			wantKind: apperr.KindValidation,
		},
		{
			name:     "past_date",
			mutate:   func(in *appointment.BookingInput) { in.Date = ptr(daysFromNow(-2)) },
			wantErr:  appointment.ErrPastDate,
			wantKind: apperr.KindValidation,
		},
		{
			name:     "slot_outside_enumeration",
			mutate:   func(in *appointment.BookingInput) { in.TimeSlot = ptr("13:00") },
			wantErr:  appointment.ErrInvalidTimeSlot,
			wantKind: apperr.KindValidation,
		},
		{
			name:     "implausible_vehicle_year",
			mutate:   func(in *appointment.BookingInput) { in.VehicleYear = ptr(1850) },
			wantErr:  appointment.ErrInvalidYear,
			wantKind: apperr.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, emitter := newService()
			in := booking(daysFromNow(5), "09:00")
			tt.mutate(&in)

			a, err := svc.Book(context.Background(), in)
			require.Error(t, err)
			assert.Nil(t, a)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			assert.Empty(t, emitter.types)
		})
	}
}

func TestService_Book_SlotConflict(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	date := daysFromNow(4)

	first, err := svc.Book(ctx, booking(date, "14:00"))
	require.NoError(t, err)

	_, err = svc.Book(ctx, booking(date, "14:00"))
	require.Error(t, err)
	assert.ErrorIs(t, err, appointment.ErrSlotTaken)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = svc.Book(ctx, booking(daysFromNow(6), "14:00"))
	require.NoError(t, err, "same slot on another day is free")

	require.NoError(t, svc.DeleteAppointment(ctx, first.ID))

	_, err = svc.Book(ctx, booking(date, "14:00"))
	assert.NoError(t, err, "soft-deleted appointments release their slot")
}

func TestService_AvailableSlots(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	date := daysFromNow(2)

	_, err := svc.Book(ctx, booking(date, "09:00"))
	require.NoError(t, err)
	_, err = svc.Book(ctx, booking(date, "16:00"))
	require.NoError(t, err)

	slots, err := svc.AvailableSlots(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "11:00", "12:00", "14:00", "15:00", "17:00"}, slots)

	_, err = svc.AvailableSlots(ctx, "tomorrow")
	assert.ErrorIs(t, err, appointment.ErrInvalidDate)
}

func TestService_UpdateAppointment(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	date := daysFromNow(8)

	a, err := svc.Book(ctx, booking(date, "10:00"))
	require.NoError(t, err)
	_, err = svc.Book(ctx, booking(date, "11:00"))
	require.NoError(t, err)

	updated, err := svc.UpdateAppointment(ctx, a.ID, appointment.BookingInput{Notes: ptr("Customer waits on site")})
	require.NoError(t, err)
	assert.Equal(t, "Customer waits on site", updated.Notes)
	assert.Equal(t, "10:00", updated.TimeSlot)

	_, err = svc.UpdateAppointment(ctx, a.ID, appointment.BookingInput{TimeSlot: ptr("11:00")})
	assert.ErrorIs(t, err, appointment.ErrSlotTaken)

	moved, err := svc.UpdateAppointment(ctx, a.ID, appointment.BookingInput{TimeSlot: ptr("12:00")})
	require.NoError(t, err)
	assert.Equal(t, "12:00", moved.TimeSlot)

	same, err := svc.UpdateAppointment(ctx, a.ID, appointment.BookingInput{TimeSlot: ptr("12:00")})
	require.NoError(t, err)
	assert.Equal(t, "12:00", same.TimeSlot)

	_, err = svc.UpdateAppointment(ctx, "missing", appointment.BookingInput{Notes: ptr("x")})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestService_UpdateAppointment_PastBooking(t *testing.T) {
	ctx := context.Background()
	repo := appointment.NewRepository(store.NewMemoryCollection[appointment.Appointment]())
	svc := appointment.NewService(repo, &recordingEmitter{})

	past := daysFromNow(-3)
	require.NoError(t, repo.Create(ctx, &appointment.Appointment{
		ID:           "appt-past",
		CustomerName: "Dana Novak",
		Email:        "dana@example.com",
		Phone:        "+420 777 123 456",
		VehicleMake:  "Skoda",
		VehicleModel: "Octavia",
		Services:     []string{"Oil change"},
		Date:         past,
		TimeSlot:     "10:00",
		CreatedAt:    time.Now().UTC(),
	}))

	resent := booking(past, "10:00")
	resent.Notes = ptr("Paid at the counter")
	updated, err := svc.UpdateAppointment(ctx, "appt-past", resent)
	require.NoError(t, err, "an unchanged past date is not re-validated")
	assert.Equal(t, "Paid at the counter", updated.Notes)
	assert.Equal(t, past, updated.Date)

	_, err = svc.UpdateAppointment(ctx, "appt-past", appointment.BookingInput{Date: ptr(daysFromNow(-1))})
	assert.ErrorIs(t, err, appointment.ErrPastDate)

	moved, err := svc.UpdateAppointment(ctx, "appt-past", appointment.BookingInput{Date: ptr(daysFromNow(2))})
	require.NoError(t, err)
	assert.Equal(t, daysFromNow(2), moved.Date)
}

func TestService_ApproveAndSoftDelete(t *testing.T) {
	ctx := context.Background()
	svc, emitter := newService()

	a, err := svc.Book(ctx, booking(daysFromNow(1), "15:00"))
	require.NoError(t, err)

	approved, err := svc.ApproveAppointment(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, approved.Approved)

	require.NoError(t, svc.DeleteAppointment(ctx, a.ID))

	kept, err := svc.GetAppointment(ctx, a.ID)
	require.NoError(t, err, "soft-deleted records stay readable")
	assert.True(t, kept.Deleted)
	assert.True(t, kept.Approved)

	active, err := svc.ListAppointments(ctx, appointment.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.ListAppointments(ctx, appointment.ListFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	err = svc.DeleteAppointment(ctx, a.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = svc.ApproveAppointment(ctx, a.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	assert.Equal(t, []string{
		events.TypeAppointmentBooked,
		events.TypeAppointmentApproved,
		events.TypeAppointmentCancelled,
	}, emitter.types)
}

func TestService_ListAppointments_ByDate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	_, err := svc.Book(ctx, booking(daysFromNow(2), "09:00"))
	require.NoError(t, err)
	_, err = svc.Book(ctx, booking(daysFromNow(3), "09:00"))
	require.NoError(t, err)

	list, err := svc.ListAppointments(ctx, appointment.ListFilter{Date: daysFromNow(3)})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, daysFromNow(3), list[0].Date)
}
