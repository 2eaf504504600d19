package service

import (
	"testing"
	"time"

	"github.com/Freeeeeet/surfbook/internal/apperr"
	"github.com/Freeeeeet/surfbook/internal/events"
	"github.com/Freeeeeet/surfbook/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPaymentStatus_DerivesBookingStatus(t *testing.T) {
	want := map[model.PaymentStatus]model.BookingStatus{
		model.PaymentStatusCompleted: model.BookingStatusConfirmed,
		model.PaymentStatusFailed:    model.BookingStatusCancelled,
		model.PaymentStatusRefunded:  model.BookingStatusRefunded,
		model.PaymentStatusPending:   model.BookingStatusPending,
	}
	require.Len(t, want, len(model.PaymentStatuses))

	for _, status := range model.PaymentStatuses {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t)
			admin := f.admin()
			_, profile := f.instructor()
			booking, err := f.bookings.ReserveSlot(f.ctx, f.student(), f.reserveInput(profile, f.slot(profile, 24*time.Hour, 50)))
			require.NoError(t, err)

			// Повторное применение того же статуса даёт то же состояние
			for i := 0; i < 2; i++ {
				payment, updated, err := f.payments.SetPaymentStatus(f.ctx, admin, booking.Payment.ID, status)
				require.NoError(t, err)
				assert.Equal(t, status, payment.Status)
				assert.Equal(t, want[status], updated.Status)
				assert.Equal(t, booking.ID, updated.ID)
			}

			stored, err := f.store.Bookings().GetByID(f.ctx, booking.ID)
			require.NoError(t, err)
			assert.Equal(t, want[status], stored.Status)

			payment, err := f.store.Payments().GetByBookingID(f.ctx, booking.ID)
			require.NoError(t, err)
			assert.Equal(t, status, payment.Status)
		})
	}
}

func TestSetPaymentStatus_Transitions(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	_, profile := f.instructor()
	booking, err := f.bookings.ReserveSlot(f.ctx, f.student(), f.reserveInput(profile, f.slot(profile, 24*time.Hour, 50)))
	require.NoError(t, err)

	steps := []struct {
		payment model.PaymentStatus
		booking model.BookingStatus
	}{
		{model.PaymentStatusCompleted, model.BookingStatusConfirmed},
		{model.PaymentStatusRefunded, model.BookingStatusRefunded},
		{model.PaymentStatusFailed, model.BookingStatusCancelled},
		{model.PaymentStatusPending, model.BookingStatusPending},
	}
	for _, step := range steps {
		_, updated, err := f.payments.SetPaymentStatus(f.ctx, admin, booking.Payment.ID, step.payment)
		require.NoError(t, err)
		assert.Equal(t, step.booking, updated.Status)
	}

	assert.Equal(t, []string{
		events.KeyBookingCreated,
		events.KeyPaymentStatusChanged,
		events.KeyPaymentStatusChanged,
		events.KeyPaymentStatusChanged,
		events.KeyPaymentStatusChanged,
	}, f.pub.keys())
}

func TestSetPaymentStatus_Errors(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	student := f.student()
	_, profile := f.instructor()
	booking, err := f.bookings.ReserveSlot(f.ctx, student, f.reserveInput(profile, f.slot(profile, 24*time.Hour, 50)))
	require.NoError(t, err)

	_, _, err = f.payments.SetPaymentStatus(f.ctx, student, booking.Payment.ID, model.PaymentStatusCompleted)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, _, err = f.payments.SetPaymentStatus(f.ctx, admin, booking.Payment.ID, "PAID")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, _, err = f.payments.SetPaymentStatus(f.ctx, admin, uuid.New(), model.PaymentStatusCompleted)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	stored, err := f.store.Bookings().GetByID(f.ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusPending, stored.Status)
}

func TestCompleteFinishedLessons(t *testing.T) {
	f := newFixture(t)
	student := f.student()
	_, profile := f.instructor()

	confirmed := f.confirmedBooking(student, profile)
	pending, err := f.bookings.ReserveSlot(f.ctx, student, f.reserveInput(profile, f.slot(profile, 24*time.Hour+30*time.Minute, 50)))
	require.NoError(t, err)

	completed, err := f.payments.CompleteFinishedLessons(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, completed)

	f.advance(3 * 24 * time.Hour)

	completed, err = f.payments.CompleteFinishedLessons(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, completed)

	stored, err := f.store.Bookings().GetByID(f.ctx, confirmed.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCompleted, stored.Status)

	stored, err = f.store.Bookings().GetByID(f.ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusPending, stored.Status)

	completed, err = f.payments.CompleteFinishedLessons(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, completed)
}
