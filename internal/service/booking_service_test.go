package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/surfbook/internal/apperr"
	"github.com/Freeeeeet/surfbook/internal/events"
	"github.com/Freeeeeet/surfbook/internal/model"
	"github.com/Freeeeeet/surfbook/internal/policy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveSlot_CreatesBookingPaymentAndBooksSlot(t *testing.T) {
	f := newFixture(t)
	student := f.student()
	_, profile := f.instructor()
	slot := f.slot(profile, 25*time.Hour, 50)

	in := f.reserveInput(profile, slot)
	in.Notes = ptrTo("first time on a board")
	in.EquipmentIncluded = true

	booking, err := f.bookings.ReserveSlot(f.ctx, student, in)
	require.NoError(t, err)

	assert.Equal(t, model.BookingStatusPending, booking.Status)
	assert.Equal(t, student.ID, booking.StudentID)
	assert.Equal(t, 50.0, booking.BookedPrice)
	assert.Equal(t, 1, booking.NumberOfStudents)
	assert.True(t, booking.EquipmentIncluded)
	require.NotNil(t, booking.Payment)
	assert.Equal(t, model.PaymentStatusPending, booking.Payment.Status)
	assert.Equal(t, 50.0, booking.Payment.Amount)

	stored, err := f.store.Availabilities().GetByID(f.ctx, slot.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsBooked)
	require.NotNil(t, stored.BookingID)
	assert.Equal(t, booking.ID, *stored.BookingID)

	payment, err := f.store.Payments().GetByBookingID(f.ctx, booking.ID)
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, booking.Payment.ID, payment.ID)

	assert.Equal(t, []string{events.KeyBookingCreated}, f.pub.keys())
}

func TestReserveSlot_SnapshotsPriceAndDuration(t *testing.T) {
	f := newFixture(t)
	student := f.student()
	_, profile := f.instructor()
	slot := f.slot(profile, 25*time.Hour, 80)

	in := f.reserveInput(profile, slot)
	in.BookedPrice = ptrTo(65.0)
	in.DurationOverride = ptrTo(90)
	in.BookingType = model.BookingTypeGroup
	in.NumberOfStudents = 4

	booking, err := f.bookings.ReserveSlot(f.ctx, student, in)
	require.NoError(t, err)
	assert.Equal(t, 65.0, booking.BookedPrice)
	assert.Equal(t, 65.0, booking.Payment.Amount)
	require.NotNil(t, booking.BookedDurationMinutes)
	assert.Equal(t, 90, *booking.BookedDurationMinutes)
	assert.Equal(t, model.BookingTypeGroup, booking.BookingType)
	assert.Equal(t, 4, booking.NumberOfStudents)
}

func TestReserveSlot_ConcurrentAttemptsOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	_, profile := f.instructor()
	slot := f.slot(profile, 48*time.Hour, 40)

	const attempts = 16
	students := make([]policy.Caller, attempts)
	for i := range students {
		students[i] = f.student()
	}

	var (
		wg        sync.WaitGroup
		start     = make(chan struct{})
		errs      = make([]error, attempts)
		successes = make([]bool, attempts)
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := f.bookings.ReserveSlot(f.ctx, students[i], f.reserveInput(profile, slot))
			errs[i] = err
			successes[i] = err == nil
		}(i)
	}
	close(start)
	wg.Wait()

	won := 0
	for i, ok := range successes {
		if ok {
			won++
			continue
		}
		assert.ErrorIs(t, errs[i], apperr.ErrAlreadyBooked)
	}
	assert.Equal(t, 1, won)

	stored, err := f.store.Availabilities().GetByID(f.ctx, slot.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsBooked)

	count, err := f.store.Bookings().CountByAvailability(f.ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestReserveSlot_FailuresLeaveNoTrace(t *testing.T) {
	f := newFixture(t)
	student := f.student()
	_, profile := f.instructor()
	_, otherProfile := f.instructor()

	open := f.slot(profile, 24*time.Hour, 50)
	past := f.slot(profile, -2*time.Hour, 50)
	taken := f.slot(profile, 30*time.Hour, 50)
	_, err := f.bookings.ReserveSlot(f.ctx, f.student(), f.reserveInput(profile, taken))
	require.NoError(t, err)

	tests := []struct {
		name   string
		caller policy.Caller
		slot   *model.Availability
		mutate func(in *ReserveSlotInput)
		want   *apperr.Error
	}{
		{
			name:   "instructor cannot book",
			caller: policy.Caller{ID: uuid.New(), Role: model.RoleInstructor},
			slot:   open,
			want:   apperr.ErrForbidden,
		},
		{
			name:   "admin cannot book",
			caller: policy.Caller{ID: uuid.New(), Role: model.RoleAdmin},
			slot:   open,
			want:   apperr.ErrForbidden,
		},
		{
			name:   "missing location",
			slot:   open,
			mutate: func(in *ReserveSlotInput) { in.Location = "  " },
			want:   apperr.ErrInvalidInput,
		},
		{
			name:   "missing price",
			slot:   open,
			mutate: func(in *ReserveSlotInput) { in.BookedPrice = nil },
			want:   apperr.ErrInvalidInput,
		},
		{
			name:   "negative price",
			slot:   open,
			mutate: func(in *ReserveSlotInput) { in.BookedPrice = ptrTo(-1.0) },
			want:   apperr.ErrInvalidInput,
		},
		{
			name:   "zero duration override",
			slot:   open,
			mutate: func(in *ReserveSlotInput) { in.DurationOverride = ptrTo(0) },
			want:   apperr.ErrInvalidInput,
		},
		{
			name: "group of one",
			slot: open,
			mutate: func(in *ReserveSlotInput) {
				in.BookingType = model.BookingTypeGroup
				in.NumberOfStudents = 1
			},
			want: apperr.ErrInvalidInput,
		},
		{
			name: "group of eleven",
			slot: open,
			mutate: func(in *ReserveSlotInput) {
				in.BookingType = model.BookingTypeGroup
				in.NumberOfStudents = 11
			},
			want: apperr.ErrInvalidInput,
		},
		{
			name:   "individual with two students",
			slot:   open,
			mutate: func(in *ReserveSlotInput) { in.NumberOfStudents = 2 },
			want:   apperr.ErrInvalidInput,
		},
		{
			name:   "unknown booking type",
			slot:   open,
			mutate: func(in *ReserveSlotInput) { in.BookingType = "PRIVATE" },
			want:   apperr.ErrInvalidInput,
		},
		{
			name:   "unknown availability",
			slot:   open,
			mutate: func(in *ReserveSlotInput) { in.AvailabilityID = uuid.New() },
			want:   apperr.ErrNotFound,
		},
		{
			name:   "slot belongs to another instructor",
			slot:   open,
			mutate: func(in *ReserveSlotInput) { in.InstructorID = otherProfile.ID },
			want:   apperr.ErrOwnershipMismatch,
		},
		{
			name: "slot in the past",
			slot: past,
			want: apperr.ErrSlotInPast,
		},
		{
			name: "slot already booked",
			slot: taken,
			want: apperr.ErrAlreadyBooked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := student
			if tt.caller.Role != "" {
				caller = tt.caller
			}
			in := f.reserveInput(profile, tt.slot)
			if tt.mutate != nil {
				tt.mutate(&in)
			}

			before, err := f.store.Availabilities().GetByID(f.ctx, tt.slot.ID)
			require.NoError(t, err)

			_, err = f.bookings.ReserveSlot(f.ctx, caller, in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v, want kind %s", err, tt.want.Kind)

			after, err := f.store.Availabilities().GetByID(f.ctx, tt.slot.ID)
			require.NoError(t, err)
			assert.Equal(t, before.IsBooked, after.IsBooked)
			assert.Equal(t, before.BookingID, after.BookingID)

			mine, err := f.store.Bookings().ListByStudent(f.ctx, student.ID)
			require.NoError(t, err)
			assert.Empty(t, mine)
		})
	}
}

func TestReserveSlot_BookedFlagAndLinkNeverDiverge(t *testing.T) {
	f := newFixture(t)
	student := f.student()
	_, profile := f.instructor()

	slots := []*model.Availability{
		f.slot(profile, 24*time.Hour, 50),
		f.slot(profile, 26*time.Hour, 50),
		f.slot(profile, 28*time.Hour, 50),
	}
	_, err := f.bookings.ReserveSlot(f.ctx, student, f.reserveInput(profile, slots[1]))
	require.NoError(t, err)

	for _, s := range slots {
		stored, err := f.store.Availabilities().GetByID(f.ctx, s.ID)
		require.NoError(t, err)

		count, err := f.store.Bookings().CountByAvailability(f.ctx, s.ID)
		require.NoError(t, err)

		assert.Equal(t, stored.IsBooked, stored.BookingID != nil)
		assert.Equal(t, stored.IsBooked, count == 1)
	}
}

func TestListBookings(t *testing.T) {
	f := newFixture(t)
	student := f.student()
	instructorCaller, profile := f.instructor()

	first, err := f.bookings.ReserveSlot(f.ctx, student, f.reserveInput(profile, f.slot(profile, 24*time.Hour, 50)))
	require.NoError(t, err)
	second, err := f.bookings.ReserveSlot(f.ctx, student, f.reserveInput(profile, f.slot(profile, 48*time.Hour, 60)))
	require.NoError(t, err)

	mine, err := f.bookings.ListForStudent(f.ctx, student)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)
	for _, b := range mine {
		require.NotNil(t, b.Availability)
		require.NotNil(t, b.Payment)
		assert.Equal(t, b.ID, b.Payment.BookingID)
	}

	theirs, err := f.bookings.ListForInstructor(f.ctx, instructorCaller)
	require.NoError(t, err)
	assert.Len(t, theirs, 2)

	_, err = f.bookings.ListForStudent(f.ctx, instructorCaller)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.bookings.ListForInstructor(f.ctx, student)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}
