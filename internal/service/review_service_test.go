package service

import (
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

func reviewInput(b *model.Booking, rating int) SubmitReviewInput {
	return SubmitReviewInput{
		StudentID:    b.StudentID,
		InstructorID: b.InstructorID,
		BookingID:    b.ID,
		Rating:       rating,
	}
}

func TestScenario_BookPayReview(t *testing.T) {
	f := newFixture(t)
	student := f.student()
	admin := f.admin()
	_, profile := f.instructor()

	// Завтра в 9:00, цена 50
	tomorrow := time.Date(2030, time.June, 2, 9, 0, 0, 0, time.UTC)
	slot := f.slot(profile, tomorrow.Sub(f.clock()), 50)

	booking, err := f.bookings.ReserveSlot(f.ctx, student, f.reserveInput(profile, slot))
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusPending, booking.Status)
	assert.Equal(t, model.PaymentStatusPending, booking.Payment.Status)
	assert.Equal(t, 50.0, booking.Payment.Amount)

	stored, err := f.store.Availabilities().GetByID(f.ctx, slot.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsBooked)

	_, confirmed, err := f.payments.SetPaymentStatus(f.ctx, admin, booking.Payment.ID, model.PaymentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, confirmed.Status)

	review, err := f.reviews.SubmitReview(f.ctx, student, reviewInput(confirmed, 5))
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)

	updated, err := f.store.Instructors().GetByID(f.ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, updated.AverageRating)
	assert.Equal(t, 1, updated.TotalReviews)

	assert.Equal(t, []string{
		events.KeyBookingCreated,
		events.KeyPaymentStatusChanged,
		events.KeyReviewSubmitted,
	}, f.pub.keys())
}

func TestSubmitReview_AggregateTracksFullSet(t *testing.T) {
	f := newFixture(t)
	_, profile := f.instructor()

	steps := []struct {
		rating  int
		average float64
	}{
		{5, 5.0},
		{4, 4.5},
		{4, 4.3},
		{1, 3.5},
		{2, 3.2},
	}

	for i, step := range steps {
		student := f.student()
		booking := f.confirmedBooking(student, profile)

		_, err := f.reviews.SubmitReview(f.ctx, student, reviewInput(booking, step.rating))
		require.NoError(t, err)

		updated, err := f.store.Instructors().GetByID(f.ctx, profile.ID)
		require.NoError(t, err)
		assert.Equal(t, step.average, updated.AverageRating, "after review %d", i+1)
		assert.Equal(t, i+1, updated.TotalReviews)
	}
}

func TestSubmitReview_SecondReviewRejected(t *testing.T) {
	f := newFixture(t)
	student := f.student()
	_, profile := f.instructor()
	booking := f.confirmedBooking(student, profile)

	_, err := f.reviews.SubmitReview(f.ctx, student, reviewInput(booking, 4))
	require.NoError(t, err)

	for _, rating := range []int{1, 4, 5} {
		in := reviewInput(booking, rating)
		in.Comment = ptrTo("changed my mind")
		_, err := f.reviews.SubmitReview(f.ctx, student, in)
		assert.ErrorIs(t, err, apperr.ErrAlreadyReviewed)
	}

	updated, err := f.store.Instructors().GetByID(f.ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, updated.AverageRating)
	assert.Equal(t, 1, updated.TotalReviews)
}

func TestSubmitReview_CompletedBookingIsReviewable(t *testing.T) {
	f := newFixture(t)
	student := f.student()
	_, profile := f.instructor()
	booking := f.confirmedBooking(student, profile)

	f.advance(72 * time.Hour)
	_, err := f.payments.CompleteFinishedLessons(f.ctx)
	require.NoError(t, err)

	_, err = f.reviews.SubmitReview(f.ctx, student, reviewInput(booking, 3))
	require.NoError(t, err)
}

func TestSubmitReview_Errors(t *testing.T) {
	f := newFixture(t)
	student := f.student()
	_, profile := f.instructor()
	_, otherProfile := f.instructor()

	confirmed := f.confirmedBooking(student, profile)
	pending, err := f.bookings.ReserveSlot(f.ctx, student, f.reserveInput(profile, f.slot(profile, 50*time.Hour, 50)))
	require.NoError(t, err)

	tests := []struct {
		name   string
		caller policy.Caller
		in     SubmitReviewInput
		want   *apperr.Error
	}{
		{
			name:   "instructor cannot review",
			caller: policy.Caller{ID: student.ID, Role: model.RoleInstructor},
			in:     reviewInput(confirmed, 5),
			want:   apperr.ErrForbidden,
		},
		{
			name:   "review on behalf of someone else",
			caller: f.student(),
			in:     reviewInput(confirmed, 5),
			want:   apperr.ErrForbidden,
		},
		{
			name:   "rating too low",
			caller: student,
			in:     reviewInput(confirmed, 0),
			want:   apperr.ErrInvalidRating,
		},
		{
			name:   "rating too high",
			caller: student,
			in:     reviewInput(confirmed, 6),
			want:   apperr.ErrInvalidRating,
		},
		{
			name:   "unknown booking",
			caller: student,
			in: SubmitReviewInput{
				StudentID:    student.ID,
				InstructorID: profile.ID,
				BookingID:    uuid.New(),
				Rating:       5,
			},
			want: apperr.ErrNotFound,
		},
		{
			name:   "instructor does not match booking",
			caller: student,
			in: SubmitReviewInput{
				StudentID:    student.ID,
				InstructorID: otherProfile.ID,
				BookingID:    confirmed.ID,
				Rating:       5,
			},
			want: apperr.ErrNotFound,
		},
		{
			name:   "pending booking",
			caller: student,
			in:     reviewInput(pending, 5),
			want:   apperr.ErrBookingNotReviewable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.reviews.SubmitReview(f.ctx, tt.caller, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	updated, err := f.store.Instructors().GetByID(f.ctx, profile.ID)
	require.NoError(t, err)
	assert.Zero(t, updated.TotalReviews)
	assert.Zero(t, updated.AverageRating)

	exists, err := f.store.Reviews().ExistsForBooking(f.ctx, confirmed.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSubmitReview_InvalidRatingCode(t *testing.T) {
	f := newFixture(t)
	student := f.student()
	_, profile := f.instructor()
	booking := f.confirmedBooking(student, profile)

	_, err := f.reviews.SubmitReview(f.ctx, student, reviewInput(booking, 9))
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
	assert.Equal(t, apperr.CodeInvalidRating, apperr.CodeOf(err))
}

func TestListReviews(t *testing.T) {
	f := newFixture(t)
	student := f.student()
	_, profile := f.instructor()

	for _, rating := range []int{5, 3} {
		booking := f.confirmedBooking(student, profile)
		_, err := f.reviews.SubmitReview(f.ctx, student, reviewInput(booking, rating))
		require.NoError(t, err)
	}

	public, err := f.reviews.ListForInstructor(f.ctx, profile.ID)
	require.NoError(t, err)
	require.Len(t, public, 2)
	assert.Equal(t, 3, public[0].Rating)

	mine, err := f.reviews.ListForStudent(f.ctx, student)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = f.reviews.ListForInstructor(f.ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	instructorCaller, _ := f.instructor()
	_, err = f.reviews.ListForStudent(f.ctx, instructorCaller)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}
