package service

import (
	"context"

	"github.com/Freeeeeet/surfbook/internal/apperr"
	"github.com/Freeeeeet/surfbook/internal/events"
	"github.com/Freeeeeet/surfbook/internal/model"
	"github.com/Freeeeeet/surfbook/internal/policy"
	"github.com/Freeeeeet/surfbook/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReviewService - единственный путь записи AverageRating/TotalReviews
type ReviewService struct {
	store     store.Store
	publisher events.Publisher
	now       Clock
	logger    *zap.Logger
}

func NewReviewService(st store.Store, publisher events.Publisher, now Clock, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		store:     st,
		publisher: publisher,
		now:       now,
		logger:    logger,
	}
}

type SubmitReviewInput struct {
	StudentID    uuid.UUID
	InstructorID uuid.UUID
	BookingID    uuid.UUID
	Rating       int
	Comment      *string
}

// SubmitReview сохраняет отзыв и пересчитывает рейтинг инструктора по всем его отзывам
func (s *ReviewService) SubmitReview(ctx context.Context, caller policy.Caller, in SubmitReviewInput) (_ *model.Review, err error) {
	ctx, span := startSpan(ctx, "ReviewService.SubmitReview")
	defer func() { endSpan(span, err) }()

	if !policy.CanSubmitReview(caller, in.StudentID) {
		return nil, apperr.New(apperr.KindForbidden, "students can only review on their own behalf")
	}
	if in.InstructorID == uuid.Nil || in.BookingID == uuid.Nil {
		return nil, apperr.New(apperr.KindInvalidInput, "instructorId and bookingId are required")
	}
	if in.Rating < model.MinRating || in.Rating > model.MaxRating {
		return nil, apperr.InvalidRating("rating must be between 1 and 5")
	}

	var (
		review       *model.Review
		averageRate  float64
		totalReviews int
	)
	err = s.store.WithTx(ctx, func(ctx context.Context, tx store.Repositories) error {
		booking, err := tx.Bookings().GetByIDForUpdate(ctx, in.BookingID)
		if err != nil {
			return apperr.Storage(err, "load booking")
		}
		if booking == nil || booking.StudentID != in.StudentID || booking.InstructorID != in.InstructorID {
			return apperr.New(apperr.KindNotFound, "booking not found")
		}
		if !booking.Status.Reviewable() {
			return apperr.New(apperr.KindBookingNotReviewable, "only confirmed or completed bookings can be reviewed")
		}

		exists, err := tx.Reviews().ExistsForBooking(ctx, booking.ID)
		if err != nil {
			return apperr.Storage(err, "check existing review")
		}
		if exists {
			return apperr.New(apperr.KindAlreadyReviewed, "this booking has already been reviewed")
		}

		// Блокировка профиля сериализует пересчёт рейтинга между отзывами одного инструктора
		profile, err := tx.Instructors().GetByIDForUpdate(ctx, booking.InstructorID)
		if err != nil {
			return apperr.Storage(err, "load instructor profile")
		}
		if profile == nil {
			return apperr.New(apperr.KindNotFound, "instructor not found")
		}

		r := &model.Review{
			BookingID:    booking.ID,
			StudentID:    booking.StudentID,
			InstructorID: booking.InstructorID,
			Rating:       in.Rating,
			Comment:      in.Comment,
		}
		if err := tx.Reviews().Create(ctx, r); err != nil {
			if isUniqueViolation(err) {
				return apperr.New(apperr.KindAlreadyReviewed, "this booking has already been reviewed")
			}
			return apperr.Storage(err, "create review")
		}

		ratings, err := tx.Reviews().RatingsByInstructor(ctx, profile.ID)
		if err != nil {
			return apperr.Storage(err, "load instructor ratings")
		}
		averageRate, totalReviews = model.AggregateRatings(ratings)

		if err := tx.Instructors().SetRating(ctx, profile.ID, averageRate, totalReviews); err != nil {
			return apperr.Storage(err, "update instructor rating")
		}

		review = r
		return nil
	})
	if err != nil {
		return nil, apperr.Storage(err, "submit review")
	}

	s.logger.Info("Review submitted",
		zap.String("review_id", review.ID.String()),
		zap.String("booking_id", review.BookingID.String()),
		zap.String("instructor_id", review.InstructorID.String()),
		zap.Int("rating", review.Rating),
		zap.Float64("average_rating", averageRate),
		zap.Int("total_reviews", totalReviews),
	)

	publish(ctx, s.publisher, s.logger, events.KeyReviewSubmitted, events.ReviewSubmitted{
		ReviewID:      review.ID,
		BookingID:     review.BookingID,
		InstructorID:  review.InstructorID,
		Rating:        review.Rating,
		AverageRating: averageRate,
		TotalReviews:  totalReviews,
		OccurredAt:    s.now(),
	})

	return review, nil
}

// ListForInstructor - публичный список отзывов об инструкторе
func (s *ReviewService) ListForInstructor(ctx context.Context, instructorID uuid.UUID) ([]*model.Review, error) {
	profile, err := s.store.Instructors().GetByID(ctx, instructorID)
	if err != nil {
		return nil, apperr.Storage(err, "load instructor profile")
	}
	if profile == nil {
		return nil, apperr.New(apperr.KindNotFound, "instructor not found")
	}

	reviews, err := s.store.Reviews().ListByInstructor(ctx, instructorID)
	if err != nil {
		return nil, apperr.Storage(err, "list instructor reviews")
	}

	return reviews, nil
}

// ListForStudent возвращает отзывы, оставленные вызывающим
func (s *ReviewService) ListForStudent(ctx context.Context, caller policy.Caller) ([]*model.Review, error) {
	if !policy.CanListStudentReviews(caller) {
		return nil, apperr.New(apperr.KindForbidden, "only students can list their reviews")
	}

	reviews, err := s.store.Reviews().ListByStudent(ctx, caller.ID)
	if err != nil {
		return nil, apperr.Storage(err, "list student reviews")
	}

	return reviews, nil
}
