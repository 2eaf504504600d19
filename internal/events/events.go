// Package events публикует доменные события после коммита транзакции.
// Потеря события не откатывает операцию: подписчики получают уведомления, а не источник истины.
package events

import (
	"context"
	"time"

	"github.com/Freeeeeet/surfbook/internal/model"
	"github.com/google/uuid"
)

// Routing keys
const (
	KeyBookingCreated       = "booking.created"
	KeyPaymentStatusChanged = "payment.status_changed"
	KeyReviewSubmitted      = "review.submitted"
)

type Publisher interface {
	Publish(ctx context.Context, key string, payload any) error
	Close() error
}

type BookingCreated struct {
	BookingID      uuid.UUID           `json:"booking_id"`
	StudentID      uuid.UUID           `json:"student_id"`
	InstructorID   uuid.UUID           `json:"instructor_id"`
	AvailabilityID uuid.UUID           `json:"availability_id"`
	BookedPrice    float64             `json:"booked_price"`
	Status         model.BookingStatus `json:"status"`
	OccurredAt     time.Time           `json:"occurred_at"`
}

type PaymentStatusChanged struct {
	PaymentID     uuid.UUID           `json:"payment_id"`
	BookingID     uuid.UUID           `json:"booking_id"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
	BookingStatus model.BookingStatus `json:"booking_status"`
	OccurredAt    time.Time           `json:"occurred_at"`
}

type ReviewSubmitted struct {
	ReviewID      uuid.UUID `json:"review_id"`
	BookingID     uuid.UUID `json:"booking_id"`
	InstructorID  uuid.UUID `json:"instructor_id"`
	Rating        int       `json:"rating"`
	AverageRating float64   `json:"average_rating"`
	TotalReviews  int       `json:"total_reviews"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Nop - публикатор по умолчанию, когда брокер не настроен
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
func (Nop) Close() error                               { return nil }
