package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID           uuid.UUID `json:"id"`
	BookingID    uuid.UUID `json:"booking_id"`
	StudentID    uuid.UUID `json:"student_id"`
	InstructorID uuid.UUID `json:"instructor_id"`
	Rating       int       `json:"rating"`
	Comment      *string   `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	// Дополнительные поля для удобства (не из БД)
	Booking *Booking `json:"booking,omitempty"`
}

// AggregateRatings считает среднее (с округлением до 0.1) и количество по полному набору оценок
func AggregateRatings(ratings []int) (float64, int) {
	if len(ratings) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := float64(sum) / float64(len(ratings))
	return math.Round(avg*10) / 10, len(ratings)
}
