package model

import (
	"time"

	"github.com/google/uuid"
)

const DefaultDurationMinutes = 60

// Availability - слот инструктора. IsBooked == (BookingID != nil) всегда.
type Availability struct {
	ID              uuid.UUID  `json:"id"`
	InstructorID    uuid.UUID  `json:"instructor_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	DayOfWeek       *int       `json:"day_of_week,omitempty"` // 0 = Sunday, 6 = Saturday, только для recurring
	Price           float64    `json:"price"`
	DurationMinutes int        `json:"duration_minutes"`
	IsRecurring     bool       `json:"is_recurring"`
	IsBooked        bool       `json:"is_booked"`
	BookingID       *uuid.UUID `json:"booking_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Taken сообщает что слот уже занят
func (a *Availability) Taken() bool {
	return a.IsBooked || a.BookingID != nil
}
