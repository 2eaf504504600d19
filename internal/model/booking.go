package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"   // Ожидает оплаты
	BookingStatusConfirmed BookingStatus = "CONFIRMED" // Оплачено
	BookingStatusCancelled BookingStatus = "CANCELLED" // Оплата не прошла
	BookingStatusCompleted BookingStatus = "COMPLETED" // Занятие прошло
	BookingStatusRefunded  BookingStatus = "REFUNDED"  // Деньги возвращены
)

// Reviewable сообщает можно ли оставить отзыв на бронирование
func (s BookingStatus) Reviewable() bool {
	return s == BookingStatusConfirmed || s == BookingStatusCompleted
}

type BookingType string

const (
	BookingTypeIndividual BookingType = "INDIVIDUAL"
	BookingTypeGroup      BookingType = "GROUP"
)

const (
	MinGroupStudents = 2
	MaxGroupStudents = 10
)

// Booking хранит снимок цены/длительности/места на момент бронирования
type Booking struct {
	ID                    uuid.UUID     `json:"id"`
	StudentID             uuid.UUID     `json:"student_id"`
	InstructorID          uuid.UUID     `json:"instructor_id"`
	AvailabilityID        uuid.UUID     `json:"availability_id"`
	Status                BookingStatus `json:"status"`
	BookedPrice           float64       `json:"booked_price"`
	BookedDurationMinutes *int          `json:"booked_duration_minutes,omitempty"`
	Location              string        `json:"location"`
	EquipmentIncluded     bool          `json:"equipment_included"`
	BookingType           BookingType   `json:"booking_type"`
	NumberOfStudents      int           `json:"number_of_students"`
	StudentNotes          *string       `json:"student_notes,omitempty"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`

	// Дополнительные поля для удобства (не из БД)
	Availability *Availability `json:"availability,omitempty"`
	Payment      *Payment      `json:"payment,omitempty"`
}
