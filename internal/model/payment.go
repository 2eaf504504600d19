package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// PaymentStatuses перечисляет все допустимые статусы оплаты
var PaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusCompleted,
	PaymentStatusFailed,
	PaymentStatusRefunded,
}

func (s PaymentStatus) Valid() bool {
	_, ok := bookingStatusByPayment[s]
	return ok
}

var bookingStatusByPayment = map[PaymentStatus]BookingStatus{
	PaymentStatusCompleted: BookingStatusConfirmed,
	PaymentStatusFailed:    BookingStatusCancelled,
	PaymentStatusRefunded:  BookingStatusRefunded,
	PaymentStatusPending:   BookingStatusPending,
}

// BookingStatus возвращает статус бронирования, соответствующий статусу оплаты.
// Таблица тотальна для всех валидных статусов.
func (s PaymentStatus) BookingStatus() (BookingStatus, bool) {
	b, ok := bookingStatusByPayment[s]
	return b, ok
}

type Payment struct {
	ID              uuid.UUID     `json:"id"`
	BookingID       uuid.UUID     `json:"booking_id"`
	Amount          float64       `json:"amount"`
	Status          PaymentStatus `json:"status"`
	TransactionDate time.Time     `json:"transaction_date"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
