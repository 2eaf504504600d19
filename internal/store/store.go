// Package store описывает контракт хранилища сущностей.
// Реализации: internal/repository (PostgreSQL) и internal/repository/memory.
//
// Методы Get* возвращают (nil, nil), если запись не найдена.
// Методы *ForUpdate внутри транзакции блокируют строку до коммита.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/Freeeeeet/surfbook/internal/model"
	"github.com/google/uuid"
)

// ErrUniqueViolation возвращается (обёрнутой) при нарушении уникальности
var ErrUniqueViolation = errors.New("unique constraint violation")

// TxFunc выполняется внутри одной транзакции; ошибка откатывает всё
type TxFunc func(ctx context.Context, tx Repositories) error

// Store - хранилище с поддержкой транзакций.
// Методы Repositories вне WithTx выполняются без транзакции.
type Store interface {
	Repositories
	WithTx(ctx context.Context, fn TxFunc) error
}

type Repositories interface {
	Users() UserRepository
	Instructors() InstructorRepository
	Availabilities() AvailabilityRepository
	Bookings() BookingRepository
	Payments() PaymentRepository
	Reviews() ReviewRepository
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.User, error)
	UpdateContact(ctx context.Context, id uuid.UUID, firstName, lastName, phoneNumber *string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
}

type InstructorRepository interface {
	Create(ctx context.Context, profile *model.InstructorProfile) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.InstructorProfile, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.InstructorProfile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.InstructorProfile, error)
	ListByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]*model.InstructorProfile, error)
	ListVerified(ctx context.Context) ([]*model.InstructorProfile, error)
	UpdateProfile(ctx context.Context, profile *model.InstructorProfile) error
	SetVerificationStatus(ctx context.Context, id uuid.UUID, status model.VerificationStatus) (*model.InstructorProfile, error)
	SetRating(ctx context.Context, id uuid.UUID, averageRating float64, totalReviews int) error
}

type AvailabilityRepository interface {
	Create(ctx context.Context, availability *model.Availability) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Availability, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Availability, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Availability, error)
	ListOpenByInstructor(ctx context.Context, instructorID uuid.UUID, from time.Time) ([]*model.Availability, error)
	MarkBooked(ctx context.Context, id, bookingID uuid.UUID) error
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*model.Booking, error)
	ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]*model.Booking, error)
	CountByAvailability(ctx context.Context, availabilityID uuid.UUID) (int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) (*model.Booking, error)
	CompleteEndedBefore(ctx context.Context, t time.Time) ([]uuid.UUID, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.Payment, error)
	GetByBookingIDs(ctx context.Context, bookingIDs []uuid.UUID) ([]*model.Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) (*model.Payment, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error)
	RatingsByInstructor(ctx context.Context, instructorID uuid.UUID) ([]int, error)
	ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]*model.Review, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*model.Review, error)
}
