package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/surfbook/internal/model"
	"github.com/Freeeeeet/surfbook/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BookingRepository struct {
	*base.Repository
}

func NewBookingRepository(db base.DBTX) *BookingRepository {
	return &BookingRepository{Repository: base.NewRepository(db)}
}

const bookingColumns = `id, student_id, instructor_id, availability_id, status, booked_price, booked_duration_minutes,
	location, equipment_included, booking_type, number_of_students, student_notes, created_at, updated_at`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID,
		&b.StudentID,
		&b.InstructorID,
		&b.AvailabilityID,
		&b.Status,
		&b.BookedPrice,
		&b.BookedDurationMinutes,
		&b.Location,
		&b.EquipmentIncluded,
		&b.BookingType,
		&b.NumberOfStudents,
		&b.StudentNotes,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create создаёт новое бронирование
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}

	query := `
		INSERT INTO bookings (id, student_id, instructor_id, availability_id, status, booked_price,
		                      booked_duration_minutes, location, equipment_included, booking_type,
		                      number_of_students, student_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		booking.ID,
		booking.StudentID,
		booking.InstructorID,
		booking.AvailabilityID,
		booking.Status,
		booking.BookedPrice,
		booking.BookedDurationMinutes,
		booking.Location,
		booking.EquipmentIncluded,
		booking.BookingType,
		booking.NumberOfStudents,
		booking.StudentNotes,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		return base.WrapWriteError("create booking", err)
	}

	return nil
}

// GetByID получает бронирование по ID
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return r.getOne(ctx, "get booking by id", `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

// GetByIDForUpdate получает бронирование с блокировкой строки
func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return r.getOne(ctx, "lock booking", `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
}

// ListByStudent получает все бронирования студента
func (r *BookingRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE student_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, "list bookings by student", query, studentID)
}

// ListByInstructor получает все бронирования инструктора
func (r *BookingRepository) ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE instructor_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, "list bookings by instructor", query, instructorID)
}

// CountByAvailability считает бронирования на слот (0 или 1)
func (r *BookingRepository) CountByAvailability(ctx context.Context, availabilityID uuid.UUID) (int, error) {
	var count int
	err := r.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE availability_id = $1`, availabilityID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count bookings by availability: %w", err)
	}
	return count, nil
}

// UpdateStatus обновляет статус бронирования
func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) (*model.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING ` + bookingColumns

	return r.getOne(ctx, "update booking status", query, status, id)
}

// CompleteEndedBefore переводит подтверждённые бронирования, чьё занятие
// закончилось до t, в COMPLETED и возвращает их ID
func (r *BookingRepository) CompleteEndedBefore(ctx context.Context, t time.Time) ([]uuid.UUID, error) {
	query := `
		UPDATE bookings b
		SET status = 'COMPLETED', updated_at = now()
		FROM availabilities a
		WHERE a.id = b.availability_id
		  AND b.status = 'CONFIRMED'
		  AND a.end_time < $1
		RETURNING b.id
	`

	rows, err := r.Query(ctx, query, t)
	if err != nil {
		return nil, fmt.Errorf("complete finished bookings: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("complete finished bookings: %w", err)
	}

	return ids, nil
}

func (r *BookingRepository) getOne(ctx context.Context, op, query string, args ...any) (*model.Booking, error) {
	b, err := scanBooking(r.QueryRow(ctx, query, args...))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

func (r *BookingRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.Booking, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	bookings := []*model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookings, nil
}
