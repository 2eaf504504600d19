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

type AvailabilityRepository struct {
	*base.Repository
}

func NewAvailabilityRepository(db base.DBTX) *AvailabilityRepository {
	return &AvailabilityRepository{Repository: base.NewRepository(db)}
}

const availabilityColumns = `id, instructor_id, start_time, end_time, day_of_week, price, duration_minutes,
	is_recurring, is_booked, booking_id, created_at, updated_at`

func scanAvailability(row pgx.Row) (*model.Availability, error) {
	var a model.Availability
	err := row.Scan(
		&a.ID,
		&a.InstructorID,
		&a.StartTime,
		&a.EndTime,
		&a.DayOfWeek,
		&a.Price,
		&a.DurationMinutes,
		&a.IsRecurring,
		&a.IsBooked,
		&a.BookingID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create создаёт новый свободный слот
func (r *AvailabilityRepository) Create(ctx context.Context, a *model.Availability) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.DurationMinutes == 0 {
		a.DurationMinutes = model.DefaultDurationMinutes
	}

	query := `
		INSERT INTO availabilities (id, instructor_id, start_time, end_time, day_of_week, price, duration_minutes, is_recurring)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING is_booked, booking_id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		a.ID,
		a.InstructorID,
		a.StartTime,
		a.EndTime,
		a.DayOfWeek,
		a.Price,
		a.DurationMinutes,
		a.IsRecurring,
	).Scan(&a.IsBooked, &a.BookingID, &a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		return base.WrapWriteError("create availability", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *AvailabilityRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Availability, error) {
	return r.getOne(ctx, "get availability by id", `SELECT `+availabilityColumns+` FROM availabilities WHERE id = $1`, id)
}

// GetByIDForUpdate получает слот с блокировкой строки.
// Второй параллельный резерв ждёт здесь и видит уже занятый слот.
func (r *AvailabilityRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Availability, error) {
	return r.getOne(ctx, "lock availability", `SELECT `+availabilityColumns+` FROM availabilities WHERE id = $1 FOR UPDATE`, id)
}

// GetByIDs получает слоты по списку ID
func (r *AvailabilityRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Availability, error) {
	if len(ids) == 0 {
		return []*model.Availability{}, nil
	}
	return r.list(ctx, "get availabilities by ids", `SELECT `+availabilityColumns+` FROM availabilities WHERE id = ANY($1)`, ids)
}

// ListOpenByInstructor получает свободные слоты инструктора начиная с from
func (r *AvailabilityRepository) ListOpenByInstructor(ctx context.Context, instructorID uuid.UUID, from time.Time) ([]*model.Availability, error) {
	query := `
		SELECT ` + availabilityColumns + `
		FROM availabilities
		WHERE instructor_id = $1
		  AND is_booked = false
		  AND start_time >= $2
		ORDER BY start_time
	`
	return r.list(ctx, "list open availabilities", query, instructorID, from)
}

// MarkBooked связывает слот с бронированием
func (r *AvailabilityRepository) MarkBooked(ctx context.Context, id, bookingID uuid.UUID) error {
	query := `
		UPDATE availabilities
		SET is_booked = true, booking_id = $1, updated_at = now()
		WHERE id = $2 AND is_booked = false
	`

	affected, err := r.ExecAffected(ctx, query, bookingID, id)
	if err != nil {
		return base.WrapWriteError("mark availability booked", err)
	}

	if affected == 0 {
		return fmt.Errorf("availability %s is not open", id)
	}

	return nil
}

func (r *AvailabilityRepository) getOne(ctx context.Context, op, query string, args ...any) (*model.Availability, error) {
	a, err := scanAvailability(r.QueryRow(ctx, query, args...))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

func (r *AvailabilityRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.Availability, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	slots := []*model.Availability{}
	for rows.Next() {
		a, err := scanAvailability(rows)
		if err != nil {
			return nil, fmt.Errorf("scan availability: %w", err)
		}
		slots = append(slots, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return slots, nil
}
