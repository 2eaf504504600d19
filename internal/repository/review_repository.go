package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/surfbook/internal/model"
	"github.com/Freeeeeet/surfbook/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ReviewRepository struct {
	*base.Repository
}

func NewReviewRepository(db base.DBTX) *ReviewRepository {
	return &ReviewRepository{Repository: base.NewRepository(db)}
}

const reviewColumns = `id, booking_id, student_id, instructor_id, rating, comment, created_at`

func scanReview(row pgx.Row) (*model.Review, error) {
	var r model.Review
	err := row.Scan(
		&r.ID,
		&r.BookingID,
		&r.StudentID,
		&r.InstructorID,
		&r.Rating,
		&r.Comment,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create сохраняет отзыв; второй отзыв на то же бронирование упрётся в UNIQUE(booking_id)
func (r *ReviewRepository) Create(ctx context.Context, review *model.Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}

	query := `
		INSERT INTO reviews (id, booking_id, student_id, instructor_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.QueryRow(
		ctx, query,
		review.ID,
		review.BookingID,
		review.StudentID,
		review.InstructorID,
		review.Rating,
		review.Comment,
	).Scan(&review.CreatedAt)

	if err != nil {
		return base.WrapWriteError("create review", err)
	}

	return nil
}

// ExistsForBooking проверяет есть ли уже отзыв на бронирование
func (r *ReviewRepository) ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	var exists bool
	err := r.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM reviews WHERE booking_id = $1)`, bookingID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check review exists: %w", err)
	}
	return exists, nil
}

// RatingsByInstructor возвращает все оценки инструктора
func (r *ReviewRepository) RatingsByInstructor(ctx context.Context, instructorID uuid.UUID) ([]int, error) {
	rows, err := r.Query(ctx, `SELECT rating FROM reviews WHERE instructor_id = $1`, instructorID)
	if err != nil {
		return nil, fmt.Errorf("get instructor ratings: %w", err)
	}

	ratings, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("get instructor ratings: %w", err)
	}

	return ratings, nil
}

// ListByInstructor получает отзывы об инструкторе, новые первыми
func (r *ReviewRepository) ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]*model.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE instructor_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, "list reviews by instructor", query, instructorID)
}

// ListByStudent получает отзывы студента, новые первыми
func (r *ReviewRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*model.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE student_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, "list reviews by student", query, studentID)
}

func (r *ReviewRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.Review, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	reviews := []*model.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return reviews, nil
}
