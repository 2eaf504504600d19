package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/surfbook/internal/model"
	"github.com/Freeeeeet/surfbook/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type InstructorRepository struct {
	*base.Repository
}

func NewInstructorRepository(db base.DBTX) *InstructorRepository {
	return &InstructorRepository{Repository: base.NewRepository(db)}
}

const instructorColumns = `id, user_id, birth_date, country, city, zip_code, beach_location, certification, bio,
	languages, portrait_picture_url, portfolio, level_to_teach, verification_status,
	average_rating, total_reviews, created_at, updated_at`

func scanInstructor(row pgx.Row) (*model.InstructorProfile, error) {
	var p model.InstructorProfile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.BirthDate,
		&p.Country,
		&p.City,
		&p.ZipCode,
		&p.BeachLocation,
		&p.Certification,
		&p.Bio,
		&p.Languages,
		&p.PortraitPictureURL,
		&p.Portfolio,
		&p.LevelToTeach,
		&p.VerificationStatus,
		&p.AverageRating,
		&p.TotalReviews,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Create создаёт пустой профиль инструктора
func (r *InstructorRepository) Create(ctx context.Context, p *model.InstructorProfile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.VerificationStatus == "" {
		p.VerificationStatus = model.VerificationPending
	}
	p.Languages = nonNil(p.Languages)
	p.Portfolio = nonNil(p.Portfolio)

	query := `
		INSERT INTO instructor_profiles (id, user_id, languages, portfolio, verification_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.QueryRow(ctx, query, p.ID, p.UserID, p.Languages, p.Portfolio, p.VerificationStatus).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return base.WrapWriteError("create instructor profile", err)
	}

	return nil
}

// GetByID получает профиль по ID
func (r *InstructorRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.InstructorProfile, error) {
	return r.getOne(ctx, "get instructor by id", `SELECT `+instructorColumns+` FROM instructor_profiles WHERE id = $1`, id)
}

// GetByIDForUpdate получает профиль и блокирует строку до конца транзакции
func (r *InstructorRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.InstructorProfile, error) {
	return r.getOne(ctx, "lock instructor", `SELECT `+instructorColumns+` FROM instructor_profiles WHERE id = $1 FOR UPDATE`, id)
}

// GetByUserID получает профиль по ID пользователя
func (r *InstructorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.InstructorProfile, error) {
	return r.getOne(ctx, "get instructor by user id", `SELECT `+instructorColumns+` FROM instructor_profiles WHERE user_id = $1`, userID)
}

// ListByUserIDs получает профили для списка пользователей
func (r *InstructorRepository) ListByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]*model.InstructorProfile, error) {
	if len(userIDs) == 0 {
		return []*model.InstructorProfile{}, nil
	}
	return r.list(ctx, "list instructors by user ids", `SELECT `+instructorColumns+` FROM instructor_profiles WHERE user_id = ANY($1)`, userIDs)
}

// ListVerified получает верифицированных инструкторов, лучший рейтинг первым
func (r *InstructorRepository) ListVerified(ctx context.Context) ([]*model.InstructorProfile, error) {
	query := `
		SELECT ` + instructorColumns + `
		FROM instructor_profiles
		WHERE verification_status = 'VERIFIED'
		ORDER BY average_rating DESC, created_at ASC
	`
	return r.list(ctx, "list verified instructors", query)
}

// UpdateProfile сохраняет поля профиля. Рейтинг и статус верификации здесь не пишутся.
func (r *InstructorRepository) UpdateProfile(ctx context.Context, p *model.InstructorProfile) error {
	query := `
		UPDATE instructor_profiles
		SET birth_date = $1, country = $2, city = $3, zip_code = $4, beach_location = $5,
		    certification = $6, bio = $7, languages = $8, portrait_picture_url = $9,
		    portfolio = $10, level_to_teach = $11, updated_at = now()
		WHERE id = $12
		RETURNING updated_at
	`

	err := r.QueryRow(
		ctx, query,
		p.BirthDate,
		p.Country,
		p.City,
		p.ZipCode,
		p.BeachLocation,
		p.Certification,
		p.Bio,
		nonNil(p.Languages),
		p.PortraitPictureURL,
		nonNil(p.Portfolio),
		p.LevelToTeach,
		p.ID,
	).Scan(&p.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return fmt.Errorf("instructor profile not found")
		}
		return fmt.Errorf("update instructor profile: %w", err)
	}

	return nil
}

// SetVerificationStatus обновляет статус верификации (модерация)
func (r *InstructorRepository) SetVerificationStatus(ctx context.Context, id uuid.UUID, status model.VerificationStatus) (*model.InstructorProfile, error) {
	query := `
		UPDATE instructor_profiles
		SET verification_status = $1, updated_at = now()
		WHERE id = $2
		RETURNING ` + instructorColumns

	return r.getOne(ctx, "set verification status", query, status, id)
}

// SetRating записывает производные поля рейтинга
func (r *InstructorRepository) SetRating(ctx context.Context, id uuid.UUID, averageRating float64, totalReviews int) error {
	query := `
		UPDATE instructor_profiles
		SET average_rating = $1, total_reviews = $2, updated_at = now()
		WHERE id = $3
	`

	affected, err := r.ExecAffected(ctx, query, averageRating, totalReviews, id)
	if err != nil {
		return fmt.Errorf("set instructor rating: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("instructor profile not found")
	}

	return nil
}

func (r *InstructorRepository) getOne(ctx context.Context, op, query string, args ...any) (*model.InstructorProfile, error) {
	p, err := scanInstructor(r.QueryRow(ctx, query, args...))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (r *InstructorRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.InstructorProfile, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	profiles := []*model.InstructorProfile{}
	for rows.Next() {
		p, err := scanInstructor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan instructor: %w", err)
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return profiles, nil
}
