package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/surfbook/internal/apperr"
	"github.com/Freeeeeet/surfbook/internal/model"
	"github.com/Freeeeeet/surfbook/internal/policy"
	"github.com/Freeeeeet/surfbook/internal/store"
	"go.uber.org/zap"
)

type AvailabilityService struct {
	store  store.Store
	now    Clock
	logger *zap.Logger
}

func NewAvailabilityService(st store.Store, now Clock, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		store:  st,
		now:    now,
		logger: logger,
	}
}

type AvailabilityInput struct {
	StartTime       *time.Time
	EndTime         *time.Time
	Price           *float64
	DurationMinutes *int
	IsRecurring     bool
	DayOfWeek       *int
}

func (in AvailabilityInput) validate(i int, now time.Time) error {
	if in.StartTime == nil || in.EndTime == nil || in.Price == nil {
		return apperr.Newf(apperr.KindInvalidInput, "slot %d: startTime, endTime and price are required", i)
	}
	if !in.StartTime.Before(*in.EndTime) {
		return apperr.Newf(apperr.KindInvalidInput, "slot %d: startTime must be before endTime", i)
	}
	if in.StartTime.Before(now) {
		return apperr.Newf(apperr.KindSlotInPast, "slot %d: cannot create a slot in the past", i)
	}
	if *in.Price < 0 {
		return apperr.Newf(apperr.KindInvalidInput, "slot %d: price must not be negative", i)
	}
	if in.DurationMinutes != nil && *in.DurationMinutes <= 0 {
		return apperr.Newf(apperr.KindInvalidInput, "slot %d: durationMinutes must be positive", i)
	}

	if !in.IsRecurring {
		if in.DayOfWeek != nil {
			return apperr.Newf(apperr.KindInvalidInput, "slot %d: dayOfWeek is only allowed for recurring slots", i)
		}
		return nil
	}

	if in.DayOfWeek == nil || *in.DayOfWeek < 0 || *in.DayOfWeek > 6 {
		return apperr.Newf(apperr.KindInvalidInput, "slot %d: recurring slots need dayOfWeek between 0 and 6", i)
	}
	if time.Weekday(*in.DayOfWeek) != in.StartTime.UTC().Weekday() {
		return apperr.Newf(apperr.KindInvalidInput, "slot %d: dayOfWeek does not match startTime", i)
	}

	return nil
}

// Create публикует слоты вызывающего инструктора: либо все, либо ни одного
func (s *AvailabilityService) Create(ctx context.Context, caller policy.Caller, inputs []AvailabilityInput) (_ []*model.Availability, err error) {
	ctx, span := startSpan(ctx, "AvailabilityService.Create")
	defer func() { endSpan(span, err) }()

	if !policy.CanManageAvailability(caller) {
		return nil, apperr.New(apperr.KindForbidden, "only instructors can publish availability")
	}
	if len(inputs) == 0 {
		return nil, apperr.New(apperr.KindInvalidInput, "at least one slot is required")
	}

	now := s.now()
	for i, in := range inputs {
		if err := in.validate(i, now); err != nil {
			return nil, err
		}
	}

	var created []*model.Availability
	err = s.store.WithTx(ctx, func(ctx context.Context, tx store.Repositories) error {
		profile, err := tx.Instructors().GetByUserID(ctx, caller.ID)
		if err != nil {
			return apperr.Storage(err, "load instructor profile")
		}
		if profile == nil {
			return apperr.New(apperr.KindNotFound, "instructor profile not found")
		}

		created = make([]*model.Availability, 0, len(inputs))
		for i, in := range inputs {
			duration := model.DefaultDurationMinutes
			if in.DurationMinutes != nil {
				duration = *in.DurationMinutes
			}

			a := &model.Availability{
				InstructorID:    profile.ID,
				StartTime:       in.StartTime.UTC(),
				EndTime:         in.EndTime.UTC(),
				DayOfWeek:       in.DayOfWeek,
				Price:           *in.Price,
				DurationMinutes: duration,
				IsRecurring:     in.IsRecurring,
			}
			if err := tx.Availabilities().Create(ctx, a); err != nil {
				return apperr.Storage(err, fmt.Sprintf("create slot %d", i))
			}
			created = append(created, a)
		}

		return nil
	})
	if err != nil {
		return nil, apperr.Storage(err, "create availability")
	}

	s.logger.Info("Availability created",
		zap.String("instructor_user_id", caller.ID.String()),
		zap.Int("count", len(created)),
	)

	return created, nil
}
