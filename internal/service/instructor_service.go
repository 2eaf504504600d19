package service

import (
	"context"

	"github.com/Freeeeeet/surfbook/internal/apperr"
	"github.com/Freeeeeet/surfbook/internal/model"
	"github.com/Freeeeeet/surfbook/internal/policy"
	"github.com/Freeeeeet/surfbook/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type InstructorService struct {
	store  store.Store
	now    Clock
	logger *zap.Logger
}

func NewInstructorService(st store.Store, now Clock, logger *zap.Logger) *InstructorService {
	return &InstructorService{
		store:  st,
		now:    now,
		logger: logger,
	}
}

// ListVerified возвращает верифицированных инструкторов с данными пользователя
func (s *InstructorService) ListVerified(ctx context.Context) ([]*model.InstructorProfile, error) {
	profiles, err := s.store.Instructors().ListVerified(ctx)
	if err != nil {
		return nil, apperr.Storage(err, "list verified instructors")
	}

	userIDs := make([]uuid.UUID, 0, len(profiles))
	for _, p := range profiles {
		userIDs = append(userIDs, p.UserID)
	}

	users, err := s.store.Users().GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, apperr.Storage(err, "load instructor users")
	}

	userByID := make(map[uuid.UUID]*model.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}
	for _, p := range profiles {
		p.User = userByID[p.UserID]
	}

	return profiles, nil
}

// GetByUserID возвращает профиль инструктора и его свободные будущие слоты
func (s *InstructorService) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.InstructorProfile, error) {
	profile, err := s.store.Instructors().GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Storage(err, "load instructor profile")
	}
	if profile == nil {
		return nil, apperr.New(apperr.KindNotFound, "instructor not found")
	}

	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Storage(err, "load instructor user")
	}
	profile.User = user

	slots, err := s.store.Availabilities().ListOpenByInstructor(ctx, profile.ID, s.now())
	if err != nil {
		return nil, apperr.Storage(err, "list open availabilities")
	}
	profile.Availabilities = slots

	return profile, nil
}

// UpdateOwnProfile меняет поля профиля вызывающего инструктора.
// Рейтинг и статус верификации здесь не меняются.
func (s *InstructorService) UpdateOwnProfile(ctx context.Context, caller policy.Caller, update model.ProfileUpdate) (*model.InstructorProfile, error) {
	if !policy.CanEditInstructorProfile(caller, caller.ID) {
		return nil, apperr.New(apperr.KindForbidden, "only instructors can update their profile")
	}
	if update.Empty() {
		return nil, apperr.New(apperr.KindInvalidInput, "no fields to update")
	}

	var profile *model.InstructorProfile
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Repositories) error {
		p, err := tx.Instructors().GetByUserID(ctx, caller.ID)
		if err != nil {
			return apperr.Storage(err, "load instructor profile")
		}
		if p == nil {
			return apperr.New(apperr.KindNotFound, "instructor profile not found")
		}
		if !policy.CanEditInstructorProfile(caller, p.UserID) {
			return apperr.New(apperr.KindForbidden, "cannot edit another instructor's profile")
		}

		update.Apply(p)
		if err := tx.Instructors().UpdateProfile(ctx, p); err != nil {
			return apperr.Storage(err, "update instructor profile")
		}

		profile = p
		return nil
	})
	if err != nil {
		return nil, apperr.Storage(err, "update instructor profile")
	}

	s.logger.Info("Instructor profile updated", zap.String("instructor_id", profile.ID.String()))

	return profile, nil
}

// SetVerificationStatus - модерация инструктора админом
func (s *InstructorService) SetVerificationStatus(ctx context.Context, caller policy.Caller, instructorID uuid.UUID, status model.VerificationStatus) (*model.InstructorProfile, error) {
	if !policy.CanModerateInstructors(caller) {
		return nil, apperr.New(apperr.KindForbidden, "only admins can verify instructors")
	}
	if !status.Valid() {
		return nil, apperr.Newf(apperr.KindInvalidInput, "invalid verification status %q", status)
	}

	profile, err := s.store.Instructors().SetVerificationStatus(ctx, instructorID, status)
	if err != nil {
		return nil, apperr.Storage(err, "set verification status")
	}
	if profile == nil {
		return nil, apperr.New(apperr.KindNotFound, "instructor not found")
	}

	s.logger.Info("Instructor verification status changed",
		zap.String("instructor_id", profile.ID.String()),
		zap.String("status", string(status)),
	)

	return profile, nil
}
