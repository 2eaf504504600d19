package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/Freeeeeet/surfbook/internal/apperr"
	"github.com/Freeeeeet/surfbook/internal/auth"
	"github.com/Freeeeeet/surfbook/internal/model"
	"github.com/Freeeeeet/surfbook/internal/policy"
	"github.com/Freeeeeet/surfbook/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// TokenIssuer выпускает access-токен для пользователя
type TokenIssuer interface {
	Issue(user *model.User) (token string, expiresIn int, err error)
}

type UserService struct {
	store  store.Store
	tokens TokenIssuer
	logger *zap.Logger
}

func NewUserService(st store.Store, tokens TokenIssuer, logger *zap.Logger) *UserService {
	return &UserService{
		store:  st,
		tokens: tokens,
		logger: logger,
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// AuthResult - пользователь и выданный ему токен
type AuthResult struct {
	User      *model.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresIn int         `json:"expires_in"`
}

// Register создаёт пользователя; инструктору в той же транзакции создаётся пустой профиль
func (s *UserService) Register(ctx context.Context, in RegisterInput) (_ *AuthResult, err error) {
	ctx, span := startSpan(ctx, "UserService.Register")
	defer func() { endSpan(span, err) }()

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "email and password are required")
	}
	if !emailPattern.MatchString(email) {
		return nil, apperr.New(apperr.KindInvalidInput, "invalid email format")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Storage(err, "hash password")
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         model.SignupRole(in.Role),
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx store.Repositories) error {
		existing, err := tx.Users().GetByEmail(ctx, email)
		if err != nil {
			return apperr.Storage(err, "check existing user")
		}
		if existing != nil {
			return apperr.New(apperr.KindConflict, "user with that email already exists")
		}

		if err := tx.Users().Create(ctx, user); err != nil {
			if isUniqueViolation(err) {
				return apperr.New(apperr.KindConflict, "user with that email already exists")
			}
			return apperr.Storage(err, "create user")
		}

		if user.Role == model.RoleInstructor {
			profile := &model.InstructorProfile{UserID: user.ID}
			if err := tx.Instructors().Create(ctx, profile); err != nil {
				return apperr.Storage(err, "create instructor profile")
			}
			user.InstructorProfile = profile
		}

		return nil
	})
	if err != nil {
		return nil, apperr.Storage(err, "register user")
	}

	s.logger.Info("New user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)

	return s.issue(user)
}

// Login проверяет email и пароль и выдаёт токен
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "email and password are required")
	}

	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Storage(err, "load user")
	}
	if user == nil {
		return nil, apperr.New(apperr.KindUnauthorized, "invalid email or password")
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, apperr.New(apperr.KindUnauthorized, "invalid email or password")
		}
		return nil, apperr.Storage(err, "check password")
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))

	return s.issue(user)
}

func (s *UserService) issue(user *model.User) (*AuthResult, error) {
	token, expiresIn, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperr.Storage(err, "issue token")
	}
	return &AuthResult{User: user, Token: token, ExpiresIn: expiresIn}, nil
}

// GetMe возвращает вызывающего пользователя вместе с профилем инструктора
func (s *UserService) GetMe(ctx context.Context, caller policy.Caller) (*model.User, error) {
	user, err := s.store.Users().GetByID(ctx, caller.ID)
	if err != nil {
		return nil, apperr.Storage(err, "load user")
	}
	if user == nil {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}

	if user.Role == model.RoleInstructor {
		profile, err := s.store.Instructors().GetByUserID(ctx, user.ID)
		if err != nil {
			return nil, apperr.Storage(err, "load instructor profile")
		}
		user.InstructorProfile = profile
	}

	return user, nil
}

type UpdateMeInput struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
}

// UpdateMe меняет контактные данные; нужно хотя бы одно поле
func (s *UserService) UpdateMe(ctx context.Context, caller policy.Caller, in UpdateMeInput) (*model.User, error) {
	if in.FirstName == nil && in.LastName == nil && in.PhoneNumber == nil {
		return nil, apperr.New(apperr.KindInvalidInput, "no fields to update")
	}

	user, err := s.store.Users().UpdateContact(ctx, caller.ID, in.FirstName, in.LastName, in.PhoneNumber)
	if err != nil {
		return nil, apperr.Storage(err, "update user")
	}
	if user == nil {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}

	s.logger.Info("User updated", zap.String("user_id", user.ID.String()))

	return user, nil
}

// ListUsers - список всех пользователей для админа
func (s *UserService) ListUsers(ctx context.Context, caller policy.Caller) ([]*model.User, error) {
	if !policy.CanListUsers(caller) {
		return nil, apperr.New(apperr.KindForbidden, "only admins can list users")
	}

	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, apperr.Storage(err, "list users")
	}

	return users, nil
}
