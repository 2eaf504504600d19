package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/surfbook/internal/repository/base"
	"github.com/Freeeeeet/surfbook/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const defaultTxTimeout = 30 * time.Second

// NewPool создаёт пул соединений и проверяет подключение
func NewPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// repositories - набор репозиториев поверх одного соединения (пул или tx)
type repositories struct {
	users          *UserRepository
	instructors    *InstructorRepository
	availabilities *AvailabilityRepository
	bookings       *BookingRepository
	payments       *PaymentRepository
	reviews        *ReviewRepository
}

func newRepositories(db base.DBTX) *repositories {
	return &repositories{
		users:          NewUserRepository(db),
		instructors:    NewInstructorRepository(db),
		availabilities: NewAvailabilityRepository(db),
		bookings:       NewBookingRepository(db),
		payments:       NewPaymentRepository(db),
		reviews:        NewReviewRepository(db),
	}
}

func (r *repositories) Users() store.UserRepository                 { return r.users }
func (r *repositories) Instructors() store.InstructorRepository     { return r.instructors }
func (r *repositories) Availabilities() store.AvailabilityRepository { return r.availabilities }
func (r *repositories) Bookings() store.BookingRepository           { return r.bookings }
func (r *repositories) Payments() store.PaymentRepository           { return r.payments }
func (r *repositories) Reviews() store.ReviewRepository             { return r.reviews }

// Store - PostgreSQL-реализация store.Store
type Store struct {
	*repositories
	pool   *pgxpool.Pool
	logger *zap.Logger
}

var _ store.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool, logger *zap.Logger) *Store {
	return &Store{
		repositories: newRepositories(pool),
		pool:         pool,
		logger:       logger,
	}
}

// WithTx выполняет fn в транзакции READ COMMITTED.
// Конкурентные записи сериализуются блокировками SELECT ... FOR UPDATE.
func (s *Store) WithTx(ctx context.Context, fn store.TxFunc) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTxTimeout)
		defer cancel()
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	if err := fn(ctx, newRepositories(tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error("Failed to rollback transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
