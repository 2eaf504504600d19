// Package memory - in-memory реализация store.Store для тестов и локального запуска.
//
// Транзакция берёт общий мьютекс, работает с копией данных и подменяет
// данные целиком при коммите. Ошибка или паника оставляют данные нетронутыми.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Freeeeeet/surfbook/internal/model"
	"github.com/Freeeeeet/surfbook/internal/store"
	"github.com/google/uuid"
)

type data struct {
	users          map[uuid.UUID]*model.User
	instructors    map[uuid.UUID]*model.InstructorProfile
	availabilities map[uuid.UUID]*model.Availability
	bookings       map[uuid.UUID]*model.Booking
	payments       map[uuid.UUID]*model.Payment
	reviews        map[uuid.UUID]*model.Review

	// порядок вставки, чтобы сортировка при равных created_at была стабильной
	seq  map[uuid.UUID]int64
	next int64
}

func newData() *data {
	return &data{
		users:          map[uuid.UUID]*model.User{},
		instructors:    map[uuid.UUID]*model.InstructorProfile{},
		availabilities: map[uuid.UUID]*model.Availability{},
		bookings:       map[uuid.UUID]*model.Booking{},
		payments:       map[uuid.UUID]*model.Payment{},
		reviews:        map[uuid.UUID]*model.Review{},
		seq:            map[uuid.UUID]int64{},
	}
}

func (d *data) clone() *data {
	c := newData()
	for id, v := range d.users {
		c.users[id] = copyUser(v)
	}
	for id, v := range d.instructors {
		c.instructors[id] = copyInstructor(v)
	}
	for id, v := range d.availabilities {
		c.availabilities[id] = copyAvailability(v)
	}
	for id, v := range d.bookings {
		c.bookings[id] = copyBooking(v)
	}
	for id, v := range d.payments {
		c.payments[id] = copyPayment(v)
	}
	for id, v := range d.reviews {
		c.reviews[id] = copyReview(v)
	}
	for id, v := range d.seq {
		c.seq[id] = v
	}
	c.next = d.next
	return c
}

func (d *data) track(id uuid.UUID) {
	d.next++
	d.seq[id] = d.next
}

// conn - то, через что репозитории видят данные: живые (с блокировкой) или копию транзакции
type conn struct {
	data func() *data
	lock func() func()
	now  func() time.Time
}

func (c *conn) begin() (*data, func()) {
	unlock := c.lock()
	return c.data(), unlock
}

type Store struct {
	mu   sync.Mutex
	d    *data
	now  func() time.Time
	live *repositories
}

var _ store.Store = (*Store)(nil)

type Option func(*Store)

// WithClock подменяет источник времени для created_at/updated_at
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		d:   newData(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.live = newRepositories(&conn{
		data: func() *data { return s.d },
		lock: func() func() {
			s.mu.Lock()
			return s.mu.Unlock
		},
		now: s.now,
	})
	return s
}

func (s *Store) Users() store.UserRepository                 { return s.live.Users() }
func (s *Store) Instructors() store.InstructorRepository     { return s.live.Instructors() }
func (s *Store) Availabilities() store.AvailabilityRepository { return s.live.Availabilities() }
func (s *Store) Bookings() store.BookingRepository           { return s.live.Bookings() }
func (s *Store) Payments() store.PaymentRepository           { return s.live.Payments() }
func (s *Store) Reviews() store.ReviewRepository             { return s.live.Reviews() }

// WithTx сериализует транзакции общим мьютексом.
// Внутри fn нельзя обращаться к репозиториям самого Store, только к tx.
func (s *Store) WithTx(ctx context.Context, fn store.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.d.clone()
	tx := newRepositories(&conn{
		data: func() *data { return work },
		lock: func() func() { return func() {} },
		now:  s.now,
	})

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.d = work
	return nil
}

type repositories struct {
	users          *userRepository
	instructors    *instructorRepository
	availabilities *availabilityRepository
	bookings       *bookingRepository
	payments       *paymentRepository
	reviews        *reviewRepository
}

func newRepositories(c *conn) *repositories {
	return &repositories{
		users:          &userRepository{c: c},
		instructors:    &instructorRepository{c: c},
		availabilities: &availabilityRepository{c: c},
		bookings:       &bookingRepository{c: c},
		payments:       &paymentRepository{c: c},
		reviews:        &reviewRepository{c: c},
	}
}

func (r *repositories) Users() store.UserRepository                 { return r.users }
func (r *repositories) Instructors() store.InstructorRepository     { return r.instructors }
func (r *repositories) Availabilities() store.AvailabilityRepository { return r.availabilities }
func (r *repositories) Bookings() store.BookingRepository           { return r.bookings }
func (r *repositories) Payments() store.PaymentRepository           { return r.payments }
func (r *repositories) Reviews() store.ReviewRepository             { return r.reviews }

func uniqueViolation(op, constraint string) error {
	return fmt.Errorf("%s: %w (%s)", op, store.ErrUniqueViolation, constraint)
}
