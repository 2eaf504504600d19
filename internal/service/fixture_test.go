package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/surfbook/internal/auth"
	"github.com/Freeeeeet/surfbook/internal/model"
	"github.com/Freeeeeet/surfbook/internal/policy"
	"github.com/Freeeeeet/surfbook/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordedEvent struct {
	Key     string
	Payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Key: key, Payload: payload})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.events))
	for _, e := range p.events {
		keys = append(keys, e.Key)
	}
	return keys
}

type fixture struct {
	t   *testing.T
	ctx context.Context

	mu  sync.Mutex
	now time.Time

	store *memory.Store
	pub   *recordingPublisher

	bookings     *BookingService
	payments     *PaymentService
	reviews      *ReviewService
	users        *UserService
	instructors  *InstructorService
	availability *AvailabilityService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		t:   t,
		ctx: context.Background(),
		now: time.Date(2030, time.June, 1, 8, 0, 0, 0, time.UTC),
		pub: &recordingPublisher{},
	}
	clock := f.clock
	logger := zaptest.NewLogger(t)

	f.store = memory.New(memory.WithClock(clock))
	f.bookings = NewBookingService(f.store, f.pub, clock, logger)
	f.payments = NewPaymentService(f.store, f.pub, clock, logger)
	f.reviews = NewReviewService(f.store, f.pub, clock, logger)
	f.users = NewUserService(f.store, auth.NewTokenService("test-secret", time.Hour), logger)
	f.instructors = NewInstructorService(f.store, clock, logger)
	f.availability = NewAvailabilityService(f.store, clock, logger)

	return f
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fixture) student() policy.Caller {
	f.t.Helper()
	u := &model.User{Email: uuid.NewString() + "@student.test", Role: model.RoleStudent}
	require.NoError(f.t, f.store.Users().Create(f.ctx, u))
	return policy.Caller{ID: u.ID, Role: u.Role}
}

func (f *fixture) admin() policy.Caller {
	f.t.Helper()
	u := &model.User{Email: uuid.NewString() + "@admin.test", Role: model.RoleAdmin}
	require.NoError(f.t, f.store.Users().Create(f.ctx, u))
	return policy.Caller{ID: u.ID, Role: u.Role}
}

// instructor создаёт пользователя-инструктора с профилем
func (f *fixture) instructor() (policy.Caller, *model.InstructorProfile) {
	f.t.Helper()
	u := &model.User{Email: uuid.NewString() + "@coach.test", Role: model.RoleInstructor}
	require.NoError(f.t, f.store.Users().Create(f.ctx, u))

	p := &model.InstructorProfile{UserID: u.ID}
	require.NoError(f.t, f.store.Instructors().Create(f.ctx, p))

	return policy.Caller{ID: u.ID, Role: u.Role}, p
}

// slot создаёт свободный слот, начинающийся через offset от текущего времени
func (f *fixture) slot(profile *model.InstructorProfile, offset time.Duration, price float64) *model.Availability {
	f.t.Helper()
	start := f.clock().Add(offset)
	a := &model.Availability{
		InstructorID: profile.ID,
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		Price:        price,
	}
	require.NoError(f.t, f.store.Availabilities().Create(f.ctx, a))
	return a
}

func (f *fixture) reserveInput(profile *model.InstructorProfile, slot *model.Availability) ReserveSlotInput {
	price := slot.Price
	return ReserveSlotInput{
		InstructorID:   profile.ID,
		AvailabilityID: slot.ID,
		BookedPrice:    &price,
		Location:       "Bondi Beach",
		BookingType:    model.BookingTypeIndividual,
	}
}

// confirmedBooking бронирует слот и проводит оплату
func (f *fixture) confirmedBooking(student policy.Caller, profile *model.InstructorProfile) *model.Booking {
	f.t.Helper()
	slot := f.slot(profile, 24*time.Hour, 50)
	booking, err := f.bookings.ReserveSlot(f.ctx, student, f.reserveInput(profile, slot))
	require.NoError(f.t, err)

	_, confirmed, err := f.payments.SetPaymentStatus(f.ctx, f.admin(), booking.Payment.ID, model.PaymentStatusCompleted)
	require.NoError(f.t, err)
	return confirmed
}

func ptrTo[T any](v T) *T {
	return &v
}
