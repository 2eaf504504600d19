package service

import (
	"context"
	"strings"

	"github.com/Freeeeeet/surfbook/internal/apperr"
	"github.com/Freeeeeet/surfbook/internal/events"
	"github.com/Freeeeeet/surfbook/internal/model"
	"github.com/Freeeeeet/surfbook/internal/policy"
	"github.com/Freeeeeet/surfbook/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService struct {
	store     store.Store
	publisher events.Publisher
	now       Clock
	logger    *zap.Logger
}

func NewBookingService(st store.Store, publisher events.Publisher, now Clock, logger *zap.Logger) *BookingService {
	return &BookingService{
		store:     st,
		publisher: publisher,
		now:       now,
		logger:    logger,
	}
}

// ReserveSlotInput - параметры бронирования. Студент берётся из вызывающего.
type ReserveSlotInput struct {
	InstructorID      uuid.UUID
	AvailabilityID    uuid.UUID
	BookedPrice       *float64
	DurationOverride  *int
	Location          string
	EquipmentIncluded bool
	BookingType       model.BookingType
	NumberOfStudents  int
	Notes             *string
}

func (in *ReserveSlotInput) validate() error {
	if in.InstructorID == uuid.Nil || in.AvailabilityID == uuid.Nil || in.BookedPrice == nil || strings.TrimSpace(in.Location) == "" {
		return apperr.New(apperr.KindInvalidInput, "instructorId, availabilityId, bookedPrice and location are required")
	}
	if *in.BookedPrice < 0 {
		return apperr.New(apperr.KindInvalidInput, "bookedPrice must not be negative")
	}
	if in.DurationOverride != nil && *in.DurationOverride <= 0 {
		return apperr.New(apperr.KindInvalidInput, "durationOverride must be positive")
	}

	if in.BookingType == "" {
		in.BookingType = model.BookingTypeIndividual
	}
	if in.NumberOfStudents == 0 && in.BookingType == model.BookingTypeIndividual {
		in.NumberOfStudents = 1
	}

	switch in.BookingType {
	case model.BookingTypeIndividual:
		if in.NumberOfStudents != 1 {
			return apperr.New(apperr.KindInvalidInput, "individual bookings must have exactly 1 student")
		}
	case model.BookingTypeGroup:
		if in.NumberOfStudents < model.MinGroupStudents || in.NumberOfStudents > model.MaxGroupStudents {
			return apperr.Newf(apperr.KindInvalidInput, "group bookings must have between %d and %d students",
				model.MinGroupStudents, model.MaxGroupStudents)
		}
	default:
		return apperr.Newf(apperr.KindInvalidInput, "unknown booking type %q", in.BookingType)
	}

	return nil
}

// ReserveSlot бронирует слот для студента.
// Слот, бронирование и платёж меняются в одной транзакции; из двух
// параллельных попыток на один слот успешна ровно одна.
func (s *BookingService) ReserveSlot(ctx context.Context, caller policy.Caller, in ReserveSlotInput) (_ *model.Booking, err error) {
	ctx, span := startSpan(ctx, "BookingService.ReserveSlot")
	defer func() { endSpan(span, err) }()

	if !policy.CanReserveSlot(caller) {
		return nil, apperr.New(apperr.KindForbidden, "only students can book lessons")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var booking *model.Booking
	err = s.store.WithTx(ctx, func(ctx context.Context, tx store.Repositories) error {
		// Блокируем строку слота: конкурирующая транзакция ждёт здесь
		slot, err := tx.Availabilities().GetByIDForUpdate(ctx, in.AvailabilityID)
		if err != nil {
			return apperr.Storage(err, "load availability")
		}
		if slot == nil {
			return apperr.New(apperr.KindNotFound, "availability not found")
		}
		if slot.InstructorID != in.InstructorID {
			return apperr.New(apperr.KindOwnershipMismatch, "availability does not belong to this instructor")
		}
		if slot.Taken() {
			return apperr.New(apperr.KindAlreadyBooked, "this time slot is already booked")
		}
		if slot.StartTime.Before(s.now()) {
			return apperr.New(apperr.KindSlotInPast, "cannot book a slot in the past")
		}

		b := &model.Booking{
			ID:                    uuid.New(),
			StudentID:             caller.ID,
			InstructorID:          in.InstructorID,
			AvailabilityID:        slot.ID,
			Status:                model.BookingStatusPending,
			BookedPrice:           *in.BookedPrice,
			BookedDurationMinutes: in.DurationOverride,
			Location:              strings.TrimSpace(in.Location),
			EquipmentIncluded:     in.EquipmentIncluded,
			BookingType:           in.BookingType,
			NumberOfStudents:      in.NumberOfStudents,
			StudentNotes:          in.Notes,
		}
		if err := tx.Bookings().Create(ctx, b); err != nil {
			if isUniqueViolation(err) {
				return apperr.New(apperr.KindAlreadyBooked, "this time slot is already booked")
			}
			return apperr.Storage(err, "create booking")
		}

		payment := &model.Payment{
			BookingID: b.ID,
			Amount:    b.BookedPrice,
			Status:    model.PaymentStatusPending,
		}
		if err := tx.Payments().Create(ctx, payment); err != nil {
			return apperr.Storage(err, "create payment")
		}

		if err := tx.Availabilities().MarkBooked(ctx, slot.ID, b.ID); err != nil {
			if isUniqueViolation(err) {
				return apperr.New(apperr.KindAlreadyBooked, "this time slot is already booked")
			}
			return apperr.Storage(err, "mark availability booked")
		}
		slot.IsBooked = true
		slot.BookingID = &b.ID

		b.Payment = payment
		b.Availability = slot
		booking = b
		return nil
	})
	if err != nil {
		return nil, apperr.Storage(err, "reserve slot")
	}

	s.logger.Info("Slot booked",
		zap.String("booking_id", booking.ID.String()),
		zap.String("availability_id", booking.AvailabilityID.String()),
		zap.String("student_id", booking.StudentID.String()),
	)

	publish(ctx, s.publisher, s.logger, events.KeyBookingCreated, events.BookingCreated{
		BookingID:      booking.ID,
		StudentID:      booking.StudentID,
		InstructorID:   booking.InstructorID,
		AvailabilityID: booking.AvailabilityID,
		BookedPrice:    booking.BookedPrice,
		Status:         booking.Status,
		OccurredAt:     s.now(),
	})

	return booking, nil
}

// ListForStudent возвращает бронирования вызывающего студента
func (s *BookingService) ListForStudent(ctx context.Context, caller policy.Caller) ([]*model.Booking, error) {
	if !policy.CanListStudentBookings(caller) {
		return nil, apperr.New(apperr.KindForbidden, "only students can list their bookings")
	}

	bookings, err := s.store.Bookings().ListByStudent(ctx, caller.ID)
	if err != nil {
		return nil, apperr.Storage(err, "list student bookings")
	}

	return s.attachDetails(ctx, bookings)
}

// ListForInstructor возвращает бронирования по профилю вызывающего инструктора
func (s *BookingService) ListForInstructor(ctx context.Context, caller policy.Caller) ([]*model.Booking, error) {
	if !policy.CanListInstructorBookings(caller) {
		return nil, apperr.New(apperr.KindForbidden, "only instructors can list their bookings")
	}

	profile, err := s.store.Instructors().GetByUserID(ctx, caller.ID)
	if err != nil {
		return nil, apperr.Storage(err, "load instructor profile")
	}
	if profile == nil {
		return nil, apperr.New(apperr.KindNotFound, "instructor profile not found")
	}

	bookings, err := s.store.Bookings().ListByInstructor(ctx, profile.ID)
	if err != nil {
		return nil, apperr.Storage(err, "list instructor bookings")
	}

	return s.attachDetails(ctx, bookings)
}

// attachDetails подгружает слот и платёж для каждого бронирования
func (s *BookingService) attachDetails(ctx context.Context, bookings []*model.Booking) ([]*model.Booking, error) {
	if len(bookings) == 0 {
		return bookings, nil
	}

	bookingIDs := make([]uuid.UUID, 0, len(bookings))
	slotIDs := make([]uuid.UUID, 0, len(bookings))
	for _, b := range bookings {
		bookingIDs = append(bookingIDs, b.ID)
		slotIDs = append(slotIDs, b.AvailabilityID)
	}

	slots, err := s.store.Availabilities().GetByIDs(ctx, slotIDs)
	if err != nil {
		return nil, apperr.Storage(err, "load availabilities")
	}
	payments, err := s.store.Payments().GetByBookingIDs(ctx, bookingIDs)
	if err != nil {
		return nil, apperr.Storage(err, "load payments")
	}

	slotByID := make(map[uuid.UUID]*model.Availability, len(slots))
	for _, a := range slots {
		slotByID[a.ID] = a
	}
	paymentByBooking := make(map[uuid.UUID]*model.Payment, len(payments))
	for _, p := range payments {
		paymentByBooking[p.BookingID] = p
	}

	for _, b := range bookings {
		b.Availability = slotByID[b.AvailabilityID]
		b.Payment = paymentByBooking[b.ID]
	}

	return bookings, nil
}
