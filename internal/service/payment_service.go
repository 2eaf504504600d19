package service

import (
	"context"

	"github.com/Freeeeeet/surfbook/internal/apperr"
	"github.com/Freeeeeet/surfbook/internal/events"
	"github.com/Freeeeeet/surfbook/internal/model"
	"github.com/Freeeeeet/surfbook/internal/policy"
	"github.com/Freeeeeet/surfbook/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService - единственный путь записи Payment.status и Booking.status
type PaymentService struct {
	store     store.Store
	publisher events.Publisher
	now       Clock
	logger    *zap.Logger
}

func NewPaymentService(st store.Store, publisher events.Publisher, now Clock, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		store:     st,
		publisher: publisher,
		now:       now,
		logger:    logger,
	}
}

// SetPaymentStatus меняет статус платежа и выводит из него статус бронирования
func (s *PaymentService) SetPaymentStatus(ctx context.Context, caller policy.Caller, paymentID uuid.UUID, status model.PaymentStatus) (_ *model.Payment, _ *model.Booking, err error) {
	ctx, span := startSpan(ctx, "PaymentService.SetPaymentStatus")
	defer func() { endSpan(span, err) }()

	if !policy.CanSetPaymentStatus(caller) {
		return nil, nil, apperr.New(apperr.KindForbidden, "only admins can update payment status")
	}

	bookingStatus, ok := status.BookingStatus()
	if !ok {
		return nil, nil, apperr.Newf(apperr.KindInvalidInput, "invalid payment status %q", status)
	}

	var (
		payment *model.Payment
		booking *model.Booking
	)
	err = s.store.WithTx(ctx, func(ctx context.Context, tx store.Repositories) error {
		current, err := tx.Payments().GetByIDForUpdate(ctx, paymentID)
		if err != nil {
			return apperr.Storage(err, "load payment")
		}
		if current == nil || current.BookingID == uuid.Nil {
			return apperr.New(apperr.KindNotFound, "payment not found or not linked to a booking")
		}

		payment, err = tx.Payments().UpdateStatus(ctx, paymentID, status)
		if err != nil {
			return apperr.Storage(err, "update payment status")
		}
		if payment == nil {
			return apperr.New(apperr.KindNotFound, "payment not found")
		}

		booking, err = tx.Bookings().UpdateStatus(ctx, payment.BookingID, bookingStatus)
		if err != nil {
			return apperr.Storage(err, "update booking status")
		}
		if booking == nil {
			return apperr.New(apperr.KindNotFound, "payment not linked to a booking")
		}

		return nil
	})
	if err != nil {
		return nil, nil, apperr.Storage(err, "set payment status")
	}

	booking.Payment = payment

	s.logger.Info("Payment status updated",
		zap.String("payment_id", payment.ID.String()),
		zap.String("booking_id", booking.ID.String()),
		zap.String("payment_status", string(payment.Status)),
		zap.String("booking_status", string(booking.Status)),
	)

	publish(ctx, s.publisher, s.logger, events.KeyPaymentStatusChanged, events.PaymentStatusChanged{
		PaymentID:     payment.ID,
		BookingID:     booking.ID,
		PaymentStatus: payment.Status,
		BookingStatus: booking.Status,
		OccurredAt:    s.now(),
	})

	return payment, booking, nil
}

// CompleteFinishedLessons переводит оплаченные бронирования, чьё занятие уже закончилось, в COMPLETED
func (s *PaymentService) CompleteFinishedLessons(ctx context.Context) (_ int, err error) {
	ctx, span := startSpan(ctx, "PaymentService.CompleteFinishedLessons")
	defer func() { endSpan(span, err) }()

	var completed int
	err = s.store.WithTx(ctx, func(ctx context.Context, tx store.Repositories) error {
		ids, err := tx.Bookings().CompleteEndedBefore(ctx, s.now())
		if err != nil {
			return apperr.Storage(err, "complete finished bookings")
		}
		completed = len(ids)
		return nil
	})
	if err != nil {
		return 0, apperr.Storage(err, "complete finished lessons")
	}

	if completed > 0 {
		s.logger.Info("Lessons marked completed", zap.Int("count", completed))
	}

	return completed, nil
}
