package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/surfbook/internal/model"
	"github.com/Freeeeeet/surfbook/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PaymentRepository struct {
	*base.Repository
}

func NewPaymentRepository(db base.DBTX) *PaymentRepository {
	return &PaymentRepository{Repository: base.NewRepository(db)}
}

const paymentColumns = `id, booking_id, amount, status, transaction_date, created_at, updated_at`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(
		&p.ID,
		&p.BookingID,
		&p.Amount,
		&p.Status,
		&p.TransactionDate,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create создаёт платёж для бронирования
func (r *PaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}

	query := `
		INSERT INTO payments (id, booking_id, amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING transaction_date, created_at, updated_at
	`

	err := r.QueryRow(ctx, query, payment.ID, payment.BookingID, payment.Amount, payment.Status).
		Scan(&payment.TransactionDate, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return base.WrapWriteError("create payment", err)
	}

	return nil
}

// GetByIDForUpdate получает платёж с блокировкой строки
func (r *PaymentRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`

	payment, err := scanPayment(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock payment: %w", err)
	}

	return payment, nil
}

// GetByBookingID получает платёж бронирования
func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1`

	payment, err := scanPayment(r.QueryRow(ctx, query, bookingID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment by booking id: %w", err)
	}

	return payment, nil
}

// GetByBookingIDs получает платежи для списка бронирований
func (r *PaymentRepository) GetByBookingIDs(ctx context.Context, bookingIDs []uuid.UUID) ([]*model.Payment, error) {
	if len(bookingIDs) == 0 {
		return []*model.Payment{}, nil
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = ANY($1)`

	rows, err := r.Query(ctx, query, bookingIDs)
	if err != nil {
		return nil, fmt.Errorf("get payments by booking ids: %w", err)
	}
	defer rows.Close()

	payments := []*model.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get payments by booking ids: %w", err)
	}

	return payments, nil
}

// UpdateStatus обновляет статус платежа
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) (*model.Payment, error) {
	query := `
		UPDATE payments
		SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING ` + paymentColumns

	payment, err := scanPayment(r.QueryRow(ctx, query, status, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("update payment status: %w", err)
	}

	return payment, nil
}
