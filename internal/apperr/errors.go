package apperr

import (
	"errors"
	"fmt"
)

// Kind - стабильный код ошибки, по которому ветвятся клиенты API
type Kind string

const (
	KindNotFound             Kind = "NOT_FOUND"
	KindOwnershipMismatch    Kind = "OWNERSHIP_MISMATCH"
	KindAlreadyBooked        Kind = "ALREADY_BOOKED"
	KindSlotInPast           Kind = "SLOT_IN_PAST"
	KindInvalidInput         Kind = "INVALID_INPUT"
	KindForbidden            Kind = "FORBIDDEN"
	KindAlreadyReviewed      Kind = "ALREADY_REVIEWED"
	KindBookingNotReviewable Kind = "BOOKING_NOT_REVIEWABLE"
	KindStorageFailure       Kind = "STORAGE_FAILURE"
	KindUnauthorized         Kind = "UNAUTHORIZED"
	KindConflict             Kind = "CONFLICT"
)

// Error - типизированная ошибка ядра
type Error struct {
	Kind    Kind
	Code    string // уточнение внутри Kind, например INVALID_RATING
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает по Kind, чтобы errors.Is(err, apperr.ErrNotFound) работал для любого сообщения
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" && t.Code != e.Code {
		return false
	}
	return t.Kind == e.Kind
}

// Сентинелы для errors.Is
var (
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrOwnershipMismatch    = &Error{Kind: KindOwnershipMismatch}
	ErrAlreadyBooked        = &Error{Kind: KindAlreadyBooked}
	ErrSlotInPast           = &Error{Kind: KindSlotInPast}
	ErrInvalidInput         = &Error{Kind: KindInvalidInput}
	ErrInvalidRating        = &Error{Kind: KindInvalidInput, Code: CodeInvalidRating}
	ErrForbidden            = &Error{Kind: KindForbidden}
	ErrAlreadyReviewed      = &Error{Kind: KindAlreadyReviewed}
	ErrBookingNotReviewable = &Error{Kind: KindBookingNotReviewable}
	ErrStorageFailure       = &Error{Kind: KindStorageFailure}
	ErrUnauthorized         = &Error{Kind: KindUnauthorized}
	ErrConflict             = &Error{Kind: KindConflict}
)

const CodeInvalidRating = "INVALID_RATING"

// New создаёт ошибку заданного вида
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Newf - New с форматированием
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// InvalidRating - отдельный код внутри INVALID_INPUT
func InvalidRating(message string) error {
	return &Error{Kind: KindInvalidInput, Code: CodeInvalidRating, Message: message}
}

// Storage оборачивает инфраструктурную ошибку.
// Уже типизированные ошибки возвращаются как есть.
func Storage(err error, message string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindStorageFailure, Message: message, Err: err}
}

// KindOf возвращает вид ошибки; всё нетипизированное считается STORAGE_FAILURE
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorageFailure
}

// CodeOf возвращает уточнённый код, либо Kind если кода нет
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	return string(KindOf(err))
}
