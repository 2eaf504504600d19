// Package policy содержит чистые проверки доступа по роли и владению.
// Состояния нет: все нужные идентификаторы передаёт вызывающий.
package policy

import (
	"github.com/Freeeeeet/surfbook/internal/model"
	"github.com/google/uuid"
)

// Caller - аутентифицированный инициатор операции
type Caller struct {
	ID   uuid.UUID
	Role model.Role
}

// CanReserveSlot - бронировать могут только студенты
func CanReserveSlot(c Caller) bool {
	switch c.Role {
	case model.RoleStudent:
		return true
	default:
		return false
	}
}

// CanSetPaymentStatus - статус оплаты меняет только админ (заменяет webhook платёжки)
func CanSetPaymentStatus(c Caller) bool {
	switch c.Role {
	case model.RoleAdmin:
		return true
	default:
		return false
	}
}

// CanSubmitReview - студент оставляет отзыв только от своего имени
func CanSubmitReview(c Caller, studentID uuid.UUID) bool {
	switch c.Role {
	case model.RoleStudent:
		return c.ID == studentID
	default:
		return false
	}
}

// CanManageAvailability - слоты публикует только инструктор
func CanManageAvailability(c Caller) bool {
	switch c.Role {
	case model.RoleInstructor:
		return true
	default:
		return false
	}
}

// CanEditInstructorProfile - профиль правит только его владелец
func CanEditInstructorProfile(c Caller, ownerUserID uuid.UUID) bool {
	switch c.Role {
	case model.RoleInstructor:
		return c.ID == ownerUserID
	default:
		return false
	}
}

func CanModerateInstructors(c Caller) bool {
	return c.Role == model.RoleAdmin
}

func CanListUsers(c Caller) bool {
	return c.Role == model.RoleAdmin
}

// CanListStudentBookings - студент видит свои записи, админ - для поддержки
func CanListStudentBookings(c Caller) bool {
	switch c.Role {
	case model.RoleStudent, model.RoleAdmin:
		return true
	default:
		return false
	}
}

func CanListInstructorBookings(c Caller) bool {
	switch c.Role {
	case model.RoleInstructor, model.RoleAdmin:
		return true
	default:
		return false
	}
}

func CanListStudentReviews(c Caller) bool {
	return CanListStudentBookings(c)
}
