package policy

import (
	"testing"

	"github.com/Freeeeeet/surfbook/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRolePolicies(t *testing.T) {
	student := Caller{ID: uuid.New(), Role: model.RoleStudent}
	instructor := Caller{ID: uuid.New(), Role: model.RoleInstructor}
	admin := Caller{ID: uuid.New(), Role: model.RoleAdmin}

	tests := []struct {
		name   string
		check  func(Caller) bool
		allows []Caller
		denies []Caller
	}{
		{"reserve slot", CanReserveSlot, []Caller{student}, []Caller{instructor, admin}},
		{"set payment status", CanSetPaymentStatus, []Caller{admin}, []Caller{student, instructor}},
		{"manage availability", CanManageAvailability, []Caller{instructor}, []Caller{student, admin}},
		{"moderate instructors", CanModerateInstructors, []Caller{admin}, []Caller{student, instructor}},
		{"list users", CanListUsers, []Caller{admin}, []Caller{student, instructor}},
		{"list student bookings", CanListStudentBookings, []Caller{student, admin}, []Caller{instructor}},
		{"list instructor bookings", CanListInstructorBookings, []Caller{instructor, admin}, []Caller{student}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, c := range tt.allows {
				assert.True(t, tt.check(c), "role %s should be allowed", c.Role)
			}
			for _, c := range tt.denies {
				assert.False(t, tt.check(c), "role %s should be denied", c.Role)
			}
		})
	}
}

func TestCanSubmitReviewRequiresOwnStudentID(t *testing.T) {
	student := Caller{ID: uuid.New(), Role: model.RoleStudent}

	assert.True(t, CanSubmitReview(student, student.ID))
	assert.False(t, CanSubmitReview(student, uuid.New()))

	admin := Caller{ID: uuid.New(), Role: model.RoleAdmin}
	assert.False(t, CanSubmitReview(admin, admin.ID))
}

func TestCanEditInstructorProfileRequiresOwner(t *testing.T) {
	owner := Caller{ID: uuid.New(), Role: model.RoleInstructor}

	assert.True(t, CanEditInstructorProfile(owner, owner.ID))
	assert.False(t, CanEditInstructorProfile(owner, uuid.New()))
	assert.False(t, CanEditInstructorProfile(Caller{ID: owner.ID, Role: model.RoleStudent}, owner.ID))
}

func TestUnknownRoleIsDeniedEverywhere(t *testing.T) {
	c := Caller{ID: uuid.New(), Role: model.Role("SUPERUSER")}

	assert.False(t, CanReserveSlot(c))
	assert.False(t, CanSetPaymentStatus(c))
	assert.False(t, CanSubmitReview(c, c.ID))
	assert.False(t, CanManageAvailability(c))
	assert.False(t, CanListStudentBookings(c))
}
