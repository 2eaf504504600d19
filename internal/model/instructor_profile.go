package model

import (
	"time"

	"github.com/google/uuid"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
	VerificationRejected VerificationStatus = "REJECTED"
)

func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return true
	}
	return false
}

// InstructorProfile создаётся вместе с пользователем-инструктором.
// AverageRating и TotalReviews производные: их пишет только ReviewService.
type InstructorProfile struct {
	ID                 uuid.UUID          `json:"id"`
	UserID             uuid.UUID          `json:"user_id"`
	BirthDate          *time.Time         `json:"birth_date,omitempty"`
	Country            *string            `json:"country,omitempty"`
	City               *string            `json:"city,omitempty"`
	ZipCode            *string            `json:"zip_code,omitempty"`
	BeachLocation      *string            `json:"beach_location,omitempty"`
	Certification      *string            `json:"certification,omitempty"`
	Bio                *string            `json:"bio,omitempty"`
	Languages          []string           `json:"languages"`
	PortraitPictureURL *string            `json:"portrait_picture_url,omitempty"`
	Portfolio          []string           `json:"portfolio"`
	LevelToTeach       *string            `json:"level_to_teach,omitempty"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	AverageRating      float64            `json:"average_rating"`
	TotalReviews       int                `json:"total_reviews"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`

	// Дополнительные поля для удобства (не из БД)
	User           *User           `json:"user,omitempty"`
	Availabilities []*Availability `json:"availabilities,omitempty"`
}

// ProfileUpdate содержит только изменённые поля профиля (nil = не трогать)
type ProfileUpdate struct {
	BirthDate          *time.Time
	Country            *string
	City               *string
	ZipCode            *string
	BeachLocation      *string
	Certification      *string
	Bio                *string
	Languages          []string
	PortraitPictureURL *string
	Portfolio          []string
	LevelToTeach       *string
}

// Empty сообщает что в обновлении нет ни одного поля
func (u ProfileUpdate) Empty() bool {
	return u.BirthDate == nil && u.Country == nil && u.City == nil && u.ZipCode == nil &&
		u.BeachLocation == nil && u.Certification == nil && u.Bio == nil && u.Languages == nil &&
		u.PortraitPictureURL == nil && u.Portfolio == nil && u.LevelToTeach == nil
}

// Apply переносит заданные поля в профиль
func (u ProfileUpdate) Apply(p *InstructorProfile) {
	if u.BirthDate != nil {
		p.BirthDate = u.BirthDate
	}
	if u.Country != nil {
		p.Country = u.Country
	}
	if u.City != nil {
		p.City = u.City
	}
	if u.ZipCode != nil {
		p.ZipCode = u.ZipCode
	}
	if u.BeachLocation != nil {
		p.BeachLocation = u.BeachLocation
	}
	if u.Certification != nil {
		p.Certification = u.Certification
	}
	if u.Bio != nil {
		p.Bio = u.Bio
	}
	if u.Languages != nil {
		p.Languages = u.Languages
	}
	if u.PortraitPictureURL != nil {
		p.PortraitPictureURL = u.PortraitPictureURL
	}
	if u.Portfolio != nil {
		p.Portfolio = u.Portfolio
	}
	if u.LevelToTeach != nil {
		p.LevelToTeach = u.LevelToTeach
	}
}
