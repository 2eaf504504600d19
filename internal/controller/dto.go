package controller

import (
	"time"

	"github.com/Freeeeeet/surfbook/internal/model"
	"github.com/Freeeeeet/surfbook/internal/service"
	"github.com/google/uuid"
)

// DataBody - обёртка успешного ответа
type DataBody struct {
	Data any `json:"data"`
}

type signupRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateMeRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
}

type updateProfileRequest struct {
	BirthDate          *time.Time `json:"birth_date"`
	Country            *string    `json:"country"`
	City               *string    `json:"city"`
	ZipCode            *string    `json:"zip_code"`
	BeachLocation      *string    `json:"beach_location"`
	Certification      *string    `json:"certification"`
	Bio                *string    `json:"bio"`
	Languages          []string   `json:"languages"`
	PortraitPictureURL *string    `json:"portrait_picture_url" binding:"omitempty,url"`
	Portfolio          []string   `json:"portfolio" binding:"omitempty,dive,url"`
	LevelToTeach       *string    `json:"level_to_teach"`
}

func (r updateProfileRequest) toUpdate() model.ProfileUpdate {
	return model.ProfileUpdate{
		BirthDate:          r.BirthDate,
		Country:            r.Country,
		City:               r.City,
		ZipCode:            r.ZipCode,
		BeachLocation:      r.BeachLocation,
		Certification:      r.Certification,
		Bio:                r.Bio,
		Languages:          r.Languages,
		PortraitPictureURL: r.PortraitPictureURL,
		Portfolio:          r.Portfolio,
		LevelToTeach:       r.LevelToTeach,
	}
}

// Обязательность полей слота проверяет сервис, чтобы ошибка была одной на весь пакет
type availabilityRequest struct {
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	Price           *float64   `json:"price"`
	DurationMinutes *int       `json:"duration_minutes"`
	IsRecurring     bool       `json:"is_recurring"`
	DayOfWeek       *int       `json:"day_of_week"`
}

func (r availabilityRequest) toInput() service.AvailabilityInput {
	return service.AvailabilityInput{
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		Price:           r.Price,
		DurationMinutes: r.DurationMinutes,
		IsRecurring:     r.IsRecurring,
		DayOfWeek:       r.DayOfWeek,
	}
}

type reserveSlotRequest struct {
	InstructorID      uuid.UUID `json:"instructor_id" binding:"required"`
	AvailabilityID    uuid.UUID `json:"availability_id" binding:"required"`
	BookedPrice       *float64  `json:"booked_price" binding:"required"`
	DurationOverride  *int      `json:"duration_override"`
	Location          string    `json:"location" binding:"required"`
	EquipmentIncluded bool      `json:"equipment_included"`
	BookingType       string    `json:"booking_type" binding:"omitempty,oneof=INDIVIDUAL GROUP"`
	NumberOfStudents  int       `json:"number_of_students"`
	Notes             *string   `json:"notes"`
}

func (r reserveSlotRequest) toInput() service.ReserveSlotInput {
	return service.ReserveSlotInput{
		InstructorID:      r.InstructorID,
		AvailabilityID:    r.AvailabilityID,
		BookedPrice:       r.BookedPrice,
		DurationOverride:  r.DurationOverride,
		Location:          r.Location,
		EquipmentIncluded: r.EquipmentIncluded,
		BookingType:       model.BookingType(r.BookingType),
		NumberOfStudents:  r.NumberOfStudents,
		Notes:             r.Notes,
	}
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Диапазон оценки проверяет сервис: у него свой код INVALID_RATING
type submitReviewRequest struct {
	StudentID    uuid.UUID `json:"student_id" binding:"required"`
	InstructorID uuid.UUID `json:"instructor_id" binding:"required"`
	BookingID    uuid.UUID `json:"booking_id" binding:"required"`
	Rating       int       `json:"rating"`
	Comment      *string   `json:"comment"`
}

type paymentStatusResponse struct {
	Payment *model.Payment `json:"payment"`
	Booking *model.Booking `json:"booking"`
}
