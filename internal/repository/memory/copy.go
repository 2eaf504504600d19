package memory

import (
	"sort"

	"github.com/Freeeeeet/surfbook/internal/model"
	"github.com/google/uuid"
)

func ptr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func strs(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string{}, s...)
}

func copyUser(u *model.User) *model.User {
	c := *u
	c.PhoneNumber = ptr(u.PhoneNumber)
	c.InstructorProfile = nil
	return &c
}

func copyInstructor(p *model.InstructorProfile) *model.InstructorProfile {
	c := *p
	c.BirthDate = ptr(p.BirthDate)
	c.Country = ptr(p.Country)
	c.City = ptr(p.City)
	c.ZipCode = ptr(p.ZipCode)
	c.BeachLocation = ptr(p.BeachLocation)
	c.Certification = ptr(p.Certification)
	c.Bio = ptr(p.Bio)
	c.PortraitPictureURL = ptr(p.PortraitPictureURL)
	c.LevelToTeach = ptr(p.LevelToTeach)
	c.Languages = strs(p.Languages)
	c.Portfolio = strs(p.Portfolio)
	c.User = nil
	c.Availabilities = nil
	return &c
}

func copyAvailability(a *model.Availability) *model.Availability {
	c := *a
	c.DayOfWeek = ptr(a.DayOfWeek)
	c.BookingID = ptr(a.BookingID)
	return &c
}

func copyBooking(b *model.Booking) *model.Booking {
	c := *b
	c.BookedDurationMinutes = ptr(b.BookedDurationMinutes)
	c.StudentNotes = ptr(b.StudentNotes)
	c.Availability = nil
	c.Payment = nil
	return &c
}

func copyPayment(p *model.Payment) *model.Payment {
	c := *p
	return &c
}

func copyReview(r *model.Review) *model.Review {
	c := *r
	c.Comment = ptr(r.Comment)
	c.Booking = nil
	return &c
}

// newestFirst сортирует по убыванию порядка вставки
func newestFirst[T any](d *data, items []T, id func(T) uuid.UUID) {
	sort.SliceStable(items, func(i, j int) bool {
		return d.seq[id(items[i])] > d.seq[id(items[j])]
	})
}
