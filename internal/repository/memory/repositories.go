package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/surfbook/internal/model"
	"github.com/google/uuid"
)

type userRepository struct{ c *conn }

func (r *userRepository) Create(_ context.Context, user *model.User) error {
	d, unlock := r.c.begin()
	defer unlock()

	for _, u := range d.users {
		if u.Email == user.Email {
			return uniqueViolation("create user", "users_email_key")
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if _, ok := d.users[user.ID]; ok {
		return uniqueViolation("create user", "users_pkey")
	}

	now := r.c.now()
	user.CreatedAt, user.UpdatedAt = now, now
	d.users[user.ID] = copyUser(user)
	d.track(user.ID)
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	d, unlock := r.c.begin()
	defer unlock()

	if u, ok := d.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	d, unlock := r.c.begin()
	defer unlock()

	for _, u := range d.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *userRepository) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*model.User, error) {
	d, unlock := r.c.begin()
	defer unlock()

	users := []*model.User{}
	for _, id := range ids {
		if u, ok := d.users[id]; ok {
			users = append(users, copyUser(u))
		}
	}
	return users, nil
}

func (r *userRepository) UpdateContact(_ context.Context, id uuid.UUID, firstName, lastName, phoneNumber *string) (*model.User, error) {
	d, unlock := r.c.begin()
	defer unlock()

	u, ok := d.users[id]
	if !ok {
		return nil, nil
	}
	if firstName != nil {
		u.FirstName = *firstName
	}
	if lastName != nil {
		u.LastName = *lastName
	}
	if phoneNumber != nil {
		u.PhoneNumber = ptr(phoneNumber)
	}
	u.UpdatedAt = r.c.now()
	return copyUser(u), nil
}

func (r *userRepository) List(_ context.Context) ([]*model.User, error) {
	d, unlock := r.c.begin()
	defer unlock()

	users := make([]*model.User, 0, len(d.users))
	for _, u := range d.users {
		users = append(users, copyUser(u))
	}
	newestFirst(d, users, func(u *model.User) uuid.UUID { return u.ID })
	return users, nil
}

type instructorRepository struct{ c *conn }

func (r *instructorRepository) Create(_ context.Context, p *model.InstructorProfile) error {
	d, unlock := r.c.begin()
	defer unlock()

	if _, ok := d.users[p.UserID]; !ok {
		return fmt.Errorf("create instructor profile: user %s does not exist", p.UserID)
	}
	for _, existing := range d.instructors {
		if existing.UserID == p.UserID {
			return uniqueViolation("create instructor profile", "instructor_profiles_user_id_key")
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.VerificationStatus == "" {
		p.VerificationStatus = model.VerificationPending
	}
	p.Languages = strs(p.Languages)
	p.Portfolio = strs(p.Portfolio)

	now := r.c.now()
	p.CreatedAt, p.UpdatedAt = now, now
	d.instructors[p.ID] = copyInstructor(p)
	d.track(p.ID)
	return nil
}

func (r *instructorRepository) GetByID(_ context.Context, id uuid.UUID) (*model.InstructorProfile, error) {
	d, unlock := r.c.begin()
	defer unlock()

	if p, ok := d.instructors[id]; ok {
		return copyInstructor(p), nil
	}
	return nil, nil
}

// GetByIDForUpdate: транзакции уже сериализованы мьютексом Store
func (r *instructorRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.InstructorProfile, error) {
	return r.GetByID(ctx, id)
}

func (r *instructorRepository) GetByUserID(_ context.Context, userID uuid.UUID) (*model.InstructorProfile, error) {
	d, unlock := r.c.begin()
	defer unlock()

	for _, p := range d.instructors {
		if p.UserID == userID {
			return copyInstructor(p), nil
		}
	}
	return nil, nil
}

func (r *instructorRepository) ListByUserIDs(_ context.Context, userIDs []uuid.UUID) ([]*model.InstructorProfile, error) {
	d, unlock := r.c.begin()
	defer unlock()

	wanted := make(map[uuid.UUID]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}

	profiles := []*model.InstructorProfile{}
	for _, p := range d.instructors {
		if wanted[p.UserID] {
			profiles = append(profiles, copyInstructor(p))
		}
	}
	return profiles, nil
}

func (r *instructorRepository) ListVerified(_ context.Context) ([]*model.InstructorProfile, error) {
	d, unlock := r.c.begin()
	defer unlock()

	profiles := []*model.InstructorProfile{}
	for _, p := range d.instructors {
		if p.VerificationStatus == model.VerificationVerified {
			profiles = append(profiles, copyInstructor(p))
		}
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		if profiles[i].AverageRating != profiles[j].AverageRating {
			return profiles[i].AverageRating > profiles[j].AverageRating
		}
		return d.seq[profiles[i].ID] < d.seq[profiles[j].ID]
	})
	return profiles, nil
}

func (r *instructorRepository) UpdateProfile(_ context.Context, p *model.InstructorProfile) error {
	d, unlock := r.c.begin()
	defer unlock()

	stored, ok := d.instructors[p.ID]
	if !ok {
		return fmt.Errorf("instructor profile not found")
	}

	updated := copyInstructor(p)
	updated.UserID = stored.UserID
	updated.VerificationStatus = stored.VerificationStatus
	updated.AverageRating = stored.AverageRating
	updated.TotalReviews = stored.TotalReviews
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = r.c.now()
	d.instructors[p.ID] = updated

	p.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *instructorRepository) SetVerificationStatus(_ context.Context, id uuid.UUID, status model.VerificationStatus) (*model.InstructorProfile, error) {
	d, unlock := r.c.begin()
	defer unlock()

	p, ok := d.instructors[id]
	if !ok {
		return nil, nil
	}
	p.VerificationStatus = status
	p.UpdatedAt = r.c.now()
	return copyInstructor(p), nil
}

func (r *instructorRepository) SetRating(_ context.Context, id uuid.UUID, averageRating float64, totalReviews int) error {
	d, unlock := r.c.begin()
	defer unlock()

	p, ok := d.instructors[id]
	if !ok {
		return fmt.Errorf("instructor profile not found")
	}
	p.AverageRating = averageRating
	p.TotalReviews = totalReviews
	p.UpdatedAt = r.c.now()
	return nil
}

type availabilityRepository struct{ c *conn }

func (r *availabilityRepository) Create(_ context.Context, a *model.Availability) error {
	d, unlock := r.c.begin()
	defer unlock()

	if _, ok := d.instructors[a.InstructorID]; !ok {
		return fmt.Errorf("create availability: instructor %s does not exist", a.InstructorID)
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.DurationMinutes == 0 {
		a.DurationMinutes = model.DefaultDurationMinutes
	}
	a.IsBooked = false
	a.BookingID = nil

	now := r.c.now()
	a.CreatedAt, a.UpdatedAt = now, now
	d.availabilities[a.ID] = copyAvailability(a)
	d.track(a.ID)
	return nil
}

func (r *availabilityRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Availability, error) {
	d, unlock := r.c.begin()
	defer unlock()

	if a, ok := d.availabilities[id]; ok {
		return copyAvailability(a), nil
	}
	return nil, nil
}

func (r *availabilityRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Availability, error) {
	return r.GetByID(ctx, id)
}

func (r *availabilityRepository) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*model.Availability, error) {
	d, unlock := r.c.begin()
	defer unlock()

	slots := []*model.Availability{}
	for _, id := range ids {
		if a, ok := d.availabilities[id]; ok {
			slots = append(slots, copyAvailability(a))
		}
	}
	return slots, nil
}

func (r *availabilityRepository) ListOpenByInstructor(_ context.Context, instructorID uuid.UUID, from time.Time) ([]*model.Availability, error) {
	d, unlock := r.c.begin()
	defer unlock()

	slots := []*model.Availability{}
	for _, a := range d.availabilities {
		if a.InstructorID == instructorID && !a.IsBooked && !a.StartTime.Before(from) {
			slots = append(slots, copyAvailability(a))
		}
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].StartTime.Before(slots[j].StartTime)
	})
	return slots, nil
}

func (r *availabilityRepository) MarkBooked(_ context.Context, id, bookingID uuid.UUID) error {
	d, unlock := r.c.begin()
	defer unlock()

	a, ok := d.availabilities[id]
	if !ok || a.IsBooked {
		return fmt.Errorf("availability %s is not open", id)
	}
	for _, other := range d.availabilities {
		if other.BookingID != nil && *other.BookingID == bookingID {
			return uniqueViolation("mark availability booked", "availabilities_booking_id_key")
		}
	}

	a.IsBooked = true
	a.BookingID = &bookingID
	a.UpdatedAt = r.c.now()
	return nil
}

type bookingRepository struct{ c *conn }

func (r *bookingRepository) Create(_ context.Context, b *model.Booking) error {
	d, unlock := r.c.begin()
	defer unlock()

	if _, ok := d.availabilities[b.AvailabilityID]; !ok {
		return fmt.Errorf("create booking: availability %s does not exist", b.AvailabilityID)
	}
	for _, existing := range d.bookings {
		if existing.AvailabilityID == b.AvailabilityID {
			return uniqueViolation("create booking", "bookings_availability_id_key")
		}
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	now := r.c.now()
	b.CreatedAt, b.UpdatedAt = now, now
	d.bookings[b.ID] = copyBooking(b)
	d.track(b.ID)
	return nil
}

func (r *bookingRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	d, unlock := r.c.begin()
	defer unlock()

	if b, ok := d.bookings[id]; ok {
		return copyBooking(b), nil
	}
	return nil, nil
}

func (r *bookingRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r *bookingRepository) ListByStudent(_ context.Context, studentID uuid.UUID) ([]*model.Booking, error) {
	return r.filter(func(b *model.Booking) bool { return b.StudentID == studentID }), nil
}

func (r *bookingRepository) ListByInstructor(_ context.Context, instructorID uuid.UUID) ([]*model.Booking, error) {
	return r.filter(func(b *model.Booking) bool { return b.InstructorID == instructorID }), nil
}

func (r *bookingRepository) CountByAvailability(_ context.Context, availabilityID uuid.UUID) (int, error) {
	return len(r.filter(func(b *model.Booking) bool { return b.AvailabilityID == availabilityID })), nil
}

func (r *bookingRepository) UpdateStatus(_ context.Context, id uuid.UUID, status model.BookingStatus) (*model.Booking, error) {
	d, unlock := r.c.begin()
	defer unlock()

	b, ok := d.bookings[id]
	if !ok {
		return nil, nil
	}
	b.Status = status
	b.UpdatedAt = r.c.now()
	return copyBooking(b), nil
}

func (r *bookingRepository) CompleteEndedBefore(_ context.Context, t time.Time) ([]uuid.UUID, error) {
	d, unlock := r.c.begin()
	defer unlock()

	ids := []uuid.UUID{}
	for _, b := range d.bookings {
		if b.Status != model.BookingStatusConfirmed {
			continue
		}
		a, ok := d.availabilities[b.AvailabilityID]
		if !ok || !a.EndTime.Before(t) {
			continue
		}
		b.Status = model.BookingStatusCompleted
		b.UpdatedAt = r.c.now()
		ids = append(ids, b.ID)
	}
	return ids, nil
}

func (r *bookingRepository) filter(keep func(*model.Booking) bool) []*model.Booking {
	d, unlock := r.c.begin()
	defer unlock()

	bookings := []*model.Booking{}
	for _, b := range d.bookings {
		if keep(b) {
			bookings = append(bookings, copyBooking(b))
		}
	}
	newestFirst(d, bookings, func(b *model.Booking) uuid.UUID { return b.ID })
	return bookings
}

type paymentRepository struct{ c *conn }

func (r *paymentRepository) Create(_ context.Context, p *model.Payment) error {
	d, unlock := r.c.begin()
	defer unlock()

	if _, ok := d.bookings[p.BookingID]; !ok {
		return fmt.Errorf("create payment: booking %s does not exist", p.BookingID)
	}
	for _, existing := range d.payments {
		if existing.BookingID == p.BookingID {
			return uniqueViolation("create payment", "payments_booking_id_key")
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	now := r.c.now()
	p.TransactionDate, p.CreatedAt, p.UpdatedAt = now, now, now
	d.payments[p.ID] = copyPayment(p)
	d.track(p.ID)
	return nil
}

func (r *paymentRepository) GetByIDForUpdate(_ context.Context, id uuid.UUID) (*model.Payment, error) {
	d, unlock := r.c.begin()
	defer unlock()

	if p, ok := d.payments[id]; ok {
		return copyPayment(p), nil
	}
	return nil, nil
}

func (r *paymentRepository) GetByBookingID(_ context.Context, bookingID uuid.UUID) (*model.Payment, error) {
	d, unlock := r.c.begin()
	defer unlock()

	for _, p := range d.payments {
		if p.BookingID == bookingID {
			return copyPayment(p), nil
		}
	}
	return nil, nil
}

func (r *paymentRepository) GetByBookingIDs(_ context.Context, bookingIDs []uuid.UUID) ([]*model.Payment, error) {
	d, unlock := r.c.begin()
	defer unlock()

	wanted := make(map[uuid.UUID]bool, len(bookingIDs))
	for _, id := range bookingIDs {
		wanted[id] = true
	}

	payments := []*model.Payment{}
	for _, p := range d.payments {
		if wanted[p.BookingID] {
			payments = append(payments, copyPayment(p))
		}
	}
	return payments, nil
}

func (r *paymentRepository) UpdateStatus(_ context.Context, id uuid.UUID, status model.PaymentStatus) (*model.Payment, error) {
	d, unlock := r.c.begin()
	defer unlock()

	p, ok := d.payments[id]
	if !ok {
		return nil, nil
	}
	p.Status = status
	p.UpdatedAt = r.c.now()
	return copyPayment(p), nil
}

type reviewRepository struct{ c *conn }

func (r *reviewRepository) Create(_ context.Context, review *model.Review) error {
	d, unlock := r.c.begin()
	defer unlock()

	if _, ok := d.bookings[review.BookingID]; !ok {
		return fmt.Errorf("create review: booking %s does not exist", review.BookingID)
	}
	for _, existing := range d.reviews {
		if existing.BookingID == review.BookingID {
			return uniqueViolation("create review", "reviews_booking_id_key")
		}
	}
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}

	review.CreatedAt = r.c.now()
	d.reviews[review.ID] = copyReview(review)
	d.track(review.ID)
	return nil
}

func (r *reviewRepository) ExistsForBooking(_ context.Context, bookingID uuid.UUID) (bool, error) {
	d, unlock := r.c.begin()
	defer unlock()

	for _, review := range d.reviews {
		if review.BookingID == bookingID {
			return true, nil
		}
	}
	return false, nil
}

func (r *reviewRepository) RatingsByInstructor(_ context.Context, instructorID uuid.UUID) ([]int, error) {
	d, unlock := r.c.begin()
	defer unlock()

	ratings := []int{}
	for _, review := range d.reviews {
		if review.InstructorID == instructorID {
			ratings = append(ratings, review.Rating)
		}
	}
	return ratings, nil
}

func (r *reviewRepository) ListByInstructor(_ context.Context, instructorID uuid.UUID) ([]*model.Review, error) {
	return r.filter(func(rv *model.Review) bool { return rv.InstructorID == instructorID }), nil
}

func (r *reviewRepository) ListByStudent(_ context.Context, studentID uuid.UUID) ([]*model.Review, error) {
	return r.filter(func(rv *model.Review) bool { return rv.StudentID == studentID }), nil
}

func (r *reviewRepository) filter(keep func(*model.Review) bool) []*model.Review {
	d, unlock := r.c.begin()
	defer unlock()

	reviews := []*model.Review{}
	for _, review := range d.reviews {
		if keep(review) {
			reviews = append(reviews, copyReview(review))
		}
	}
	newestFirst(d, reviews, func(rv *model.Review) uuid.UUID { return rv.ID })
	return reviews
}
