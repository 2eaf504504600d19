package controller

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/Freeeeeet/surfbook/internal/apperr"
	"github.com/Freeeeeet/surfbook/internal/model"
	"github.com/Freeeeeet/surfbook/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
)

// uuidParam разбирает идентификатор из пути; при ошибке сам отвечает 400
func (h *Handler) uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.respondError(c, apperr.Newf(apperr.KindInvalidInput, "%s must be a valid UUID", name))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	res, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, DataBody{Data: res})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	res, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, DataBody{Data: res})
}

func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.users.GetMe(c.Request.Context(), callerFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, DataBody{Data: user})
}

func (h *Handler) UpdateMe(c *gin.Context) {
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	user, err := h.users.UpdateMe(c.Request.Context(), callerFrom(c), service.UpdateMeInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, DataBody{Data: user})
}

func (h *Handler) ListInstructors(c *gin.Context) {
	list, err := h.instructors.ListVerified(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, DataBody{Data: list})
}

// GetInstructor ищет профиль по id пользователя-инструктора
func (h *Handler) GetInstructor(c *gin.Context) {
	userID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	profile, err := h.instructors.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, DataBody{Data: profile})
}

func (h *Handler) UpdateInstructorProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	profile, err := h.instructors.UpdateOwnProfile(c.Request.Context(), callerFrom(c), req.toUpdate())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, DataBody{Data: profile})
}

// CreateAvailabilities принимает один слот или массив слотов
func (h *Handler) CreateAvailabilities(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		h.respondBindError(c, err)
		return
	}

	var reqs []availabilityRequest
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &reqs)
	} else {
		var single availabilityRequest
		err = json.Unmarshal(raw, &single)
		reqs = []availabilityRequest{single}
	}
	if err != nil {
		h.respondBindError(c, err)
		return
	}

	inputs := make([]service.AvailabilityInput, 0, len(reqs))
	for i := range reqs {
		if err := binding.Validator.ValidateStruct(&reqs[i]); err != nil {
			h.respondBindError(c, err)
			return
		}
		inputs = append(inputs, reqs[i].toInput())
	}

	created, err := h.availability.Create(c.Request.Context(), callerFrom(c), inputs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, DataBody{Data: created})
}

func (h *Handler) ReserveSlot(c *gin.Context) {
	var req reserveSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	booking, err := h.bookings.ReserveSlot(c.Request.Context(), callerFrom(c), req.toInput())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, DataBody{Data: booking})
}

func (h *Handler) MyBookings(c *gin.Context) {
	list, err := h.bookings.ListForStudent(c.Request.Context(), callerFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, DataBody{Data: list})
}

func (h *Handler) InstructorBookings(c *gin.Context) {
	list, err := h.bookings.ListForInstructor(c.Request.Context(), callerFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, DataBody{Data: list})
}

// SetPaymentStatus - ручная сверка оплаты администратором
func (h *Handler) SetPaymentStatus(c *gin.Context) {
	paymentID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	payment, booking, err := h.payments.SetPaymentStatus(c.Request.Context(), callerFrom(c), paymentID, model.PaymentStatus(req.Status))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, DataBody{Data: paymentStatusResponse{Payment: payment, Booking: booking}})
}

func (h *Handler) SubmitReview(c *gin.Context) {
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	review, err := h.reviews.SubmitReview(c.Request.Context(), callerFrom(c), service.SubmitReviewInput{
		StudentID:    req.StudentID,
		InstructorID: req.InstructorID,
		BookingID:    req.BookingID,
		Rating:       req.Rating,
		Comment:      req.Comment,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, DataBody{Data: review})
}

func (h *Handler) InstructorReviews(c *gin.Context) {
	instructorID, ok := h.uuidParam(c, "instructorId")
	if !ok {
		return
	}

	list, err := h.reviews.ListForInstructor(c.Request.Context(), instructorID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, DataBody{Data: list})
}

func (h *Handler) MyReviews(c *gin.Context) {
	list, err := h.reviews.ListForStudent(c.Request.Context(), callerFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, DataBody{Data: list})
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context(), callerFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, DataBody{Data: users})
}

func (h *Handler) SetVerificationStatus(c *gin.Context) {
	instructorID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	profile, err := h.instructors.SetVerificationStatus(c.Request.Context(), callerFrom(c), instructorID, model.VerificationStatus(req.Status))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, DataBody{Data: profile})
}
