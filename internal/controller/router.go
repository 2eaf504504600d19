package controller

import (
	"net/http"

	"github.com/Freeeeeet/surfbook/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler - HTTP-обработчики поверх сервисов ядра
type Handler struct {
	users        *service.UserService
	instructors  *service.InstructorService
	availability *service.AvailabilityService
	bookings     *service.BookingService
	payments     *service.PaymentService
	reviews      *service.ReviewService
	tokens       TokenValidator
	logger       *zap.Logger
}

// Services - набор сервисов, которые обслуживает HTTP-слой
type Services struct {
	Users        *service.UserService
	Instructors  *service.InstructorService
	Availability *service.AvailabilityService
	Bookings     *service.BookingService
	Payments     *service.PaymentService
	Reviews      *service.ReviewService
}

func NewHandler(svc Services, tokens TokenValidator, logger *zap.Logger) *Handler {
	return &Handler{
		users:        svc.Users,
		instructors:  svc.Instructors,
		availability: svc.Availability,
		bookings:     svc.Bookings,
		payments:     svc.Payments,
		reviews:      svc.Reviews,
		tokens:       tokens,
		logger:       logger,
	}
}

// Router собирает gin-движок со всеми маршрутами
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(Recovery(h.logger), RequestLogger(h.logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	authed := h.RequireAuth()

	// Аутентификация
	api.POST("/auth/signup", h.Signup)
	api.POST("/auth/login", h.Login)

	users := api.Group("/users", authed)
	users.GET("/me", h.GetMe)
	users.PUT("/me", h.UpdateMe)

	// Инструкторы: каталог публичный, правки только со своим токеном
	instructors := api.Group("/instructors")
	instructors.GET("", h.ListInstructors)
	instructors.GET("/:id", h.GetInstructor)
	instructors.PUT("/me", authed, h.UpdateInstructorProfile)
	instructors.POST("/availabilities", authed, h.CreateAvailabilities)

	bookings := api.Group("/bookings", authed)
	bookings.POST("", h.ReserveSlot)
	bookings.GET("/my-bookings", h.MyBookings)
	bookings.GET("/instructor-bookings", h.InstructorBookings)

	payments := api.Group("/payments", authed)
	payments.PUT("/:id/status", h.SetPaymentStatus)

	reviews := api.Group("/reviews")
	reviews.POST("", authed, h.SubmitReview)
	reviews.GET("/instructor/:instructorId", h.InstructorReviews)
	reviews.GET("/my-reviews", authed, h.MyReviews)

	admin := api.Group("/admin", authed)
	admin.GET("/users", h.ListUsers)
	admin.PUT("/instructors/:id/verification", h.SetVerificationStatus)

	return r
}
