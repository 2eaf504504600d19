package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Freeeeeet/surfbook/internal/apperr"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ErrorBody - стабильное тело ошибки: {"error": {"code", "message"}}
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusOf сопоставляет вид ошибки HTTP-статусу
func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindOwnershipMismatch, apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindAlreadyBooked, apperr.KindAlreadyReviewed, apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindSlotInPast, apperr.KindInvalidInput, apperr.KindBookingNotReviewable:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError пишет ошибку ядра в ответ.
// Детали инфраструктурных ошибок наружу не отдаются, только в лог.
func (h *Handler) respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := statusOf(kind)

	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		message = "internal error"
	}

	c.AbortWithStatusJSON(status, ErrorBody{Error: ErrorDetail{
		Code:    apperr.CodeOf(err),
		Message: message,
	}})
}

// respondBindError превращает ошибку разбора запроса в INVALID_INPUT
func (h *Handler) respondBindError(c *gin.Context, err error) {
	h.respondError(c, apperr.New(apperr.KindInvalidInput, bindErrorMessage(err)))
}

func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email", fe.Field()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
