package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/Freeeeeet/surfbook/internal/apperr"
	"github.com/Freeeeeet/surfbook/internal/auth"
	"github.com/Freeeeeet/surfbook/internal/policy"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const callerKey = "caller"

// TokenValidator проверяет access-токен
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// RequireAuth пропускает запрос только с валидным Bearer-токеном
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			h.respondError(c, apperr.New(apperr.KindUnauthorized, "authentication required"))
			return
		}

		claims, err := h.tokens.Validate(token)
		if err != nil {
			message := "invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				message = "token expired"
			}
			h.respondError(c, apperr.New(apperr.KindUnauthorized, message))
			return
		}

		c.Set(callerKey, claims.Caller())
		c.Next()
	}
}

// callerFrom достаёт вызывающего, положенного RequireAuth
func callerFrom(c *gin.Context) policy.Caller {
	v, _ := c.Get(callerKey)
	caller, _ := v.(policy.Caller)
	return caller
}

// RequestLogger логирует каждый запрос после ответа
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if caller := callerFrom(c); caller.Role != "" {
			fields = append(fields, zap.String("user_id", caller.ID.String()))
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.Error("HTTP request", fields...)
		case c.Writer.Status() >= 400:
			logger.Warn("HTTP request", fields...)
		default:
			logger.Info("HTTP request", fields...)
		}
	}
}

// Recovery превращает панику обработчика в 500 с телом ошибки
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("Panic recovered",
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorBody{Error: ErrorDetail{
			Code:    string(apperr.KindStorageFailure),
			Message: "internal error",
		}})
	})
}
