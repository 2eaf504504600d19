package service

import (
	"context"
	"errors"
	"time"

	"github.com/Freeeeeet/surfbook/internal/events"
	"github.com/Freeeeeet/surfbook/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/Freeeeeet/surfbook/internal/service")

// Clock - источник текущего времени, в тестах подменяется
type Clock func() time.Time

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// publish отправляет событие после коммита. Ошибка брокера только логируется.
func publish(ctx context.Context, pub events.Publisher, logger *zap.Logger, key string, payload any) {
	if err := pub.Publish(ctx, key, payload); err != nil {
		logger.Warn("Failed to publish event", zap.String("key", key), zap.Error(err))
	}
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, store.ErrUniqueViolation)
}
