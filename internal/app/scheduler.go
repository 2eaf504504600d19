package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// LessonCompleter переводит прошедшие оплаченные занятия в COMPLETED
type LessonCompleter interface {
	CompleteFinishedLessons(ctx context.Context) (int, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	completer LessonCompleter
	schedule  string
	cron      *cron.Cron
	logger    *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewScheduler создаёт новый планировщик; schedule - cron-выражение из 5 полей
func NewScheduler(completer LessonCompleter, schedule string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		completer: completer,
		schedule:  schedule,
		cron:      cron.New(),
		logger:    logger,
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("Starting background scheduler", zap.String("schedule", s.schedule))

	s.ctx, s.cancel = context.WithCancel(ctx)

	if _, err := s.cron.AddFunc(s.schedule, func() { s.completeLessons(s.ctx) }); err != nil {
		s.cancel()
		return fmt.Errorf("schedule lesson completion: %w", err)
	}

	// Первый запуск сразу при старте, Stop его дожидается
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.completeLessons(s.ctx)
	}()

	s.cron.Start()
	return nil
}

// Stop останавливает фоновые задачи и ждёт завершения текущего запуска
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
	s.wg.Wait()
}

func (s *Scheduler) completeLessons(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	completed, err := s.completer.CompleteFinishedLessons(ctx)
	if err != nil {
		s.logger.Error("Failed to complete finished lessons", zap.Error(err))
		return
	}

	if completed > 0 {
		s.logger.Info("Finished lessons completed", zap.Int("count", completed))
	}
}
