package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// blockingCompleter держит первый запуск, пока не отменят контекст
type blockingCompleter struct {
	started  chan struct{}
	finished atomic.Bool
}

func (c *blockingCompleter) CompleteFinishedLessons(ctx context.Context) (int, error) {
	close(c.started)
	<-ctx.Done()
	time.Sleep(20 * time.Millisecond)
	c.finished.Store(true)
	return 0, ctx.Err()
}

type countingCompleter struct {
	calls atomic.Int32
	err   error
}

func (c *countingCompleter) CompleteFinishedLessons(context.Context) (int, error) {
	c.calls.Add(1)
	return 2, c.err
}

func TestScheduler_RunsImmediatelyOnStart(t *testing.T) {
	completer := &countingCompleter{}
	s := NewScheduler(completer, "@every 1h", zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return completer.calls.Load() == 1 }, time.Second, 10*time.Millisecond)
}

func TestScheduler_SurvivesErrors(t *testing.T) {
	completer := &countingCompleter{err: errors.New("db down")}
	s := NewScheduler(completer, "@every 1h", zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return completer.calls.Load() == 1 }, time.Second, 10*time.Millisecond)
	s.Stop()
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := NewScheduler(&countingCompleter{}, "every tuesday", zap.NewNop())
	assert.Error(t, s.Start(context.Background()))
}

func TestScheduler_StopWaitsForFirstRun(t *testing.T) {
	completer := &blockingCompleter{started: make(chan struct{})}
	s := NewScheduler(completer, "@every 1h", zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	<-completer.started

	s.Stop()
	assert.True(t, completer.finished.Load())
}
