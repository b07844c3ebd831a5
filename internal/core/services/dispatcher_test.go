package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"nowplaying/internal/core/domain"
	"nowplaying/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingService struct {
	mu       sync.Mutex
	handled  []domain.StatusRequest
	release  chan struct{}
	deadline bool
}

func (s *recordingService) Handle(ctx context.Context, req domain.StatusRequest, out ports.Deliverer) domain.Outcome {
	if s.release != nil {
		<-s.release
	}
	_, hasDeadline := ctx.Deadline()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.handled = append(s.handled, req)
	s.deadline = hasDeadline
	return domain.OutcomeDelivered
}

func (s *recordingService) Preview(ctx context.Context) (string, bool) { return "", false }

func (s *recordingService) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handled)
}

func TestDispatcher_ProcessesQueuedRequests(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(svc, DispatcherConfig{Workers: 2, QueueSize: 8, RequestTimeout: time.Second}, zap.NewNop().Sugar())
	d.Start()

	for i := 0; i < 5; i++ {
		require.NoError(t, d.Submit(domain.StatusRequest{RecipientID: "r1"}, nil))
	}

	require.NoError(t, d.Stop(context.Background()))
	assert.Equal(t, 5, svc.count())
	assert.True(t, svc.deadline)
}

func TestDispatcher_QueueFull(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(svc, DispatcherConfig{Workers: 1, QueueSize: 1}, zap.NewNop().Sugar())

	require.NoError(t, d.Submit(domain.StatusRequest{RecipientID: "r1"}, nil))
	assert.ErrorIs(t, d.Submit(domain.StatusRequest{RecipientID: "r2"}, nil), domain.ErrQueueFull)

	d.Start()
	require.NoError(t, d.Stop(context.Background()))
	assert.Equal(t, 1, svc.count())
}

func TestDispatcher_SubmitAfterStop(t *testing.T) {
	d := NewDispatcher(&recordingService{}, DispatcherConfig{}, zap.NewNop().Sugar())
	d.Start()
	require.NoError(t, d.Stop(context.Background()))

	assert.ErrorIs(t, d.Submit(domain.StatusRequest{}, nil), domain.ErrDispatcherStopped)
	assert.NoError(t, d.Stop(context.Background()))
}

func TestDispatcher_StopHonoursContext(t *testing.T) {
	svc := &recordingService{release: make(chan struct{})}
	d := NewDispatcher(svc, DispatcherConfig{Workers: 1, QueueSize: 1}, zap.NewNop().Sugar())
	d.Start()
	require.NoError(t, d.Submit(domain.StatusRequest{}, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Stop(ctx), context.DeadlineExceeded)

	close(svc.release)
}
