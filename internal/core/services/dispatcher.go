package services

import (
	"context"
	"sync"
	"time"

	"nowplaying/internal/core/domain"
	"nowplaying/internal/core/ports"

	"go.uber.org/zap"
)

type job struct {
	req domain.StatusRequest
	out ports.Deliverer
}

// DispatcherConfig bounds request concurrency.
type DispatcherConfig struct {
	Workers        int
	QueueSize      int
	RequestTimeout time.Duration
}

// Dispatcher hands queued status requests to a fixed pool of workers.
type Dispatcher struct {
	service ports.StatusService
	cfg     DispatcherConfig
	logger  *zap.SugaredLogger

	queue chan job
	wg    sync.WaitGroup

	mu      sync.RWMutex
	started bool
	stopped bool
}

var _ ports.RequestSubmitter = (*Dispatcher)(nil)

func NewDispatcher(service ports.StatusService, cfg DispatcherConfig, logger *zap.SugaredLogger) *Dispatcher {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	return &Dispatcher{
		service: service,
		cfg:     cfg,
		logger:  logger,
		queue:   make(chan job, cfg.QueueSize),
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started || d.stopped {
		return
	}
	d.started = true

	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.logger.Infow("dispatcher started",
		"workers", d.cfg.Workers,
		"queue_size", d.cfg.QueueSize,
	)
}

// Submit queues a request without blocking.
func (d *Dispatcher) Submit(req domain.StatusRequest, out ports.Deliverer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return domain.ErrDispatcherStopped
	}

	select {
	case d.queue <- job{req: req, out: out}:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Stop refuses new requests and waits for queued ones to finish or ctx to end.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for j := range d.queue {
		d.run(id, j)
	}
}

func (d *Dispatcher) run(id int, j job) {
	ctx := context.Background()
	if d.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.RequestTimeout)
		defer cancel()
	}

	outcome := d.service.Handle(ctx, j.req, j.out)
	d.logger.Debugw("request processed",
		"worker", id,
		"request_id", j.req.RequestID,
		"outcome", outcome.String(),
	)
}
