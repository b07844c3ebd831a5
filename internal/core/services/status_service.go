package services

import (
	"context"
	"time"

	"nowplaying/internal/core/domain"
	"nowplaying/internal/core/ports"
	"nowplaying/pkg/logger"
	"nowplaying/pkg/tracing"

	"go.uber.org/zap"
)

type statusService struct {
	cooldown ports.CooldownStore
	composer ports.StatusComposer
	metrics  ports.MetricsCollector
	log      *logger.ContextLogger
	now      func() time.Time
}

func NewStatusService(
	cooldown ports.CooldownStore,
	composer ports.StatusComposer,
	metrics ports.MetricsCollector,
	log *zap.SugaredLogger,
) ports.StatusService {
	return &statusService{
		cooldown: cooldown,
		composer: composer,
		metrics:  metrics,
		log:      logger.NewContextLogger(log),
		now:      time.Now,
	}
}

// Handle runs one request through the cooldown gate and, when admitted,
// composes and delivers the status. The cooldown is only recorded after a
// successful delivery, so a recipient who asked outside a live session may
// ask again right away.
func (s *statusService) Handle(ctx context.Context, req domain.StatusRequest, out ports.Deliverer) domain.Outcome {
	ctx = logger.WithRequestID(ctx, req.RequestID)
	ctx = logger.WithRecipientID(ctx, string(req.RecipientID))
	ctx, span := tracing.TraceStatusRequest(ctx, req.RequestID, string(req.RecipientID))
	defer span.End()

	outcome := s.handle(ctx, req, out)
	s.metrics.RecordOutcome(outcome)
	s.log.Debugw(ctx, "status request handled", "outcome", outcome.String())
	return outcome
}

func (s *statusService) handle(ctx context.Context, req domain.StatusRequest, out ports.Deliverer) domain.Outcome {
	at := req.RequestedAt
	if at.IsZero() {
		at = s.now()
	}

	admitted, err := s.cooldown.TryAdmit(ctx, req.RecipientID, at)
	if err != nil {
		tracing.RecordError(ctx, err)
		s.log.Warnw(ctx, "cooldown store unavailable, suppressing", "error", err)
		return domain.OutcomeSuppressed
	}
	if !admitted {
		return domain.OutcomeSuppressed
	}

	snap, ok := s.composer.Compose(ctx)
	if !ok {
		s.release(ctx, req.RecipientID)
		return domain.OutcomeSilent
	}

	if err := out.Deliver(ctx, req.RecipientID, RenderStatus(snap)); err != nil {
		tracing.RecordError(ctx, err)
		s.log.Warnw(ctx, "status delivery failed", "error", err)
		s.release(ctx, req.RecipientID)
		return domain.OutcomeFailed
	}

	if err := s.cooldown.Record(ctx, req.RecipientID, at); err != nil {
		s.log.Errorw(ctx, "failed to record cooldown", "error", err)
	}
	s.log.Infow(ctx, "status delivered",
		"mode", snap.Mode.String(),
		"map", snap.MapLabel,
	)
	return domain.OutcomeDelivered
}

func (s *statusService) release(ctx context.Context, recipient domain.RecipientID) {
	if err := s.cooldown.Release(ctx, recipient); err != nil {
		s.log.Warnw(ctx, "failed to release cooldown reservation", "error", err)
	}
}

// Preview composes and renders the current status without touching the cooldown.
func (s *statusService) Preview(ctx context.Context) (string, bool) {
	snap, ok := s.composer.Compose(ctx)
	if !ok {
		return "", false
	}
	return RenderStatus(snap), true
}
