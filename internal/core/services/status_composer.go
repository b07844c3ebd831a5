package services

import (
	"context"
	"fmt"
	"time"

	"nowplaying/internal/core/domain"
	"nowplaying/internal/core/ports"
	"nowplaying/pkg/retry"
	"nowplaying/pkg/tracing"

	"go.uber.org/zap"
)

type statusComposer struct {
	feed       ports.FeedPoller
	fetcher    ports.BeatmapFetcher
	difficulty *DifficultyResolver
	poll       retry.PollConfig
	metrics    ports.MetricsCollector
	logger     *zap.SugaredLogger
}

func NewStatusComposer(
	feed ports.FeedPoller,
	fetcher ports.BeatmapFetcher,
	poll retry.PollConfig,
	metrics ports.MetricsCollector,
	logger *zap.SugaredLogger,
) ports.StatusComposer {
	return &statusComposer{
		feed:       feed,
		fetcher:    fetcher,
		difficulty: NewDifficultyResolver(fetcher, metrics, logger),
		poll:       poll,
		metrics:    metrics,
		logger:     logger,
	}
}

// feedValues accumulates what the re-poll loop has learned so far.
type feedValues struct {
	modifiers   domain.ModifierSet
	fullRating  float64
	columns     int
	gotMods     bool
	gotRating   bool
	pollsServed int
}

func (v *feedValues) absorb(s domain.FeedSnapshot, mode domain.GameMode) {
	v.pollsServed++
	if !v.gotRating && s.FullDifficulty > 0 {
		v.fullRating = s.FullDifficulty
		v.gotRating = true
	}
	if mode == domain.ModeMania {
		v.columns = s.ColumnCount
	}
	if !v.gotMods {
		if set := ResolveModifiers(s.Modifiers); !set.Empty() {
			v.modifiers = set
			v.gotMods = true
		}
	}
}

func (v *feedValues) resolved() bool {
	return v.gotMods && v.gotRating
}

// Compose builds a status snapshot for the current live session. Every failure
// along the way, including a panic, yields false.
func (c *statusComposer) Compose(ctx context.Context) (snap domain.StatusSnapshot, ok bool) {
	start := time.Now()
	live := false

	ctx, span := tracing.TraceCompose(ctx)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			tracing.RecordError(ctx, fmt.Errorf("compose panic: %v", r))
			c.logger.Errorw("status composition panicked", "panic", r)
			snap, ok = domain.StatusSnapshot{}, false
		}
		c.metrics.ObserveCompose(time.Since(start), live)
	}()

	initial, found := c.feed.Fetch(ctx)
	if !found || !initial.Live() {
		return domain.StatusSnapshot{}, false
	}
	live = true

	if initial.BeatmapID == 0 || !c.fetcher.Configured() {
		c.logger.Debugw("nothing to report",
			"beatmap_id", initial.BeatmapID,
			"api_configured", c.fetcher.Configured(),
		)
		return domain.StatusSnapshot{}, false
	}

	mode := initial.Mode
	tracing.AddSpanAttributes(ctx,
		tracing.BeatmapIDKey.Int(initial.BeatmapID),
		tracing.ModeKey.Int(int(mode)),
		tracing.LiveKey.Bool(true),
	)

	var values feedValues
	attempts, _ := retry.Poll(ctx, c.poll, func(attempt int) bool {
		s, ok := c.feed.Poll(ctx)
		if !ok {
			c.logger.Debugw("re-poll returned nothing", "attempt", attempt)
			return false
		}
		values.absorb(s, mode)
		return values.resolved()
	})
	if values.pollsServed == 0 {
		// every re-poll failed; the initial read is still a valid sample
		values.absorb(initial, mode)
	}

	c.logger.Debugw("feed values resolved",
		"attempts", attempts,
		"modifiers", values.modifiers.String(),
		"full_rating", values.fullRating,
		"columns", values.columns,
	)

	diff := c.difficulty.Resolve(ctx, values.fullRating, initial.BeatmapID, mode)
	if diff.ModeCorrected(mode) {
		mode = diff.Mode
		// columns were read while the feed called the map standard
		values.columns = 0
	}

	meta, found := diff.Record, diff.HasRecord
	if !found {
		meta, found = c.fetcher.FetchBeatmap(ctx, initial.BeatmapID, mode)
		if !found {
			return domain.StatusSnapshot{}, false
		}
	}

	return domain.StatusSnapshot{
		Mode:             mode,
		ModeLabel:        domain.ModeDisplayLabel(mode, values.columns),
		DifficultyRating: domain.RoundRating(diff.Rating),
		Modifiers:        values.modifiers,
		MapLabel:         domain.MapLabel(meta),
		MapLink:          domain.BeatmapLink(initial.BeatmapID),
		LengthLabel:      domain.FormatLength(meta.LengthSeconds),
	}, true
}
