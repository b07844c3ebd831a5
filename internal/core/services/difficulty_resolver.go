package services

import (
	"context"

	"nowplaying/internal/core/domain"
	"nowplaying/internal/core/ports"

	"go.uber.org/zap"
)

// Difficulty is the effective rating for a session together with the mode it
// was resolved under. Record is set when the rating came from the remote service.
type Difficulty struct {
	Rating    float64
	Mode      domain.GameMode
	Record    domain.BeatmapMetadata
	HasRecord bool
}

// ModeCorrected reports whether the resolver switched the session to mania.
func (d Difficulty) ModeCorrected(reported domain.GameMode) bool {
	return d.HasRecord && d.Mode != reported
}

type DifficultyResolver struct {
	fetcher ports.BeatmapFetcher
	metrics ports.MetricsCollector
	logger  *zap.SugaredLogger
}

func NewDifficultyResolver(fetcher ports.BeatmapFetcher, metrics ports.MetricsCollector, logger *zap.SugaredLogger) *DifficultyResolver {
	return &DifficultyResolver{
		fetcher: fetcher,
		metrics: metrics,
		logger:  logger,
	}
}

// Resolve prefers the live feed's full rating. When the feed has none yet it
// falls back to the remote base rating; a standard map without a standard
// record is looked up once more as mania, since the live feed misreports some
// mania charts as standard. A missing rating resolves to 0, never an error.
func (r *DifficultyResolver) Resolve(ctx context.Context, fullRating float64, beatmapID int, mode domain.GameMode) Difficulty {
	if fullRating > 0 {
		return Difficulty{Rating: fullRating, Mode: mode}
	}

	if meta, ok := r.fetcher.FetchBeatmap(ctx, beatmapID, mode); ok {
		r.logger.Debugw("using remote base rating",
			"beatmap_id", beatmapID,
			"mode", mode.String(),
			"rating", meta.DifficultyRating,
		)
		return Difficulty{Rating: meta.DifficultyRating, Mode: mode, Record: meta, HasRecord: true}
	}

	if mode != domain.ModeStandard {
		return Difficulty{Mode: mode}
	}

	meta, ok := r.fetcher.FetchBeatmap(ctx, beatmapID, domain.ModeMania)
	if !ok {
		return Difficulty{Mode: mode}
	}

	r.metrics.RecordModeCorrection()
	r.logger.Infow("corrected session mode to mania",
		"beatmap_id", beatmapID,
		"rating", meta.DifficultyRating,
	)
	return Difficulty{Rating: meta.DifficultyRating, Mode: domain.ModeMania, Record: meta, HasRecord: true}
}
