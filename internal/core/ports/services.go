package ports

import (
	"context"
	"time"

	"nowplaying/internal/core/domain"
)

// FeedPoller reads the local live feed. A false result means no readable feed.
type FeedPoller interface {
	// Fetch is the initial read for a request.
	Fetch(ctx context.Context) (domain.FeedSnapshot, bool)
	// Poll is the short-timeout re-read used while resolving modifiers and difficulty.
	Poll(ctx context.Context) (domain.FeedSnapshot, bool)
}

// BeatmapFetcher looks up canonical beatmap metadata from the remote service.
type BeatmapFetcher interface {
	FetchBeatmap(ctx context.Context, beatmapID int, mode domain.GameMode) (domain.BeatmapMetadata, bool)
	// Configured reports whether a remote API credential is present.
	Configured() bool
}

type StatusComposer interface {
	Compose(ctx context.Context) (domain.StatusSnapshot, bool)
}

// Deliverer is the outbound half of the front relay.
type Deliverer interface {
	Deliver(ctx context.Context, recipient domain.RecipientID, text string) error
}

type StatusService interface {
	Handle(ctx context.Context, req domain.StatusRequest, out Deliverer) domain.Outcome
	Preview(ctx context.Context) (string, bool)
}

// RequestSubmitter queues inbound requests for asynchronous handling.
type RequestSubmitter interface {
	Submit(req domain.StatusRequest, out Deliverer) error
}

type MetricsCollector interface {
	RecordOutcome(outcome domain.Outcome)
	ObserveCompose(duration time.Duration, live bool)
	RecordRemoteFetch(result string)
	RecordModeCorrection()
	RelayConnected()
	RelayDisconnected()
}
