package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"nowplaying/internal/core/domain"
	"nowplaying/internal/core/ports"
	"nowplaying/pkg/tracing"

	"go.uber.org/zap"
)

// Config configures the local live feed client.
type Config struct {
	URL         string        // e.g. http://127.0.0.1:24050/json
	Timeout     time.Duration // initial read
	PollTimeout time.Duration // re-reads
}

// Client reads the local gosumemory/tosu JSON feed. Every failure is reported
// as "no snapshot"; a closed game client is the normal case, not an error.
type Client struct {
	url         string
	timeout     time.Duration
	pollTimeout time.Duration
	httpClient  *http.Client
	logger      *zap.SugaredLogger
}

var _ ports.FeedPoller = (*Client)(nil)

// NewClient creates a feed client.
func NewClient(cfg Config, logger *zap.SugaredLogger) *Client {
	return &Client{
		url:         cfg.URL,
		timeout:     cfg.Timeout,
		pollTimeout: cfg.PollTimeout,
		httpClient:  &http.Client{},
		logger:      logger,
	}
}

func (c *Client) Fetch(ctx context.Context) (domain.FeedSnapshot, bool) {
	return c.read(ctx, "fetch", c.timeout)
}

func (c *Client) Poll(ctx context.Context) (domain.FeedSnapshot, bool) {
	return c.read(ctx, "poll", c.pollTimeout)
}

// Ping reports whether the feed answers at all; used by readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, c.pollTimeout)
	return err
}

func (c *Client) read(ctx context.Context, operation string, timeout time.Duration) (domain.FeedSnapshot, bool) {
	ctx, span := tracing.TraceFeedRead(ctx, operation)
	defer span.End()

	p, err := c.get(ctx, timeout)
	if err != nil {
		tracing.RecordError(ctx, err)
		c.logger.Debugw("live feed unavailable", "operation", operation, "error", err)
		return domain.FeedSnapshot{}, false
	}

	snap := toSnapshot(p)
	c.logger.Debugw("live feed read",
		"operation", operation,
		"mode", snap.Mode.String(),
		"menu_state", snap.MenuState,
		"gameplay_present", snap.InGameplay,
		"score", snap.Score,
		"beatmap_id", snap.BeatmapID,
		"full_sr", snap.FullDifficulty,
		"leaderboard_mods", snap.Modifiers.Leaderboard,
		"beatmap_mods", snap.Modifiers.Beatmap,
		"gameplay_mods", snap.Modifiers.Gameplay,
		"mods_num", snap.Modifiers.Bitmask,
	)
	return snap, true
}

func (c *Client) get(ctx context.Context, timeout time.Duration) (*payload, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("live feed status %d", resp.StatusCode)
	}

	var p payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &p, nil
}

func toSnapshot(p *payload) domain.FeedSnapshot {
	snap := domain.FeedSnapshot{
		MenuState:      int(p.Menu.State),
		Mode:           domain.GameMode(int(p.Menu.GameMode)),
		InGameplay:     p.Gameplay != nil,
		BeatmapID:      int(p.Menu.Bm.ID),
		FullDifficulty: float64(p.Menu.Bm.Stats.FullSR),
		Modifiers: domain.ModifierSources{
			Beatmap: string(p.Menu.Bm.Mods.Str),
			Bitmask: int(p.Menu.Bm.Mods.Num),
		},
	}

	if gp := p.Gameplay; gp != nil {
		if snap.Mode == domain.ModeStandard {
			snap.Mode = domain.GameMode(int(gp.GameMode))
		}
		snap.Modifiers.Gameplay = string(gp.Mods.Str)
		snap.Modifiers.Leaderboard = string(gp.Leaderboard.OurPlayer.Mods)
		snap.Score = scoreFor(snap.Mode, gp.Score)
	}

	// CS is circle size outside mania; only mania maps it to a key count.
	if snap.Mode == domain.ModeMania && p.Menu.Bm.Stats.CS > 0 {
		snap.ColumnCount = int(math.Round(float64(p.Menu.Bm.Stats.CS)))
	}
	return snap
}

// scoreFor picks the score field the feed keeps current for the mode: mania
// reports progress in total, the other modes in current.
func scoreFor(mode domain.GameMode, s scoreField) int64 {
	if s.Bare != nil {
		return int64(*s.Bare)
	}
	if mode == domain.ModeMania {
		return int64(s.Total)
	}
	return int64(s.Current)
}
