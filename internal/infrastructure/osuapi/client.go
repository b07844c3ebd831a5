package osuapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"nowplaying/internal/core/domain"
	"nowplaying/internal/core/ports"
	"nowplaying/pkg/circuitbreaker"
	"nowplaying/pkg/tracing"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://osu.ppy.sh/api"

	unknownField = "Unknown"

	resultFound    = "found"
	resultEmpty    = "empty"
	resultError    = "error"
	resultRejected = "rejected"
)

// Config configures the osu! API v1 client.
type Config struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	CircuitBreaker circuitbreaker.Config
}

// Client fetches beatmap metadata from get_beatmaps. It never retries; an empty
// list, a transport error or an open breaker are all reported as "no record".
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	metrics    ports.MetricsCollector
	logger     *zap.SugaredLogger
}

var _ ports.BeatmapFetcher = (*Client)(nil)

// NewClient creates an osu! API client.
func NewClient(cfg Config, metrics ports.MetricsCollector, logger *zap.SugaredLogger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	breaker := circuitbreaker.New(cfg.CircuitBreaker)
	breaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Infow("osu! API circuit breaker state changed",
			"from", from.String(),
			"to", to.String(),
		)
	})

	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: breaker,
		metrics: metrics,
		logger:  logger,
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// FetchBeatmap returns the first get_beatmaps record for (beatmapID, mode).
func (c *Client) FetchBeatmap(ctx context.Context, beatmapID int, mode domain.GameMode) (domain.BeatmapMetadata, bool) {
	ctx, span := tracing.TraceRemoteFetch(ctx, beatmapID, int(mode))
	defer span.End()

	records, err := circuitbreaker.Call(ctx, c.breaker, func(ctx context.Context) ([]beatmapRecord, error) {
		return c.getBeatmaps(ctx, beatmapID, mode)
	})
	if err != nil {
		result := resultError
		if errors.Is(err, circuitbreaker.ErrOpen) {
			result = resultRejected
		}
		c.metrics.RecordRemoteFetch(result)
		tracing.RecordError(ctx, err)
		c.logger.Warnw("beatmap lookup failed",
			"beatmap_id", beatmapID,
			"mode", int(mode),
			"error", err,
		)
		return domain.BeatmapMetadata{}, false
	}

	if len(records) == 0 {
		c.metrics.RecordRemoteFetch(resultEmpty)
		c.logger.Debugw("no beatmap record", "beatmap_id", beatmapID, "mode", int(mode))
		return domain.BeatmapMetadata{}, false
	}

	c.metrics.RecordRemoteFetch(resultFound)
	return records[0].toMetadata(beatmapID, mode), true
}

func (c *Client) getBeatmaps(ctx context.Context, beatmapID int, mode domain.GameMode) ([]beatmapRecord, error) {
	q := url.Values{}
	q.Set("b", strconv.Itoa(beatmapID))
	q.Set("k", c.apiKey)
	q.Set("m", strconv.Itoa(int(mode)))
	endpoint := c.baseURL + "/get_beatmaps?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// the URL carries the API key
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("osu! API error: status=%d, body=%s", resp.StatusCode, string(bytes.TrimSpace(body)))
	}

	var records []beatmapRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return records, nil
}

// BreakerState exposes the breaker state for readiness reporting.
func (c *Client) BreakerState() circuitbreaker.State {
	return c.breaker.GetState()
}
