package osuapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"nowplaying/internal/core/domain"
	"nowplaying/internal/infrastructure/monitoring"
	"nowplaying/pkg/circuitbreaker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingMetrics struct {
	monitoring.NopCollector
	mu      sync.Mutex
	fetches []string
}

func (m *recordingMetrics) RecordRemoteFetch(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches = append(m.fetches, result)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *recordingMetrics) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	metrics := &recordingMetrics{}
	client := NewClient(Config{
		BaseURL: srv.URL + "/api",
		APIKey:  "secret",
		Timeout: time.Second,
		CircuitBreaker: circuitbreaker.Config{
			FailureThreshold:    2,
			SuccessThreshold:    1,
			Timeout:             time.Minute,
			MaxRequestsHalfOpen: 1,
		},
	}, metrics, zap.NewNop().Sugar())
	return client, metrics
}

func TestFetchBeatmap_Found(t *testing.T) {
	var gotQuery map[string]string
	client, metrics := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/get_beatmaps", r.URL.Path)
		q := r.URL.Query()
		gotQuery = map[string]string{"b": q.Get("b"), "k": q.Get("k"), "m": q.Get("m")}
		w.Write([]byte(`[{"artist":"A","title":"B","version":"C","hit_length":"150","difficultyrating":"3.456"}]`))
	})

	meta, ok := client.FetchBeatmap(context.Background(), 42, domain.ModeMania)

	require.True(t, ok)
	assert.Equal(t, map[string]string{"b": "42", "k": "secret", "m": "3"}, gotQuery)
	assert.Equal(t, domain.BeatmapMetadata{
		BeatmapID:        42,
		Mode:             domain.ModeMania,
		Artist:           "A",
		Title:            "B",
		DifficultyName:   "C",
		LengthSeconds:    150,
		DifficultyRating: 3.456,
	}, meta)
	assert.Equal(t, []string{"found"}, metrics.fetches)
}

func TestFetchBeatmap_FirstRecordWins(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"title":"first","hit_length":"10"},{"title":"second","hit_length":"20"}]`))
	})

	meta, ok := client.FetchBeatmap(context.Background(), 1, domain.ModeStandard)

	require.True(t, ok)
	assert.Equal(t, "first", meta.Title)
	assert.Equal(t, 10, meta.LengthSeconds)
}

func TestFetchBeatmap_MissingFieldsBecomeUnknown(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"hit_length":"x","difficultyrating":null}]`))
	})

	meta, ok := client.FetchBeatmap(context.Background(), 1, domain.ModeStandard)

	require.True(t, ok)
	assert.Equal(t, "Unknown", meta.Artist)
	assert.Equal(t, "Unknown", meta.Title)
	assert.Equal(t, "Unknown", meta.DifficultyName)
	assert.Zero(t, meta.LengthSeconds)
	assert.Zero(t, meta.DifficultyRating)
}

func TestFetchBeatmap_EmptyList(t *testing.T) {
	client, metrics := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, ok := client.FetchBeatmap(context.Background(), 1, domain.ModeStandard)

	assert.False(t, ok)
	assert.Equal(t, []string{"empty"}, metrics.fetches)
	assert.Equal(t, circuitbreaker.StateClosed, client.BreakerState())
}

func TestFetchBeatmap_Non200(t *testing.T) {
	client, metrics := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, ok := client.FetchBeatmap(context.Background(), 1, domain.ModeStandard)

	assert.False(t, ok)
	assert.Equal(t, []string{"error"}, metrics.fetches)
}

func TestFetchBeatmap_ErrorObjectIsNotARecord(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"Please provide a valid API key."}`))
	})

	_, ok := client.FetchBeatmap(context.Background(), 1, domain.ModeStandard)
	assert.False(t, ok)
}

func TestFetchBeatmap_BreakerOpensAfterFailures(t *testing.T) {
	var calls atomic.Int32
	client, metrics := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 3; i++ {
		_, ok := client.FetchBeatmap(context.Background(), 1, domain.ModeStandard)
		assert.False(t, ok)
	}

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, circuitbreaker.StateOpen, client.BreakerState())
	assert.Equal(t, []string{"error", "error", "rejected"}, metrics.fetches)
}

func TestConfigured(t *testing.T) {
	client := NewClient(Config{}, monitoring.NewNopCollector(), zap.NewNop().Sugar())
	assert.False(t, client.Configured())

	client = NewClient(Config{APIKey: "k"}, monitoring.NewNopCollector(), zap.NewNop().Sugar())
	assert.True(t, client.Configured())
}
