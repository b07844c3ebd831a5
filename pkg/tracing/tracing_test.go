package tracing

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ServiceName != "nowplaying" {
		t.Errorf("expected service name 'nowplaying', got '%s'", cfg.ServiceName)
	}
	if cfg.Enabled {
		t.Error("expected tracing disabled by default")
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected sample rate 1.0, got %f", cfg.SampleRate)
	}
}

func TestInit_Disabled(t *testing.T) {
	tp, err := Init(Config{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tp.Shutdown(context.Background()); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}

func TestSpanHelpers_WithoutProvider(t *testing.T) {
	ctx, span := TraceStatusRequest(context.Background(), "req-1", "42")
	defer span.End()

	ctx, compose := TraceCompose(ctx)
	defer compose.End()

	ctx, feed := TraceFeedRead(ctx, "fetch")
	feed.End()

	ctx, remote := TraceRemoteFetch(ctx, 123, 3)
	remote.End()

	AddSpanAttributes(ctx, attribute.String("test.key", "test.value"))
	RecordError(ctx, errors.New("test error"))
	MeasureDuration(ctx, time.Now().Add(-time.Millisecond), "compose")
}
