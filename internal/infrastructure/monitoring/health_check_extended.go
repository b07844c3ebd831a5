package monitoring

import (
	"context"
	"fmt"
	"time"

	"nowplaying/internal/core/ports"
	"nowplaying/pkg/circuitbreaker"
)

// AddCooldownStoreCheck makes readiness depend on the cooldown store.
func (h *HealthChecker) AddCooldownStoreCheck(store ports.CooldownStore, timeout time.Duration) {
	h.AddCheck(HealthCheck{
		Name:    "cooldown_store",
		Check:   store.HealthCheck,
		Timeout: timeout,
	})
}

// AddFeedCheck reports whether the local live feed answers. It is optional: a
// closed game client is an expected state.
func (h *HealthChecker) AddFeedCheck(ping func(ctx context.Context) error, timeout time.Duration) {
	h.AddCheck(HealthCheck{
		Name:     "live_feed",
		Check:    ping,
		Timeout:  timeout,
		Optional: true,
	})
}

// AddBreakerCheck reports the osu! API circuit breaker state.
func (h *HealthChecker) AddBreakerCheck(name string, state func() circuitbreaker.State) {
	h.AddCheck(HealthCheck{
		Name: name,
		Check: func(context.Context) error {
			if s := state(); s != circuitbreaker.StateClosed {
				return fmt.Errorf("circuit breaker %s", s)
			}
			return nil
		},
		Optional: true,
	})
}
