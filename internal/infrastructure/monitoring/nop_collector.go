package monitoring

import (
	"time"

	"nowplaying/internal/core/domain"
)

// NopCollector discards all metrics.
type NopCollector struct{}

func NewNopCollector() NopCollector { return NopCollector{} }

func (NopCollector) RecordOutcome(domain.Outcome) {}
func (NopCollector) ObserveCompose(time.Duration, bool) {}
func (NopCollector) RecordRemoteFetch(string) {}
func (NopCollector) RecordModeCorrection() {}
func (NopCollector) RelayConnected() {}
func (NopCollector) RelayDisconnected() {}
