package monitoring

import (
	"time"

	"nowplaying/internal/core/domain"
	"nowplaying/internal/core/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusCollector struct {
	requestsTotal   *prometheus.CounterVec
	remoteFetches   *prometheus.CounterVec
	modeCorrections prometheus.Counter
	composeDuration *prometheus.HistogramVec
	relayConns      prometheus.Gauge
}

var _ ports.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheusCollector registers the service metrics with reg.
// Pass prometheus.DefaultRegisterer to expose them on the default /metrics handler.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	factory := promauto.With(reg)

	return &PrometheusCollector{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nowplaying_requests_total",
			Help: "Status requests by outcome",
		}, []string{"outcome"}),

		remoteFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nowplaying_remote_fetch_total",
			Help: "osu! API beatmap lookups by result",
		}, []string{"result"}),

		modeCorrections: factory.NewCounter(prometheus.CounterOpts{
			Name: "nowplaying_mode_corrections_total",
			Help: "Sessions reported as standard that resolved to mania",
		}),

		composeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nowplaying_compose_duration_seconds",
			Help:    "Time spent composing a status snapshot",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"live"}),

		relayConns: factory.NewGauge(prometheus.GaugeOpts{
			Name: "nowplaying_relay_connections",
			Help: "Open front relay connections",
		}),
	}
}

func (p *PrometheusCollector) RecordOutcome(outcome domain.Outcome) {
	p.requestsTotal.WithLabelValues(outcome.String()).Inc()
}

func (p *PrometheusCollector) ObserveCompose(duration time.Duration, live bool) {
	label := "false"
	if live {
		label = "true"
	}
	p.composeDuration.WithLabelValues(label).Observe(duration.Seconds())
}

func (p *PrometheusCollector) RecordRemoteFetch(result string) {
	p.remoteFetches.WithLabelValues(result).Inc()
}

func (p *PrometheusCollector) RecordModeCorrection() {
	p.modeCorrections.Inc()
}

func (p *PrometheusCollector) RelayConnected() {
	p.relayConns.Inc()
}

func (p *PrometheusCollector) RelayDisconnected() {
	p.relayConns.Dec()
}
