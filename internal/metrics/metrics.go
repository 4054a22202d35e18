package metrics

import (
	"context"

	"shop-assistant-be/pkg/assistant/pipeline"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the assistant's Prometheus collectors.
type Metrics struct {
	Turns          *prometheus.CounterVec
	TurnLatency    prometheus.Histogram
	CatalogResults prometheus.Histogram
	Rewrites       *prometheus.CounterVec

	WebSocketConnections prometheus.Gauge
	WebSocketMessages    *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Turns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_turns_total",
			Help: "Conversation turns by intent, response type and language",
		}, []string{"intent", "response_type", "language"}),

		TurnLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "assistant_turn_duration_seconds",
			Help:    "End to end latency of one turn",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),

		CatalogResults: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "assistant_catalog_results",
			Help:    "Number of catalog items returned per product turn",
			Buckets: []float64{0, 1, 2, 5, 10},
		}),

		Rewrites: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_rewrites_total",
			Help: "Replies passed through the rewrite step, by outcome",
		}, []string{"outcome"}), // "rewritten" or "kept"

		WebSocketConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "assistant_websocket_connections_active",
			Help: "Number of active chat WebSocket connections",
		}),

		WebSocketMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_websocket_messages_total",
			Help: "WebSocket messages by direction",
		}, []string{"direction"}),
	}
}

// ObserveTurn records one finished turn.
func (m *Metrics) ObserveTurn(_ context.Context, ev pipeline.TurnEvent) {
	r := ev.Reply
	respType := string(r.ResponseType)
	if respType == "" {
		respType = "conversational"
	}
	m.Turns.WithLabelValues(string(r.Intent), respType, string(r.Language)).Inc()
	m.TurnLatency.Observe(ev.Duration.Seconds())

	if r.Query != nil {
		m.CatalogResults.Observe(float64(ev.ResultCount))
	}
	if ev.RewriteTried {
		m.RecordRewrite(ev.Rewritten)
	}
}

// RecordRewrite counts a rewrite attempt.
func (m *Metrics) RecordRewrite(rewritten bool) {
	outcome := "kept"
	if rewritten {
		outcome = "rewritten"
	}
	m.Rewrites.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordWebSocketConnect() {
	m.WebSocketConnections.Inc()
}

func (m *Metrics) RecordWebSocketDisconnect() {
	m.WebSocketConnections.Dec()
}

func (m *Metrics) RecordWebSocketMessage(direction string) {
	m.WebSocketMessages.WithLabelValues(direction).Inc()
}
