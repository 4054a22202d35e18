package metrics

import (
	"context"
	"testing"
	"time"

	"shop-assistant-be/pkg/assistant/intent"
	"shop-assistant-be/pkg/assistant/pipeline"
	"shop-assistant-be/pkg/assistant/policy"
	"shop-assistant-be/pkg/catalog"
	"shop-assistant-be/pkg/textnorm"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveTurn(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveTurn(context.Background(), pipeline.TurnEvent{
		Reply: pipeline.Reply{
			Intent:       intent.ProductSearch,
			ResponseType: policy.Results,
			Language:     textnorm.LangPT,
			Query:        &catalog.QuerySignal{Product: "iphone"},
		},
		ResultCount:  3,
		RewriteTried: true,
		Rewritten:    true,
		Duration:     20 * time.Millisecond,
	})
	m.ObserveTurn(context.Background(), pipeline.TurnEvent{
		Reply: pipeline.Reply{Intent: intent.SmallTalk, Language: textnorm.LangES},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues("PRODUCT_SEARCH", "results", "pt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues("SMALL_TALK", "conversational", "es")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rewrites.WithLabelValues("rewritten")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Rewrites.WithLabelValues("kept")))
}

func TestWebSocketGauge(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.RecordWebSocketConnect()
	m.RecordWebSocketConnect()
	m.RecordWebSocketDisconnect()
	m.RecordWebSocketMessage("inbound")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.WebSocketConnections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WebSocketMessages.WithLabelValues("inbound")))
}
