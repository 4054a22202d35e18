package service

import (
	"context"
	"testing"
	"time"

	"shop-assistant-be/internal/pkg/logger"
	"shop-assistant-be/pkg/assistant/intent"
	"shop-assistant-be/pkg/assistant/pipeline"
	"shop-assistant-be/pkg/assistant/policy"
	"shop-assistant-be/pkg/events"
	"shop-assistant-be/pkg/textnorm"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	events chan events.Event
}

func (c *captureSink) Publish(_ context.Context, event events.Event) error {
	c.events <- event
	return nil
}

func TestTurnEventsReachTheSink(t *testing.T) {
	log := logger.NewNopLogger()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &captureSink{events: make(chan events.Event, 1)}
	consumer := NewConsumerService(pubSub, "ASSISTANT_TURN", "assistant.turn", nil, sink, log)
	require.NoError(t, consumer.Consume(ctx))

	recorder := NewTurnRecorder(NewPublisherService("ASSISTANT_TURN", pubSub), log)
	recorder.ObserveTurn(ctx, pipeline.TurnEvent{
		SessionID: "s1",
		Utterance: "iphone 12",
		Reply: pipeline.Reply{
			Text:         "Encontrei 2 opções.",
			Language:     textnorm.LangPT,
			Intent:       intent.ProductSearch,
			ResponseType: policy.Results,
		},
		ResultCount: 2,
		Duration:    15 * time.Millisecond,
		At:          time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC),
	})

	select {
	case evt := <-sink.events:
		assert.Equal(t, "assistant.turn", evt.EventType())
		assert.Equal(t, "s1", evt.Payload()["session_id"])
		assert.Equal(t, "results", evt.Payload()["response_type"])
		assert.Equal(t, 2, evt.Payload()["result_count"])
		assert.Equal(t, int64(15), evt.Payload()["duration_ms"])
		assert.True(t, evt.Timestamp().Equal(time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC)))
	case <-time.After(2 * time.Second):
		t.Fatal("turn event was not forwarded")
	}
}

func TestConsumerAcksMalformedPayload(t *testing.T) {
	log := logger.NewNopLogger()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &captureSink{events: make(chan events.Event, 1)}
	require.NoError(t, NewConsumerService(pubSub, "T", "assistant.turn", nil, sink, log).Consume(ctx))

	require.NoError(t, pubSub.Publish("T", message.NewMessage(watermill.NewUUID(), []byte("not json"))))
	require.NoError(t, NewPublisherService("T", pubSub).Publish(ctx, []byte(`{"session_id":"s2"}`)))

	// The broken message is acked and dropped; the next one still flows.
	select {
	case evt := <-sink.events:
		assert.Equal(t, "s2", evt.Payload()["session_id"])
	case <-time.After(2 * time.Second):
		t.Fatal("consumer stalled on malformed payload")
	}
}
