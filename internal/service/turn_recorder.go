package service

import (
	"context"
	"encoding/json"

	"shop-assistant-be/internal/dto"
	"shop-assistant-be/internal/pkg/logger"
	"shop-assistant-be/pkg/assistant/pipeline"

	"github.com/google/uuid"
)

// TurnRecorder publishes every finished turn on the in-process bus.
type TurnRecorder struct {
	publisher IPublisherService
	logger    logger.ILogger
}

func NewTurnRecorder(publisher IPublisherService, log logger.ILogger) *TurnRecorder {
	return &TurnRecorder{publisher: publisher, logger: log}
}

func (r *TurnRecorder) ObserveTurn(ctx context.Context, ev pipeline.TurnEvent) {
	payload := dto.TurnEventMessage{
		EventId:      uuid.New(),
		SessionId:    ev.SessionID,
		Utterance:    ev.Utterance,
		Reply:        ev.Reply.Text,
		Language:     string(ev.Reply.Language),
		Intent:       string(ev.Reply.Intent),
		ResponseType: string(ev.Reply.ResponseType),
		ResultCount:  ev.ResultCount,
		FocusChanged: ev.FocusChanged,
		SlotFilled:   ev.SlotFilled,
		Paging:       ev.Paging,
		Rewritten:    ev.Rewritten,
		DurationMs:   ev.Duration.Milliseconds(),
		OccurredAt:   ev.At,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		r.logger.Error("TurnRecorder", "Failed to marshal turn event", map[string]interface{}{
			"session_id": ev.SessionID,
			"error":      err.Error(),
		})
		return
	}

	// Analytics never fails a turn.
	if err := r.publisher.Publish(ctx, raw); err != nil {
		r.logger.Warn("TurnRecorder", "Failed to publish turn event", map[string]interface{}{
			"session_id": ev.SessionID,
			"error":      err.Error(),
		})
	}
}
