// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"time"

	"shop-assistant-be/internal/dto"
	"shop-assistant-be/internal/entity"
	"shop-assistant-be/internal/pkg/logger"
	"shop-assistant-be/internal/repository/unitofwork"
	"shop-assistant-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// EventPublisher forwards events to the external bus. *nats.Publisher satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type consumerService struct {
	subscriber     message.Subscriber
	topicName      string
	eventType      string
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher EventPublisher
	logger         logger.ILogger
}

// NewConsumerService drains turn events. uowFactory and eventPublisher are both
// optional; a nil one skips that sink.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	eventType string,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher EventPublisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:     subscriber,
		topicName:      topicName,
		eventType:      eventType,
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.TurnEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal turn event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if cs.uowFactory != nil {
		if err := cs.recordMessages(ctx, payload); err != nil {
			cs.logger.Error("Consumer", "Failed to record turn messages", map[string]interface{}{
				"session_id": payload.SessionId,
				"error":      err.Error(),
			})
			msg.Nack()
			return
		}
	}

	if cs.eventPublisher != nil {
		evt := events.BaseEvent{
			Type:       cs.eventType,
			OccurredAt: payload.OccurredAt,
			Data: map[string]interface{}{
				"event_id":      payload.EventId.String(),
				"session_id":    payload.SessionId,
				"language":      payload.Language,
				"intent":        payload.Intent,
				"response_type": payload.ResponseType,
				"result_count":  payload.ResultCount,
				"focus_changed": payload.FocusChanged,
				"slot_filled":   payload.SlotFilled,
				"paging":        payload.Paging,
				"rewritten":     payload.Rewritten,
				"duration_ms":   payload.DurationMs,
			},
		}
		// The external sink is best effort; the message log is the record of truth.
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.logger.Warn("Consumer", "Failed to forward turn event", map[string]interface{}{
				"session_id": payload.SessionId,
				"error":      err.Error(),
			})
		}
	}

	cs.logger.Debug("Consumer", "Turn event processed", map[string]interface{}{
		"session_id": payload.SessionId,
		"intent":     payload.Intent,
	})
	msg.Ack()
}

func (cs *consumerService) recordMessages(ctx context.Context, payload dto.TurnEventMessage) error {
	userAt := payload.OccurredAt
	if payload.DurationMs > 0 {
		userAt = userAt.Add(-time.Duration(payload.DurationMs) * time.Millisecond)
	}

	messages := []*entity.AssistantMessage{
		{
			Id:        uuid.New(),
			SessionId: payload.SessionId,
			Role:      entity.RoleUser,
			Content:   payload.Utterance,
			Language:  payload.Language,
			CreatedAt: userAt,
		},
		{
			Id:           uuid.New(),
			SessionId:    payload.SessionId,
			Role:         entity.RoleAssistant,
			Content:      payload.Reply,
			Intent:       payload.Intent,
			ResponseType: payload.ResponseType,
			Language:     payload.Language,
			ResultCount:  payload.ResultCount,
			CreatedAt:    payload.OccurredAt,
		},
	}

	return cs.uowFactory.NewUnitOfWork(ctx).Do(ctx, func(tx unitofwork.UnitOfWork) error {
		return tx.AssistantMessageRepository().CreateBulk(ctx, messages)
	})
}
