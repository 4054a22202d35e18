package contract

import (
	"context"

	"shop-assistant-be/internal/entity"
	"shop-assistant-be/internal/repository/specification"
)

type AssistantMessageRepository interface {
	CreateBulk(ctx context.Context, messages []*entity.AssistantMessage) error
	DeleteBySessionId(ctx context.Context, sessionId string) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AssistantMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
