package contract

import (
	"context"

	"shop-assistant-be/internal/entity"
	"shop-assistant-be/internal/repository/specification"
)

type AssistantSessionRepository interface {
	Create(ctx context.Context, session *entity.AssistantSession) error
	Update(ctx context.Context, session *entity.AssistantSession) error
	Delete(ctx context.Context, id string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AssistantSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
