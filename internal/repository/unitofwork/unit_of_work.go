package unitofwork

import (
	"context"

	"shop-assistant-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	// Do runs fn in a transaction. An error or panic from fn rolls it back.
	Do(ctx context.Context, fn func(tx UnitOfWork) error) error

	AssistantSessionRepository() contract.AssistantSessionRepository
	AssistantMessageRepository() contract.AssistantMessageRepository
	ProductRepository() contract.ProductRepository
}
