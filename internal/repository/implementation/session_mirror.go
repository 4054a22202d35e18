package implementation

import (
	"context"
	"fmt"

	"shop-assistant-be/internal/mapper"
	"shop-assistant-be/internal/repository/contract"
	"shop-assistant-be/internal/repository/specification"
	"shop-assistant-be/pkg/store"
)

// SessionMirror keeps a durable copy of conversation state in assistant_sessions.
type SessionMirror struct {
	repo   contract.AssistantSessionRepository
	mapper *mapper.AssistantMapper
}

var _ store.SessionMirror = (*SessionMirror)(nil)

func NewSessionMirror(repo contract.AssistantSessionRepository) *SessionMirror {
	return &SessionMirror{repo: repo, mapper: mapper.NewAssistantMapper()}
}

func (m *SessionMirror) CreateSession(ctx context.Context, s *store.Session) error {
	if err := m.repo.Create(ctx, m.mapper.StateToSession(s)); err != nil {
		return fmt.Errorf("mirror create session %s: %w", s.ID, err)
	}
	return nil
}

func (m *SessionMirror) GetSession(ctx context.Context, id string) (*store.Session, error) {
	e, err := m.repo.FindOne(ctx, specification.ByStringID{ID: id})
	if err != nil {
		return nil, fmt.Errorf("mirror get session %s: %w", id, err)
	}
	if e == nil {
		return nil, store.ErrSessionNotFound
	}
	return m.mapper.SessionToState(e), nil
}

func (m *SessionMirror) UpdateSession(ctx context.Context, s *store.Session) error {
	if err := m.repo.Update(ctx, m.mapper.StateToSession(s)); err != nil {
		return fmt.Errorf("mirror update session %s: %w", s.ID, err)
	}
	return nil
}

func (m *SessionMirror) DeleteSession(ctx context.Context, id string) error {
	if err := m.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("mirror delete session %s: %w", id, err)
	}
	return nil
}
