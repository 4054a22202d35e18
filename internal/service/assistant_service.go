package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop-assistant-be/internal/dto"
	"shop-assistant-be/internal/mapper"
	"shop-assistant-be/internal/pkg/logger"
	"shop-assistant-be/internal/repository/specification"
	"shop-assistant-be/internal/repository/unitofwork"
	"shop-assistant-be/pkg/assistant/pipeline"
	"shop-assistant-be/pkg/canon"
	"shop-assistant-be/pkg/store"

	"github.com/google/uuid"
)

var (
	ErrHistoryUnavailable  = errors.New("message history requires a database")
	ErrDictionaryPathUnset = errors.New("no canon dictionary path configured")
)

const defaultHistoryLimit = 50

// TurnHandler runs one conversational turn. *pipeline.Pipeline satisfies it.
type TurnHandler interface {
	Handle(ctx context.Context, sessionID, utterance string) (pipeline.Reply, error)
}

type IAssistantService interface {
	Chat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error)
	GetHistory(ctx context.Context, sessionId string, limit int) ([]*dto.MessageResponse, error)
	GetSession(ctx context.Context, sessionId string) (*dto.SessionSnapshotResponse, error)
	ClearSession(ctx context.Context, sessionId string) error
	ReloadDictionary(ctx context.Context) (*dto.ReloadDictionaryResponse, error)
	GetLogs(ctx context.Context, level string, limit, offset int) ([]*dto.LogListResponse, error)
	GetLogById(ctx context.Context, id string) (*dto.LogDetailResponse, error)
}

type assistantService struct {
	turns      TurnHandler
	sessions   store.SessionStore
	canonStore *canon.Store
	canonPath  string
	uowFactory unitofwork.RepositoryFactory
	mapper     *mapper.AssistantMapper
	logger     logger.ILogger
}

// NewAssistantService wires the chat surface. uowFactory may be nil when no
// database is configured; history then reports ErrHistoryUnavailable.
func NewAssistantService(
	turns TurnHandler,
	sessions store.SessionStore,
	canonStore *canon.Store,
	canonPath string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IAssistantService {
	return &assistantService{
		turns:      turns,
		sessions:   sessions,
		canonStore: canonStore,
		canonPath:  canonPath,
		uowFactory: uowFactory,
		mapper:     mapper.NewAssistantMapper(),
		logger:     log,
	}
}

func (s *assistantService) Chat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	sessionId := request.SessionId
	if sessionId == "" {
		sessionId = uuid.NewString()
	}

	reply, err := s.turns.Handle(ctx, sessionId, request.Message)
	if err != nil {
		return nil, err
	}

	return NewChatResponse(reply), nil
}

// NewChatResponse maps a pipeline reply onto the wire shape shared by REST and WebSocket.
func NewChatResponse(reply pipeline.Reply) *dto.ChatResponse {
	res := &dto.ChatResponse{
		SessionId:          reply.SessionID,
		Reply:              reply.Text,
		Language:           string(reply.Language),
		Intent:             string(reply.Intent),
		ResponseType:       string(reply.ResponseType),
		ClarificationFocus: string(reply.Focus),
		Suggestions:        reply.Suggestions,
		Query:              dto.NewQuerySignalDTO(reply.Query),
	}
	for _, it := range reply.Items {
		res.Items = append(res.Items, dto.NewProductDTO(it))
	}
	return res
}

func (s *assistantService) GetHistory(ctx context.Context, sessionId string, limit int) ([]*dto.MessageResponse, error) {
	if s.uowFactory == nil {
		return nil, ErrHistoryUnavailable
	}
	if limit <= 0 || limit > 200 {
		limit = defaultHistoryLimit
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.AssistantMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
	if err != nil {
		return nil, fmt.Errorf("load history for %s: %w", sessionId, err)
	}

	// Newest rows were fetched first; the transcript reads oldest first.
	res := make([]*dto.MessageResponse, len(messages))
	for i, m := range messages {
		res[len(messages)-1-i] = &dto.MessageResponse{
			Id:           m.Id,
			Role:         m.Role,
			Content:      m.Content,
			Intent:       m.Intent,
			ResponseType: m.ResponseType,
			ResultCount:  m.ResultCount,
			CreatedAt:    m.CreatedAt,
		}
	}
	return res, nil
}

func (s *assistantService) GetSession(ctx context.Context, sessionId string) (*dto.SessionSnapshotResponse, error) {
	sess, err := s.sessions.Get(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	return &dto.SessionSnapshotResponse{
		SessionId:     sess.ID,
		FocusProduct:  sess.FocusProduct,
		FocusCategory: sess.FocusCategory,
		FailedFocus:   sess.FailedFocus,
		LastQuery:     dto.NewQuerySignalDTO(sess.LastQuery),
		Language:      string(sess.Language),
		Turns:         sess.Turns,
		CreatedAt:     sess.CreatedAt,
		UpdatedAt:     sess.UpdatedAt,
	}, nil
}

func (s *assistantService) ClearSession(ctx context.Context, sessionId string) error {
	if err := s.sessions.Clear(ctx, sessionId); err != nil {
		return err
	}

	if s.uowFactory != nil {
		err := s.uowFactory.NewUnitOfWork(ctx).Do(ctx, func(tx unitofwork.UnitOfWork) error {
			if err := tx.AssistantMessageRepository().DeleteBySessionId(ctx, sessionId); err != nil {
				return err
			}
			return tx.AssistantSessionRepository().Delete(ctx, sessionId)
		})
		if err != nil {
			return fmt.Errorf("delete history for %s: %w", sessionId, err)
		}
	}

	s.logger.Info("Assistant", "Session cleared", map[string]interface{}{
		"session_id": sessionId,
	})
	return nil
}

func (s *assistantService) ReloadDictionary(ctx context.Context) (*dto.ReloadDictionaryResponse, error) {
	if s.canonPath == "" {
		return nil, ErrDictionaryPathUnset
	}
	if err := s.canonStore.Reload(s.canonPath); err != nil {
		return nil, err
	}
	return &dto.ReloadDictionaryResponse{
		Path:   s.canonPath,
		Tokens: s.canonStore.Current().Size(),
	}, nil
}

func (s *assistantService) GetLogs(ctx context.Context, level string, limit, offset int) ([]*dto.LogListResponse, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	entries, err := s.logger.GetLogs(level, limit, offset)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.LogListResponse, 0, len(entries))
	for _, e := range entries {
		item := toLogListResponse(e)
		res = append(res, &item)
	}
	return res, nil
}

func (s *assistantService) GetLogById(ctx context.Context, id string) (*dto.LogDetailResponse, error) {
	entry, err := s.logger.GetLogById(id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}
	return &dto.LogDetailResponse{
		LogListResponse: toLogListResponse(*entry),
		Details:         entry.Details,
	}, nil
}

func toLogListResponse(e logger.LogEntry) dto.LogListResponse {
	createdAt, _ := time.Parse("2006-01-02T15:04:05.000Z0700", e.Timestamp)
	return dto.LogListResponse{
		Id:        e.Id,
		Level:     e.Level,
		Module:    e.Module,
		Message:   e.Message,
		CreatedAt: createdAt,
	}
}
