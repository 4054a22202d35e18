package mapper

import (
	"encoding/json"
	"time"

	"shop-assistant-be/internal/entity"
	"shop-assistant-be/internal/model"
	"shop-assistant-be/pkg/catalog"
	"shop-assistant-be/pkg/store"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AssistantMapper struct{}

func NewAssistantMapper() *AssistantMapper {
	return &AssistantMapper{}
}

// Session Mappers

func (m *AssistantMapper) SessionToEntity(s *model.AssistantSession) *entity.AssistantSession {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	// Corrupt JSON columns degrade to empty values; the session stays usable.
	var lastQuery *catalog.QuerySignal
	if len(s.LastQuery) > 0 && string(s.LastQuery) != "null" {
		var q catalog.QuerySignal
		if err := json.Unmarshal(s.LastQuery, &q); err == nil {
			lastQuery = &q
		}
	}

	counters := map[string]int{}
	if len(s.VariantCounters) > 0 {
		_ = json.Unmarshal(s.VariantCounters, &counters)
	}

	return &entity.AssistantSession{
		Id:              s.Id,
		FocusProduct:    s.FocusProduct,
		FocusCategory:   s.FocusCategory,
		LastQuery:       lastQuery,
		FailedFocus:     s.FailedFocus,
		RngSeed:         uint32(s.RngSeed),
		VariantCounters: counters,
		Language:        s.Language,
		Turns:           s.Turns,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       updatedAt,
		DeletedAt:       deletedAt,
		IsDeleted:       s.DeletedAt.Valid,
	}
}

func (m *AssistantMapper) SessionToModel(s *entity.AssistantSession) *model.AssistantSession {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	var lastQuery datatypes.JSON
	if s.LastQuery != nil {
		if raw, err := json.Marshal(s.LastQuery); err == nil {
			lastQuery = datatypes.JSON(raw)
		}
	}

	counters := datatypes.JSON([]byte("{}"))
	if len(s.VariantCounters) > 0 {
		if raw, err := json.Marshal(s.VariantCounters); err == nil {
			counters = datatypes.JSON(raw)
		}
	}

	return &model.AssistantSession{
		Id:              s.Id,
		FocusProduct:    s.FocusProduct,
		FocusCategory:   s.FocusCategory,
		LastQuery:       lastQuery,
		FailedFocus:     s.FailedFocus,
		RngSeed:         int64(s.RngSeed),
		VariantCounters: counters,
		Language:        s.Language,
		Turns:           s.Turns,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       updatedAt,
		DeletedAt:       deletedAt,
	}
}

// SessionToState converts the persisted form into live conversation state.
func (m *AssistantMapper) SessionToState(e *entity.AssistantSession) *store.Session {
	if e == nil {
		return nil
	}
	updatedAt := e.CreatedAt
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}
	counters := make(map[string]int, len(e.VariantCounters))
	for k, v := range e.VariantCounters {
		counters[k] = v
	}
	return &store.Session{
		ID:              e.Id,
		FocusProduct:    e.FocusProduct,
		FocusCategory:   e.FocusCategory,
		LastQuery:       e.LastQuery.Clone(),
		FailedFocus:     e.FailedFocus,
		RngSeed:         e.RngSeed,
		VariantCounters: counters,
		Language:        e.Language,
		Turns:           e.Turns,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}

func (m *AssistantMapper) StateToSession(s *store.Session) *entity.AssistantSession {
	if s == nil {
		return nil
	}
	updatedAt := s.UpdatedAt
	return &entity.AssistantSession{
		Id:              s.ID,
		FocusProduct:    s.FocusProduct,
		FocusCategory:   s.FocusCategory,
		LastQuery:       s.LastQuery.Clone(),
		FailedFocus:     s.FailedFocus,
		RngSeed:         s.RngSeed,
		VariantCounters: s.VariantCounters,
		Language:        s.Language,
		Turns:           s.Turns,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       &updatedAt,
	}
}

// Message Mappers

func (m *AssistantMapper) MessageToEntity(msg *model.AssistantMessage) *entity.AssistantMessage {
	if msg == nil {
		return nil
	}
	return &entity.AssistantMessage{
		Id:           msg.Id,
		SessionId:    msg.SessionId,
		Role:         msg.Role,
		Content:      msg.Content,
		Intent:       msg.Intent,
		ResponseType: msg.ResponseType,
		Language:     msg.Language,
		ResultCount:  msg.ResultCount,
		CreatedAt:    msg.CreatedAt,
	}
}

func (m *AssistantMapper) MessageToModel(msg *entity.AssistantMessage) *model.AssistantMessage {
	if msg == nil {
		return nil
	}
	return &model.AssistantMessage{
		Id:           msg.Id,
		SessionId:    msg.SessionId,
		Role:         msg.Role,
		Content:      msg.Content,
		Intent:       msg.Intent,
		ResponseType: msg.ResponseType,
		Language:     msg.Language,
		ResultCount:  msg.ResultCount,
		CreatedAt:    msg.CreatedAt,
	}
}

func (m *AssistantMapper) MessagesToEntities(msgs []*model.AssistantMessage) []*entity.AssistantMessage {
	out := make([]*entity.AssistantMessage, len(msgs))
	for i, msg := range msgs {
		out[i] = m.MessageToEntity(msg)
	}
	return out
}

// Product Mappers

func (m *AssistantMapper) ProductToEntity(p *model.Product) *entity.Product {
	if p == nil {
		return nil
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	return &entity.Product{
		Id:         p.Id,
		Title:      p.Title,
		Category:   p.Category,
		Brand:      p.Brand,
		Price:      p.Price,
		InStock:    p.InStock,
		Attributes: []string(p.Attributes),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *AssistantMapper) ProductToModel(p *entity.Product) *model.Product {
	if p == nil {
		return nil
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	return &model.Product{
		Id:         p.Id,
		Title:      p.Title,
		Category:   p.Category,
		Brand:      p.Brand,
		Price:      p.Price,
		InStock:    p.InStock,
		Attributes: datatypes.JSONSlice[string](p.Attributes),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *AssistantMapper) ProductToItem(p *entity.Product) catalog.Item {
	return catalog.Item{
		ID:         p.Id,
		Title:      p.Title,
		Category:   p.Category,
		Price:      p.Price,
		InStock:    p.InStock,
		Attributes: p.Attributes,
		Brand:      p.Brand,
	}
}

func (m *AssistantMapper) ItemToProduct(it catalog.Item) *entity.Product {
	return &entity.Product{
		Id:         it.ID,
		Title:      it.Title,
		Category:   it.Category,
		Brand:      it.Brand,
		Price:      it.Price,
		InStock:    it.InStock,
		Attributes: it.Attributes,
	}
}
