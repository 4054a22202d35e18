// FILE: internal/dto/assistant_dto.go
package dto

import (
	"time"

	"shop-assistant-be/pkg/catalog"

	"github.com/google/uuid"
)

// --- Chat DTOs ---

type ChatRequest struct {
	SessionId string `json:"session_id" validate:"omitempty,max=128"`
	Message   string `json:"message" validate:"required,max=500"`
}

type ChatResponse struct {
	SessionId          string          `json:"session_id"`
	Reply              string          `json:"reply"`
	Language           string          `json:"language"`
	Intent             string          `json:"intent"`
	ResponseType       string          `json:"response_type,omitempty"`
	ClarificationFocus string          `json:"clarification_focus,omitempty"`
	Items              []ProductDTO    `json:"items,omitempty"`
	Suggestions        []string        `json:"suggestions,omitempty"`
	Query              *QuerySignalDTO `json:"query,omitempty"`
}

type ProductDTO struct {
	Id         string   `json:"id"`
	Title      string   `json:"title"`
	Category   string   `json:"category,omitempty"`
	Brand      *string  `json:"brand,omitempty"`
	Price      *float64 `json:"price,omitempty"`
	InStock    bool     `json:"in_stock"`
	Attributes []string `json:"attributes,omitempty"`
}

type QuerySignalDTO struct {
	Product    string   `json:"product,omitempty"`
	Category   string   `json:"category,omitempty"`
	Model      string   `json:"model,omitempty"`
	Attributes []string `json:"attributes,omitempty"`
	PriceMin   *float64 `json:"price_min,omitempty"`
	PriceMax   *float64 `json:"price_max,omitempty"`
	Sort       string   `json:"sort,omitempty"`
	StockOnly  bool     `json:"stock_only,omitempty"`
	Offset     int      `json:"offset,omitempty"`
}

// --- WebSocket DTOs ---

type WSChatMessage struct {
	Message string `json:"message"`
}

type WSError struct {
	Error string `json:"error"`
}

// --- Session DTOs ---

type MessageResponse struct {
	Id           uuid.UUID `json:"id"`
	Role         string    `json:"role"`
	Content      string    `json:"content"`
	Intent       string    `json:"intent,omitempty"`
	ResponseType string    `json:"response_type,omitempty"`
	ResultCount  int       `json:"result_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type SessionSnapshotResponse struct {
	SessionId     string          `json:"session_id"`
	FocusProduct  string          `json:"focus_product,omitempty"`
	FocusCategory string          `json:"focus_category,omitempty"`
	FailedFocus   string          `json:"failed_focus,omitempty"`
	LastQuery     *QuerySignalDTO `json:"last_query,omitempty"`
	Language      string          `json:"language,omitempty"`
	Turns         int             `json:"turns"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// --- Admin DTOs ---

type ReloadDictionaryResponse struct {
	Path   string `json:"path"`
	Tokens int    `json:"tokens"`
}

// --- Bus DTOs ---

// TurnEventMessage is the watermill payload published after every turn.
type TurnEventMessage struct {
	EventId      uuid.UUID `json:"event_id"`
	SessionId    string    `json:"session_id"`
	Utterance    string    `json:"utterance"`
	Reply        string    `json:"reply"`
	Language     string    `json:"language"`
	Intent       string    `json:"intent"`
	ResponseType string    `json:"response_type,omitempty"`
	ResultCount  int       `json:"result_count"`
	FocusChanged bool      `json:"focus_changed"`
	SlotFilled   bool      `json:"slot_filled"`
	Paging       bool      `json:"paging"`
	Rewritten    bool      `json:"rewritten"`
	DurationMs   int64     `json:"duration_ms"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func NewProductDTO(it catalog.Item) ProductDTO {
	return ProductDTO{
		Id:         it.ID,
		Title:      it.Title,
		Category:   it.Category,
		Brand:      it.Brand,
		Price:      it.Price,
		InStock:    it.InStock,
		Attributes: it.Attributes,
	}
}

func NewQuerySignalDTO(q *catalog.QuerySignal) *QuerySignalDTO {
	if q == nil {
		return nil
	}
	return &QuerySignalDTO{
		Product:    q.Product,
		Category:   q.Category,
		Model:      q.Model,
		Attributes: q.Attributes,
		PriceMin:   q.PriceMin,
		PriceMax:   q.PriceMax,
		Sort:       string(q.Sort),
		StockOnly:  q.StockOnly,
		Offset:     q.Offset,
	}
}
