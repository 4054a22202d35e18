package store

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"shop-assistant-be/pkg/catalog"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is the per-conversation state carried across turns.
type Session struct {
	ID string `json:"id"`

	// What the conversation is currently about
	FocusProduct  string               `json:"focus_product,omitempty"`
	FocusCategory string               `json:"focus_category,omitempty"`
	LastQuery     *catalog.QuerySignal `json:"last_query,omitempty"`

	// Focus key of the last turn that found nothing; empty after any success
	FailedFocus string `json:"failed_focus,omitempty"`

	RngSeed         uint32         `json:"rng_seed"`
	VariantCounters map[string]int `json:"variant_counters"`

	Language  string    `json:"language,omitempty"`
	Turns     int       `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Focus is the read-only view of a session the query builder works from.
type Focus struct {
	Product   string
	Category  string
	LastQuery *catalog.QuerySignal
}

// Key identifies the focus the same way QuerySignal.FocusKey does.
func (f Focus) Key() string {
	return catalog.FocusKey(f.Product, f.Category)
}

// Empty reports whether nothing is in focus.
func (f Focus) Empty() bool {
	return f.Product == "" && f.Category == ""
}

// NewSession creates a fresh state with the given seed.
func NewSession(id string, seed uint32) *Session {
	now := time.Now()
	return &Session{
		ID:              id,
		RngSeed:         seed,
		VariantCounters: make(map[string]int),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// NewSeed draws a random per-session seed.
func NewSeed() uint32 {
	return rand.Uint32()
}

func (s *Session) Focus() Focus {
	if s == nil {
		return Focus{}
	}
	return Focus{Product: s.FocusProduct, Category: s.FocusCategory, LastQuery: s.LastQuery}
}

// Clone returns a deep copy so callers never share maps with the store.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.LastQuery = s.LastQuery.Clone()
	c.VariantCounters = make(map[string]int, len(s.VariantCounters))
	for k, v := range s.VariantCounters {
		c.VariantCounters[k] = v
	}
	return &c
}

// Patch is a shallow update; nil fields are left untouched.
type Patch struct {
	FocusProduct  *string
	FocusCategory *string
	LastQuery     *catalog.QuerySignal
	FailedFocus   *string
	Language      *string
	CountTurn     bool
}

// String is a helper for building patches.
func String(v string) *string { return &v }

func (p Patch) Apply(s *Session) {
	if p.FocusProduct != nil {
		s.FocusProduct = *p.FocusProduct
	}
	if p.FocusCategory != nil {
		s.FocusCategory = *p.FocusCategory
	}
	if p.LastQuery != nil {
		s.LastQuery = p.LastQuery.Clone()
	}
	if p.FailedFocus != nil {
		s.FailedFocus = *p.FailedFocus
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	if p.CountTurn {
		s.Turns++
	}
	s.UpdatedAt = time.Now()
}

// AdvanceVariant picks the next index of a template pool and records it in counters.
// A key never used before starts from seed mod poolSize; each call then moves one step,
// so a pool of size n cycles with period n and never repeats back to back when n > 1.
func AdvanceVariant(seed uint32, counters map[string]int, key string, poolSize int) int {
	if poolSize <= 0 {
		return 0
	}
	current, ok := counters[key]
	if !ok {
		current = int(seed % uint32(poolSize))
	}
	next := (current + 1) % poolSize
	if next < 0 {
		next += poolSize
	}
	counters[key] = next
	return next
}

// SessionStore holds conversation state. Implementations must be safe across sessions;
// Get creates the session on first contact.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, patch Patch) (*Session, error)
	NextVariant(ctx context.Context, id, key string, poolSize int) (int, error)
	Clear(ctx context.Context, id string) error
}

// SessionMirror is an optional durable copy of session state.
type SessionMirror interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	UpdateSession(ctx context.Context, s *Session) error
	DeleteSession(ctx context.Context, id string) error
}
