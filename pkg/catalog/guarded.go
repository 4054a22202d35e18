package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"shop-assistant-be/internal/pkg/logger"
)

type sessionKey struct{}

// WithSession tags ctx with the conversation a search belongs to.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

func sessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// Guarded bounds every search with a timeout and turns failures into an empty
// result, so a catalog outage reads as "nothing found" to the conversation.
//
// A search that outlives its timeout keeps the session's slot until the backend
// actually returns. The next search of that session waits for it, or degrades
// to empty if it is still running when its own deadline hits, so a backend that
// ignores ctx never has two calls running for one session.
type Guarded struct {
	inner   Executor
	timeout time.Duration
	logger  logger.ILogger

	mu       sync.Mutex
	inflight map[string]chan struct{}
}

func NewGuarded(inner Executor, timeout time.Duration, log logger.ILogger) *Guarded {
	return &Guarded{inner: inner, timeout: timeout, logger: log, inflight: make(map[string]chan struct{})}
}

func (g *Guarded) Search(ctx context.Context, q QuerySignal) ([]Item, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	session := sessionFrom(ctx)
	if session != "" && !g.claim(ctx, session) {
		g.logger.Warn("Catalog", "Previous search still running, degrading to empty result", map[string]interface{}{
			"session_id": session,
			"focus":      q.FocusKey(),
		})
		return []Item{}, nil
	}

	type result struct {
		items []Item
		err   error
	}
	done := make(chan result, 1)
	go func() {
		items, err := g.inner.Search(ctx, q)
		if session != "" {
			g.release(session)
		}
		done <- result{items: items, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			g.logger.Warn("Catalog", "Search failed, degrading to empty result", map[string]interface{}{
				"error": r.err.Error(),
				"focus": q.FocusKey(),
			})
			return []Item{}, nil
		}
		if r.items == nil {
			return []Item{}, nil
		}
		return r.items, nil
	case <-ctx.Done():
		fields := map[string]interface{}{"focus": q.FocusKey(), "timeout": g.timeout.String()}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			g.logger.Warn("Catalog", "Search timed out, degrading to empty result", fields)
		}
		return []Item{}, nil
	}
}

// claim takes the session's slot, waiting for a running call to finish.
// It reports false when ctx ends first.
func (g *Guarded) claim(ctx context.Context, session string) bool {
	for {
		g.mu.Lock()
		busy, running := g.inflight[session]
		if !running {
			g.inflight[session] = make(chan struct{})
			g.mu.Unlock()
			return true
		}
		g.mu.Unlock()

		select {
		case <-busy:
		case <-ctx.Done():
			return false
		}
	}
}

func (g *Guarded) release(session string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if busy, ok := g.inflight[session]; ok {
		close(busy)
		delete(g.inflight, session)
	}
}

func (g *Guarded) running() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inflight)
}
