package pipeline

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// sessionGate serializes turns of one session. Entries are dropped once no turn
// holds or waits on them.
type sessionGate struct {
	mu    sync.Mutex
	slots map[string]*gateSlot
}

type gateSlot struct {
	sem  *semaphore.Weighted
	refs int
}

func newSessionGate() *sessionGate {
	return &sessionGate{slots: make(map[string]*gateSlot)}
}

// Acquire blocks until the session is free or ctx ends. The returned func releases it.
func (g *sessionGate) Acquire(ctx context.Context, id string) (func(), error) {
	g.mu.Lock()
	s, ok := g.slots[id]
	if !ok {
		s = &gateSlot{sem: semaphore.NewWeighted(1)}
		g.slots[id] = s
	}
	s.refs++
	g.mu.Unlock()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		g.drop(id, s)
		return nil, err
	}

	return func() {
		s.sem.Release(1)
		g.drop(id, s)
	}, nil
}

func (g *sessionGate) drop(id string, s *gateSlot) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(g.slots, id)
	}
}

func (g *sessionGate) size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.slots)
}
