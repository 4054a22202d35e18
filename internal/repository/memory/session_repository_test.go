package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"shop-assistant-be/internal/pkg/logger"
	"shop-assistant-be/pkg/catalog"
	"shop-assistant-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMirror struct {
	mu       sync.Mutex
	sessions map[string]*store.Session
	failGet  bool
	updates  int
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{sessions: map[string]*store.Session{}}
}

func (m *fakeMirror) CreateSession(_ context.Context, s *store.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *fakeMirror) GetSession(_ context.Context, id string) (*store.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, errors.New("db down")
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (m *fakeMirror) UpdateSession(_ context.Context, s *store.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *fakeMirror) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func TestGetCreatesSessionOnFirstContact(t *testing.T) {
	repo := NewSessionRepository(0, nil, logger.NewNopLogger()).WithSeedSource(func() uint32 { return 7 })
	ctx := context.Background()

	s, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, uint32(7), s.RngSeed)
	assert.NotNil(t, s.VariantCounters)
	assert.Equal(t, 1, repo.Len())

	// returned snapshots are copies
	s.FocusProduct = "iphone"
	again, _ := repo.Get(ctx, "s1")
	assert.Empty(t, again.FocusProduct)
}

func TestUpdateMergesShallowly(t *testing.T) {
	repo := NewSessionRepository(time.Hour, nil, logger.NewNopLogger())
	ctx := context.Background()

	_, err := repo.Update(ctx, "s1", store.Patch{FocusCategory: store.String("celular")})
	require.NoError(t, err)
	s, err := repo.Update(ctx, "s1", store.Patch{
		FocusProduct: store.String("iphone"),
		LastQuery:    &catalog.QuerySignal{Product: "iphone", Category: "celular"},
		CountTurn:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "celular", s.FocusCategory)
	assert.Equal(t, "iphone", s.FocusProduct)
	assert.Equal(t, 1, s.Turns)
	assert.Equal(t, "product:iphone", s.LastQuery.FocusKey())
}

func TestNextVariantRotates(t *testing.T) {
	repo := NewSessionRepository(0, nil, logger.NewNopLogger()).WithSeedSource(func() uint32 { return 3 })
	ctx := context.Background()

	var got []int
	for i := 0; i < 6; i++ {
		idx, err := repo.NextVariant(ctx, "s1", "greeting", 3)
		require.NoError(t, err)
		got = append(got, idx)
	}
	// seed 3 mod 3 = 0, so the first pick is 1
	assert.Equal(t, []int{1, 2, 0, 1, 2, 0}, got)
}

func TestClearForgetsSession(t *testing.T) {
	mirror := newFakeMirror()
	repo := NewSessionRepository(0, mirror, logger.NewNopLogger())
	ctx := context.Background()

	_, err := repo.Update(ctx, "s1", store.Patch{FocusProduct: store.String("drone")})
	require.NoError(t, err)
	require.NoError(t, repo.Clear(ctx, "s1"))

	s, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, s.FocusProduct)
}

func TestRehydratesFromMirror(t *testing.T) {
	mirror := newFakeMirror()
	persisted := store.NewSession("s1", 99)
	persisted.FocusProduct = "perfume"
	persisted.VariantCounters = nil
	mirror.sessions["s1"] = persisted

	repo := NewSessionRepository(0, mirror, logger.NewNopLogger())
	ctx := context.Background()

	s, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "perfume", s.FocusProduct)
	assert.Equal(t, uint32(99), s.RngSeed)

	_, err = repo.NextVariant(ctx, "s1", "k", 4)
	require.NoError(t, err)
	assert.Equal(t, 1, mirror.updates)
}

func TestMirrorFailureStartsFreshSession(t *testing.T) {
	mirror := newFakeMirror()
	mirror.failGet = true
	repo := NewSessionRepository(0, mirror, logger.NewNopLogger())

	s, err := repo.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", s.ID)
}

func TestConcurrentSessionsDoNotInterfere(t *testing.T) {
	repo := NewSessionRepository(0, nil, logger.NewNopLogger())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("s%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = repo.Update(ctx, id, store.Patch{CountTurn: true})
			}
		}()
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		s, err := repo.Get(ctx, fmt.Sprintf("s%d", i))
		require.NoError(t, err)
		assert.Equal(t, 50, s.Turns)
	}
}

func TestSessionLocksAreReleased(t *testing.T) {
	repo := NewSessionRepository(time.Millisecond, nil, logger.NewNopLogger())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		id := fmt.Sprintf("visitor-%d", i)
		wg.Add(1)
		go func(id string, i int) {
			defer wg.Done()
			_, _ = repo.Update(ctx, id, store.Patch{CountTurn: true})
			_, _ = repo.NextVariant(ctx, id, "greeting", 3)
			if i%2 == 0 {
				_ = repo.Clear(ctx, id)
			}
		}(id, i)
	}
	wg.Wait()

	assert.Zero(t, repo.lockCount())
}
