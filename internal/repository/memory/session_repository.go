package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"shop-assistant-be/internal/pkg/logger"
	"shop-assistant-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps session state in process memory. Turns for one session are
// serialized by a per-session mutex; different sessions never block each other.
type SessionRepository struct {
	cache  *cache.Cache
	mu     sync.Mutex
	locks  map[string]*sessionLock
	ttl    time.Duration
	mirror store.SessionMirror
	logger logger.ILogger
	seed   func() uint32
}

// NewSessionRepository builds the store. ttl <= 0 keeps sessions until Clear;
// mirror may be nil.
func NewSessionRepository(ttl time.Duration, mirror store.SessionMirror, log logger.ILogger) *SessionRepository {
	expiration := cache.NoExpiration
	if ttl > 0 {
		expiration = ttl
	}
	return &SessionRepository{
		cache:  cache.New(expiration, 10*time.Minute),
		locks:  make(map[string]*sessionLock),
		ttl:    expiration,
		mirror: mirror,
		logger: log,
		seed:   store.NewSeed,
	}
}

// WithSeedSource replaces the seed generator, for deterministic tests.
func (r *SessionRepository) WithSeedSource(fn func() uint32) *SessionRepository {
	r.seed = fn
	return r
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*store.Session, error) {
	unlock := r.lock(id)
	defer unlock()

	return r.load(ctx, id).Clone(), nil
}

func (r *SessionRepository) Update(ctx context.Context, id string, patch store.Patch) (*store.Session, error) {
	unlock := r.lock(id)
	defer unlock()

	s := r.load(ctx, id)
	patch.Apply(s)
	r.save(ctx, s)
	return s.Clone(), nil
}

func (r *SessionRepository) NextVariant(ctx context.Context, id, key string, poolSize int) (int, error) {
	unlock := r.lock(id)
	defer unlock()

	s := r.load(ctx, id)
	idx := store.AdvanceVariant(s.RngSeed, s.VariantCounters, key, poolSize)
	r.save(ctx, s)
	return idx, nil
}

func (r *SessionRepository) Clear(ctx context.Context, id string) error {
	unlock := r.lock(id)
	defer unlock()

	r.cache.Delete(id)
	if r.mirror != nil {
		if err := r.mirror.DeleteSession(ctx, id); err != nil {
			r.logger.Warn("SessionStore", "Mirror delete failed", map[string]interface{}{"session_id": id, "error": err.Error()})
		}
	}
	return nil
}

// Len is the number of sessions currently held.
func (r *SessionRepository) Len() int {
	return r.cache.ItemCount()
}

// sessionLock lives in the table only while some caller holds or waits on it,
// so the table is bounded by in-flight calls rather than by every id ever seen.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func (r *SessionRepository) lock(id string) func() {
	r.mu.Lock()
	l, ok := r.locks[id]
	if !ok {
		l = &sessionLock{}
		r.locks[id] = l
	}
	l.refs++
	r.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		r.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(r.locks, id)
		}
		r.mu.Unlock()
	}
}

func (r *SessionRepository) lockCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}

// load returns the live session, rehydrating from the mirror or creating it.
// Callers hold the session lock.
func (r *SessionRepository) load(ctx context.Context, id string) *store.Session {
	if x, found := r.cache.Get(id); found {
		return x.(*store.Session)
	}

	if r.mirror != nil {
		s, err := r.mirror.GetSession(ctx, id)
		switch {
		case err == nil && s != nil:
			if s.VariantCounters == nil {
				s.VariantCounters = make(map[string]int)
			}
			r.cache.Set(id, s, r.ttl)
			return s
		case err != nil && !errors.Is(err, store.ErrSessionNotFound):
			r.logger.Warn("SessionStore", "Mirror read failed, starting fresh session", map[string]interface{}{"session_id": id, "error": err.Error()})
		}
	}

	s := store.NewSession(id, r.seed())
	r.cache.Set(id, s, r.ttl)
	if r.mirror != nil {
		if err := r.mirror.CreateSession(ctx, s.Clone()); err != nil {
			r.logger.Warn("SessionStore", "Mirror create failed", map[string]interface{}{"session_id": id, "error": err.Error()})
		}
	}
	return s
}

func (r *SessionRepository) save(ctx context.Context, s *store.Session) {
	r.cache.Set(s.ID, s, r.ttl)
	if r.mirror == nil {
		return
	}
	if err := r.mirror.UpdateSession(ctx, s.Clone()); err != nil {
		r.logger.Warn("SessionStore", "Mirror update failed", map[string]interface{}{"session_id": s.ID, "error": err.Error()})
	}
}
