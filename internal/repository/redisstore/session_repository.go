package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shop-assistant-be/internal/pkg/logger"
	"shop-assistant-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "assistant:session:"
	maxRetries = 5
)

// SessionRepository stores each session as one JSON value. Updates run inside
// WATCH/MULTI so concurrent instances never lose each other's writes.
type SessionRepository struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.ILogger
}

// NewSessionRepository builds the store; ttl <= 0 means keys never expire.
func NewSessionRepository(rdb *redis.Client, ttl time.Duration, log logger.ILogger) *SessionRepository {
	if ttl < 0 {
		ttl = 0
	}
	return &SessionRepository{rdb: rdb, ttl: ttl, logger: log}
}

func key(id string) string { return keyPrefix + id }

func (r *SessionRepository) Get(ctx context.Context, id string) (*store.Session, error) {
	var out *store.Session
	err := r.mutate(ctx, id, func(s *store.Session, created bool) bool {
		out = s
		return created
	})
	return out, err
}

func (r *SessionRepository) Update(ctx context.Context, id string, patch store.Patch) (*store.Session, error) {
	var out *store.Session
	err := r.mutate(ctx, id, func(s *store.Session, _ bool) bool {
		patch.Apply(s)
		out = s
		return true
	})
	return out, err
}

func (r *SessionRepository) NextVariant(ctx context.Context, id, k string, poolSize int) (int, error) {
	var idx int
	err := r.mutate(ctx, id, func(s *store.Session, _ bool) bool {
		idx = store.AdvanceVariant(s.RngSeed, s.VariantCounters, k, poolSize)
		return true
	})
	return idx, err
}

func (r *SessionRepository) Clear(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("clear session %s: %w", id, err)
	}
	return nil
}

// mutate loads (or creates) the session under WATCH, applies fn and writes it back
// when fn asks for it. Conflicting writers are retried.
func (r *SessionRepository) mutate(ctx context.Context, id string, fn func(s *store.Session, created bool) bool) error {
	k := key(id)

	txf := func(tx *redis.Tx) error {
		s, created, err := r.read(ctx, tx, id)
		if err != nil {
			return err
		}
		if !fn(s, created) {
			return nil
		}
		payload, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("encode session %s: %w", id, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, payload, r.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxRetries; i++ {
		err := r.rdb.Watch(ctx, txf, k)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("session %s: %w", id, err)
	}

	r.logger.Warn("SessionStore", "Session update lost after retries", map[string]interface{}{"session_id": id})
	return fmt.Errorf("session %s: %w", id, redis.TxFailedErr)
}

func (r *SessionRepository) read(ctx context.Context, tx *redis.Tx, id string) (*store.Session, bool, error) {
	raw, err := tx.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return store.NewSession(id, store.NewSeed()), true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read session %s: %w", id, err)
	}

	var s store.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		r.logger.Warn("SessionStore", "Corrupt session value, starting fresh", map[string]interface{}{"session_id": id, "error": err.Error()})
		return store.NewSession(id, store.NewSeed()), true, nil
	}
	if s.VariantCounters == nil {
		s.VariantCounters = make(map[string]int)
	}
	return &s, false, nil
}
