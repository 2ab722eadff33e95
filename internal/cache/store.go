// internal/cache/store.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	engine "github.com/Cyronlee/nana-card-game/engine"
)

var (
	ErrNotConnected  = errors.New("cache: redis client not configured")
	ErrStateNotFound = errors.New("cache: game state not found")
)

// DefaultStateTTL is how long an untouched game survives in Redis.
const DefaultStateTTL = time.Hour

// RedisStore keeps the authoritative engine state of each game under
// "game:{id}". Every write replaces the whole value and refreshes the TTL.
type RedisStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisStore returns a store on rdb. A non-positive ttl means
// DefaultStateTTL.
func NewRedisStore(rdb redis.Cmdable, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func stateKey(id uuid.UUID) string { return "game:" + id.String() }

func settleKey(id uuid.UUID, step int) string {
	return fmt.Sprintf("game:%s:settle:%d", id, step)
}

// Get loads the state of game id. It returns ErrStateNotFound when the key
// is missing or expired.
func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (engine.GameState, error) {
	b, err := s.rdb.Get(ctx, stateKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return engine.GameState{}, fmt.Errorf("%w: %s", ErrStateNotFound, id)
	}
	if err != nil {
		return engine.GameState{}, fmt.Errorf("get state of game %s: %w", id, err)
	}
	var g engine.GameState
	if err := json.Unmarshal(b, &g); err != nil {
		return engine.GameState{}, fmt.Errorf("decode state of game %s: %w", id, err)
	}
	return g, nil
}

// Replace overwrites the state of game id.
func (s *RedisStore) Replace(ctx context.Context, id uuid.UUID, g engine.GameState) error {
	b, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode state of game %s: %w", id, err)
	}
	if err := s.rdb.Set(ctx, stateKey(id), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("store state of game %s: %w", id, err)
	}
	return nil
}

// Delete drops the state of game id. Deleting a missing game is not an
// error.
func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.rdb.Del(ctx, stateKey(id)).Err(); err != nil {
		return fmt.Errorf("delete state of game %s: %w", id, err)
	}
	return nil
}

// AcquireSettle claims the settlement scheduled at action step for the
// caller. Only the first caller for a given game and step gets true, so a
// resolved chain is settled once even when several processes schedule it.
func (s *RedisStore) AcquireSettle(ctx context.Context, id uuid.UUID, step int) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, settleKey(id, step), 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim settle of game %s step %d: %w", id, step, err)
	}
	return ok, nil
}
