// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Rdb is the shared client. It stays nil when Redis is not configured, in
// which case callers skip publishing.
var Rdb *redis.Client

// ActionQueueKey is the list every game action is appended to.
const ActionQueueKey = "nana:actions"

// ConnectRedis parses url, connects and pings the server, then installs the
// client as Rdb.
func ConnectRedis(ctx context.Context, url string) error {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	Rdb = client
	log.WithField("addr", opts.Addr).Info("connected to redis")
	return nil
}

// GameActionRecord is one entry of a game's action log.
type GameActionRecord struct {
	GameID        uuid.UUID       `json:"gameId"`
	ActionIndex   int             `json:"actionIndex"`
	ActorUserID   uuid.UUID       `json:"actorUserId"`
	ActionType    string          `json:"actionType"`
	ActionPayload json.RawMessage `json:"actionPayload,omitempty"`
	Timestamp     int64           `json:"timestamp"`
}

// PublishGameAction appends rec to the action queue on Rdb.
func PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	if Rdb == nil {
		return ErrNotConnected
	}
	return Publish(ctx, Rdb, rec)
}

// Publish appends rec to the action queue on rdb.
func Publish(ctx context.Context, rdb redis.Cmdable, rec GameActionRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode action %d: %w", rec.ActionIndex, err)
	}
	if err := rdb.RPush(ctx, ActionQueueKey, b).Err(); err != nil {
		return fmt.Errorf("push action %d of game %s: %w", rec.ActionIndex, rec.GameID, err)
	}
	return nil
}

// ReadGameActions returns every queued action of game id in publish order.
func ReadGameActions(ctx context.Context, rdb redis.Cmdable, id uuid.UUID) ([]GameActionRecord, error) {
	raw, err := rdb.LRange(ctx, ActionQueueKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read action queue: %w", err)
	}
	var out []GameActionRecord
	for _, s := range raw {
		var rec GameActionRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, fmt.Errorf("decode action record: %w", err)
		}
		if rec.GameID == id {
			out = append(out, rec)
		}
	}
	return out, nil
}
