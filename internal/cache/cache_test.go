// internal/cache/cache_test.go
package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	engine "github.com/Cyronlee/nana-card-game/engine"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func dealtState(t *testing.T) engine.GameState {
	t.Helper()
	g, err := engine.NewGame(42, []string{"Ann", "Bob", "Cid"})
	require.NoError(t, err)
	g.Deal()
	return g
}

func TestStoreReplaceAndGet(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, time.Minute)
	ctx := context.Background()
	id := uuid.New()

	g := dealtState(t)
	require.NoError(t, store.Replace(ctx, id, g))

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, g.Rules, got.Rules)
	assert.Equal(t, g.Players, got.Players)
	assert.Equal(t, g.Public, got.Public)
	assert.Equal(t, g.Phase, got.Phase)
	assert.Equal(t, g.RNG, got.RNG)
	assert.Equal(t, g.LastAction, got.LastAction)
}

func TestStoreReplaceOverwrites(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, time.Minute)
	ctx := context.Background()
	id := uuid.New()

	g := dealtState(t)
	require.NoError(t, store.Replace(ctx, id, g))

	next, err := g.Reveal(0, engine.PlayerSource{Seat: 0, Extreme: engine.ExtremeMin})
	require.NoError(t, err)
	require.NoError(t, store.Replace(ctx, id, next))

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, engine.PhaseAwaitingSecondReveal, got.Phase)
	require.Len(t, got.Chain, 1)
	assert.Equal(t, next.Chain[0], got.Chain[0])
}

func TestStoreMissingAndExpired(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, time.Minute)
	ctx := context.Background()

	_, err := store.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrStateNotFound)

	id := uuid.New()
	require.NoError(t, store.Replace(ctx, id, dealtState(t)))
	assert.Equal(t, time.Minute, mr.TTL(stateKey(id)))

	mr.FastForward(2 * time.Minute)
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestStoreDefaultTTL(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, 0)
	id := uuid.New()
	require.NoError(t, store.Replace(context.Background(), id, dealtState(t)))
	assert.Equal(t, DefaultStateTTL, mr.TTL(stateKey(id)))
}

func TestStoreDelete(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, time.Minute)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, store.Replace(ctx, id, dealtState(t)))
	require.NoError(t, store.Delete(ctx, id))
	require.NoError(t, store.Delete(ctx, id))

	_, err := store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestAcquireSettleOnce(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, time.Minute)
	ctx := context.Background()
	id := uuid.New()

	ok, err := store.AcquireSettle(ctx, id, 7)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.AcquireSettle(ctx, id, 7)
	require.NoError(t, err)
	assert.False(t, ok, "second claim of the same step")

	ok, err = store.AcquireSettle(ctx, id, 8)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.AcquireSettle(ctx, uuid.New(), 7)
	require.NoError(t, err)
	assert.True(t, ok, "steps are scoped per game")
}

func TestPublishAndReadGameActions(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()
	game, other := uuid.New(), uuid.New()
	actor := uuid.New()

	recs := []GameActionRecord{
		{GameID: game, ActionIndex: 1, ActionType: "game_start", Timestamp: 10},
		{GameID: other, ActionIndex: 1, ActionType: "game_start", Timestamp: 11},
		{GameID: game, ActionIndex: 2, ActorUserID: actor, ActionType: "player_reveal",
			ActionPayload: json.RawMessage(`{"number":4}`), Timestamp: 12},
	}
	for _, r := range recs {
		require.NoError(t, Publish(ctx, rdb, r))
	}

	got, err := ReadGameActions(ctx, rdb, game)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "game_start", got[0].ActionType)
	assert.Equal(t, actor, got[1].ActorUserID)
	assert.JSONEq(t, `{"number":4}`, string(got[1].ActionPayload))
}

func TestPublishWithoutClient(t *testing.T) {
	saved := Rdb
	Rdb = nil
	t.Cleanup(func() { Rdb = saved })

	err := PublishGameAction(context.Background(), GameActionRecord{GameID: uuid.New()})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	saved := Rdb
	t.Cleanup(func() {
		if Rdb != nil && Rdb != saved {
			_ = Rdb.Close()
		}
		Rdb = saved
	})

	require.NoError(t, ConnectRedis(context.Background(), "redis://"+mr.Addr()+"/0"))
	require.NotNil(t, Rdb)
	require.NoError(t, PublishGameAction(context.Background(), GameActionRecord{GameID: uuid.New(), ActionIndex: 1}))

	n, err := Rdb.LLen(context.Background(), ActionQueueKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.Error(t, ConnectRedis(context.Background(), "not a url"))
}
