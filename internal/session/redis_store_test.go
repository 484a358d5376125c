package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-play-api/internal/models"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, "test:session:", Config{TTL: ttl}, zerolog.Nop()), mini
}

func TestRedisStoreRoundTripsEveryVariant(t *testing.T) {
	store, mini := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	payloads := []Payload{
		models.MistakeArtifact{ConceptID: "recursion", Level: "beginner", Kind: models.MistakeKindCode, ArtifactType: "code", Content: "def f(n): return f(n)", Metadata: map[string]any{"language": "python"}},
		samplePuzzle(),
		models.DialogueState{ConceptID: "recursion", Level: "advanced", History: []models.DialogueTurn{{Role: models.RoleAssistant, Content: "Go ahead."}}},
	}

	for _, payload := range payloads {
		id, err := store.Create(ctx, payload)
		require.NoError(t, err)
		require.True(t, mini.Exists("test:session:"+id))
		require.Equal(t, time.Minute+redisExpiryGrace, mini.TTL("test:session:"+id))

		sess, err := store.Get(ctx, id)
		require.NoError(t, err)
		require.Equal(t, payload.Variant(), sess.Variant)
		require.Equal(t, payload, sess.Payload)
	}
}

func TestRedisStoreTakeIsAtMostOnce(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	id, err := store.Create(ctx, samplePuzzle())
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		success  atomic.Int32
		notFound atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Take(ctx, id)
			switch {
			case err == nil:
				success.Add(1)
			case errors.Is(err, ErrNotFound):
				notFound.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), success.Load())
	require.Equal(t, int32(7), notFound.Load())
}

func TestRedisStoreExpiryByKeyTTL(t *testing.T) {
	store, mini := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	id, err := store.Create(ctx, samplePuzzle())
	require.NoError(t, err)

	mini.FastForward(time.Minute + redisExpiryGrace + time.Second)
	_, err = store.Get(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)
	require.True(t, IsGone(err))
}

func TestRedisStoreReportsExpiredOnceWithinGrace(t *testing.T) {
	store, mini := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	id, err := store.Create(ctx, samplePuzzle())
	require.NoError(t, err)
	require.Greater(t, mini.TTL("test:session:"+id), time.Minute)

	mini.FastForward(61 * time.Second)
	store.now = func() time.Time { return time.Now().Add(61 * time.Second) }

	_, err = store.Take(ctx, id)
	require.ErrorIs(t, err, ErrExpired)
	require.True(t, IsGone(err))

	_, err = store.Get(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreExpiryByCreationTime(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	id, err := store.Create(ctx, samplePuzzle())
	require.NoError(t, err)

	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = store.Get(ctx, id)
	require.ErrorIs(t, err, ErrExpired)

	_, err = store.Get(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreRestoreUsesRemainingTTL(t *testing.T) {
	store, mini := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	id, err := store.Create(ctx, samplePuzzle())
	require.NoError(t, err)
	taken, err := store.Take(ctx, id)
	require.NoError(t, err)

	require.NoError(t, store.Restore(ctx, taken))
	remaining := mini.TTL("test:session:" + id)
	require.Greater(t, remaining, time.Duration(0))
	require.LessOrEqual(t, remaining, time.Minute+redisExpiryGrace)

	require.ErrorIs(t, store.Restore(ctx, taken), ErrAlreadyExists)

	taken.CreatedAt = time.Now().Add(-2 * time.Minute)
	require.NoError(t, store.Delete(ctx, id))
	require.ErrorIs(t, store.Restore(ctx, taken), ErrExpired)
}

func TestRedisStoreReplaceKeepsTTL(t *testing.T) {
	store, mini := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	state := models.DialogueState{ConceptID: "recursion", History: []models.DialogueTurn{{Role: models.RoleAssistant, Content: "Q"}}}
	id, err := store.Create(ctx, state)
	require.NoError(t, err)

	mini.FastForward(20 * time.Second)
	next := state.WithTurns(
		models.DialogueTurn{Role: models.RoleUser, Content: "A"},
		models.DialogueTurn{Role: models.RoleAssistant, Content: "F"},
	)
	require.NoError(t, store.Replace(ctx, id, next))
	require.Equal(t, 40*time.Second+redisExpiryGrace, mini.TTL("test:session:"+id))

	sess, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, next, sess.Payload)

	require.ErrorIs(t, store.Replace(ctx, id, samplePuzzle()), ErrVariantMismatch)
	require.ErrorIs(t, store.Replace(ctx, "missing", next), ErrNotFound)
}

func TestRedisStoreDeleteIsIdempotent(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, "never-existed"))
}
