package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-play-api/internal/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestMemoryStore(ttl time.Duration) (*MemoryStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(Config{TTL: ttl}, zerolog.Nop())
	store.now = clock.Now
	return store, clock
}

func samplePuzzle() models.MissingLinkPuzzle {
	return models.MissingLinkPuzzle{
		ConceptID: "recursion",
		Level:     "beginner",
		Structure: []models.PuzzleSlot{{SlotID: "s1", Text: "a ____ b"}},
		Options:   []models.PuzzleOption{{OptionID: "o1", Text: "x"}, {OptionID: "o2", Text: "y"}},
		Solution:  map[string]string{"s1": "o2"},
	}
}

func TestMemoryStoreCreateAndGet(t *testing.T) {
	store, _ := newTestMemoryStore(time.Minute)
	ctx := context.Background()

	id, err := store.Create(ctx, samplePuzzle())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	sess, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, sess.ID)
	require.Equal(t, models.VariantMissingLink, sess.Variant)
	require.Equal(t, samplePuzzle(), sess.Payload)
	require.Equal(t, 1, store.Len())
}

func TestMemoryStoreRejectsNilPayload(t *testing.T) {
	store, _ := newTestMemoryStore(time.Minute)

	_, err := store.Create(context.Background(), nil)
	require.ErrorIs(t, err, ErrNilPayload)
	require.Zero(t, store.Len())
}

func TestMemoryStoreUniqueIDsAcrossVariants(t *testing.T) {
	store, _ := newTestMemoryStore(time.Minute)
	ctx := context.Background()

	ids := []string{"dup", "dup", "other"}
	var calls int
	store.newID = func() string {
		id := ids[calls]
		calls++
		return id
	}

	first, err := store.Create(ctx, samplePuzzle())
	require.NoError(t, err)
	second, err := store.Create(ctx, models.DialogueState{ConceptID: "recursion"})
	require.NoError(t, err)

	require.Equal(t, "dup", first)
	require.Equal(t, "other", second)
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	store, _ := newTestMemoryStore(time.Minute)

	_, err := store.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreExpiryIsReportedOnce(t *testing.T) {
	store, clock := newTestMemoryStore(30 * time.Minute)
	ctx := context.Background()

	id, err := store.Create(ctx, samplePuzzle())
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	_, err = store.Get(ctx, id)
	require.NoError(t, err, "a session exactly at its ttl is still live")

	clock.Advance(time.Second)
	_, err = store.Get(ctx, id)
	require.ErrorIs(t, err, ErrExpired)
	require.True(t, IsGone(err))

	_, err = store.Get(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)
	require.Zero(t, store.Len())
}

func TestMemoryStoreTakeIsAtMostOnce(t *testing.T) {
	store, _ := newTestMemoryStore(time.Minute)
	ctx := context.Background()

	id, err := store.Create(ctx, samplePuzzle())
	require.NoError(t, err)

	const workers = 32
	var (
		wg       sync.WaitGroup
		success  atomic.Int32
		notFound atomic.Int32
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := store.Take(ctx, id)
			switch {
			case err == nil:
				success.Add(1)
			case err == ErrNotFound:
				notFound.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Equal(t, int32(1), success.Load())
	require.Equal(t, int32(workers-1), notFound.Load())
}

func TestMemoryStoreRestoreKeepsIdentity(t *testing.T) {
	store, clock := newTestMemoryStore(time.Minute)
	ctx := context.Background()

	id, err := store.Create(ctx, samplePuzzle())
	require.NoError(t, err)

	taken, err := store.Take(ctx, id)
	require.NoError(t, err)
	_, err = store.Get(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)

	clock.Advance(10 * time.Second)
	require.NoError(t, store.Restore(ctx, taken))

	restored, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, taken.CreatedAt, restored.CreatedAt)
	require.ErrorIs(t, store.Restore(ctx, taken), ErrAlreadyExists)
}

func TestMemoryStoreRestoreRefusesExpired(t *testing.T) {
	store, clock := newTestMemoryStore(time.Minute)
	ctx := context.Background()

	id, err := store.Create(ctx, samplePuzzle())
	require.NoError(t, err)
	taken, err := store.Take(ctx, id)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	require.ErrorIs(t, store.Restore(ctx, taken), ErrExpired)
	require.Zero(t, store.Len())
}

func TestMemoryStoreReplace(t *testing.T) {
	store, _ := newTestMemoryStore(time.Minute)
	ctx := context.Background()

	state := models.DialogueState{ConceptID: "recursion", History: []models.DialogueTurn{{Role: models.RoleAssistant, Content: "Explain recursion."}}}
	id, err := store.Create(ctx, state)
	require.NoError(t, err)

	next := state.WithTurns(models.DialogueTurn{Role: models.RoleUser, Content: "It calls itself."})
	require.NoError(t, store.Replace(ctx, id, next))

	sess, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, sess.Payload.(models.DialogueState).History, 2)
	require.Len(t, state.History, 1)

	require.ErrorIs(t, store.Replace(ctx, id, samplePuzzle()), ErrVariantMismatch)
	require.ErrorIs(t, store.Replace(ctx, "missing", next), ErrNotFound)
}

func TestMemoryStoreDeleteIsIdempotent(t *testing.T) {
	store, _ := newTestMemoryStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, "never-existed"))

	id, err := store.Create(ctx, samplePuzzle())
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, id))
	require.NoError(t, store.Delete(ctx, id))

	_, err = store.Get(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreSweep(t *testing.T) {
	store, clock := newTestMemoryStore(time.Minute)
	ctx := context.Background()

	old, err := store.Create(ctx, samplePuzzle())
	require.NoError(t, err)
	clock.Advance(45 * time.Second)
	fresh, err := store.Create(ctx, samplePuzzle())
	require.NoError(t, err)

	clock.Advance(30 * time.Second)
	require.Equal(t, 1, store.Sweep(clock.Now()))

	_, err = store.Get(ctx, old)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, fresh)
	require.NoError(t, err)
}
