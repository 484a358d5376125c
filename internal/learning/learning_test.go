package learning

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-play-api/internal/models"
	"github.com/noah-isme/gema-play-api/internal/repository"
)

func TestStaticLookupKnownConcept(t *testing.T) {
	lookup := NewStaticLookup(DefaultCatalogue()...)

	resolved := lookup.Resolve(context.Background(), "Recursion")
	require.Equal(t, "Recursion", resolved.ConceptName)
	require.Equal(t, []string{"Define recursion", "Explain base case", "Explain recursive calls"}, resolved.LearningGoals)

	resolved.LearningGoals[0] = "mutated"
	again := lookup.Resolve(context.Background(), "recursion")
	require.Equal(t, "Define recursion", again.LearningGoals[0])
}

func TestStaticLookupFallback(t *testing.T) {
	lookup := NewStaticLookup(DefaultCatalogue()...)

	resolved := lookup.Resolve(context.Background(), "photosynthesis")
	require.Equal(t, "photosynthesis", resolved.ConceptName)
	require.Equal(t, []string{FallbackGoal}, resolved.LearningGoals)
}

func TestNormalizeEmptyGoals(t *testing.T) {
	resolved := Normalize(Context{ConceptID: "graphs", LearningGoals: []string{" ", ""}})
	require.Equal(t, "graphs", resolved.ConceptName)
	require.Equal(t, []string{FallbackGoal}, resolved.LearningGoals)
}

type failingRepo struct{}

func (failingRepo) GetBySlug(context.Context, string) (models.Concept, error) {
	return models.Concept{}, errors.New("connection refused")
}

func (failingRepo) UpsertBatch(context.Context, []models.Concept) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestCatalogLookup(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Concept{}))

	repo := repository.NewConceptRepository(db)
	_, err = repo.UpsertBatch(context.Background(), []models.Concept{
		{Slug: "newton-laws", Name: "Newton's Laws", Category: "physics", Goals: []string{"State the first law", "Relate force and acceleration"}},
		{Slug: "empty-goals", Name: "Empty"},
	})
	require.NoError(t, err)

	lookup := NewCatalogLookup(repo, NewStaticLookup(DefaultCatalogue()...), zerolog.Nop())

	resolved := lookup.Resolve(context.Background(), "Newton-Laws")
	require.Equal(t, "Newton's Laws", resolved.ConceptName)
	require.Len(t, resolved.LearningGoals, 2)

	resolved = lookup.Resolve(context.Background(), "empty-goals")
	require.Equal(t, []string{FallbackGoal}, resolved.LearningGoals)

	resolved = lookup.Resolve(context.Background(), "recursion")
	require.Equal(t, "Recursion", resolved.ConceptName)
}

func TestSeedPopulatesCatalogue(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Concept{}))
	repo := repository.NewConceptRepository(db)

	_, err = Seed(context.Background(), repo, "computer_science", DefaultCatalogue()...)
	require.NoError(t, err)
	_, err = Seed(context.Background(), repo, "computer_science", DefaultCatalogue()...)
	require.NoError(t, err)

	concept, err := repo.GetBySlug(context.Background(), "recursion")
	require.NoError(t, err)
	require.Equal(t, "Recursion", concept.Name)
	require.Equal(t, DefaultCatalogue()[0].LearningGoals, concept.Goals)

	var count int64
	require.NoError(t, db.Model(&models.Concept{}).Count(&count).Error)
	require.Equal(t, int64(len(DefaultCatalogue())), count)
}

func TestCatalogLookupDegradesOnError(t *testing.T) {
	lookup := NewCatalogLookup(failingRepo{}, nil, zerolog.Nop())

	resolved := lookup.Resolve(context.Background(), "anything")
	require.Equal(t, "anything", resolved.ConceptName)
	require.Equal(t, []string{FallbackGoal}, resolved.LearningGoals)
}

type countingLookup struct {
	calls int
	inner Lookup
}

func (c *countingLookup) Resolve(ctx context.Context, conceptID string) Context {
	c.calls++
	return c.inner.Resolve(ctx, conceptID)
}

func TestCachedLookupReadThrough(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := &countingLookup{inner: NewStaticLookup(DefaultCatalogue()...)}
	lookup := NewCachedLookup(inner, client, time.Minute, zerolog.Nop())

	first := lookup.Resolve(context.Background(), "recursion")
	second := lookup.Resolve(context.Background(), "recursion")
	require.Equal(t, first, second)
	require.Equal(t, 1, inner.calls)
	require.True(t, mr.Exists("gema:play:concept:v1:recursion"))

	mr.FastForward(2 * time.Minute)
	lookup.Resolve(context.Background(), "recursion")
	require.Equal(t, 2, inner.calls)
}

func TestCachedLookupSurvivesCacheOutage(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	inner := &countingLookup{inner: NewStaticLookup(DefaultCatalogue()...)}
	lookup := NewCachedLookup(inner, client, time.Minute, zerolog.Nop())

	resolved := lookup.Resolve(context.Background(), "recursion")
	require.Equal(t, "Recursion", resolved.ConceptName)
	require.Equal(t, 1, inner.calls)
}

func TestCachedLookupWithoutClient(t *testing.T) {
	inner := &countingLookup{inner: NewStaticLookup()}
	lookup := NewCachedLookup(inner, nil, 0, zerolog.Nop())

	lookup.Resolve(context.Background(), "x")
	lookup.Resolve(context.Background(), "x")
	require.Equal(t, 2, inner.calls)
}
