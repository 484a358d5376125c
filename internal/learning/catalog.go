package learning

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-play-api/internal/models"
	"github.com/noah-isme/gema-play-api/internal/observability"
	"github.com/noah-isme/gema-play-api/internal/repository"
)

// CatalogLookup reads concepts from the relational catalogue and defers to
// fallback on a miss or a database error.
type CatalogLookup struct {
	repo     repository.ConceptRepository
	fallback Lookup
	logger   zerolog.Logger
}

// NewCatalogLookup constructs a catalogue-backed lookup.
func NewCatalogLookup(repo repository.ConceptRepository, fallback Lookup, logger zerolog.Logger) *CatalogLookup {
	if fallback == nil {
		fallback = NewStaticLookup()
	}
	return &CatalogLookup{
		repo:     repo,
		fallback: fallback,
		logger:   logger.With().Str("component", "concept_catalog").Logger(),
	}
}

func (c *CatalogLookup) Resolve(ctx context.Context, conceptID string) Context {
	concept, err := c.repo.GetBySlug(ctx, slug(conceptID))
	if err != nil {
		if !errors.Is(err, repository.ErrConceptNotFound) {
			c.logger.Warn().Err(err).Str("concept_id", conceptID).Msg("concept catalogue unavailable")
		}
		return c.fallback.Resolve(ctx, conceptID)
	}

	observability.ConceptLookups().WithLabelValues("catalog").Inc()
	return Normalize(Context{
		ConceptID:     conceptID,
		ConceptName:   concept.Name,
		LearningGoals: concept.Goals,
	})
}

// Seed upserts entries into the catalogue so a fresh database resolves the
// built-in concepts.
func Seed(ctx context.Context, repo repository.ConceptRepository, category string, entries ...Context) (int64, error) {
	concepts := make([]models.Concept, 0, len(entries))
	for _, entry := range entries {
		entry = Normalize(entry)
		concepts = append(concepts, models.Concept{
			Slug:     slug(entry.ConceptID),
			Name:     entry.ConceptName,
			Category: category,
			Goals:    entry.LearningGoals,
		})
	}
	return repo.UpsertBatch(ctx, concepts)
}
