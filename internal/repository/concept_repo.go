package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-play-api/internal/models"
)

// ErrConceptNotFound is returned when no concept matches a slug.
var ErrConceptNotFound = errors.New("concept not found")

// ConceptRepository exposes the concept catalogue.
type ConceptRepository interface {
	GetBySlug(ctx context.Context, slug string) (models.Concept, error)
	UpsertBatch(ctx context.Context, concepts []models.Concept) (int64, error)
}

type conceptRepository struct {
	db *gorm.DB
}

// NewConceptRepository constructs the repository implementation.
func NewConceptRepository(db *gorm.DB) ConceptRepository {
	return &conceptRepository{db: db}
}

func (r *conceptRepository) GetBySlug(ctx context.Context, slug string) (models.Concept, error) {
	var concept models.Concept
	err := r.db.WithContext(ctx).
		Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))).
		First(&concept).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Concept{}, ErrConceptNotFound
	}
	if err != nil {
		return models.Concept{}, err
	}
	return concept, nil
}

func (r *conceptRepository) UpsertBatch(ctx context.Context, concepts []models.Concept) (int64, error) {
	if len(concepts) == 0 {
		return 0, nil
	}

	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "category", "learning_goals", "updated_at"}),
	})

	result := tx.Create(&concepts)
	return result.RowsAffected, result.Error
}
