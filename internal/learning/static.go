package learning

import (
	"context"

	"github.com/noah-isme/gema-play-api/internal/observability"
)

// StaticLookup serves a fixed in-process catalogue.
type StaticLookup struct {
	entries map[string]Context
}

// DefaultCatalogue is the built-in concept set.
func DefaultCatalogue() []Context {
	return []Context{
		{
			ConceptID:   "recursion",
			ConceptName: "Recursion",
			LearningGoals: []string{
				"Define recursion",
				"Explain base case",
				"Explain recursive calls",
			},
		},
	}
}

// NewStaticLookup builds a lookup over entries keyed by lowercased concept id.
func NewStaticLookup(entries ...Context) *StaticLookup {
	lookup := &StaticLookup{entries: make(map[string]Context, len(entries))}
	for _, entry := range entries {
		lookup.entries[slug(entry.ConceptID)] = Normalize(entry)
	}
	return lookup
}

func (s *StaticLookup) Resolve(_ context.Context, conceptID string) Context {
	if entry, ok := s.entries[slug(conceptID)]; ok {
		observability.ConceptLookups().WithLabelValues("static").Inc()
		return entry.clone()
	}
	observability.ConceptLookups().WithLabelValues("fallback").Inc()
	return Fallback(conceptID)
}

func (c Context) clone() Context {
	c.LearningGoals = append([]string(nil), c.LearningGoals...)
	return c
}
