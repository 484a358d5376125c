// Package learning resolves concept identifiers to the teaching metadata
// used when building prompts.
package learning

import (
	"context"
	"strings"
)

// FallbackGoal is used when a concept has no learning goals.
const FallbackGoal = "Explain the concept clearly"

// Context is the teaching metadata for one concept.
type Context struct {
	ConceptID     string   `json:"concept_id"`
	ConceptName   string   `json:"concept_name"`
	LearningGoals []string `json:"learning_goals"`
}

// Lookup resolves a concept id. Resolve never fails: unknown concepts get a
// fallback context named after the id.
type Lookup interface {
	Resolve(ctx context.Context, conceptID string) Context
}

// Normalize trims the context and guarantees a name and at least one goal.
func Normalize(c Context) Context {
	c.ConceptID = strings.TrimSpace(c.ConceptID)
	c.ConceptName = strings.TrimSpace(c.ConceptName)
	if c.ConceptName == "" {
		c.ConceptName = c.ConceptID
	}

	goals := make([]string, 0, len(c.LearningGoals))
	for _, goal := range c.LearningGoals {
		if trimmed := strings.TrimSpace(goal); trimmed != "" {
			goals = append(goals, trimmed)
		}
	}
	if len(goals) == 0 {
		goals = []string{FallbackGoal}
	}
	c.LearningGoals = goals
	return c
}

// Fallback is the context returned for unknown concepts.
func Fallback(conceptID string) Context {
	return Normalize(Context{ConceptID: conceptID, ConceptName: conceptID})
}

func slug(conceptID string) string {
	return strings.ToLower(strings.TrimSpace(conceptID))
}
