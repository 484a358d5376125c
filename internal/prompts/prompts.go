// Package prompts renders the instructions sent to the generative-text
// collaborator for each play exercise. Every builder ends with the exact JSON
// shape the contract package expects back.
package prompts

import (
	"fmt"
	"strings"

	"github.com/noah-isme/gema-play-api/internal/learning"
)

// Level is the learner proficiency a prompt is tuned for.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// ParseLevel maps free-form input to a Level. Anything unrecognised is
// treated as advanced.
func ParseLevel(raw string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(raw))) {
	case LevelBeginner:
		return LevelBeginner
	case LevelIntermediate:
		return LevelIntermediate
	default:
		return LevelAdvanced
	}
}

// GoalKey is the score key for the goal at index i.
func GoalKey(i int) string {
	return fmt.Sprintf("goal_%d", i+1)
}

func writeHeader(b *strings.Builder, intro string, concept learning.Context) {
	b.WriteString(intro)
	b.WriteString("\n\n")
	fmt.Fprintf(b, "Concept: %s\n\n", concept.ConceptName)
	b.WriteString("Learning goals:\n")
	for _, goal := range concept.LearningGoals {
		fmt.Fprintf(b, "- %s\n", goal)
	}
	b.WriteString("\n")
}

func writeSection(b *strings.Builder, title string, lines []string) {
	b.WriteString(title)
	b.WriteString(":\n")
	for _, line := range lines {
		fmt.Fprintf(b, "- %s\n", line)
	}
	b.WriteString("\n")
}

func writeQuoted(b *strings.Builder, title, body string) {
	fmt.Fprintf(b, "%s:\n\"\"\"%s\"\"\"\n\n", title, body)
}

const verdictFormat = `Return JSON ONLY in this format:
{
  "correct": true,
  "feedback": [
    "short, specific feedback sentence"
  ],
  "follow_up_question": "one question probing understanding if incorrect, otherwise null"
}
`
