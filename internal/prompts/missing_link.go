package prompts

import (
	"fmt"
	"strings"

	"github.com/noah-isme/gema-play-api/internal/learning"
)

// Category is the subject domain that shapes a missing-link puzzle.
type Category string

const (
	CategoryMath            Category = "math"
	CategoryPhysics         Category = "physics"
	CategoryBiology         Category = "biology"
	CategoryChemistry       Category = "chemistry"
	CategoryComputerScience Category = "computer_science"
)

// ParseCategory maps free-form input to a Category, defaulting to computer science.
func ParseCategory(raw string) Category {
	switch c := Category(strings.ToLower(strings.TrimSpace(raw))); c {
	case CategoryMath, CategoryPhysics, CategoryBiology, CategoryChemistry:
		return c
	default:
		return CategoryComputerScience
	}
}

var slotRules = map[Level]string{
	LevelBeginner:     "Use 2-3 simple missing slots.",
	LevelIntermediate: "Use 3-4 reasoning-based missing slots.",
	LevelAdvanced:     "Use 4-5 subtle or closely related missing slots.",
}

var categoryRules = map[Category][]string{
	CategoryMath: {
		"Structure must involve equations or expressions",
		"Missing links should be numbers, operators, or algebraic steps",
		"Example: solving, simplifying, transforming expressions",
	},
	CategoryPhysics: {
		"Structure must involve physical quantities or laws",
		"Missing links should be variables, formulas, or causal relationships",
		"Example: force, velocity, acceleration, units",
	},
	CategoryBiology: {
		"Structure must represent a biological process or system",
		"Missing links should be stages, components, or functions",
		"Example: photosynthesis steps, cell organelles",
	},
	CategoryChemistry: {
		"Structure must involve reactions or chemical relationships",
		"Missing links should be compounds, coefficients, or steps",
		"Example: reaction balancing, reaction stages",
	},
	CategoryComputerScience: {
		"Structure must represent logic, algorithms, or flow",
		"Missing links should be conditions, steps, or function calls",
		"Example: recursion, loops, control flow",
	},
}

const puzzleFormat = `Return JSON ONLY in this format:
{
  "structure": [
    { "slot_id": "s1", "text": "Text with ____ missing" },
    { "slot_id": "s2", "text": "Another ____ step" }
  ],
  "options": [
    { "option_id": "o1", "text": "option text" },
    { "option_id": "o2", "text": "option text" },
    { "option_id": "o3", "text": "option text" }
  ],
  "solution": {
    "s1": "o2",
    "s2": "o1"
  }
}
`

// MissingLinkGenerate asks for a puzzle with hidden solution mapping.
func MissingLinkGenerate(concept learning.Context, level string, category Category) string {
	lvl := ParseLevel(level)
	category = ParseCategory(string(category))

	var b strings.Builder
	writeHeader(&b, `You are generating a "Complete the Missing Link" learning puzzle.`, concept)
	fmt.Fprintf(&b, "Category: %s\n\n", category)
	b.WriteString(slotRules[lvl])
	b.WriteString("\n\n")
	writeSection(&b, "Category rules", categoryRules[category])
	writeSection(&b, "Instructions", []string{
		"Create a structured sequence with missing links.",
		"Each missing link must have a unique slot_id.",
		"Provide draggable options.",
		"Exactly ONE option must correctly fit each slot.",
		"Do NOT reveal the correct mapping outside the solution field.",
	})
	b.WriteString(puzzleFormat)
	return b.String()
}
