package prompts

import (
	"strings"

	"github.com/noah-isme/gema-play-api/internal/learning"
	"github.com/noah-isme/gema-play-api/internal/models"
)

type mistakeKindRules struct {
	generateIntro string
	evaluateIntro string
	flawedLabel   string
	levelRules    map[Level][]string
	instructions  []string
	example       string
}

var mistakeKinds = map[models.MistakeKind]mistakeKindRules{
	models.MistakeKindCode: {
		generateIntro: "You are generating a Find-the-Mistake coding challenge.",
		evaluateIntro: "You are evaluating a learner correcting a code mistake.",
		flawedLabel:   "Original flawed code",
		levelRules: map[Level][]string{
			LevelBeginner:     {"Generate a simple and obvious mistake", "Keep the code short and readable", "The mistake should break execution or logic"},
			LevelIntermediate: {"Generate a subtle but clear logical error", "The code should mostly look correct", "The mistake should relate to the core concept"},
			LevelAdvanced:     {"Generate a non-trivial or edge-case mistake", "The code should be structurally correct", "Catching the mistake should require deep understanding"},
		},
		instructions: []string{
			"Generate a code snippet that contains EXACTLY ONE mistake.",
			"The mistake must be directly related to the concept.",
			"Do NOT explain the mistake.",
			"Do NOT include comments that hint at the mistake.",
		},
		example: `{
  "artifact_type": "code",
  "content": "code snippet as plain text",
  "metadata": {
    "language": "python"
  }
}`,
	},
	models.MistakeKindLatex: {
		generateIntro: "You are generating a Find-the-Mistake math challenge.",
		evaluateIntro: "You are evaluating a learner correcting a mistake in a mathematical derivation.",
		flawedLabel:   "Original flawed derivation",
		levelRules: map[Level][]string{
			LevelBeginner:     {"Generate a short, step-by-step derivation", "Introduce ONE clear and visible mistake", "The mistake should be easy to spot (wrong operation, missing term)"},
			LevelIntermediate: {"Generate a multi-step derivation", "Introduce ONE subtle but meaningful mistake", "The mistake should affect correctness without looking obvious"},
			LevelAdvanced:     {"Generate a rigorous derivation or transformation", "Introduce ONE deep conceptual or algebraic mistake", "Detecting the mistake should require careful inspection"},
		},
		instructions: []string{
			"Produce a LaTeX-formatted, step-by-step derivation.",
			"Include EXACTLY ONE incorrect step.",
			"Do NOT explain where the mistake is.",
			"Do NOT include comments or hints.",
		},
		example: `{
  "artifact_type": "latex",
  "content": "LaTeX equations with steps separated by line breaks",
  "metadata": {
    "format": "latex"
  }
}`,
	},
	models.MistakeKindMermaid: {
		generateIntro: "You are generating a Find-the-Mistake challenge using Mermaid diagrams.",
		evaluateIntro: "You are evaluating a learner correcting a mistake in a Mermaid diagram.",
		flawedLabel:   "Original flawed diagram",
		levelRules: map[Level][]string{
			LevelBeginner:     {"Generate a simple Mermaid flowchart or graph", "Introduce ONE obvious structural or logical mistake", "The mistake should be easy to identify visually"},
			LevelIntermediate: {"Generate a multi-node Mermaid diagram", "Introduce ONE subtle logical error", "The diagram should mostly appear correct"},
			LevelAdvanced:     {"Generate a complex Mermaid diagram", "Introduce ONE deep logical or conceptual mistake", "Detecting the mistake should require careful reasoning"},
		},
		instructions: []string{
			"Generate a Mermaid diagram (flowchart or graph).",
			"Introduce EXACTLY ONE incorrect node, edge, or relationship.",
			"The mistake must be conceptual, not a syntax error.",
			"Do NOT explain or hint at the mistake.",
			"Do NOT include comments.",
		},
		example: `{
  "artifact_type": "mermaid",
  "content": "valid Mermaid diagram code",
  "metadata": {
    "diagram_type": "flowchart | graph"
  }
}`,
	},
}

var fixStrictness = map[Level][]string{
	LevelBeginner:     {"Accept partially correct fixes", "Focus on whether the core issue was identified"},
	LevelIntermediate: {"Expect a correct fix and explanation", "Penalize vague or incomplete fixes"},
	LevelAdvanced:     {"Expect a precise and correct fix", "Penalize missing edge cases or incorrect assumptions"},
}

// FindMistakeGenerate asks for a flawed artifact of the given kind.
func FindMistakeGenerate(concept learning.Context, level string, kind models.MistakeKind) string {
	rules := mistakeKinds[models.ParseMistakeKind(string(kind))]
	lvl := ParseLevel(level)

	var b strings.Builder
	writeHeader(&b, rules.generateIntro, concept)
	writeSection(&b, "Level: "+strings.ToUpper(string(lvl)), rules.levelRules[lvl])
	writeSection(&b, "Instructions", rules.instructions)
	b.WriteString("Return JSON ONLY in this format:\n")
	b.WriteString(rules.example)
	b.WriteString("\n")
	return b.String()
}

// FindMistakeEvaluate asks for a verdict on the learner's fix. The kind is
// taken from the stored artifact type.
func FindMistakeEvaluate(concept learning.Context, artifact models.MistakeArtifact, learnerFix, explanation string) string {
	rules := mistakeKinds[models.ParseMistakeKind(artifact.ArtifactType)]
	lvl := ParseLevel(artifact.Level)

	if strings.TrimSpace(explanation) == "" {
		explanation = "No explanation provided."
	}

	var b strings.Builder
	writeHeader(&b, rules.evaluateIntro, concept)
	writeSection(&b, "Evaluation strictness", fixStrictness[lvl])
	writeQuoted(&b, rules.flawedLabel, artifact.Content)
	writeQuoted(&b, "Learner's corrected version or description", learnerFix)
	writeQuoted(&b, "Learner's explanation", explanation)
	writeSection(&b, "Instructions", []string{
		"Decide if the learner correctly identified and fixed the mistake.",
		"Do NOT suggest improvements beyond the single mistake.",
		"Do NOT teach the concept.",
		"Be strict according to the learner level.",
	})
	b.WriteString(verdictFormat)
	return b.String()
}
