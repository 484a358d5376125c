package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-play-api/internal/learning"
	"github.com/noah-isme/gema-play-api/internal/models"
)

func recursion() learning.Context {
	return learning.Context{
		ConceptID:     "recursion",
		ConceptName:   "Recursion",
		LearningGoals: []string{"Define recursion", "Explain base case", "Explain recursive calls"},
	}
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelBeginner, ParseLevel(" Beginner "))
	require.Equal(t, LevelIntermediate, ParseLevel("intermediate"))
	require.Equal(t, LevelAdvanced, ParseLevel("expert"))
	require.Equal(t, LevelAdvanced, ParseLevel(""))
}

func TestParseCategory(t *testing.T) {
	require.Equal(t, CategoryPhysics, ParseCategory("Physics"))
	require.Equal(t, CategoryComputerScience, ParseCategory("history"))
}

func TestFindMistakeGenerateRoutesByKind(t *testing.T) {
	code := FindMistakeGenerate(recursion(), "beginner", models.MistakeKindCode)
	require.Contains(t, code, "coding challenge")
	require.Contains(t, code, `"artifact_type": "code"`)
	require.Contains(t, code, "Level: BEGINNER")
	require.Contains(t, code, "- Explain base case")

	latex := FindMistakeGenerate(recursion(), "intermediate", models.MistakeKindLatex)
	require.Contains(t, latex, `"artifact_type": "latex"`)
	require.Contains(t, latex, "Level: INTERMEDIATE")

	mermaid := FindMistakeGenerate(recursion(), "wizard", models.MistakeKindMermaid)
	require.Contains(t, mermaid, `"artifact_type": "mermaid"`)
	require.Contains(t, mermaid, "Level: ADVANCED")

	fallback := FindMistakeGenerate(recursion(), "beginner", models.MistakeKind("haiku"))
	require.Contains(t, fallback, `"artifact_type": "code"`)
}

func TestFindMistakeEvaluateIncludesSubmission(t *testing.T) {
	artifact := models.MistakeArtifact{ConceptID: "recursion", Level: "beginner", ArtifactType: "latex", Content: "x = y + 1"}

	prompt := FindMistakeEvaluate(recursion(), artifact, "x = y - 1", "")
	require.Contains(t, prompt, "mathematical derivation")
	require.Contains(t, prompt, `"""x = y + 1"""`)
	require.Contains(t, prompt, `"""x = y - 1"""`)
	require.Contains(t, prompt, "No explanation provided.")
	require.Contains(t, prompt, "Accept partially correct fixes")
	require.Contains(t, prompt, `"correct": true`)
}

func TestMissingLinkGenerate(t *testing.T) {
	prompt := MissingLinkGenerate(recursion(), "intermediate", CategoryBiology)
	require.Contains(t, prompt, "Category: biology")
	require.Contains(t, prompt, "photosynthesis")
	require.Contains(t, prompt, "Use 3-4 reasoning-based missing slots.")
	require.Contains(t, prompt, `"solution"`)
}

func TestDialogueStart(t *testing.T) {
	prompt := DialogueStart(recursion(), "beginner")
	require.Contains(t, prompt, "Learner level: beginner")
	require.Contains(t, prompt, "Output ONLY the question text.")
}

func TestDialogueScoreCarriesHistoryAndGoalKeys(t *testing.T) {
	history := []models.DialogueTurn{
		{Role: models.RoleAssistant, Content: "What is recursion?"},
		{Role: models.RoleUser, Content: "A function calling itself."},
		{Role: models.RoleAssistant, Content: "What stops it?"},
	}

	prompt := DialogueScore(recursion(), "advanced", history, "The base case.")
	first := strings.Index(prompt, "ASSISTANT: What is recursion?")
	second := strings.Index(prompt, "USER: A function calling itself.")
	third := strings.Index(prompt, "ASSISTANT: What stops it?")
	require.True(t, first >= 0 && first < second && second < third)

	require.Contains(t, prompt, "- goal_1: Define recursion")
	require.Contains(t, prompt, "- goal_3: Explain recursive calls")
	require.Contains(t, prompt, `"goal_3": 0`+"\n")
	require.Contains(t, prompt, `"""The base case."""`)
	require.Contains(t, prompt, "Penalize oversimplification")
}
