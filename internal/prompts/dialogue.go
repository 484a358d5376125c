package prompts

import (
	"fmt"
	"strings"

	"github.com/noah-isme/gema-play-api/internal/learning"
	"github.com/noah-isme/gema-play-api/internal/models"
)

var dialogueRules = map[Level][]string{
	LevelBeginner: {
		"Use simple, intuitive language",
		"Do NOT expect formal definitions",
		"Do NOT penalize lack of technical terms",
		"Focus on whether the core idea is understood",
	},
	LevelIntermediate: {
		"Expect correct terminology",
		"Expect clear structure in the explanation",
		"Penalize vague or incomplete reasoning",
		"Focus on conceptual correctness",
	},
	LevelAdvanced: {
		"Expect precise and formal explanations",
		"Penalize oversimplification",
		"Expect mention of edge cases or limitations",
		"Focus on rigor and completeness",
	},
}

// DialogueStart asks for the opening question of a teach-the-system dialogue.
// The collaborator answers in plain text.
func DialogueStart(concept learning.Context, level string) string {
	var b strings.Builder
	writeHeader(&b, "You are an AI tutor.", concept)
	fmt.Fprintf(&b, "Learner level: %s\n\n", ParseLevel(level))
	b.WriteString("Task:\nAsk the learner ONE clear, open-ended question asking them to explain this concept in their own words.\n\n")
	writeSection(&b, "Rules", []string{
		"Do NOT evaluate",
		"Do NOT give hints",
		"Do NOT explain the concept",
		"Ask only ONE question",
	})
	b.WriteString("Output ONLY the question text.\n")
	return b.String()
}

// DialogueScore asks for per-goal scores of the latest explanation given the
// whole conversation so far. Goals are keyed goal_1..goal_n in order.
func DialogueScore(concept learning.Context, level string, history []models.DialogueTurn, explanation string) string {
	lvl := ParseLevel(level)

	var b strings.Builder
	writeHeader(&b, "You are evaluating a learner teaching an AI a concept.", concept)

	b.WriteString("Conversation so far:\n")
	for _, turn := range history {
		fmt.Fprintf(&b, "%s: %s\n", strings.ToUpper(string(turn.Role)), turn.Content)
	}
	b.WriteString("\n")

	writeSection(&b, "Learner level: "+strings.ToUpper(string(lvl))+"\n\nEvaluation rules", dialogueRules[lvl])

	b.WriteString("Goal keys:\n")
	for i, goal := range concept.LearningGoals {
		fmt.Fprintf(&b, "- %s: %s\n", GoalKey(i), goal)
	}
	b.WriteString("\n")

	writeQuoted(&b, "Latest learner explanation", explanation)

	b.WriteString("Scoring instructions:\nFor each goal key, score:\n0 = missing or incorrect\n1 = partially correct\n2 = clearly and correctly explained\n\n")
	writeSection(&b, "Important", []string{
		"Be strict according to the learner level.",
		"Do NOT provide hints or teaching.",
		"ONLY evaluate the learner's explanation.",
		"Consider conversation context if relevant.",
	})

	b.WriteString("Return JSON ONLY in this format:\n{\n  \"scores\": {\n")
	for i := range concept.LearningGoals {
		sep := ","
		if i == len(concept.LearningGoals)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "    %q: 0%s\n", GoalKey(i), sep)
	}
	b.WriteString("  },\n  \"feedback\": [\n    \"short, specific feedback sentence\"\n  ],\n")
	b.WriteString("  \"follow_up_question\": \"single question testing the weakest learning goal\"\n}\n")
	return b.String()
}
