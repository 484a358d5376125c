package dto

import "github.com/noah-isme/gema-play-api/internal/models"

// FindMistakeGenerateRequest asks for a flawed artifact.
type FindMistakeGenerateRequest struct {
	ConceptID   string `json:"concept_id" validate:"required,max=160"`
	Level       string `json:"level" validate:"required,max=32"`
	MistakeType string `json:"mistake_type" validate:"omitempty,max=32"`
}

// FindMistakeGenerateResponse returns the artifact shown to the learner.
type FindMistakeGenerateResponse struct {
	SessionID    string         `json:"session_id"`
	ArtifactType string         `json:"artifact_type"`
	Content      string         `json:"content"`
	Metadata     map[string]any `json:"metadata"`
}

// FindMistakeEvaluateRequest carries the learner's correction.
type FindMistakeEvaluateRequest struct {
	SessionID   string `json:"session_id" validate:"required,max=64"`
	LearnerFix  string `json:"learner_fix"`
	Explanation string `json:"explanation"`
}

// EvaluationResponse is the verdict of a single-shot exercise.
type EvaluationResponse struct {
	Correct          bool     `json:"correct"`
	Feedback         []string `json:"feedback"`
	FollowUpQuestion *string  `json:"follow_up_question"`
}

// MissingLinkGenerateRequest asks for a missing-link puzzle.
type MissingLinkGenerateRequest struct {
	ConceptID string `json:"concept_id" validate:"required,max=160"`
	Level     string `json:"level" validate:"required,max=32"`
	Category  string `json:"category" validate:"required,max=64"`
}

// MissingLinkGenerateResponse exposes the puzzle without its solution.
type MissingLinkGenerateResponse struct {
	SessionID string                `json:"session_id"`
	Structure []models.PuzzleSlot   `json:"structure"`
	Options   []models.PuzzleOption `json:"options"`
}

// MissingLinkEvaluateRequest maps slot ids to chosen option ids.
type MissingLinkEvaluateRequest struct {
	SessionID string            `json:"session_id" validate:"required,max=64"`
	Answers   map[string]string `json:"answers"`
}

// DialogueStartRequest opens a teach-the-system dialogue.
type DialogueStartRequest struct {
	ConceptID string `json:"concept_id" form:"concept_id" validate:"required,max=160"`
	Level     string `json:"level" form:"level" validate:"omitempty,max=32"`
}

// DialogueStartResponse carries the opening question.
type DialogueStartResponse struct {
	SessionID     string `json:"session_id"`
	AssistantText string `json:"assistant_text"`
}

// DialogueEvaluateRequest carries one learner explanation.
type DialogueEvaluateRequest struct {
	SessionID   string `json:"session_id" form:"session_id" validate:"required,max=64"`
	Explanation string `json:"explanation" form:"explanation" validate:"required"`
}

// DialogueEvaluateResponse is the scored turn plus the formatted reply.
type DialogueEvaluateResponse struct {
	Scores           map[string]int `json:"scores"`
	Feedback         []string       `json:"feedback"`
	FollowUpQuestion *string        `json:"follow_up_question"`
	Passed           bool           `json:"passed"`
	AssistantText    string         `json:"assistant_text"`
	Turn             int            `json:"turn"`
}

// DialogueHistoryResponse lists the stored turns of a dialogue.
type DialogueHistoryResponse struct {
	SessionID string                `json:"session_id"`
	ConceptID string                `json:"concept_id"`
	Level     string                `json:"level"`
	History   []models.DialogueTurn `json:"history"`
}
