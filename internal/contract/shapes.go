package contract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/gema-play-api/internal/models"
)

// Artifact is the flawed artifact produced for find-the-mistake.
type Artifact struct {
	ArtifactType string         `json:"artifact_type"`
	Content      string         `json:"content"`
	Metadata     map[string]any `json:"metadata"`
}

func (a *Artifact) Validate() error {
	if strings.TrimSpace(a.ArtifactType) == "" {
		return errors.New("artifact_type is empty")
	}
	if strings.TrimSpace(a.Content) == "" {
		return errors.New("content is empty")
	}
	if a.Metadata == nil {
		a.Metadata = map[string]any{}
	}
	return nil
}

// Verdict is an open-ended grading result. Absent fields keep their zero
// value: correct=false, no feedback, no follow-up.
type Verdict struct {
	Correct          bool     `json:"correct"`
	Feedback         []string `json:"feedback"`
	FollowUpQuestion *string  `json:"follow_up_question"`
}

func (v *Verdict) Validate() error {
	if v.Feedback == nil {
		v.Feedback = []string{}
	}
	v.FollowUpQuestion = normalizeQuestion(v.FollowUpQuestion)
	return nil
}

// Puzzle is a generated missing-link puzzle including its solution.
type Puzzle struct {
	Structure []models.PuzzleSlot   `json:"structure"`
	Options   []models.PuzzleOption `json:"options"`
	Solution  map[string]string     `json:"solution"`
}

func (p *Puzzle) Validate() error {
	switch {
	case len(p.Structure) == 0:
		return errors.New("structure is empty")
	case len(p.Options) == 0:
		return errors.New("options are empty")
	case len(p.Solution) == 0:
		return errors.New("solution is empty")
	}

	options := make(map[string]struct{}, len(p.Options))
	for _, option := range p.Options {
		options[option.OptionID] = struct{}{}
	}
	for slot, option := range p.Solution {
		if _, ok := options[option]; !ok {
			return fmt.Errorf("solution for slot %q references unknown option %q", slot, option)
		}
	}
	return nil
}

// DialogueScore is the per-turn grading of a teach-dialogue explanation.
type DialogueScore struct {
	Scores           map[string]float64 `json:"scores"`
	Feedback         []string           `json:"feedback"`
	FollowUpQuestion *string            `json:"follow_up_question"`
}

func (d *DialogueScore) Validate() error {
	if d.Scores == nil {
		d.Scores = map[string]float64{}
	}
	if d.Feedback == nil {
		d.Feedback = []string{}
	}
	d.FollowUpQuestion = normalizeQuestion(d.FollowUpQuestion)
	return nil
}

func normalizeQuestion(q *string) *string {
	if q == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*q)
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		return nil
	}
	return &trimmed
}

// DecodeArtifact parses a find-the-mistake generation response.
func DecodeArtifact(text string) (Artifact, error) {
	var out Artifact
	err := Decode(text, ArtifactSchema, &out)
	return out, err
}

// DecodeVerdict parses a grading response.
func DecodeVerdict(text string) (Verdict, error) {
	var out Verdict
	err := Decode(text, VerdictSchema, &out)
	return out, err
}

// DecodePuzzle parses a missing-link generation response.
func DecodePuzzle(text string) (Puzzle, error) {
	var out Puzzle
	err := Decode(text, PuzzleSchema, &out)
	return out, err
}

// DecodeDialogueScore parses a teach-dialogue scoring response.
func DecodeDialogueScore(text string) (DialogueScore, error) {
	var out DialogueScore
	err := Decode(text, DialogueScoreSchema, &out)
	return out, err
}
