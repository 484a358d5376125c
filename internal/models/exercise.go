package models

import "strings"

// ExerciseVariant tags the kind of play exercise a session belongs to.
type ExerciseVariant string

const (
	VariantFindMistake   ExerciseVariant = "find_mistake"
	VariantMissingLink   ExerciseVariant = "missing_link"
	VariantTeachDialogue ExerciseVariant = "teach_dialogue"
)

// SingleShot reports whether a session of this variant may be graded only once.
func (v ExerciseVariant) SingleShot() bool {
	return v == VariantFindMistake || v == VariantMissingLink
}

// MistakeKind selects the artifact flavour generated for find-the-mistake.
type MistakeKind string

const (
	MistakeKindCode    MistakeKind = "code"
	MistakeKindLatex   MistakeKind = "latex"
	MistakeKindMermaid MistakeKind = "mermaid"
)

// ParseMistakeKind resolves a requested kind, defaulting to code for empty or unknown values.
func ParseMistakeKind(raw string) MistakeKind {
	switch MistakeKind(strings.ToLower(strings.TrimSpace(raw))) {
	case MistakeKindLatex:
		return MistakeKindLatex
	case MistakeKindMermaid:
		return MistakeKindMermaid
	default:
		return MistakeKindCode
	}
}

// MistakeArtifact is the stored state of a find-the-mistake session.
type MistakeArtifact struct {
	ConceptID    string         `json:"concept_id"`
	Level        string         `json:"level"`
	Kind         MistakeKind    `json:"kind"`
	ArtifactType string         `json:"artifact_type"`
	Content      string         `json:"content"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Variant implements the session payload contract.
func (MistakeArtifact) Variant() ExerciseVariant { return VariantFindMistake }

// PuzzleSlot is one blank in a missing-link structure.
type PuzzleSlot struct {
	SlotID string `json:"slot_id"`
	Text   string `json:"text"`
}

// PuzzleOption is one draggable candidate for a slot.
type PuzzleOption struct {
	OptionID string `json:"option_id"`
	Text     string `json:"text"`
}

// MissingLinkPuzzle is the stored state of a complete-the-missing-link session.
// Solution maps slot ids to option ids and never leaves the service.
type MissingLinkPuzzle struct {
	ConceptID string            `json:"concept_id"`
	Level     string            `json:"level"`
	Category  string            `json:"category"`
	Structure []PuzzleSlot      `json:"structure"`
	Options   []PuzzleOption    `json:"options"`
	Solution  map[string]string `json:"solution"`
}

// Variant implements the session payload contract.
func (MissingLinkPuzzle) Variant() ExerciseVariant { return VariantMissingLink }

// DialogueRole identifies the speaker of a dialogue turn.
type DialogueRole string

const (
	RoleUser      DialogueRole = "user"
	RoleAssistant DialogueRole = "assistant"
)

// DialogueTurn is a single entry in a teach-the-system conversation.
type DialogueTurn struct {
	Role    DialogueRole `json:"role"`
	Content string       `json:"content"`
}

// DialogueState is the stored state of a teach-the-system session.
type DialogueState struct {
	ConceptID string         `json:"concept_id"`
	Level     string         `json:"level"`
	History   []DialogueTurn `json:"history"`
}

// Variant implements the session payload contract.
func (DialogueState) Variant() ExerciseVariant { return VariantTeachDialogue }

// WithTurns returns a copy of the state with the given turns appended.
// The receiver's history is left untouched.
func (d DialogueState) WithTurns(turns ...DialogueTurn) DialogueState {
	history := make([]DialogueTurn, 0, len(d.History)+len(turns))
	history = append(history, d.History...)
	history = append(history, turns...)
	d.History = history
	return d
}

// Turns returns a copy of the dialogue history.
func (d DialogueState) Turns() []DialogueTurn {
	return append([]DialogueTurn(nil), d.History...)
}
