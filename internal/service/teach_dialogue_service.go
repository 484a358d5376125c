package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/noah-isme/gema-play-api/internal/contract"
	"github.com/noah-isme/gema-play-api/internal/dto"
	"github.com/noah-isme/gema-play-api/internal/events"
	"github.com/noah-isme/gema-play-api/internal/models"
	"github.com/noah-isme/gema-play-api/internal/prompts"
	"github.com/noah-isme/gema-play-api/internal/session"
)

const (
	// PassThreshold is the share of the maximum score needed to pass a turn.
	PassThreshold = 0.7
	maxGoalScore  = 2
	defaultLevel  = "beginner"
)

// TeachDialogueService runs the multi-turn teach-the-system exercise.
type TeachDialogueService interface {
	Start(ctx context.Context, req dto.DialogueStartRequest) (dto.DialogueStartResponse, error)
	Evaluate(ctx context.Context, req dto.DialogueEvaluateRequest) (dto.DialogueEvaluateResponse, error)
	History(ctx context.Context, sessionID string) (dto.DialogueHistoryResponse, error)
	End(ctx context.Context, sessionID string) error
}

type teachDialogueService struct {
	playCore
	locks *session.Locker
}

// NewTeachDialogueService constructs the service.
func NewTeachDialogueService(deps PlayDependencies) TeachDialogueService {
	return &teachDialogueService{
		playCore: newPlayCore(deps, "teach_dialogue_service"),
		locks:    session.NewLocker(),
	}
}

func (s *teachDialogueService) Start(ctx context.Context, req dto.DialogueStartRequest) (dto.DialogueStartResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.DialogueStartResponse{}, err
	}
	level := strings.TrimSpace(req.Level)
	if level == "" {
		level = defaultLevel
	}

	concept := s.lookup.Resolve(ctx, req.ConceptID)
	text, err := s.complete(ctx, "teach_dialogue.start", prompts.DialogueStart(concept, level))
	if err != nil {
		return dto.DialogueStartResponse{}, generationError(err)
	}

	question := strings.TrimSpace(text)
	if question == "" {
		return dto.DialogueStartResponse{}, generationError(fmt.Errorf("%w: empty opening question", contract.ErrIncompleteArtifact))
	}

	state := models.DialogueState{ConceptID: req.ConceptID, Level: level}.
		WithTurns(models.DialogueTurn{Role: models.RoleAssistant, Content: question})

	id, err := s.store.Create(ctx, state)
	if err != nil {
		return dto.DialogueStartResponse{}, err
	}

	s.logger.Info().Str("session_id", id).Str("concept_id", req.ConceptID).Msg("teach dialogue started")
	return dto.DialogueStartResponse{SessionID: id, AssistantText: question}, nil
}

// Evaluate scores one explanation. Turns on the same session run one at a
// time; the stored history changes only after a fully successful turn.
func (s *teachDialogueService) Evaluate(ctx context.Context, req dto.DialogueEvaluateRequest) (dto.DialogueEvaluateResponse, error) {
	req.Explanation = strings.TrimSpace(req.Explanation)
	if err := s.validator.Struct(req); err != nil {
		return dto.DialogueEvaluateResponse{}, err
	}

	unlock := s.locks.Lock(req.SessionID)
	defer unlock()

	sess, err := s.open(ctx, req.SessionID, models.VariantTeachDialogue)
	if err != nil {
		return dto.DialogueEvaluateResponse{}, err
	}
	state := sess.Payload.(models.DialogueState)

	concept := s.lookup.Resolve(ctx, state.ConceptID)
	prompt := prompts.DialogueScore(concept, state.Level, state.History, req.Explanation)

	text, err := s.complete(ctx, "teach_dialogue.evaluate", prompt)
	if err != nil {
		recordEvaluation(models.VariantTeachDialogue, false, err)
		return dto.DialogueEvaluateResponse{}, evaluationError(err)
	}

	result, err := contract.DecodeDialogueScore(text)
	if err != nil {
		recordEvaluation(models.VariantTeachDialogue, false, err)
		s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("rejected dialogue score")
		return dto.DialogueEvaluateResponse{}, evaluationError(err)
	}

	scores, ratio, passed := ScoreDialogue(result.Scores, len(concept.LearningGoals))
	assistantText := FormatAssistantText(result.Feedback, result.FollowUpQuestion)

	next := state.WithTurns(
		models.DialogueTurn{Role: models.RoleUser, Content: req.Explanation},
		models.DialogueTurn{Role: models.RoleAssistant, Content: assistantText},
	)
	if err := s.store.Replace(ctx, sess.ID, next); err != nil {
		recordEvaluation(models.VariantTeachDialogue, false, err)
		if errors.Is(err, session.ErrVariantMismatch) {
			return dto.DialogueEvaluateResponse{}, ErrVariantMismatch
		}
		return dto.DialogueEvaluateResponse{}, sessionError(err)
	}
	recordEvaluation(models.VariantTeachDialogue, passed, nil)

	turn := countTurns(next.History, models.RoleUser)
	s.logger.Info().Str("session_id", sess.ID).Int("turn", turn).Float64("ratio", ratio).Bool("passed", passed).Msg("teach dialogue turn scored")
	s.publish(ctx, events.ResultEvent{
		Variant:   string(models.VariantTeachDialogue),
		SessionID: sess.ID,
		ConceptID: state.ConceptID,
		Level:     state.Level,
		Correct:   passed,
		Ratio:     &ratio,
	})

	return dto.DialogueEvaluateResponse{
		Scores:           scores,
		Feedback:         result.Feedback,
		FollowUpQuestion: result.FollowUpQuestion,
		Passed:           passed,
		AssistantText:    assistantText,
		Turn:             turn,
	}, nil
}

func (s *teachDialogueService) History(ctx context.Context, sessionID string) (dto.DialogueHistoryResponse, error) {
	sess, err := s.open(ctx, sessionID, models.VariantTeachDialogue)
	if err != nil {
		return dto.DialogueHistoryResponse{}, err
	}
	state := sess.Payload.(models.DialogueState)
	return dto.DialogueHistoryResponse{
		SessionID: sess.ID,
		ConceptID: state.ConceptID,
		Level:     state.Level,
		History:   state.Turns(),
	}, nil
}

// End discards a dialogue. Ending an unknown or already ended session is not an error.
func (s *teachDialogueService) End(ctx context.Context, sessionID string) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	sess, err := s.store.Get(ctx, sessionID)
	switch {
	case session.IsGone(err):
		return nil
	case err != nil:
		return err
	case sess.Variant != models.VariantTeachDialogue:
		return ErrVariantMismatch
	}

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.logger.Info().Str("session_id", sessionID).Msg("teach dialogue ended")
	return nil
}

// ScoreDialogue clamps each score to 0..2 and computes the achieved share of
// 2*goalCount. Every returned score counts toward the sum; the share is
// capped at 1. With no goals the turn never passes.
func ScoreDialogue(raw map[string]float64, goalCount int) (map[string]int, float64, bool) {
	scores := make(map[string]int, len(raw))
	sum := 0
	for key, value := range raw {
		score := clampScore(value)
		scores[key] = score
		sum += score
	}

	if goalCount <= 0 {
		return scores, 0, false
	}

	ratio := math.Min(float64(sum)/float64(maxGoalScore*goalCount), 1)
	return scores, ratio, ratio >= PassThreshold
}

func clampScore(value float64) int {
	if math.IsNaN(value) {
		return 0
	}
	rounded := int(math.Round(value))
	switch {
	case rounded < 0:
		return 0
	case rounded > maxGoalScore:
		return maxGoalScore
	default:
		return rounded
	}
}

// FormatAssistantText renders the assistant reply appended to the history.
func FormatAssistantText(feedback []string, followUp *string) string {
	var b strings.Builder
	b.WriteString("Here's my feedback on your explanation:\n\n")
	for i, item := range feedback {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
	b.WriteString("\n\n")
	if followUp != nil && *followUp != "" {
		b.WriteString("Now, here's a follow-up question for you:\n")
		b.WriteString(*followUp)
	}
	return strings.TrimSpace(b.String())
}

func countTurns(history []models.DialogueTurn, role models.DialogueRole) int {
	count := 0
	for _, turn := range history {
		if turn.Role == role {
			count++
		}
	}
	return count
}
