package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/noah-isme/gema-play-api/internal/contract"
	"github.com/noah-isme/gema-play-api/internal/dto"
	"github.com/noah-isme/gema-play-api/internal/events"
	"github.com/noah-isme/gema-play-api/internal/models"
	"github.com/noah-isme/gema-play-api/internal/prompts"
)

const missingLinkRetryPrompt = "Review the incorrect links and try again."

// MissingLinkService runs the complete-the-missing-link exercise.
type MissingLinkService interface {
	Generate(ctx context.Context, req dto.MissingLinkGenerateRequest) (dto.MissingLinkGenerateResponse, error)
	Evaluate(ctx context.Context, req dto.MissingLinkEvaluateRequest) (dto.EvaluationResponse, error)
}

type missingLinkService struct {
	playCore
}

// NewMissingLinkService constructs the service.
func NewMissingLinkService(deps PlayDependencies) MissingLinkService {
	return &missingLinkService{playCore: newPlayCore(deps, "missing_link_service")}
}

func (s *missingLinkService) Generate(ctx context.Context, req dto.MissingLinkGenerateRequest) (dto.MissingLinkGenerateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.MissingLinkGenerateResponse{}, err
	}

	category := prompts.ParseCategory(req.Category)
	concept := s.lookup.Resolve(ctx, req.ConceptID)

	text, err := s.complete(ctx, "missing_link.generate", prompts.MissingLinkGenerate(concept, req.Level, category))
	if err != nil {
		return dto.MissingLinkGenerateResponse{}, generationError(err)
	}

	puzzle, err := contract.DecodePuzzle(text)
	if err != nil {
		s.logger.Warn().Err(err).Str("concept_id", req.ConceptID).Msg("rejected generated puzzle")
		return dto.MissingLinkGenerateResponse{}, generationError(err)
	}

	payload := models.MissingLinkPuzzle{
		ConceptID: req.ConceptID,
		Level:     req.Level,
		Category:  string(category),
		Structure: puzzle.Structure,
		Options:   puzzle.Options,
		Solution:  puzzle.Solution,
	}

	id, err := s.store.Create(ctx, payload)
	if err != nil {
		return dto.MissingLinkGenerateResponse{}, err
	}

	s.logger.Info().Str("session_id", id).Str("concept_id", req.ConceptID).Int("slots", len(payload.Solution)).Msg("missing-link session created")

	return dto.MissingLinkGenerateResponse{
		SessionID: id,
		Structure: append([]models.PuzzleSlot(nil), payload.Structure...),
		Options:   append([]models.PuzzleOption(nil), payload.Options...),
	}, nil
}

func (s *missingLinkService) Evaluate(ctx context.Context, req dto.MissingLinkEvaluateRequest) (dto.EvaluationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.EvaluationResponse{}, err
	}

	sess, err := s.open(ctx, req.SessionID, models.VariantMissingLink)
	if err != nil {
		return dto.EvaluationResponse{}, err
	}
	puzzle := sess.Payload.(models.MissingLinkPuzzle)

	result := GradeMissingLink(puzzle, req.Answers)
	recordEvaluation(models.VariantMissingLink, result.Correct, nil)

	s.logger.Info().Str("session_id", sess.ID).Bool("correct", result.Correct).Msg("missing-link evaluated")
	s.publish(ctx, events.ResultEvent{
		Variant:   string(models.VariantMissingLink),
		SessionID: sess.ID,
		ConceptID: puzzle.ConceptID,
		Level:     puzzle.Level,
		Correct:   result.Correct,
	})

	return result, nil
}

// GradeMissingLink compares answers with the stored solution. Slots are
// visited in structure order so feedback is stable; a missing answer counts
// as a mismatch.
func GradeMissingLink(puzzle models.MissingLinkPuzzle, answers map[string]string) dto.EvaluationResponse {
	feedback := []string{}
	correct := true

	for _, slot := range solutionOrder(puzzle) {
		chosen, ok := answers[slot]
		if !ok || chosen != puzzle.Solution[slot] {
			correct = false
			feedback = append(feedback, fmt.Sprintf("The selection for slot '%s' is incorrect.", slot))
		}
	}

	if correct {
		return dto.EvaluationResponse{
			Correct:  true,
			Feedback: []string{"All missing links were completed correctly."},
		}
	}

	followUp := missingLinkRetryPrompt
	return dto.EvaluationResponse{
		Correct:          false,
		Feedback:         feedback,
		FollowUpQuestion: &followUp,
	}
}

func solutionOrder(puzzle models.MissingLinkPuzzle) []string {
	order := make([]string, 0, len(puzzle.Solution))
	seen := make(map[string]struct{}, len(puzzle.Solution))
	for _, slot := range puzzle.Structure {
		if _, ok := puzzle.Solution[slot.SlotID]; !ok {
			continue
		}
		if _, dup := seen[slot.SlotID]; dup {
			continue
		}
		seen[slot.SlotID] = struct{}{}
		order = append(order, slot.SlotID)
	}

	rest := make([]string, 0)
	for slot := range puzzle.Solution {
		if _, ok := seen[slot]; !ok {
			rest = append(rest, slot)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}
