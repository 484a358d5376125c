package service

import (
	"context"
	"strings"

	"github.com/noah-isme/gema-play-api/internal/contract"
	"github.com/noah-isme/gema-play-api/internal/dto"
	"github.com/noah-isme/gema-play-api/internal/events"
	"github.com/noah-isme/gema-play-api/internal/models"
	"github.com/noah-isme/gema-play-api/internal/prompts"
)

// FindMistakeService runs the find-the-mistake exercise.
type FindMistakeService interface {
	Generate(ctx context.Context, req dto.FindMistakeGenerateRequest) (dto.FindMistakeGenerateResponse, error)
	Evaluate(ctx context.Context, req dto.FindMistakeEvaluateRequest) (dto.EvaluationResponse, error)
}

type findMistakeService struct {
	playCore
}

// NewFindMistakeService constructs the service.
func NewFindMistakeService(deps PlayDependencies) FindMistakeService {
	return &findMistakeService{playCore: newPlayCore(deps, "find_mistake_service")}
}

func (s *findMistakeService) Generate(ctx context.Context, req dto.FindMistakeGenerateRequest) (dto.FindMistakeGenerateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.FindMistakeGenerateResponse{}, err
	}

	kind := models.ParseMistakeKind(req.MistakeType)
	concept := s.lookup.Resolve(ctx, req.ConceptID)

	text, err := s.complete(ctx, "find_mistake.generate", prompts.FindMistakeGenerate(concept, req.Level, kind))
	if err != nil {
		return dto.FindMistakeGenerateResponse{}, generationError(err)
	}

	artifact, err := contract.DecodeArtifact(text)
	if err != nil {
		s.logger.Warn().Err(err).Str("concept_id", req.ConceptID).Msg("rejected generated artifact")
		return dto.FindMistakeGenerateResponse{}, generationError(err)
	}

	payload := models.MistakeArtifact{
		ConceptID:    req.ConceptID,
		Level:        req.Level,
		Kind:         kind,
		ArtifactType: strings.TrimSpace(artifact.ArtifactType),
		Content:      artifact.Content,
		Metadata:     artifact.Metadata,
	}

	id, err := s.store.Create(ctx, payload)
	if err != nil {
		return dto.FindMistakeGenerateResponse{}, err
	}

	s.logger.Info().Str("session_id", id).Str("concept_id", req.ConceptID).Str("kind", string(kind)).Msg("find-the-mistake session created")

	return dto.FindMistakeGenerateResponse{
		SessionID:    id,
		ArtifactType: payload.ArtifactType,
		Content:      payload.Content,
		Metadata:     payload.Metadata,
	}, nil
}

func (s *findMistakeService) Evaluate(ctx context.Context, req dto.FindMistakeEvaluateRequest) (dto.EvaluationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.EvaluationResponse{}, err
	}

	sess, err := s.open(ctx, req.SessionID, models.VariantFindMistake)
	if err != nil {
		return dto.EvaluationResponse{}, err
	}
	artifact := sess.Payload.(models.MistakeArtifact)

	verdict, err := s.grade(ctx, artifact, req)
	recordEvaluation(models.VariantFindMistake, verdict.Correct, err)
	if err != nil {
		s.restore(ctx, sess)
		return dto.EvaluationResponse{}, err
	}

	s.logger.Info().Str("session_id", sess.ID).Bool("correct", verdict.Correct).Msg("find-the-mistake evaluated")
	s.publish(ctx, events.ResultEvent{
		Variant:   string(models.VariantFindMistake),
		SessionID: sess.ID,
		ConceptID: artifact.ConceptID,
		Level:     artifact.Level,
		Correct:   verdict.Correct,
	})

	return dto.EvaluationResponse{
		Correct:          verdict.Correct,
		Feedback:         verdict.Feedback,
		FollowUpQuestion: verdict.FollowUpQuestion,
	}, nil
}

func (s *findMistakeService) grade(ctx context.Context, artifact models.MistakeArtifact, req dto.FindMistakeEvaluateRequest) (contract.Verdict, error) {
	concept := s.lookup.Resolve(ctx, artifact.ConceptID)
	prompt := prompts.FindMistakeEvaluate(concept, artifact, req.LearnerFix, req.Explanation)

	text, err := s.complete(ctx, "find_mistake.evaluate", prompt)
	if err != nil {
		return contract.Verdict{}, evaluationError(err)
	}

	verdict, err := contract.DecodeVerdict(text)
	if err != nil {
		s.logger.Warn().Err(err).Str("concept_id", artifact.ConceptID).Msg("rejected grading verdict")
		return contract.Verdict{}, evaluationError(err)
	}
	return verdict, nil
}
