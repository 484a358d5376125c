package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-play-api/internal/events"
	"github.com/noah-isme/gema-play-api/internal/learning"
	"github.com/noah-isme/gema-play-api/internal/middleware"
	"github.com/noah-isme/gema-play-api/internal/models"
	"github.com/noah-isme/gema-play-api/internal/observability"
	"github.com/noah-isme/gema-play-api/internal/session"
	"github.com/noah-isme/gema-play-api/pkg/ai"
)

var (
	// ErrSessionNotFound covers unknown, consumed and expired sessions alike.
	ErrSessionNotFound = errors.New("invalid or expired session")
	// ErrVariantMismatch indicates the session belongs to a different exercise.
	ErrVariantMismatch = errors.New("session belongs to a different exercise")
	// ErrGenerationFailed wraps collaborator failures while creating an exercise.
	ErrGenerationFailed = errors.New("exercise generation failed")
	// ErrEvaluationFailed wraps collaborator failures while grading.
	ErrEvaluationFailed = errors.New("exercise evaluation failed")
)

// CompletionOptions tunes collaborator requests.
type CompletionOptions struct {
	MaxTokens   int
	Temperature float32
}

// PlayDependencies are shared by the play services.
type PlayDependencies struct {
	Store      session.Store
	Provider   ai.Provider
	Lookup     learning.Lookup
	Publisher  events.Publisher
	Validator  *validator.Validate
	Completion CompletionOptions
	Logger     zerolog.Logger
}

type playCore struct {
	store     session.Store
	provider  ai.Provider
	lookup    learning.Lookup
	publisher events.Publisher
	validator *validator.Validate
	options   CompletionOptions
	logger    zerolog.Logger
	now       func() time.Time
}

func newPlayCore(deps PlayDependencies, component string) playCore {
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}
	if deps.Lookup == nil {
		deps.Lookup = learning.NewStaticLookup(learning.DefaultCatalogue()...)
	}
	if deps.Validator == nil {
		deps.Validator = validator.New(validator.WithRequiredStructEnabled())
	}
	return playCore{
		store:     deps.Store,
		provider:  deps.Provider,
		lookup:    deps.Lookup,
		publisher: deps.Publisher,
		validator: deps.Validator,
		options:   deps.Completion,
		logger:    deps.Logger.With().Str("component", component).Logger(),
		now:       time.Now,
	}
}

func (c *playCore) complete(ctx context.Context, purpose, prompt string) (string, error) {
	return c.provider.Complete(ai.WithPurpose(ctx, purpose), ai.Request{
		Prompt:      prompt,
		MaxTokens:   c.options.MaxTokens,
		Temperature: c.options.Temperature,
	})
}

// open loads a session of the expected variant. Single-shot variants are
// consumed by the read, so at most one evaluation ever sees them; other
// variants stay live.
func (c *playCore) open(ctx context.Context, id string, variant models.ExerciseVariant) (session.Session, error) {
	read := c.store.Get
	if variant.SingleShot() {
		read = c.store.Take
	}

	sess, err := read(ctx, id)
	if err != nil {
		return session.Session{}, sessionError(err)
	}
	if sess.Variant != variant {
		if variant.SingleShot() {
			c.putBack(ctx, sess)
		}
		return session.Session{}, ErrVariantMismatch
	}
	return sess, nil
}

// restore puts back a consumed session whose evaluation failed. Sessions
// of variants that are never consumed are left alone.
func (c *playCore) restore(ctx context.Context, sess session.Session) {
	if sess.Variant.SingleShot() {
		c.putBack(ctx, sess)
	}
}

// putBack runs detached from request cancellation so a timed out request
// does not lose the session.
func (c *playCore) putBack(ctx context.Context, sess session.Session) {
	if err := c.store.Restore(context.WithoutCancel(ctx), sess); err != nil {
		c.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("failed to restore session")
	}
}

func (c *playCore) publish(ctx context.Context, event events.ResultEvent) {
	event.OccurredAt = c.now().UTC()
	event.CorrelationID = middleware.CorrelationIDFromContext(ctx)
	if err := c.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		c.logger.Warn().Err(err).Str("session_id", event.SessionID).Msg("failed to publish result event")
	}
}

func recordEvaluation(variant models.ExerciseVariant, correct bool, err error) {
	outcome := "incorrect"
	switch {
	case err != nil:
		outcome = "failed"
	case correct:
		outcome = "correct"
	}
	observability.Evaluations().WithLabelValues(string(variant), outcome).Inc()
}

func sessionError(err error) error {
	if session.IsGone(err) {
		return fmt.Errorf("%w: %w", ErrSessionNotFound, err)
	}
	return err
}

func generationError(err error) error {
	return fmt.Errorf("%w: %w", ErrGenerationFailed, err)
}

func evaluationError(err error) error {
	return fmt.Errorf("%w: %w", ErrEvaluationFailed, err)
}
