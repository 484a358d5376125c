package ai

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gema",
		Subsystem: "ai",
		Name:      "completion_duration_seconds",
		Help:      "Duration of generative-text completion requests",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60, 120},
	}, []string{"model", "purpose"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gema",
		Subsystem: "ai",
		Name:      "completion_failures_total",
		Help:      "Number of generative-text completion failures",
	}, []string{"model", "purpose", "kind"})
)

// InstrumentedProvider records latency, failures and a trace span per completion.
type InstrumentedProvider struct {
	inner  Provider
	tracer trace.Tracer
	logger zerolog.Logger
}

// WithInstrumentation wraps a Provider with metrics, tracing and debug logging.
func WithInstrumentation(p Provider, logger zerolog.Logger) Provider {
	return &InstrumentedProvider{
		inner:  p,
		tracer: otel.Tracer("github.com/noah-isme/gema-play-api/pkg/ai"),
		logger: logger.With().Str("component", "ai_provider").Str("model", p.Model()).Logger(),
	}
}

func (i *InstrumentedProvider) Complete(parent context.Context, req Request) (string, error) {
	purpose := PurposeFrom(parent)
	ctx, span := i.tracer.Start(parent, "ai.complete", trace.WithAttributes(
		attribute.String("model", i.inner.Model()),
		attribute.String("purpose", purpose),
	))
	defer span.End()

	start := time.Now()
	text, err := i.inner.Complete(ctx, req)
	duration := time.Since(start)
	aiDuration.WithLabelValues(i.inner.Model(), purpose).Observe(duration.Seconds())

	if err != nil {
		kind := failureKind(err)
		aiFailures.WithLabelValues(i.inner.Model(), purpose, kind).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		i.logger.Warn().Err(err).Str("purpose", purpose).Str("kind", kind).Dur("duration", duration).Msg("completion failed")
		return "", err
	}

	span.SetAttributes(attribute.Int("response_chars", len(text)))
	i.logger.Debug().Str("purpose", purpose).Dur("duration", duration).Int("response_chars", len(text)).Msg("completion succeeded")
	return text, nil
}

func (i *InstrumentedProvider) Model() string {
	return i.inner.Model()
}

func failureKind(err error) string {
	var providerErr *ProviderError
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrEmptyResponse):
		return "empty"
	case errors.As(err, &providerErr):
		return "transport"
	default:
		return "other"
	}
}
