package ai

import "context"

type contextKey string

const purposeKey contextKey = "ai_purpose"

// WithPurpose labels the completion made with ctx (e.g. "missing_link.generate").
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
