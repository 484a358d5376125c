package ai

import "context"

// DefaultSystemPrompt is sent when a request carries no system prompt of its own.
const DefaultSystemPrompt = "You are a strict evaluator. Return JSON only."

// Request is a single text completion request.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Provider is a generative-text collaborator. It receives a prompt and returns
// raw, untrusted text; callers are responsible for validating its structure.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
	Model() string
}

func systemPrompt(req Request) string {
	if req.System != "" {
		return req.System
	}
	return DefaultSystemPrompt
}
