package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config selects and tunes the generative-text provider.
type Config struct {
	// Provider is one of "openai", "groq", "gemini", "anthropic" or "mock".
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	Retry    RetryConfig
}

// NewProvider builds the configured provider wrapped as
// caller → instrumentation → retry → timeout → base.
// The timeout sits innermost so each attempt has its own ceiling.
func NewProvider(ctx context.Context, cfg Config, logger zerolog.Logger) (Provider, error) {
	var (
		base Provider
		err  error
	)

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "openai", "":
		base, err = NewOpenAIProvider(OpenAIConfig{Name: "openai", APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: cfg.Model})
	case "groq":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = GroqBaseURL
		}
		model := cfg.Model
		if model == "" {
			model = "openai/gpt-oss-120b"
		}
		base, err = NewOpenAIProvider(OpenAIConfig{Name: "groq", APIKey: cfg.APIKey, BaseURL: baseURL, Model: model})
	case "gemini":
		base, err = NewGeminiProvider(ctx, GeminiConfig{APIKey: cfg.APIKey, Model: cfg.Model})
	case "anthropic":
		base, err = NewAnthropicProvider(AnthropicConfig{APIKey: cfg.APIKey, Model: cfg.Model})
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown ai provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	provider := WithTimeout(base, cfg.Timeout)
	provider = WithRetry(provider, cfg.Retry)
	return WithInstrumentation(provider, logger), nil
}
