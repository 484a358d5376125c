package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Session storage backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// LLMConfig selects and tunes the generative-text collaborator.
type LLMConfig struct {
	Provider    string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float32
	MaxAttempts int
}

// Config holds runtime configuration values for the play service.
type Config struct {
	AppName              string
	AppEnv               string
	AppPort              string
	CORSAllowOrigins     string
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	SessionBackend       string
	RedisURL             string
	DatabaseURL          string
	ConceptCacheTTL      time.Duration
	NATSURL              string
	NATSSubject          string
	RateLimitMax         int
	RateLimitWindow      time.Duration
	LLM                  LLMConfig
	OpenAIAPIKey         string
	GroqAPIKey           string
	GeminiAPIKey         string
	AnthropicAPIKey      string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// LLMAPIKey returns the credential of the configured provider.
func (c Config) LLMAPIKey() string {
	switch c.LLM.Provider {
	case "groq":
		return c.GroqAPIKey
	case "gemini":
		return c.GeminiAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	case "mock":
		return ""
	default:
		return c.OpenAIAPIKey
	}
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GEMA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GEMA Play API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("session.ttl", "30m")
	v.SetDefault("session.sweep_interval", "5m")
	v.SetDefault("session.backend", SessionBackendMemory)
	v.SetDefault("concept.cache_ttl", "10m")
	v.SetDefault("nats.subject", "gema.play.results")
	v.SetDefault("ratelimit.max", 30)
	v.SetDefault("ratelimit.window", "1m")
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_attempts", 1)

	// Provider keys are also accepted under their conventional names.
	_ = v.BindEnv("openai_api_key", "GEMA_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("groq_api_key", "GEMA_GROQ_API_KEY", "GROQ_API_KEY")
	_ = v.BindEnv("gemini_api_key", "GEMA_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("anthropic_api_key", "GEMA_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")

	sessionTTL, err := parseDuration(v, "session.ttl")
	if err != nil {
		return Config{}, err
	}
	sweepInterval, err := parseDuration(v, "session.sweep_interval")
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := parseDuration(v, "concept.cache_ttl")
	if err != nil {
		return Config{}, err
	}
	llmTimeout, err := parseDuration(v, "llm.timeout")
	if err != nil {
		return Config{}, err
	}
	rateWindow, err := parseDuration(v, "ratelimit.window")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:              v.GetString("app.name"),
		AppEnv:               v.GetString("app.env"),
		AppPort:              v.GetString("app.port"),
		CORSAllowOrigins:     v.GetString("cors.allow_origins"),
		SessionTTL:           sessionTTL,
		SessionSweepInterval: sweepInterval,
		SessionBackend:       strings.ToLower(strings.TrimSpace(v.GetString("session.backend"))),
		RedisURL:             v.GetString("redis.url"),
		DatabaseURL:          v.GetString("database.url"),
		ConceptCacheTTL:      cacheTTL,
		NATSURL:              v.GetString("nats.url"),
		NATSSubject:          v.GetString("nats.subject"),
		RateLimitMax:         v.GetInt("ratelimit.max"),
		RateLimitWindow:      rateWindow,
		LLM: LLMConfig{
			Provider:    strings.ToLower(strings.TrimSpace(v.GetString("llm.provider"))),
			Model:       v.GetString("llm.model"),
			BaseURL:     v.GetString("llm.base_url"),
			Timeout:     llmTimeout,
			MaxTokens:   v.GetInt("llm.max_tokens"),
			Temperature: float32(v.GetFloat64("llm.temperature")),
			MaxAttempts: v.GetInt("llm.max_attempts"),
		},
		OpenAIAPIKey:    v.GetString("openai_api_key"),
		GroqAPIKey:      v.GetString("groq_api_key"),
		GeminiAPIKey:    v.GetString("gemini_api_key"),
		AnthropicAPIKey: v.GetString("anthropic_api_key"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.LLM.Provider {
	case "openai", "groq", "gemini", "anthropic", "mock":
	default:
		return fmt.Errorf("unsupported llm provider %q", c.LLM.Provider)
	}
	if c.LLM.Provider != "mock" && c.LLMAPIKey() == "" {
		return fmt.Errorf("api key for llm provider %q must be provided", c.LLM.Provider)
	}

	switch c.SessionBackend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("redis url must be provided for the redis session backend")
		}
	default:
		return fmt.Errorf("unsupported session backend %q", c.SessionBackend)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	if c.SessionSweepInterval < 0 {
		return fmt.Errorf("session sweep interval must not be negative")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm timeout must be positive")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm max tokens must be positive")
	}
	return nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
