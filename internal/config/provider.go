package config

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/ai"
	"github.com/spigell/resume-ranker/internal/ai/gemini"
	"github.com/spigell/resume-ranker/internal/ai/ollama"
	"github.com/spigell/resume-ranker/internal/ai/openai"
	"github.com/spigell/resume-ranker/internal/metrics"
	"github.com/spigell/resume-ranker/internal/secrets"
)

const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// NewProvider builds the configured provider wrapped with timeouts, retries
// and the shared rate limit.
func NewProvider(ctx context.Context, cfg *AIConfig, m *metrics.Metrics, log *zap.Logger) (*ai.Resilient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("ai configuration is required")
	}

	provider, err := newRawProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return ai.NewResilient(provider, ai.ResilientConfig{
		Timeout:      cfg.Timeout,
		Retry:        cfg.Retry,
		Limiter:      ai.NewLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		Metrics:      m,
		MaxLogLength: cfg.MaxLogLength,
	}, log), nil
}

func newRawProvider(ctx context.Context, cfg *AIConfig) (ai.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", gemini.ProviderName:
		g := cfg.Gemini
		if g == nil {
			g = &GeminiConfig{}
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			File:  g.APIKeyFile,
			Env:   EnvGeminiAPIKey,
			Value: g.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}
		return gemini.NewGenerator(ctx, apiKey, g.Model, g.EmbeddingModel)

	case openai.ProviderName:
		o := cfg.OpenAI
		if o == nil {
			o = &OpenAIConfig{}
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			File:  o.APIKeyFile,
			Env:   EnvOpenAIAPIKey,
			Value: o.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY_FILE)", err)
		}
		return openai.New(openai.Config{
			APIKey:         apiKey,
			BaseURL:        o.BaseURL,
			Model:          o.Model,
			EmbeddingModel: o.EmbeddingModel,
		})

	case ollama.ProviderName:
		o := cfg.Ollama
		if o == nil {
			o = &OllamaConfig{}
		}
		return ollama.New(ollama.Config{
			Host:           o.Host,
			Model:          o.Model,
			EmbeddingModel: o.EmbeddingModel,
		})

	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}
