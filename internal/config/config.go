package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/spigell/resume-ranker/internal/ai"
	"github.com/spigell/resume-ranker/internal/ranking"
	"github.com/spigell/resume-ranker/internal/scoring"
)

type Config struct {
	AI              *AIConfig       `mapstructure:"ai" validate:"required"`
	Scoring         scoring.Weights `mapstructure:"scoring"`
	VocabularyFile  string          `mapstructure:"vocabulary-file"`
	Workers         int             `mapstructure:"workers" validate:"gte=1,lte=64"`
	DocumentTimeout time.Duration   `mapstructure:"document-timeout" validate:"gte=0"`
	ExcludeFile     string          `mapstructure:"exclude-file"`
	MinimumScore    float64         `mapstructure:"minimum-score" validate:"gte=0,lte=100"`
	MetricsFile     string          `mapstructure:"metrics-file"`
	Filters         *FiltersConfig  `mapstructure:"filters"`
}

type FiltersConfig struct {
	Disabled []string `mapstructure:"disabled" validate:"dive,oneof=empty_text duplicates exclude_file"`
}

type AIConfig struct {
	Provider     string          `mapstructure:"provider" validate:"oneof=gemini openai ollama"`
	Timeout      time.Duration   `mapstructure:"timeout" validate:"gte=0"`
	Retry        ai.RetryConfig  `mapstructure:"retry"`
	RateLimit    RateLimitConfig `mapstructure:"rate-limit"`
	MaxLogLength int             `mapstructure:"max-log-length" validate:"gte=0"`
	Gemini       *GeminiConfig   `mapstructure:"gemini"`
	OpenAI       *OpenAIConfig   `mapstructure:"openai"`
	Ollama       *OllamaConfig   `mapstructure:"ollama"`
}

// RateLimitConfig is shared by every call to the provider. Zero RPS disables it.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps" validate:"gte=0"`
	Burst int     `mapstructure:"burst" validate:"gte=0"`
}

type GeminiConfig struct {
	APIKey         string `mapstructure:"api-key" json:"-"`
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding-model"`
}

type OpenAIConfig struct {
	APIKey         string `mapstructure:"api-key" json:"-"`
	APIKeyFile     string `mapstructure:"api-key-file"`
	BaseURL        string `mapstructure:"base-url" validate:"omitempty,url"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding-model"`
}

type OllamaConfig struct {
	Host           string `mapstructure:"host" validate:"omitempty,url"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding-model"`
}

// Default returns the configuration used for keys absent from every source.
func Default() *Config {
	resilient := ai.DefaultResilientConfig()
	return &Config{
		AI: &AIConfig{
			Provider:     "gemini",
			Timeout:      resilient.Timeout,
			Retry:        resilient.Retry,
			MaxLogLength: resilient.MaxLogLength,
		},
		Scoring:         scoring.DefaultWeights(),
		Workers:         ranking.DefaultWorkers,
		DocumentTimeout: ranking.DefaultDocumentTimeout,
		Filters:         &FiltersConfig{},
	}
}

// Decode merges settings (as returned by viper.AllSettings) over the defaults
// and validates the result. Durations accept strings like "90s".
func Decode(settings map[string]any) (*Config, error) {
	cfg := Default()

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      false,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RankingConfig returns the engine settings.
func (c *Config) RankingConfig() ranking.Config {
	return ranking.Config{
		Workers:         c.Workers,
		DocumentTimeout: c.DocumentTimeout,
		Weights:         c.Scoring,
	}
}
