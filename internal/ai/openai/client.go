package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/spigell/resume-ranker/internal/ai"
)

const (
	ProviderName          = "openai"
	defaultModel          = "gpt-4o-mini"
	defaultEmbeddingModel = "text-embedding-3-small"
)

// Config describes how to reach an OpenAI compatible API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
}

// Client implements ai.Provider on top of the official OpenAI SDK.
type Client struct {
	client         openai.Client
	model          shared.ChatModel
	embeddingModel openai.EmbeddingModel
}

func New(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	// Retries are owned by ai.Resilient.
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	embeddingModel := strings.TrimSpace(cfg.EmbeddingModel)
	if embeddingModel == "" {
		embeddingModel = defaultEmbeddingModel
	}

	return &Client{
		client:         openai.NewClient(opts...),
		model:          shared.ChatModel(model),
		embeddingModel: openai.EmbeddingModel(embeddingModel),
	}, nil
}

func (c *Client) Name() string  { return ProviderName }
func (c *Client) Model() string { return string(c.model) }

func (c *Client) Judge(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", classify(ai.OpJudge, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &ai.ExternalServiceError{
			Provider:  ProviderName,
			Op:        ai.OpJudge,
			Retryable: true,
			Err:       errors.New("openai api returned empty completion"),
		}
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) Embed(ctx context.Context, text string) (ai.Vector, error) {
	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: c.embeddingModel,
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
	})
	if err != nil {
		return nil, classify(ai.OpEmbed, err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, &ai.ExternalServiceError{
			Provider: ProviderName,
			Op:       ai.OpEmbed,
			Err:      fmt.Errorf("openai api returned no embedding for model %s", c.embeddingModel),
		}
	}

	return ai.Float64s(resp.Data[0].Embedding), nil
}

func classify(op string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return ai.NewStatusError(ProviderName, op, apiErr.StatusCode, apiErr.Message, err)
	}
	return ai.NewTransportError(ProviderName, op, err)
}
