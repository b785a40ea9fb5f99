package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/spigell/resume-ranker/internal/ai"
)

const (
	ProviderName          = "ollama"
	defaultModel          = "llama3.2"
	defaultEmbeddingModel = "nomic-embed-text"
)

// Config points the client at an Ollama server. An empty Host falls back to OLLAMA_HOST.
type Config struct {
	Host           string
	Model          string
	EmbeddingModel string
}

// Client implements ai.Provider against a local Ollama server.
type Client struct {
	client         *api.Client
	model          string
	embeddingModel string
}

func New(cfg Config) (*Client, error) {
	var client *api.Client

	if host := strings.TrimSpace(cfg.Host); host == "" {
		c, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("create ollama client from environment: %w", err)
		}
		client = c
	} else {
		u, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
		}
		client = api.NewClient(u, http.DefaultClient)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	embeddingModel := strings.TrimSpace(cfg.EmbeddingModel)
	if embeddingModel == "" {
		embeddingModel = defaultEmbeddingModel
	}

	return &Client{client: client, model: model, embeddingModel: embeddingModel}, nil
}

func (c *Client) Name() string  { return ProviderName }
func (c *Client) Model() string { return c.model }

func (c *Client) Judge(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	stream := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: []api.Message{{Role: "user", Content: prompt}},
		Stream:   &stream,
		Options:  map[string]any{"temperature": 0},
	}

	var b strings.Builder
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		b.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", classify(ai.OpJudge, err)
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", &ai.ExternalServiceError{
			Provider:  ProviderName,
			Op:        ai.OpJudge,
			Retryable: true,
			Err:       errors.New("ollama returned empty response"),
		}
	}
	return out, nil
}

func (c *Client) Embed(ctx context.Context, text string) (ai.Vector, error) {
	resp, err := c.client.Embed(ctx, &api.EmbedRequest{
		Model: c.embeddingModel,
		Input: text,
	})
	if err != nil {
		return nil, classify(ai.OpEmbed, err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0]) == 0 {
		return nil, &ai.ExternalServiceError{
			Provider: ProviderName,
			Op:       ai.OpEmbed,
			Err:      fmt.Errorf("ollama returned no embedding for model %s", c.embeddingModel),
		}
	}

	return ai.Vector(resp.Embeddings[0]), nil
}

func classify(op string, err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return ai.NewStatusError(ProviderName, op, statusErr.StatusCode, statusErr.ErrorMessage, err)
	}
	var statusErrPtr *api.StatusError
	if errors.As(err, &statusErrPtr) && statusErrPtr != nil {
		return ai.NewStatusError(ProviderName, op, statusErrPtr.StatusCode, statusErrPtr.ErrorMessage, err)
	}
	return ai.NewTransportError(ProviderName, op, err)
}
