package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/resume-ranker/internal/ai"
)

func createMockOllamaServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := New(Config{Host: server.URL, Model: "test-model", EmbeddingModel: "test-embed"})
	require.NoError(t, err)
	return c
}

func TestJudge(t *testing.T) {
	c := createMockOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)

		var req api.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "judge this", req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/x-ndjson")
		_ = json.NewEncoder(w).Encode(api.ChatResponse{
			Model:   "test-model",
			Message: api.Message{Role: "assistant", Content: "Score: 55\nRecommendation: Maybe"},
			Done:    true,
		})
	})

	out, err := c.Judge(context.Background(), "judge this")

	require.NoError(t, err)
	assert.Equal(t, "Score: 55\nRecommendation: Maybe", out)
}

func TestEmbed(t *testing.T) {
	c := createMockOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embed", r.URL.Path)

		var req api.EmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-embed", req.Model)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.EmbedResponse{
			Model:      "test-embed",
			Embeddings: [][]float32{{0.5, 0.25}},
		})
	})

	vec, err := c.Embed(context.Background(), "text")

	require.NoError(t, err)
	assert.Equal(t, ai.Vector{0.5, 0.25}, vec)
}

func TestStatusErrorsAreClassified(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{name: "overloaded", status: http.StatusServiceUnavailable, retryable: true},
		{name: "missing model", status: http.StatusNotFound, retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := createMockOllamaServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"model \"test-embed\" not found"}`))
			})

			_, err := c.Embed(context.Background(), "text")

			var ext *ai.ExternalServiceError
			require.True(t, errors.As(err, &ext))
			assert.Equal(t, tt.retryable, ext.Retryable)
			assert.Equal(t, tt.status, ext.StatusCode)
		})
	}
}

func TestNewDefaults(t *testing.T) {
	c, err := New(Config{Host: "http://127.0.0.1:11434"})
	require.NoError(t, err)
	assert.Equal(t, defaultModel, c.Model())
	assert.Equal(t, defaultEmbeddingModel, c.embeddingModel)
	assert.Equal(t, ProviderName, c.Name())
}
