package ai

import "context"

const (
	OpEmbed = "embed"
	OpJudge = "judge"
)

// Vector is an embedding returned by a provider.
type Vector []float32

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (Vector, error)
}

// Judge produces a free-text assessment for a prompt.
type Judge interface {
	Judge(ctx context.Context, prompt string) (string, error)
}

// Provider is a backend offering both operations.
type Provider interface {
	Embedder
	Judge
	Name() string
	Model() string
}

// Float64s converts a float64 embedding, as returned by some APIs, to a Vector.
func Float64s(values []float64) Vector {
	v := make(Vector, len(values))
	for i, f := range values {
		v[i] = float32(f)
	}
	return v
}
