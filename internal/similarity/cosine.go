package similarity

import (
	"fmt"
	"math"
)

// DegenerateEmbeddingError is returned when a vector has zero norm and no
// direction can be compared.
type DegenerateEmbeddingError struct {
	// Which names the offending vector: "document" or "target".
	Which string
}

func (e *DegenerateEmbeddingError) Error() string {
	return fmt.Sprintf("degenerate %s embedding: zero norm", e.Which)
}

// DimensionMismatchError is returned for empty vectors or vectors of different length.
type DimensionMismatchError struct {
	Document int
	Target   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimensions differ: document=%d target=%d", e.Document, e.Target)
}

// Cosine returns dot(doc, target) / (|doc| * |target|), accumulated in float64.
// The result is not clamped.
func Cosine(doc, target []float32) (float64, error) {
	if len(doc) == 0 || len(target) == 0 || len(doc) != len(target) {
		return 0, &DimensionMismatchError{Document: len(doc), Target: len(target)}
	}

	var dot, docNorm, targetNorm float64
	for i := range doc {
		a, b := float64(doc[i]), float64(target[i])
		dot += a * b
		docNorm += a * a
		targetNorm += b * b
	}

	if docNorm == 0 {
		return 0, &DegenerateEmbeddingError{Which: "document"}
	}
	if targetNorm == 0 {
		return 0, &DegenerateEmbeddingError{Which: "target"}
	}

	return dot / (math.Sqrt(docNorm) * math.Sqrt(targetNorm)), nil
}

// Percent scales a cosine value to the 0..100 range used for aggregation.
func Percent(cosine float64) float64 {
	return cosine * 100
}
