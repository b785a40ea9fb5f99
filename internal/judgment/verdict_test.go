package judgment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRecommendation(t *testing.T) {
	tests := []struct {
		in     string
		expect Recommendation
		known  bool
	}{
		{in: "Strong Yes", expect: StrongYes, known: true},
		{in: "strong-yes", expect: StrongYes, known: true},
		{in: "**STRONG YES**", expect: StrongYes, known: true},
		{in: "Yes", expect: Yes, known: true},
		{in: "[Yes]", expect: Yes, known: true},
		{in: "Yes. The candidate fits.", expect: Yes, known: true},
		{in: "Maybe (needs interview)", expect: Maybe, known: true},
		{in: "no", expect: No, known: true},
		{in: "No – lacks experience", expect: No, known: true},
		{in: "Strong No", expect: Maybe, known: false},
		{in: "", expect: Maybe, known: false},
		{in: "Absolutely", expect: Maybe, known: false},
	}

	for _, tt := range tests {
		got, known := ParseRecommendation(tt.in)
		assert.Equal(t, tt.expect, got, tt.in)
		assert.Equal(t, tt.known, known, tt.in)
	}
}

func TestDefaultVerdict(t *testing.T) {
	v := DefaultVerdict()

	assert.Zero(t, v.Score)
	assert.NotNil(t, v.Strengths)
	assert.NotNil(t, v.Gaps)
	assert.Equal(t, Maybe, v.Recommendation)
}
