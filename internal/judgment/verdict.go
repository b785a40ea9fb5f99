package judgment

import (
	"strings"
	"unicode"
)

// Recommendation is the closed set of hiring recommendations.
type Recommendation string

const (
	StrongYes Recommendation = "StrongYes"
	Yes       Recommendation = "Yes"
	Maybe     Recommendation = "Maybe"
	No        Recommendation = "No"
)

// Recommendations lists the values from strongest to weakest.
var Recommendations = []Recommendation{StrongYes, Yes, Maybe, No}

// Verdict is the structured form of a free-text judgment.
type Verdict struct {
	Score          int            `json:"score"`
	Strengths      []string       `json:"strengths"`
	Gaps           []string       `json:"gaps"`
	Recommendation Recommendation `json:"recommendation"`
	// RecommendationText keeps the label exactly as the judge wrote it.
	RecommendationText string `json:"recommendation_text,omitempty"`
}

// DefaultVerdict is what an empty or unparseable judgment yields.
func DefaultVerdict() Verdict {
	return Verdict{
		Score:          0,
		Strengths:      []string{},
		Gaps:           []string{},
		Recommendation: Maybe,
	}
}

// ParseRecommendation maps a free-text label onto the closed set. Markdown
// decoration, brackets, case and spacing are ignored, and anything after a
// separator such as " - " or "." is treated as commentary. The second value is
// false when the label is not recognized, in which case Maybe is returned.
func ParseRecommendation(text string) (Recommendation, bool) {
	text = strings.TrimSpace(text)
	if idx := strings.IndexAny(text, ".,;:(–—"); idx >= 0 {
		text = text[:idx]
	}
	if idx := strings.Index(text, " -"); idx >= 0 {
		text = text[:idx]
	}

	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}

	switch b.String() {
	case "strongyes":
		return StrongYes, true
	case "yes":
		return Yes, true
	case "maybe":
		return Maybe, true
	case "no":
		return No, true
	default:
		return Maybe, false
	}
}
