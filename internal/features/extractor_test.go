package features

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := NewDefaultExtractor()
	require.NoError(t, err)
	return e
}

func TestExtractSampleSentence(t *testing.T) {
	e := newTestExtractor(t)

	got := e.Extract("I have 5 years of experience with Python, JavaScript, and machine learning.")

	assert.Subset(t, got.Skills, []string{"python", "javascript", "machine learning"})
	assert.Contains(t, got.Experience, "5 years")
	assert.Equal(t, "I have 5 years of experience with Python, JavaScript, and machine learning.", got.NormalizedText)
}

func TestExtractSkillsIgnoreCase(t *testing.T) {
	e := newTestExtractor(t)

	texts := []string{
		"Senior engineer: Go, Docker, Kubernetes and AWS. Some SQL.",
		"react/TypeScript frontend, node.js backend, CI/CD with Jenkins",
		"nothing relevant here",
	}

	for _, text := range texts {
		base := e.Extract(text).Skills
		mixed := e.Extract(strings.ToUpper(text) + strings.ToLower(text)).Skills
		assert.ElementsMatch(t, base, mixed, text)
	}
}

func TestExtractSkillSubstringsAreAccepted(t *testing.T) {
	e := newTestExtractor(t)

	got := e.Extract("Expert in JavaScript")

	assert.True(t, got.HasSkill("javascript"))
	assert.True(t, got.HasSkill("Java"))
}

func TestExtractSkillsAreDistinct(t *testing.T) {
	e := newTestExtractor(t)

	got := e.Extract("python python PYTHON")

	assert.Equal(t, 1, got.SkillCount())
}

func TestExtractExperiencePriority(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		name   string
		text   string
		expect string
	}{
		{
			name:   "years before experience beats bare years",
			text:   "10+ years in backend; 3 years of experience with Go",
			expect: "3 years of experience",
		},
		{
			name:   "experience before years",
			text:   "Experience of 7 years in Go",
			expect: "experience of 7 years",
		},
		{
			name:   "label punctuation falls through to bare years",
			text:   "Experience: 7 years",
			expect: "7 years",
		},
		{
			name:   "bare years as fallback",
			text:   "Worked 4+ years at Acme",
			expect: "4+ years",
		},
		{
			name:   "nothing matches",
			text:   "Fresh graduate",
			expect: ExperienceNotSpecified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, e.Extract(tt.text).Experience)
		})
	}
}

func TestExtractEducationMarkers(t *testing.T) {
	e := newTestExtractor(t)

	got := e.Extract("PhD in Physics, M.Tech from IIT")

	assert.Equal(t, []string{"phd", "m.tech"}, got.Education)
}

func TestExtractEducationOverlapping(t *testing.T) {
	e := newTestExtractor(t)

	got := e.Extract("Bachelor of Science (BSc)")

	// "be" is not in the text, "bachelor" and "bsc" are.
	assert.Equal(t, []string{"bachelor", "bsc"}, got.Education)

	got = e.Extract("member of the team")
	assert.Equal(t, []string{"be", "me"}, got.Education)
}

func TestExtractEmptyText(t *testing.T) {
	e := newTestExtractor(t)

	got := e.Extract("")

	assert.Empty(t, got.Skills)
	assert.Empty(t, got.Education)
	assert.Equal(t, ExperienceNotSpecified, got.Experience)
	assert.Equal(t, "", got.NormalizedText)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{in: "  hello   world  ", out: "hello world"},
		{in: "line1\n\n\tline2", out: "line1 line2"},
		{in: "C++ & Go (5 yrs)!", out: "C  Go 5 yrs!"},
		{in: "email: me@example.com", out: "email: meexample.com"},
		{in: "Résumé — naïve", out: "Résumé  naïve"},
		{in: "snake_case, ok?", out: "snake_case, ok?"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.out, Normalize(tt.in), tt.in)
	}
}

func TestNewExtractorRejectsBadPattern(t *testing.T) {
	_, err := NewExtractor(&Vocabulary{
		Skills:             []string{"go"},
		ExperiencePatterns: []string{"(unclosed"},
	})
	require.Error(t, err)
}
