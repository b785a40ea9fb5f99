package features

import (
	"fmt"
	"regexp"
	"strings"
)

// ExperienceNotSpecified is reported when no experience pattern matches.
const ExperienceNotSpecified = "Experience not specified"

var (
	whitespaceRun = regexp.MustCompile(`[\s\v\p{Z}]+`)
	disallowed    = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:]`)
)

// FeatureBundle is the structured extraction from one document.
type FeatureBundle struct {
	Skills         []string `json:"skills"`
	Experience     string   `json:"experience"`
	Education      []string `json:"education"`
	NormalizedText string   `json:"normalized_text"`
}

// SkillCount returns the number of distinct skills found.
func (b FeatureBundle) SkillCount() int {
	return len(b.Skills)
}

// HasSkill reports whether skill was found, ignoring case.
func (b FeatureBundle) HasSkill(skill string) bool {
	skill = strings.ToLower(strings.TrimSpace(skill))
	for _, s := range b.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// Extractor turns raw document text into a FeatureBundle. It is safe for concurrent use.
type Extractor struct {
	skills     []string
	education  []string
	experience []*regexp.Regexp
}

// NewExtractor compiles the vocabulary's experience patterns.
func NewExtractor(v *Vocabulary) (*Extractor, error) {
	if v == nil {
		return nil, fmt.Errorf("vocabulary is required")
	}

	patterns := make([]*regexp.Regexp, 0, len(v.ExperiencePatterns))
	for i, raw := range v.ExperiencePatterns {
		re, err := regexp.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("experience pattern %d %q: %w", i, raw, err)
		}
		patterns = append(patterns, re)
	}

	return &Extractor{
		skills:     append([]string(nil), v.Skills...),
		education:  append([]string(nil), v.Education...),
		experience: patterns,
	}, nil
}

// NewDefaultExtractor builds an Extractor over the embedded vocabulary.
func NewDefaultExtractor() (*Extractor, error) {
	v, err := DefaultVocabulary()
	if err != nil {
		return nil, err
	}
	return NewExtractor(v)
}

// Extract never fails. Skills and education markers follow vocabulary order.
func (e *Extractor) Extract(text string) FeatureBundle {
	lower := strings.ToLower(text)

	return FeatureBundle{
		Skills:         e.matchSkills(lower),
		Experience:     e.matchExperience(lower),
		Education:      e.matchEducation(lower),
		NormalizedText: Normalize(text),
	}
}

// Substring match, so "java" is also found inside "javascript".
func (e *Extractor) matchSkills(lower string) []string {
	found := make([]string, 0)
	for _, skill := range e.skills {
		if strings.Contains(lower, skill) {
			found = append(found, skill)
		}
	}
	return found
}

func (e *Extractor) matchExperience(lower string) string {
	for _, re := range e.experience {
		if m := re.FindString(lower); m != "" {
			return m
		}
	}
	return ExperienceNotSpecified
}

func (e *Extractor) matchEducation(lower string) []string {
	found := make([]string, 0)
	for _, kw := range e.education {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	return found
}

// Normalize collapses whitespace runs, strips characters other than letters,
// digits, underscore, whitespace and basic punctuation, and trims the result.
func Normalize(text string) string {
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = disallowed.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
