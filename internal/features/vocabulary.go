package features

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

//go:embed vocabulary.yaml
var defaultVocabulary []byte

// Vocabulary is the versioned keyword data used by the Extractor.
type Vocabulary struct {
	Version            string   `yaml:"version" json:"version"`
	Skills             []string `yaml:"skills" json:"skills" validate:"required,min=1,dive,required"`
	ExperiencePatterns []string `yaml:"experience_patterns" json:"experience_patterns" validate:"required,min=1,dive,required"`
	Education          []string `yaml:"education" json:"education" validate:"dive,required"`
}

// DefaultVocabulary returns the vocabulary shipped with the binary.
func DefaultVocabulary() (*Vocabulary, error) {
	v, err := ParseVocabulary(defaultVocabulary)
	if err != nil {
		return nil, fmt.Errorf("default vocabulary: %w", err)
	}
	return v, nil
}

// LoadVocabulary reads a vocabulary file. An empty path yields the default vocabulary.
func LoadVocabulary(path string) (*Vocabulary, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultVocabulary()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary file %q: %w", path, err)
	}

	v, err := ParseVocabulary(data)
	if err != nil {
		return nil, fmt.Errorf("vocabulary file %q: %w", path, err)
	}
	return v, nil
}

// ParseVocabulary decodes and validates a YAML vocabulary document.
// Skills and education keywords are lowercased and deduplicated, keeping the first occurrence.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}

	v.Skills = normalizeKeywords(v.Skills)
	v.Education = normalizeKeywords(v.Education)

	if err := validator.New().Struct(&v); err != nil {
		return nil, fmt.Errorf("validate vocabulary: %w", err)
	}

	return &v, nil
}

func normalizeKeywords(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		kw := strings.ToLower(strings.TrimSpace(item))
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}
