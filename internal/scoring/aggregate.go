package scoring

import (
	"fmt"
	"math"
)

const (
	// DefaultJudgmentWeight applies to the 0..100 judgment score.
	DefaultJudgmentWeight = 0.5
	// DefaultSimilarityWeight applies to similarity scaled to 0..100.
	DefaultSimilarityWeight = 0.3
	// DefaultSkillsWeight applies to the saturated skill coverage.
	DefaultSkillsWeight = 0.2
	// DefaultSkillSaturation is the skill count at which coverage reaches 100.
	DefaultSkillSaturation = 20
)

// Weights configures the composite score.
type Weights struct {
	Judgment        float64 `mapstructure:"judgment" json:"judgment" validate:"gte=0"`
	Similarity      float64 `mapstructure:"similarity" json:"similarity" validate:"gte=0"`
	Skills          float64 `mapstructure:"skills" json:"skills" validate:"gte=0"`
	SkillSaturation int     `mapstructure:"skill-saturation" json:"skill_saturation" validate:"gte=1"`
}

// DefaultWeights returns 0.5 judgment, 0.3 similarity, 0.2 skills saturating at 20.
func DefaultWeights() Weights {
	return Weights{
		Judgment:        DefaultJudgmentWeight,
		Similarity:      DefaultSimilarityWeight,
		Skills:          DefaultSkillsWeight,
		SkillSaturation: DefaultSkillSaturation,
	}
}

// Validate checks that weights are usable. They are not required to sum to 1,
// but a sum above 1 lets composites exceed 100.
func (w Weights) Validate() error {
	if w.Judgment < 0 || w.Similarity < 0 || w.Skills < 0 {
		return fmt.Errorf("weights must not be negative: %+v", w)
	}
	if w.SkillSaturation < 1 {
		return fmt.Errorf("skill saturation must be positive, got %d", w.SkillSaturation)
	}
	return nil
}

// SkillCoverage maps a skill count onto 0..100, saturating at SkillSaturation.
func (w Weights) SkillCoverage(skillCount int) float64 {
	if skillCount <= 0 {
		return 0
	}
	return math.Min(float64(skillCount)/float64(w.SkillSaturation), 1) * 100
}

// Aggregate combines the judgment score (0..100), similarity already scaled to
// 0..100 and the number of matched skills. Similarity outside 0..100 passes through.
func (w Weights) Aggregate(judgment int, similarity float64, skillCount int) float64 {
	return w.Judgment*float64(judgment) +
		w.Similarity*similarity +
		w.Skills*w.SkillCoverage(skillCount)
}

// Aggregate uses DefaultWeights.
func Aggregate(judgment int, similarity float64, skillCount int) float64 {
	return DefaultWeights().Aggregate(judgment, similarity, skillCount)
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
