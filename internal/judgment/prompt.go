package judgment

import (
	_ "embed"
	"strings"

	"github.com/spigell/resume-ranker/internal/features"
	"github.com/spigell/resume-ranker/internal/utils"
)

// ExcerptLimit is the number of leading characters of a document sent to the judge.
const ExcerptLimit = 2000

//go:embed prompt.md
var promptTemplate string

// BuildPrompt renders the judgment prompt for one document. Placeholders are
// substituted in a single pass, so document text cannot inject new ones.
func BuildPrompt(target string, bundle features.FeatureBundle) string {
	excerpt, _ := utils.TruncateRunes(strings.TrimSpace(bundle.NormalizedText), ExcerptLimit)

	skills := "None detected"
	if len(bundle.Skills) > 0 {
		skills = strings.Join(bundle.Skills, ", ")
	}

	education := "Not specified"
	if len(bundle.Education) > 0 {
		education = strings.Join(bundle.Education, ", ")
	}

	experience := strings.TrimSpace(bundle.Experience)
	if experience == "" {
		experience = features.ExperienceNotSpecified
	}

	return strings.NewReplacer(
		"{{TARGET}}", strings.TrimSpace(target),
		"{{DOCUMENT}}", excerpt,
		"{{SKILLS}}", skills,
		"{{EXPERIENCE}}", experience,
		"{{EDUCATION}}", education,
	).Replace(promptTemplate)
}
