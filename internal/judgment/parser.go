package judgment

import (
	"regexp"
	"strconv"
	"strings"
)

const maxScore = 100

type section int

const (
	sectionNone section = iota
	sectionStrengths
	sectionGaps
)

type label struct {
	name string
	kind labelKind
}

type labelKind int

const (
	labelScore labelKind = iota
	labelStrengths
	labelMissing
	labelRecommendation
)

var labels = []label{
	{name: "score:", kind: labelScore},
	{name: "strengths:", kind: labelStrengths},
	{name: "missing:", kind: labelMissing},
	{name: "recommendation:", kind: labelRecommendation},
}

var digits = regexp.MustCompile(`\d+`)

// Parse turns a free-text judgment into a Verdict in a single pass over its
// lines. It never fails: missing or malformed parts keep their defaults.
//
// Labels are matched case-insensitively at the start of a line. Text
// following a Strengths: or Missing: label on the same line counts as the
// first item.
func Parse(text string) Verdict {
	v := DefaultVerdict()
	current := sectionNone

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		kind, rest, ok := matchLabel(line)
		if !ok {
			if current == sectionNone {
				continue
			}
			if item := stripBullet(line); item != "" {
				v.appendItem(current, item)
			}
			continue
		}

		current = sectionNone
		switch kind {
		case labelScore:
			if score, found := parseScore(rest); found {
				v.Score = score
			}
		case labelStrengths:
			current = sectionStrengths
			if item := stripBullet(rest); item != "" {
				v.appendItem(current, item)
			}
		case labelMissing:
			current = sectionGaps
			if item := stripBullet(rest); item != "" {
				v.appendItem(current, item)
			}
		case labelRecommendation:
			v.RecommendationText = strings.TrimSpace(strings.Trim(rest, "*_ "))
			v.Recommendation, _ = ParseRecommendation(v.RecommendationText)
		}
	}

	return v
}

func (v *Verdict) appendItem(s section, item string) {
	switch s {
	case sectionStrengths:
		v.Strengths = append(v.Strengths, item)
	case sectionGaps:
		v.Gaps = append(v.Gaps, item)
	}
}

// matchLabel reports which label starts the line and returns the text after
// it. Markdown headings are skipped, and a label wrapped in paired emphasis
// ("**Score**:", "__Score:__") is accepted. A list marker is not: "* Score:"
// is an item, not a label.
func matchLabel(line string) (labelKind, string, bool) {
	line = strings.TrimSpace(strings.TrimLeft(line, "#"))

	wrap := ""
	for _, marker := range []string{"**", "__"} {
		if strings.HasPrefix(line, marker) {
			wrap = marker
			line = line[len(marker):]
			break
		}
	}

	lower := strings.ToLower(line)
	for _, l := range labels {
		word := strings.TrimSuffix(l.name, ":")
		if !strings.HasPrefix(lower, word) {
			continue
		}
		after := line[len(word):]

		switch {
		case wrap == "" && strings.HasPrefix(after, ":"):
			return l.kind, strings.TrimSpace(after[1:]), true
		case wrap != "" && strings.HasPrefix(after, wrap+":"):
			return l.kind, strings.TrimSpace(after[len(wrap)+1:]), true
		case wrap != "" && strings.HasPrefix(after, ":"+wrap):
			return l.kind, strings.TrimSpace(after[len(wrap)+1:]), true
		}
	}
	return 0, "", false
}

func parseScore(rest string) (int, bool) {
	m := digits.FindString(rest)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil || n > maxScore {
		return maxScore, true
	}
	return n, true
}

// bulletMarkers are list markers removed from the start of an item. The
// first entry is a UTF-8 bullet decoded as Windows-1252.
var bulletMarkers = []string{"â€¢", "-", "*", "•", "▪", "◦", "‣", "·", "●", "■", "►", "▸", "⁃", "∙", "–"}

// stripBullet removes one leading list marker. The rest of the item is kept as written.
func stripBullet(line string) string {
	line = strings.TrimSpace(line)
	for _, marker := range bulletMarkers {
		if strings.HasPrefix(line, marker) {
			line = line[len(marker):]
			break
		}
	}
	return strings.TrimSpace(line)
}
