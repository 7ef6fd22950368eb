package risk

import (
	"regexp"

	"github.com/caretaker-api/internal/domain"
)

// detector groups the phrase patterns of one crisis category under a single
// severity. Patterns go beyond isolated keyword tags: a full sentence can
// imply intent even when no tagged keyword is present.
type detector struct {
	category string
	severity string
	patterns []*regexp.Regexp
}

var detectors = []detector{
	{
		category: "Heartbreak Crisis",
		severity: domain.SeverityHigh,
		patterns: compile(
			`heart\s*(broken|shattered|crushed|destroyed)`,
			`love\s*(lost|gone|over|ended)`,
			`relationship\s*(ended|over|failed|broken)`,
			`can't\s*live\s*without`,
			`miss\s*(him|her|them)\s*so\s*much`,
			`soul\s*mate\s*(left|gone)`,
			`never\s*love\s*again`,
			`heart\s*ache`,
			`emotional\s*pain`,
			`love\s*of\s*my\s*life`,
		),
	},
	{
		category: "Medical Crisis",
		severity: domain.SeverityHigh,
		patterns: compile(
			`diagnosed\s*with\s*(cancer|tumor|disease)`,
			`terminal\s*(illness|disease|condition)`,
			`incurable\s*(disease|condition|illness)`,
			`chemotherapy|radiation|treatment`,
			`months\s*to\s*live`,
			`weeks\s*to\s*live`,
			`stage\s*4|final\s*stage`,
			`hospice|palliative\s*care`,
			`medical\s*emergency`,
			`life\s*threatening`,
			`chronic\s*pain`,
			`degenerative\s*disease`,
		),
	},
	{
		category: "Suicidal Ideation",
		severity: domain.SeverityCritical,
		patterns: compile(
			`want\s*to\s*die`,
			`kill\s*myself`,
			`end\s*my\s*life`,
			`suicide|suicidal`,
			`better\s*off\s*dead`,
			`no\s*point\s*(in\s*)?living`,
			`can't\s*go\s*on`,
			`end\s*it\s*all`,
			`take\s*my\s*own\s*life`,
			`nothing\s*to\s*live\s*for`,
			`world\s*better\s*without\s*me`,
			`planning\s*to\s*(die|kill)`,
		),
	},
	{
		category: "Self-Harm Risk",
		severity: domain.SeverityHigh,
		patterns: compile(
			`cut\s*myself`,
			`hurt\s*myself`,
			`self\s*harm`,
			`razor|blade`,
			`overdose|pills`,
			`burn\s*myself`,
			`punish\s*myself`,
			`deserve\s*pain`,
			`physical\s*pain\s*helps`,
			`cutting|scratching`,
		),
	},
}

var severityRank = map[string]int{
	domain.SeverityNone:     0,
	domain.SeverityMedium:   1,
	domain.SeverityHigh:     2,
	domain.SeverityCritical: 3,
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(`(?i)`+e))
	}
	return out
}

// Scan runs every detector over the text. A detector whose patterns match
// anywhere contributes its category once; the returned severity is the
// maximum across all matched detectors.
func Scan(text string) (categories []string, severity string) {
	severity = domain.SeverityNone
	seen := make(map[string]bool)
	for _, d := range detectors {
		for _, p := range d.patterns {
			if !p.MatchString(text) {
				continue
			}
			if !seen[d.category] {
				seen[d.category] = true
				categories = append(categories, d.category)
			}
			if severityRank[d.severity] > severityRank[severity] {
				severity = d.severity
			}
			break
		}
	}
	return categories, severity
}
