package risk

import (
	"strings"

	"github.com/caretaker-api/internal/domain"
)

// Evaluate combines the keyword tier and the pattern scan into one verdict.
// The two signals escalate each other but never soften: whichever source
// reports the more severe state wins, because under-triggering is the worse
// failure mode here.
func Evaluate(mood string, keywords []string, notes string) domain.RiskVerdict {
	tier := ClassifyKeywords(keywords)
	categories, severity := Scan(mood + " " + strings.Join(keywords, " ") + " " + notes)

	level := domain.RiskLow
	switch {
	case severity == domain.SeverityCritical || severity == domain.SeverityHigh || tier == TierDanger:
		level = domain.RiskHigh
	case severity == domain.SeverityMedium || tier == TierWarning:
		level = domain.RiskMedium
	}

	return domain.RiskVerdict{
		Level:          level,
		Categories:     categories,
		Severity:       severity,
		AlertTriggered: level == domain.RiskHigh || severity == domain.SeverityCritical,
	}
}
