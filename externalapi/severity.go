package externalapi

import (
	"strings"

	"github.com/medtrack/medication-api/entities"
)

// Keyword tiers checked in order; the first tier with a hit wins.
var (
	contraindicatedKeywords = []string{
		"contraindicated", "do not use", "should not be used",
	}
	majorKeywords = []string{
		"serious", "severe", "fatal", "life-threatening", "hospitalization",
	}
	moderateKeywords = []string{
		"caution", "monitor", "may increase", "may decrease",
	}
)

// SeverityFromText infers an interaction severity from label wording.
// Anything without a recognized keyword is Minor.
func SeverityFromText(text string) entities.InteractionSeverity {
	lower := strings.ToLower(text)

	for _, kw := range contraindicatedKeywords {
		if strings.Contains(lower, kw) {
			return entities.SeverityContraindicated
		}
	}
	for _, kw := range majorKeywords {
		if strings.Contains(lower, kw) {
			return entities.SeverityMajor
		}
	}
	for _, kw := range moderateKeywords {
		if strings.Contains(lower, kw) {
			return entities.SeverityModerate
		}
	}
	return entities.SeverityMinor
}
