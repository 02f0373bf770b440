package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/medtrack/medication-api/entities"
)

// Pre-compiled patterns, compiled once at package initialization.
var (
	// Search terms: alphanumeric plus the punctuation that occurs in drug
	// names (hyphens, slashes, apostrophes, dots).
	searchTermRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\./']+$`)

	// RxCui values are numeric strings in the RxNorm vocabulary.
	rxCuiRegex = regexp.MustCompile(`^[0-9]{1,12}$`)

	// Substring matching is cheaper than regex for these.
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "onload=", "onerror=",
		"' or ", "\" or ", "union select", "drop table", "delete from",
		"--", "/*", "*/", "../", "..\\", "${", "$(",
	}
)

// ValidateSearchTerm rejects empty, oversized or suspicious search input.
func ValidateSearchTerm(term string) error {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return NewValidationError("search term cannot be empty")
	}
	if len(trimmed) > 200 {
		return NewValidationError(fmt.Sprintf("search term too long: %d characters", len(trimmed)))
	}

	lower := strings.ToLower(trimmed)
	for _, p := range dangerousPatterns {
		if strings.Contains(lower, p) {
			return NewValidationError("search term contains invalid characters")
		}
	}
	if !searchTermRegex.MatchString(trimmed) {
		return NewValidationError("search term contains invalid characters")
	}
	return nil
}

// ValidateRxCui checks the shape of an RxNorm identifier.
func ValidateRxCui(rxCui string) error {
	if !rxCuiRegex.MatchString(strings.TrimSpace(rxCui)) {
		return NewValidationError(fmt.Sprintf("invalid RxCui: %q", rxCui))
	}
	return nil
}

// ValidateDosing checks the user-controlled dosing fields shared by add and
// update requests. All failures are collected into one ValidationError.
func ValidateDosing(dose float64, frequency int, withFood, onEmptyStomach bool) error {
	var errs []string

	if dose <= 0 {
		errs = append(errs, "dose must be greater than 0")
	}
	if frequency < 1 || frequency > 8 {
		errs = append(errs, "frequency must be between 1 and 8 times per day")
	}
	if withFood && onEmptyStomach {
		errs = append(errs, "medication cannot be both with food and on empty stomach")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// ValidateTimingPreferences checks that every symbolic slot is known.
func ValidateTimingPreferences(prefs []entities.TimingPreference) error {
	for _, p := range prefs {
		if _, err := entities.ParseTimingPreference(string(p)); err != nil {
			return NewValidationError(fmt.Sprintf("unknown timing preference: %q", p))
		}
	}
	return nil
}
