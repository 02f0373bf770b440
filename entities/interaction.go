package entities

import "time"

// InteractionSeverity orders drug-drug interaction severities from none to
// contraindicated. The ordinal ordering is relied on for high-severity
// counting, keep it ascending.
type InteractionSeverity int

const (
	SeverityNone InteractionSeverity = iota
	SeverityMinor
	SeverityModerate
	SeverityMajor
	SeverityContraindicated
)

func (s InteractionSeverity) String() string {
	switch s {
	case SeverityNone:
		return "None"
	case SeverityMinor:
		return "Minor"
	case SeverityModerate:
		return "Moderate"
	case SeverityMajor:
		return "Major"
	case SeverityContraindicated:
		return "Contraindicated"
	}
	return "Unknown"
}

// DrugInteraction is a known or discovered interaction between two
// medications, keyed by their RxCui pair. At most one row exists per
// unordered pair; names are display fields repopulated at check time.
type DrugInteraction struct {
	ID              int64               `json:"id"`
	Drug1RxCui      string              `json:"drug1_rxcui"`
	Drug2RxCui      string              `json:"drug2_rxcui"`
	Drug1Name       string              `json:"drug1_name"`
	Drug2Name       string              `json:"drug2_name"`
	Severity        InteractionSeverity `json:"severity"`
	InteractionType string              `json:"interaction_type"`
	Description     string              `json:"description"`
	Recommendation  string              `json:"recommendation,omitempty"`
	Source          string              `json:"source"`
	SourceDate      time.Time           `json:"source_date"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// Matches reports whether this interaction covers the given unordered
// RxCui pair.
func (di *DrugInteraction) Matches(rxCui1, rxCui2 string) bool {
	return (di.Drug1RxCui == rxCui1 && di.Drug2RxCui == rxCui2) ||
		(di.Drug1RxCui == rxCui2 && di.Drug2RxCui == rxCui1)
}
