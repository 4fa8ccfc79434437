package enums

import "fmt"

// RunOutcome records how a production run ended.
type RunOutcome string

const (
	RunOutcomeCommitted RunOutcome = "committed"
	RunOutcomeRejected  RunOutcome = "rejected"
)

var validRunOutcomes = []RunOutcome{
	RunOutcomeCommitted,
	RunOutcomeRejected,
}

// String implements fmt.Stringer.
func (r RunOutcome) String() string {
	return string(r)
}

// IsValid reports whether the value is known.
func (r RunOutcome) IsValid() bool {
	for _, candidate := range validRunOutcomes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRunOutcome converts raw input into a RunOutcome.
func ParseRunOutcome(value string) (RunOutcome, error) {
	for _, candidate := range validRunOutcomes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid run outcome %q", value)
}
