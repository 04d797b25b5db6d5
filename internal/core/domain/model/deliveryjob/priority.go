package deliveryjob

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Priority is the ordered dispatch tier of a job. The ready queue scanner
// serves higher tiers first, oldest-first within a tier.
type Priority int

const (
	// PriorityLow is served after all other tiers.
	PriorityLow Priority = iota + 1
	// PriorityNormal is the default tier.
	PriorityNormal
	// PriorityHigh is served before normal and low tiers.
	PriorityHigh
	// PriorityUrgent is served first.
	PriorityUrgent
)

func getPriorityStrings() map[Priority]string {
	return map[Priority]string{
		PriorityLow:    "Low",
		PriorityNormal: "Normal",
		PriorityHigh:   "High",
		PriorityUrgent: "Urgent",
	}
}

// Validate checks if the Priority value is one of the defined tiers.
func (p Priority) Validate() error {
	if _, ok := getPriorityStrings()[p]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("priority is invalid",
			fmt.Errorf("%d is not a valid priority", p))
	}
	return nil
}

// String returns the human-readable name of the priority tier.
func (p Priority) String() string {
	if str, ok := getPriorityStrings()[p]; ok {
		return str
	}
	return "Unknown"
}

// PriorityFromString parses a priority tier name. An empty string selects
// PriorityNormal.
func PriorityFromString(s string) (Priority, error) {
	if s == "" {
		return PriorityNormal, nil
	}
	for priority, name := range getPriorityStrings() {
		if name == s {
			return priority, nil
		}
	}
	return 0, errs.NewValueIsInvalidErrorWithCause("priority is invalid",
		fmt.Errorf("%q is not a valid priority", s))
}
