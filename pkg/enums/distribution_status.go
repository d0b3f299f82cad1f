package enums

import "fmt"

// DistributionStatus is the lifecycle state of a distribution.
type DistributionStatus string

const (
	DistributionStatusPending            DistributionStatus = "pending"
	DistributionStatusProcessing         DistributionStatus = "processing"
	DistributionStatusCompleted          DistributionStatus = "completed"
	DistributionStatusPartiallyCompleted DistributionStatus = "partially_completed"
	DistributionStatusFailed             DistributionStatus = "failed"
)

var validDistributionStatuses = []DistributionStatus{
	DistributionStatusPending,
	DistributionStatusProcessing,
	DistributionStatusCompleted,
	DistributionStatusPartiallyCompleted,
	DistributionStatusFailed,
}

func (d DistributionStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is known.
func (d DistributionStatus) IsValid() bool {
	for _, candidate := range validDistributionStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDistributionStatus converts raw input into a DistributionStatus.
func ParseDistributionStatus(value string) (DistributionStatus, error) {
	for _, candidate := range validDistributionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid distribution status %q", value)
}

// IsTerminal reports whether no further transition is allowed.
func (d DistributionStatus) IsTerminal() bool {
	switch d {
	case DistributionStatusCompleted, DistributionStatusPartiallyCompleted, DistributionStatusFailed:
		return true
	default:
		return false
	}
}
