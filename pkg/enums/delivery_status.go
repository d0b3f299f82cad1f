package enums

import "fmt"

// DeliveryStatus is the per-outlet outcome of a send.
type DeliveryStatus string

const (
	DeliveryStatusPending DeliveryStatus = "pending"
	DeliveryStatusSent    DeliveryStatus = "sent"
	DeliveryStatusFailed  DeliveryStatus = "failed"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusPending,
	DeliveryStatusSent,
	DeliveryStatusFailed,
}

func (d DeliveryStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is known.
func (d DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryStatus converts raw input into a DeliveryStatus.
func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	for _, candidate := range validDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery status %q", value)
}
