package enums

import "fmt"

// FulfillmentStatus tracks the shipping lifecycle of an order, distinct from
// its payment status. The pipeline is linear with a single cancel branch.
type FulfillmentStatus string

const (
	FulfillmentStatusPending    FulfillmentStatus = "pending"
	FulfillmentStatusConfirmed  FulfillmentStatus = "confirmed"
	FulfillmentStatusProcessing FulfillmentStatus = "processing"
	FulfillmentStatusShipped    FulfillmentStatus = "shipped"
	FulfillmentStatusDelivered  FulfillmentStatus = "delivered"
	FulfillmentStatusCancelled  FulfillmentStatus = "cancelled"
)

var validFulfillmentStatuses = []FulfillmentStatus{
	FulfillmentStatusPending,
	FulfillmentStatusConfirmed,
	FulfillmentStatusProcessing,
	FulfillmentStatusShipped,
	FulfillmentStatusDelivered,
	FulfillmentStatusCancelled,
}

// forwardFulfillmentSteps maps each status to its single allowed successor.
var forwardFulfillmentSteps = map[FulfillmentStatus]FulfillmentStatus{
	FulfillmentStatusPending:    FulfillmentStatusConfirmed,
	FulfillmentStatusConfirmed:  FulfillmentStatusProcessing,
	FulfillmentStatusProcessing: FulfillmentStatusShipped,
	FulfillmentStatusShipped:    FulfillmentStatusDelivered,
}

// String implements fmt.Stringer.
func (f FulfillmentStatus) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FulfillmentStatus.
func (f FulfillmentStatus) IsValid() bool {
	for _, candidate := range validFulfillmentStatuses {
		if candidate == f {
			return true
		}
	}
	return false
}

// Next returns the single forward step from the current status. The second
// return is false for terminal states (delivered, cancelled).
func (f FulfillmentStatus) Next() (FulfillmentStatus, bool) {
	next, ok := forwardFulfillmentSteps[f]
	return next, ok
}

// CanCancel reports whether an order in this status may still be cancelled.
func (f FulfillmentStatus) CanCancel() bool {
	return f == FulfillmentStatusPending || f == FulfillmentStatusConfirmed
}

// ParseFulfillmentStatus converts raw input into a FulfillmentStatus.
func ParseFulfillmentStatus(value string) (FulfillmentStatus, error) {
	for _, candidate := range validFulfillmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment status %q", value)
}
