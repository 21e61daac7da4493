package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status represents the fulfillment state of an order.
// It implements a state machine with defined transitions so orders follow
// the correct shipping workflow.
//
// State transitions:
//
//	Placed ──> Processing ──> Shipped ──> OutForDelivery ──> Delivered
//	   │            │             │              │
//	   └────────────┴─────────────┴──────────────┴──> Cancelled / RTO
//
// The happy path is strictly forward; Cancelled and RTO are reachable from
// any non-terminal state. Delivered, Cancelled and RTO are terminal: the
// only transition they accept is an idempotent replay of the same status.
// Returned is reachable only through an explicit operator override.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Placed is the initial status set by the checkout flow.
	Placed

	// Processing indicates a shipment has been created with the carrier.
	Processing

	// Shipped indicates the carrier has picked up the package.
	Shipped

	// OutForDelivery indicates the package is on its final delivery leg.
	OutForDelivery

	// Delivered indicates successful delivery. Terminal.
	Delivered

	// Cancelled indicates the order was cancelled. Terminal.
	Cancelled

	// Returned indicates a post-delivery customer return.
	// Only reachable via operator override.
	Returned

	// RTO indicates the shipment was returned to origin after a failed
	// delivery. Terminal.
	RTO
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "Unknown",
		Placed:         "Placed",
		Processing:     "Processing",
		Shipped:        "Shipped",
		OutForDelivery: "OutForDelivery",
		Delivered:      "Delivered",
		Cancelled:      "Cancelled",
		Returned:       "Returned",
		RTO:            "RTO",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Placed:         "Placed",
		Processing:     "Processing",
		Shipped:        "Shipped",
		OutForDelivery: "OutForDelivery",
		Delivered:      "Delivered",
		Cancelled:      "Cancelled",
		Returned:       "Returned",
		RTO:            "RTO",
	}
}

// happyPathRank orders the statuses on the forward delivery path.
// Statuses off the happy path (Cancelled, Returned, RTO) have no rank.
func happyPathRank(s Status) (int, bool) {
	switch s {
	case Placed:
		return 1, true
	case Processing:
		return 2, true
	case Shipped:
		return 3, true
	case OutForDelivery:
		return 4, true
	case Delivered:
		return 5, true
	default:
		return 0, false
	}
}

// StatusFromString parses the string form of a status as used on the wire
// and in storage. Returns an error for unrecognized names.
func StatusFromString(s string) (Status, error) {
	for status, name := range getValidStatusStrings() {
		if name == s {
			return status, nil
		}
	}

	return Unknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a known order status", s))
}

// Validate checks that the Status value is one of the defined statuses.
// Unknown (0) and out-of-range values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status.
// Safe to call on any value; invalid values return "Unknown".
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether the status accepts no further transitions.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled || s == RTO
}

// CanTransitionTo reports whether moving from s to next is a legal
// transition without an operator override:
//
//   - replaying the current status is always allowed (idempotent events)
//   - terminal statuses accept nothing else
//   - Cancelled and RTO are reachable from any non-terminal status
//   - happy-path moves must go strictly forward
//   - Returned is never reachable without an override
func (s Status) CanTransitionTo(next Status) bool {
	if next.Validate() != nil {
		return false
	}
	if s == next {
		return true
	}
	if s.IsTerminal() {
		return false
	}
	if next == Cancelled || next == RTO {
		return true
	}

	fromRank, fromOK := happyPathRank(s)
	toRank, toOK := happyPathRank(next)
	if fromOK && toOK {
		return toRank > fromRank
	}

	return false
}
