package commands

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrApplyExternalStatusCommandIsNotConstructed = errors.New(
	"ApplyExternalStatusCommand must be created via NewApplyExternalStatusCommand constructor",
)

// ApplyExternalStatusCommand carries one carrier-reported status checkpoint.
// Both webhook ingestion and polled tracking produce these commands, so every
// external status change flows through a single code path.
type ApplyExternalStatusCommand struct { //nolint:recvcheck //using for validation
	orderID     kernel.UUID
	carrierCode string
	eventTime   time.Time
	location    string

	guard guard.ConstructorGuard
}

// NewApplyExternalStatusCommand creates a command from a carrier checkpoint.
func NewApplyExternalStatusCommand(
	orderID kernel.UUID, carrierCode string, eventTime time.Time, location string,
) (ApplyExternalStatusCommand, error) {
	if err := orderID.Validate(); err != nil {
		return ApplyExternalStatusCommand{}, err
	}
	if carrierCode == "" {
		return ApplyExternalStatusCommand{}, errs.NewValueIsRequiredError("carrierCode")
	}
	if eventTime.IsZero() {
		return ApplyExternalStatusCommand{}, errs.NewValueIsRequiredError("eventTime")
	}

	return ApplyExternalStatusCommand{
		orderID:     orderID,
		carrierCode: carrierCode,
		eventTime:   eventTime,
		location:    location,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ApplyExternalStatusCommand) Validate() error {
	return c.guard.Validate(ErrApplyExternalStatusCommandIsNotConstructed)
}

// OrderID returns the identifier of the affected order.
func (c ApplyExternalStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CarrierCode returns the raw carrier status code.
func (c ApplyExternalStatusCommand) CarrierCode() string {
	return c.carrierCode
}

// EventTime returns when the checkpoint happened at the carrier.
func (c ApplyExternalStatusCommand) EventTime() time.Time {
	return c.eventTime
}

// Location returns the checkpoint location, possibly empty.
func (c ApplyExternalStatusCommand) Location() string {
	return c.location
}
