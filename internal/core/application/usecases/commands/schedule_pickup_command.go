package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrSchedulePickupCommandIsNotConstructed = errors.New(
	"SchedulePickupCommand must be created via NewSchedulePickupCommand constructor",
)

// SchedulePickupCommand represents a request to book a courier pickup for an
// order's shipment.
type SchedulePickupCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewSchedulePickupCommand creates a pickup scheduling command.
func NewSchedulePickupCommand(orderID kernel.UUID) (SchedulePickupCommand, error) {
	if err := orderID.Validate(); err != nil {
		return SchedulePickupCommand{}, err
	}

	return SchedulePickupCommand{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c SchedulePickupCommand) Validate() error {
	return c.guard.Validate(ErrSchedulePickupCommandIsNotConstructed)
}

// OrderID returns the identifier of the order.
func (c SchedulePickupCommand) OrderID() kernel.UUID {
	return c.orderID
}
