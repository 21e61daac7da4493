package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrRefreshTrackingCommandIsNotConstructed = errors.New(
	"RefreshTrackingCommand must be created via NewRefreshTrackingCommand constructor",
)

// RefreshTrackingCommand represents a request to poll the carrier for the
// latest tracking feed of an order's shipment.
type RefreshTrackingCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewRefreshTrackingCommand creates a tracking refresh command.
func NewRefreshTrackingCommand(orderID kernel.UUID) (RefreshTrackingCommand, error) {
	if err := orderID.Validate(); err != nil {
		return RefreshTrackingCommand{}, err
	}

	return RefreshTrackingCommand{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c RefreshTrackingCommand) Validate() error {
	return c.guard.Validate(ErrRefreshTrackingCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to refresh.
func (c RefreshTrackingCommand) OrderID() kernel.UUID {
	return c.orderID
}
