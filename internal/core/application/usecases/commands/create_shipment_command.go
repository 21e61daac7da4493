package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrCreateShipmentCommandIsNotConstructed = errors.New(
	"CreateShipmentCommand must be created via NewCreateShipmentCommand constructor",
)

// CreateShipmentCommand represents a request to register an order with the
// shipping carrier. Force replaces an existing shipment instead of returning
// its identifiers.
//
// Example:
//
//	cmd, err := NewCreateShipmentCommand(orderID, false)
//	if err != nil {
//	    return fmt.Errorf("invalid request: %w", err)
//	}
//
//	result, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("shipment creation failed: %w", err)
//	}
//	fmt.Printf("shipment %s, awb %s", result.ShipmentID, result.AWBCode)
type CreateShipmentCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	force   bool

	guard guard.ConstructorGuard
}

// NewCreateShipmentCommand creates a command to register an order's shipment.
// Returns an error if the order ID is not a constructed UUID.
func NewCreateShipmentCommand(orderID kernel.UUID, force bool) (CreateShipmentCommand, error) {
	if err := orderID.Validate(); err != nil {
		return CreateShipmentCommand{}, err
	}

	return CreateShipmentCommand{
		orderID: orderID,
		force:   force,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateShipmentCommand) Validate() error {
	return c.guard.Validate(ErrCreateShipmentCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to ship.
func (c CreateShipmentCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Force reports whether an existing shipment should be replaced.
func (c CreateShipmentCommand) Force() bool {
	return c.force
}
