package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrCancelShipmentCommandIsNotConstructed = errors.New(
	"CancelShipmentCommand must be created via NewCancelShipmentCommand constructor",
)

// CancelShipmentCommand represents a request to cancel an order's shipment.
type CancelShipmentCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	reason  string

	guard guard.ConstructorGuard
}

// NewCancelShipmentCommand creates a cancellation command.
// The reason is mandatory; it is stored on the shipment record.
func NewCancelShipmentCommand(orderID kernel.UUID, reason string) (CancelShipmentCommand, error) {
	if err := orderID.Validate(); err != nil {
		return CancelShipmentCommand{}, err
	}
	if reason == "" {
		return CancelShipmentCommand{}, errs.NewValueIsRequiredError("reason")
	}

	return CancelShipmentCommand{
		orderID: orderID,
		reason:  reason,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c CancelShipmentCommand) Validate() error {
	return c.guard.Validate(ErrCancelShipmentCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to cancel.
func (c CancelShipmentCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Reason returns the operator-supplied cancellation reason.
func (c CancelShipmentCommand) Reason() string {
	return c.reason
}
