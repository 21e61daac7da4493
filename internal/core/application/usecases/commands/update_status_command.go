package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var ErrUpdateStatusCommandIsNotConstructed = errors.New(
	"UpdateStatusCommand must be created via NewUpdateStatusCommand constructor",
)

// UpdateStatusCommand represents an operator-initiated status change.
// Override bypasses the monotonic state machine check; its use is logged.
type UpdateStatusCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	newStatus order.Status
	notes     string
	override  bool

	guard guard.ConstructorGuard
}

// NewUpdateStatusCommand creates a manual status update command.
// The target status must be a valid status value; whether the transition
// itself is legal is decided by the aggregate when handled.
func NewUpdateStatusCommand(
	orderID kernel.UUID, newStatus order.Status, notes string, override bool,
) (UpdateStatusCommand, error) {
	if err := errors.Join(orderID.Validate(), newStatus.Validate()); err != nil {
		return UpdateStatusCommand{}, err
	}

	return UpdateStatusCommand{
		orderID:   orderID,
		newStatus: newStatus,
		notes:     notes,
		override:  override,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateStatusCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to update.
func (c UpdateStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

// NewStatus returns the target status.
func (c UpdateStatusCommand) NewStatus() order.Status {
	return c.newStatus
}

// Notes returns the operator's free-text annotation.
func (c UpdateStatusCommand) Notes() string {
	return c.notes
}

// Override reports whether the state machine check is bypassed.
func (c UpdateStatusCommand) Override() bool {
	return c.override
}
