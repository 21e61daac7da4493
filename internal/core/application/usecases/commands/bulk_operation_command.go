package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrBulkOperationCommandIsNotConstructed = errors.New(
	"BulkOperationCommand must be created via NewBulkOperationCommand constructor",
)

// BulkOp selects the per-order operation a bulk run executes.
type BulkOp string

const (
	BulkCreate   BulkOp = "create"
	BulkPickup   BulkOp = "pickup"
	BulkManifest BulkOp = "manifest"
)

func (op BulkOp) validate() error {
	switch op {
	case BulkCreate, BulkPickup, BulkManifest:
		return nil
	default:
		return errs.NewValueIsInvalidError("bulkOp")
	}
}

// BulkOperationCommand represents an operator-selected set of orders to run
// one operation over.
type BulkOperationCommand struct { //nolint:recvcheck //using for validation
	orderIDs []kernel.UUID
	op       BulkOp

	guard guard.ConstructorGuard
}

// NewBulkOperationCommand creates a bulk operation command.
// The order set must be non-empty and every ID must be constructed.
func NewBulkOperationCommand(orderIDs []kernel.UUID, op BulkOp) (BulkOperationCommand, error) {
	if len(orderIDs) == 0 {
		return BulkOperationCommand{}, errs.NewValueIsRequiredError("orderIDs")
	}
	if err := op.validate(); err != nil {
		return BulkOperationCommand{}, err
	}
	for _, id := range orderIDs {
		if err := id.Validate(); err != nil {
			return BulkOperationCommand{}, err
		}
	}

	return BulkOperationCommand{
		orderIDs: orderIDs,
		op:       op,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c BulkOperationCommand) Validate() error {
	return c.guard.Validate(ErrBulkOperationCommandIsNotConstructed)
}

// OrderIDs returns the operator-selected order set in submission order.
func (c BulkOperationCommand) OrderIDs() []kernel.UUID {
	return c.orderIDs
}

// Op returns the operation to run per order.
func (c BulkOperationCommand) Op() BulkOp {
	return c.op
}
