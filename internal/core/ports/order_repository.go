// Package ports defines the interfaces between the application core and
// infrastructure adapters, enabling dependency inversion and testability.
package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	// The order must exist in the repository and be valid.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier, locking the
	// row for the duration of the enclosing transaction. Concurrent commands
	// touching the same order serialize on this lock.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByAWB retrieves the order whose shipment carries the given AWB code.
	// Webhook ingestion resolves orders this way because carrier callbacks
	// reference shipments by AWB, not by order id.
	GetByAWB(ctx context.Context, awbCode string) (*order.Order, error)

	// GetAllWithActiveShipments retrieves orders that have a shipment and are
	// not yet in a terminal status. The tracking poll job iterates these.
	GetAllWithActiveShipments(ctx context.Context) ([]*order.Order, error)
}
