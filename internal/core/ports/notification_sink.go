package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/order"
)

// StatusNotification describes a customer-visible fulfillment change.
type StatusNotification struct {
	OrderID       string
	CustomerName  string
	CustomerPhone string
	NewStatus     order.Status
	AWBCode       string
	CourierName   string
}

// NotificationSink receives fulfillment status changes for delivery to the
// customer. Implementations must be fire-and-forget from the caller's point
// of view: a sink failure never fails the state change that triggered it.
type NotificationSink interface {
	NotifyStatusChange(ctx context.Context, n StatusNotification)
}
