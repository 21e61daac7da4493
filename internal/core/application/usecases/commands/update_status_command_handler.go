package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// UpdateStatusCommandHandler applies operator status changes through the
// aggregate's state machine.
type UpdateStatusCommandHandler struct {
	uowFactory OrderUoWFactory
	notifier   ports.NotificationSink
	logger     *slog.Logger
}

// NewUpdateStatusCommandHandler creates a handler for manual status updates.
func NewUpdateStatusCommandHandler(
	uowFactory OrderUoWFactory,
	notifier ports.NotificationSink,
	logger *slog.Logger,
) UpdateStatusCommandHandler {
	return UpdateStatusCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		logger:     logger.With(slog.String("component", "update_status")),
	}
}

// Handle processes the manual status update.
// Override use leaves an audit log entry with the operator's notes.
func (h *UpdateStatusCommandHandler) Handle(ctx context.Context, cmd UpdateStatusCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	var previous order.Status

	aggregate, err := withOrder(ctx, h.uowFactory, cmd.OrderID(), func(o *order.Order) error {
		previous = o.Status()
		return o.ManualStatusUpdate(cmd.NewStatus(), cmd.Override())
	})
	if err != nil {
		return err
	}

	if cmd.Override() {
		h.logger.Warn("status override applied",
			slog.String("order_id", cmd.OrderID().String()),
			slog.String("from", previous.String()),
			slog.String("to", cmd.NewStatus().String()),
			slog.String("notes", cmd.Notes()))
	}

	if previous != aggregate.Status() {
		notification := ports.StatusNotification{
			OrderID:       aggregate.ID().String(),
			CustomerName:  aggregate.CustomerName(),
			CustomerPhone: aggregate.CustomerPhone(),
			NewStatus:     aggregate.Status(),
		}
		if aggregate.HasShipment() {
			notification.AWBCode = aggregate.Shipment().AWBCode()
			notification.CourierName = aggregate.Shipment().CourierName()
		}
		h.notifier.NotifyStatusChange(ctx, notification)
	}

	return nil
}
