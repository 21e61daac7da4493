package commands

import (
	"context"
	"fmt"
	"log/slog"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// CancelShipmentResult reports the outcome of a cancellation. Warnings carry
// a carrier-side refusal when the local cancel still went through.
type CancelShipmentResult struct {
	Status   order.Status
	Warnings []string
}

// CancelShipmentCommandHandler cancels a shipment fail-open: the local order
// always reaches Cancelled when the transition is legal, whether or not the
// carrier accepted the cancellation. A carrier refusal is surfaced as a
// warning so the operator can follow up manually.
type CancelShipmentCommandHandler struct {
	uowFactory OrderUoWFactory
	provider   ports.ShipmentProviderClient
	notifier   ports.NotificationSink
	logger     *slog.Logger
}

// NewCancelShipmentCommandHandler creates a handler for shipment cancellation.
func NewCancelShipmentCommandHandler(
	uowFactory OrderUoWFactory,
	provider ports.ShipmentProviderClient,
	notifier ports.NotificationSink,
	logger *slog.Logger,
) CancelShipmentCommandHandler {
	return CancelShipmentCommandHandler{
		uowFactory: uowFactory,
		provider:   provider,
		notifier:   notifier,
		logger:     logger.With(slog.String("component", "cancel_shipment")),
	}
}

// Handle processes the cancellation command.
func (h *CancelShipmentCommandHandler) Handle(
	ctx context.Context, cmd CancelShipmentCommand,
) (CancelShipmentResult, error) {
	if err := cmd.Validate(); err != nil {
		return CancelShipmentResult{}, err
	}

	var warnings []string
	statusChanged := false

	aggregate, err := withOrder(ctx, h.uowFactory, cmd.OrderID(), func(o *order.Order) error {
		if !o.HasShipment() {
			return order.ErrNoShipment
		}

		alreadyCancelled := o.Status() == order.Cancelled
		if cancelErr := o.Cancel(cmd.Reason()); cancelErr != nil {
			return cancelErr
		}
		statusChanged = !alreadyCancelled

		// Carrier cancel happens inside the transaction so a failed local
		// write never leaves the carrier cancelled while the order is not.
		// An idempotent replay skips it; the carrier was already asked.
		if statusChanged && o.Shipment().ProviderOrderID() != "" {
			warnings = h.cancelUpstream(ctx, o.Shipment().ProviderOrderID())
		}

		return nil
	})
	if err != nil {
		return CancelShipmentResult{}, err
	}

	if statusChanged {
		h.notifier.NotifyStatusChange(ctx, ports.StatusNotification{
			OrderID:       aggregate.ID().String(),
			CustomerName:  aggregate.CustomerName(),
			CustomerPhone: aggregate.CustomerPhone(),
			NewStatus:     order.Cancelled,
		})
	}

	return CancelShipmentResult{Status: aggregate.Status(), Warnings: warnings}, nil
}

// cancelUpstream asks the carrier to cancel and converts any failure into
// warnings. It never returns an error: cancellation is fail-open.
func (h *CancelShipmentCommandHandler) cancelUpstream(ctx context.Context, providerOrderID string) []string {
	cancelled, err := h.provider.CancelShipment(ctx, providerOrderID)
	if err == nil && cancelled.Failure != nil {
		err = upstreamError("cancel shipment", cancelled.Failure)
	}
	if err == nil {
		return nil
	}

	h.logger.Warn("carrier cancel failed, order cancelled locally",
		slog.String("provider_order_id", providerOrderID), slog.Any("error", err))

	return []string{fmt.Sprintf("carrier cancel failed: %v", err)}
}
