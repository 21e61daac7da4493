package commands

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// SchedulePickupResult reports when the pickup was booked for.
type SchedulePickupResult struct {
	ScheduledAt time.Time
}

// SchedulePickupCommandHandler books a courier pickup with the carrier and
// records the scheduled time on the shipment.
type SchedulePickupCommandHandler struct {
	uowFactory OrderUoWFactory
	provider   ports.ShipmentProviderClient
	logger     *slog.Logger
}

// NewSchedulePickupCommandHandler creates a handler for pickup scheduling.
func NewSchedulePickupCommandHandler(
	uowFactory OrderUoWFactory,
	provider ports.ShipmentProviderClient,
	logger *slog.Logger,
) SchedulePickupCommandHandler {
	return SchedulePickupCommandHandler{
		uowFactory: uowFactory,
		provider:   provider,
		logger:     logger.With(slog.String("component", "schedule_pickup")),
	}
}

// Handle processes the pickup scheduling command.
func (h *SchedulePickupCommandHandler) Handle(
	ctx context.Context, cmd SchedulePickupCommand,
) (SchedulePickupResult, error) {
	if err := cmd.Validate(); err != nil {
		return SchedulePickupResult{}, err
	}

	var scheduledAt time.Time

	_, err := withOrder(ctx, h.uowFactory, cmd.OrderID(), func(o *order.Order) error {
		if !o.HasShipment() {
			return order.ErrNoShipment
		}

		// Already booked; keep the original slot.
		if at := o.Shipment().PickupScheduledAt(); at != nil {
			scheduledAt = *at
			return nil
		}

		booked, err := h.provider.SchedulePickup(ctx, o.Shipment().ShipmentID())
		if err != nil {
			return err
		}
		if booked.Failure != nil {
			return upstreamError("schedule pickup", booked.Failure)
		}

		scheduledAt = booked.ScheduledAt
		return o.MarkPickupScheduled(booked.ScheduledAt)
	})
	if err != nil {
		return SchedulePickupResult{}, err
	}

	return SchedulePickupResult{ScheduledAt: scheduledAt}, nil
}
