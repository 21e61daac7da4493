package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
)

// ApplyExternalStatusResult reports what a carrier checkpoint did to the
// order. Recorded=false means the event was an exact duplicate. Stale means
// it was recorded into history but arrived out of order and did not advance
// the current status.
type ApplyExternalStatusResult struct {
	Recorded      bool
	Stale         bool
	StatusChanged bool
	Status        order.Status
}

// ApplyExternalStatusCommandHandler applies carrier checkpoints to the order
// aggregate. It is the single entry point for webhook and polled tracking
// input.
type ApplyExternalStatusCommandHandler struct {
	uowFactory OrderUoWFactory
	mapper     *services.StatusMapper
	notifier   ports.NotificationSink
	logger     *slog.Logger
}

// NewApplyExternalStatusCommandHandler creates a handler for carrier checkpoints.
func NewApplyExternalStatusCommandHandler(
	uowFactory OrderUoWFactory,
	mapper *services.StatusMapper,
	notifier ports.NotificationSink,
	logger *slog.Logger,
) ApplyExternalStatusCommandHandler {
	return ApplyExternalStatusCommandHandler{
		uowFactory: uowFactory,
		mapper:     mapper,
		notifier:   notifier,
		logger:     logger.With(slog.String("component", "apply_external_status")),
	}
}

// Handle processes one carrier checkpoint.
func (h *ApplyExternalStatusCommandHandler) Handle(
	ctx context.Context, cmd ApplyExternalStatusCommand,
) (ApplyExternalStatusResult, error) {
	if err := cmd.Validate(); err != nil {
		return ApplyExternalStatusResult{}, err
	}

	if !h.mapper.Knows(cmd.CarrierCode()) {
		h.logger.Info("unmapped carrier status code",
			slog.String("order_id", cmd.OrderID().String()),
			slog.String("carrier_code", cmd.CarrierCode()))
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ApplyExternalStatusResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	aggregate, err := repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return ApplyExternalStatusResult{}, err
	}

	event := order.TrackingEvent{
		Status:    h.mapper.Map(cmd.CarrierCode(), aggregate.Status()),
		RawStatus: cmd.CarrierCode(),
		Location:  cmd.Location(),
		At:        cmd.EventTime(),
	}

	outcome, err := aggregate.ApplyTrackingEvent(event)
	if err != nil {
		return ApplyExternalStatusResult{}, err
	}

	// Duplicate checkpoints change nothing; skip the write entirely.
	if outcome.Recorded || outcome.StatusChanged {
		if err = repo.Update(ctx, aggregate); err != nil {
			return ApplyExternalStatusResult{}, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return ApplyExternalStatusResult{}, err
	}

	if outcome.StatusChanged {
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

	return ApplyExternalStatusResult{
		Recorded:      outcome.Recorded,
		Stale:         outcome.Stale,
		StatusChanged: outcome.StatusChanged,
		Status:        aggregate.Status(),
	}, nil
}
