package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// RefreshTrackingResult reports the order's tracking state after replaying
// the carrier's feed.
type RefreshTrackingResult struct {
	AWBCode       string
	CourierName   string
	CurrentStatus order.Status
	History       []order.TrackingEvent
}

// RefreshTrackingCommandHandler polls the carrier's track-by-AWB endpoint
// and replays every returned scan through the same checkpoint logic that
// webhooks use. Scans already in history deduplicate to no-ops, so repeated
// refreshes are safe.
type RefreshTrackingCommandHandler struct {
	uowFactory   OrderUoWFactory
	provider     ports.ShipmentProviderClient
	applyHandler *ApplyExternalStatusCommandHandler
	logger       *slog.Logger
}

// NewRefreshTrackingCommandHandler creates a handler for tracking refreshes.
func NewRefreshTrackingCommandHandler(
	uowFactory OrderUoWFactory,
	provider ports.ShipmentProviderClient,
	applyHandler *ApplyExternalStatusCommandHandler,
	logger *slog.Logger,
) RefreshTrackingCommandHandler {
	return RefreshTrackingCommandHandler{
		uowFactory:   uowFactory,
		provider:     provider,
		applyHandler: applyHandler,
		logger:       logger.With(slog.String("component", "refresh_tracking")),
	}
}

// Handle processes the tracking refresh command.
func (h *RefreshTrackingCommandHandler) Handle(
	ctx context.Context, cmd RefreshTrackingCommand,
) (RefreshTrackingResult, error) {
	if err := cmd.Validate(); err != nil {
		return RefreshTrackingResult{}, err
	}

	awbCode, err := h.lookupAWB(ctx, cmd)
	if err != nil {
		return RefreshTrackingResult{}, err
	}

	tracked, err := h.provider.TrackShipment(ctx, awbCode)
	if err != nil {
		return RefreshTrackingResult{}, err
	}
	if tracked.Failure != nil {
		return RefreshTrackingResult{}, upstreamError("track shipment", tracked.Failure)
	}

	for _, scan := range tracked.Scans {
		applyCmd, cmdErr := NewApplyExternalStatusCommand(cmd.OrderID(), scan.StatusCode, scan.At, scan.Location)
		if cmdErr != nil {
			h.logger.Warn("skipping malformed scan",
				slog.String("order_id", cmd.OrderID().String()),
				slog.String("carrier_code", scan.StatusCode),
				slog.Any("error", cmdErr))
			continue
		}

		if _, applyErr := h.applyHandler.Handle(ctx, applyCmd); applyErr != nil {
			return RefreshTrackingResult{}, applyErr
		}
	}

	return h.snapshot(ctx, cmd)
}

// lookupAWB reads the order's AWB without holding a lock across the carrier call.
func (h *RefreshTrackingCommandHandler) lookupAWB(
	ctx context.Context, cmd RefreshTrackingCommand,
) (string, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return "", err
	}

	if !aggregate.HasShipment() || aggregate.Shipment().AWBCode() == "" {
		return "", errs.NewObjectNotFoundError("awb for order", cmd.OrderID().String())
	}

	return aggregate.Shipment().AWBCode(), nil
}

func (h *RefreshTrackingCommandHandler) snapshot(
	ctx context.Context, cmd RefreshTrackingCommand,
) (RefreshTrackingResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return RefreshTrackingResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return RefreshTrackingResult{}, err
	}

	shipment := aggregate.Shipment()
	return RefreshTrackingResult{
		AWBCode:       shipment.AWBCode(),
		CourierName:   shipment.CourierName(),
		CurrentStatus: aggregate.Status(),
		History:       shipment.Tracking().History(),
	}, nil
}
