package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// CreateShipmentResult reports the outcome of shipment creation.
// AlreadyExists is set when the order had a shipment and force was false;
// the existing identifiers are returned and nothing was sent to the carrier.
// Warnings carry soft failures of the AWB and label follow-up steps.
type CreateShipmentResult struct {
	ProviderOrderID string
	ShipmentID      string
	AWBCode         string
	CourierName     string
	LabelURL        string
	AlreadyExists   bool
	Warnings        []string
}

// CreateShipmentCommandHandler registers an order with the carrier and runs
// the AWB and label follow-up steps.
//
// The carrier-side create and the local shipment record commit together
// before any follow-up step runs, so a crash after create never loses the
// shipmentID. AWB and label failures degrade to warnings: the shipment
// exists and the operator can retry those steps individually.
type CreateShipmentCommandHandler struct {
	uowFactory OrderUoWFactory
	provider   ports.ShipmentProviderClient
	notifier   ports.NotificationSink
	logger     *slog.Logger
}

// NewCreateShipmentCommandHandler creates a handler for shipment creation.
func NewCreateShipmentCommandHandler(
	uowFactory OrderUoWFactory,
	provider ports.ShipmentProviderClient,
	notifier ports.NotificationSink,
	logger *slog.Logger,
) CreateShipmentCommandHandler {
	return CreateShipmentCommandHandler{
		uowFactory: uowFactory,
		provider:   provider,
		notifier:   notifier,
		logger:     logger.With(slog.String("component", "create_shipment")),
	}
}

// Handle processes the shipment creation command.
func (h *CreateShipmentCommandHandler) Handle(
	ctx context.Context, cmd CreateShipmentCommand,
) (CreateShipmentResult, error) {
	if err := cmd.Validate(); err != nil {
		return CreateShipmentResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return CreateShipmentResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	aggregate, err := repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return CreateShipmentResult{}, err
	}

	if aggregate.HasShipment() && !cmd.Force() {
		shipment := aggregate.Shipment()
		return CreateShipmentResult{
			ProviderOrderID: shipment.ProviderOrderID(),
			ShipmentID:      shipment.ShipmentID(),
			AWBCode:         shipment.AWBCode(),
			CourierName:     shipment.CourierName(),
			LabelURL:        shipment.LabelURL(),
			AlreadyExists:   true,
		}, nil
	}

	if err = aggregate.ValidateReadyForShipment(); err != nil {
		return CreateShipmentResult{}, err
	}

	created, err := h.provider.CreateShipment(ctx, buildCreateRequest(aggregate))
	if err != nil {
		return CreateShipmentResult{}, err
	}
	if created.Failure != nil {
		return CreateShipmentResult{}, upstreamError("create shipment", created.Failure)
	}

	if err = aggregate.AttachShipment(created.ProviderOrderID, created.ShipmentID, cmd.Force()); err != nil {
		return CreateShipmentResult{}, err
	}

	if err = repo.Update(ctx, aggregate); err != nil {
		return CreateShipmentResult{}, err
	}

	// The shipment record must survive even if AWB or label steps fail.
	if err = uow.Commit(ctx); err != nil {
		return CreateShipmentResult{}, err
	}

	result := CreateShipmentResult{
		ProviderOrderID: created.ProviderOrderID,
		ShipmentID:      created.ShipmentID,
	}

	h.assignAWB(ctx, cmd, created.ShipmentID, &result)
	h.generateLabel(ctx, cmd, created.ShipmentID, &result)

	h.notifier.NotifyStatusChange(ctx, ports.StatusNotification{
		OrderID:       aggregate.ID().String(),
		CustomerName:  aggregate.CustomerName(),
		CustomerPhone: aggregate.CustomerPhone(),
		NewStatus:     order.Processing,
		AWBCode:       result.AWBCode,
		CourierName:   result.CourierName,
	})

	return result, nil
}

// assignAWB requests an air waybill and persists it in its own transaction.
// Failures become warnings on the result.
func (h *CreateShipmentCommandHandler) assignAWB(
	ctx context.Context, cmd CreateShipmentCommand, shipmentID string, result *CreateShipmentResult,
) {
	awb, err := h.provider.GenerateAWB(ctx, shipmentID)
	if err == nil && awb.Failure != nil {
		err = upstreamError("generate awb", awb.Failure)
	}
	if err == nil {
		_, err = withOrder(ctx, h.uowFactory, cmd.OrderID(), func(o *order.Order) error {
			return o.AssignAWB(awb.AWBCode, awb.CourierName)
		})
	}

	if err != nil {
		h.logger.Warn("awb assignment failed",
			slog.String("order_id", cmd.OrderID().String()), slog.Any("error", err))
		result.Warnings = append(result.Warnings, fmt.Sprintf("awb assignment failed: %v", err))
		return
	}

	result.AWBCode = awb.AWBCode
	result.CourierName = awb.CourierName
}

// generateLabel requests a label and persists its URL in its own transaction.
// Failures become warnings on the result.
func (h *CreateShipmentCommandHandler) generateLabel(
	ctx context.Context, cmd CreateShipmentCommand, shipmentID string, result *CreateShipmentResult,
) {
	label, err := h.provider.GenerateLabel(ctx, shipmentID)
	if err == nil && label.Failure != nil {
		err = upstreamError("generate label", label.Failure)
	}
	if err == nil {
		_, err = withOrder(ctx, h.uowFactory, cmd.OrderID(), func(o *order.Order) error {
			return o.SetLabelURL(label.URL)
		})
	}

	if err != nil {
		h.logger.Warn("label generation failed",
			slog.String("order_id", cmd.OrderID().String()), slog.Any("error", err))
		result.Warnings = append(result.Warnings, fmt.Sprintf("label generation failed: %v", err))
		return
	}

	result.LabelURL = label.URL
}

func buildCreateRequest(aggregate *order.Order) ports.CreateShipmentRequest {
	items := make([]ports.ShipmentItem, 0, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		items = append(items, ports.ShipmentItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	address := aggregate.Address()

	return ports.CreateShipmentRequest{
		OrderID:       aggregate.ID().String(),
		OrderDate:     time.Now(),
		CustomerName:  aggregate.CustomerName(),
		CustomerPhone: aggregate.CustomerPhone(),
		AddressLine1:  address.Line1(),
		City:          address.City(),
		State:         address.State(),
		Pincode:       address.Pincode(),
		Items:         items,
		WeightKg:      aggregate.WeightKg(),
		CODAmount:     aggregate.CODAmount(),
	}
}
