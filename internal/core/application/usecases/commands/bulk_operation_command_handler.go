package commands

import (
	"context"
	"fmt"
	"log/slog"

	"fulfillment/internal/core/domain/model/kernel"
)

// Pacer spaces out successive carrier calls. Satisfied by pacer.Pacer.
type Pacer interface {
	Wait(ctx context.Context) error
}

// BulkItemResult is the outcome for one order in a bulk run.
type BulkItemResult struct {
	OrderID string
	Success bool
	Skipped bool
	Detail  string
	Error   string
}

// BulkOperationResult aggregates the per-item outcomes of a bulk run,
// in the order the operator submitted them.
type BulkOperationResult struct {
	Items     []BulkItemResult
	Succeeded int
	Skipped   int
	Failed    int
}

// BulkOperationCommandHandler runs one operation over a set of orders,
// strictly serially with a pacer between carrier calls. One order's failure
// never aborts the batch; it becomes that item's error. Orders without a
// shipment are skipped up front for pickup and manifest runs, since both
// need carrier-side identifiers to act on.
type BulkOperationCommandHandler struct {
	createHandler   *CreateShipmentCommandHandler
	pickupHandler   *SchedulePickupCommandHandler
	documentHandler *GenerateDocumentCommandHandler
	uowFactory      OrderUoWFactory
	pacer           Pacer
	logger          *slog.Logger
}

// NewBulkOperationCommandHandler creates a handler for bulk runs.
func NewBulkOperationCommandHandler(
	createHandler *CreateShipmentCommandHandler,
	pickupHandler *SchedulePickupCommandHandler,
	documentHandler *GenerateDocumentCommandHandler,
	uowFactory OrderUoWFactory,
	pacer Pacer,
	logger *slog.Logger,
) BulkOperationCommandHandler {
	return BulkOperationCommandHandler{
		createHandler:   createHandler,
		pickupHandler:   pickupHandler,
		documentHandler: documentHandler,
		uowFactory:      uowFactory,
		pacer:           pacer,
		logger:          logger.With(slog.String("component", "bulk_operation")),
	}
}

// Handle processes the bulk operation command.
func (h *BulkOperationCommandHandler) Handle(
	ctx context.Context, cmd BulkOperationCommand,
) (BulkOperationResult, error) {
	if err := cmd.Validate(); err != nil {
		return BulkOperationResult{}, err
	}

	var result BulkOperationResult

	for _, orderID := range cmd.OrderIDs() {
		// Pacing runs before the item so consecutive carrier calls are
		// spaced; the pacer's first wait returns immediately.
		if err := h.pacer.Wait(ctx); err != nil {
			// Context cancelled mid-batch; report what completed.
			return result, err
		}

		item := h.runOne(ctx, cmd.Op(), orderID)
		result.Items = append(result.Items, item)

		switch {
		case item.Skipped:
			result.Skipped++
		case item.Success:
			result.Succeeded++
		default:
			result.Failed++
		}
	}

	h.logger.Info("bulk run finished",
		slog.String("op", string(cmd.Op())),
		slog.Int("succeeded", result.Succeeded),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed))

	return result, nil
}

func (h *BulkOperationCommandHandler) runOne(
	ctx context.Context, op BulkOp, orderID kernel.UUID,
) BulkItemResult {
	item := BulkItemResult{OrderID: orderID.String()}

	if op != BulkCreate {
		hasShipment, err := h.hasShipment(ctx, orderID)
		if err != nil {
			item.Error = err.Error()
			return item
		}
		if !hasShipment {
			item.Skipped = true
			item.Detail = "no shipment"
			return item
		}
	}

	detail, err := h.execute(ctx, op, orderID)
	if err != nil {
		item.Error = err.Error()
		return item
	}

	item.Success = true
	item.Detail = detail
	return item
}

func (h *BulkOperationCommandHandler) execute(
	ctx context.Context, op BulkOp, orderID kernel.UUID,
) (string, error) {
	switch op {
	case BulkPickup:
		cmd, err := NewSchedulePickupCommand(orderID)
		if err != nil {
			return "", err
		}
		booked, err := h.pickupHandler.Handle(ctx, cmd)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("pickup scheduled for %s", booked.ScheduledAt.Format("2006-01-02")), nil

	case BulkManifest:
		cmd, err := NewGenerateDocumentCommand(orderID, DocumentManifest)
		if err != nil {
			return "", err
		}
		manifest, err := h.documentHandler.Handle(ctx, cmd)
		if err != nil {
			return "", err
		}
		return manifest.URL, nil

	default:
		cmd, err := NewCreateShipmentCommand(orderID, false)
		if err != nil {
			return "", err
		}
		created, err := h.createHandler.Handle(ctx, cmd)
		if err != nil {
			return "", err
		}
		if created.AlreadyExists {
			return fmt.Sprintf("shipment %s already exists", created.ShipmentID), nil
		}
		return fmt.Sprintf("shipment %s created", created.ShipmentID), nil
	}
}

func (h *BulkOperationCommandHandler) hasShipment(ctx context.Context, orderID kernel.UUID) (bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, orderID)
	if err != nil {
		return false, err
	}

	return aggregate.HasShipment(), nil
}
