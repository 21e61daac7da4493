package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// GenerateDocumentResult reports the document URL. Cached is set when the
// URL came from the shipment record without a carrier call.
type GenerateDocumentResult struct {
	URL    string
	Cached bool
}

// GenerateDocumentCommandHandler generates labels, invoices and manifests
// through the carrier's print APIs, caching URLs on the shipment record.
type GenerateDocumentCommandHandler struct {
	uowFactory OrderUoWFactory
	provider   ports.ShipmentProviderClient
	logger     *slog.Logger
}

// NewGenerateDocumentCommandHandler creates a handler for document generation.
func NewGenerateDocumentCommandHandler(
	uowFactory OrderUoWFactory,
	provider ports.ShipmentProviderClient,
	logger *slog.Logger,
) GenerateDocumentCommandHandler {
	return GenerateDocumentCommandHandler{
		uowFactory: uowFactory,
		provider:   provider,
		logger:     logger.With(slog.String("component", "generate_document")),
	}
}

// Handle processes the document generation command.
func (h *GenerateDocumentCommandHandler) Handle(
	ctx context.Context, cmd GenerateDocumentCommand,
) (GenerateDocumentResult, error) {
	if err := cmd.Validate(); err != nil {
		return GenerateDocumentResult{}, err
	}

	shipment, err := h.loadShipment(ctx, cmd)
	if err != nil {
		return GenerateDocumentResult{}, err
	}

	if url := cachedURL(shipment, cmd.Kind()); url != "" {
		return GenerateDocumentResult{URL: url, Cached: true}, nil
	}

	generated, err := h.generate(ctx, shipment, cmd.Kind())
	if err != nil {
		return GenerateDocumentResult{}, err
	}
	if generated.Failure != nil {
		return GenerateDocumentResult{}, upstreamError("generate "+string(cmd.Kind()), generated.Failure)
	}

	_, err = withOrder(ctx, h.uowFactory, cmd.OrderID(), func(o *order.Order) error {
		switch cmd.Kind() {
		case DocumentInvoice:
			return o.SetInvoiceURL(generated.URL)
		case DocumentManifest:
			return o.SetManifestURL(generated.URL)
		default:
			return o.SetLabelURL(generated.URL)
		}
	})
	if err != nil {
		return GenerateDocumentResult{}, err
	}

	return GenerateDocumentResult{URL: generated.URL}, nil
}

func (h *GenerateDocumentCommandHandler) loadShipment(
	ctx context.Context, cmd GenerateDocumentCommand,
) (*order.Shipment, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	if !aggregate.HasShipment() {
		return nil, order.ErrNoShipment
	}

	return aggregate.Shipment(), nil
}

func (h *GenerateDocumentCommandHandler) generate(
	ctx context.Context, shipment *order.Shipment, kind DocumentKind,
) (ports.DocumentResult, error) {
	switch kind {
	case DocumentInvoice:
		return h.provider.GenerateInvoice(ctx, shipment.ProviderOrderID())
	case DocumentManifest:
		return h.provider.GenerateManifest(ctx, shipment.ShipmentID())
	default:
		return h.provider.GenerateLabel(ctx, shipment.ShipmentID())
	}
}

func cachedURL(shipment *order.Shipment, kind DocumentKind) string {
	switch kind {
	case DocumentInvoice:
		return shipment.InvoiceURL()
	case DocumentManifest:
		return shipment.ManifestURL()
	default:
		return shipment.LabelURL()
	}
}
