package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrGenerateDocumentCommandIsNotConstructed = errors.New(
	"GenerateDocumentCommand must be created via NewGenerateDocumentCommand constructor",
)

// DocumentKind selects which shipping document to generate.
type DocumentKind string

const (
	DocumentLabel    DocumentKind = "label"
	DocumentInvoice  DocumentKind = "invoice"
	DocumentManifest DocumentKind = "manifest"
)

func (k DocumentKind) validate() error {
	switch k {
	case DocumentLabel, DocumentInvoice, DocumentManifest:
		return nil
	default:
		return errs.NewValueIsInvalidError("documentKind")
	}
}

// GenerateDocumentCommand represents a request for a shipping document URL.
// Documents are generated lazily and cached on the shipment record; a second
// request returns the stored URL without a carrier call.
type GenerateDocumentCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	kind    DocumentKind

	guard guard.ConstructorGuard
}

// NewGenerateDocumentCommand creates a document generation command.
func NewGenerateDocumentCommand(orderID kernel.UUID, kind DocumentKind) (GenerateDocumentCommand, error) {
	if err := errors.Join(orderID.Validate(), kind.validate()); err != nil {
		return GenerateDocumentCommand{}, err
	}

	return GenerateDocumentCommand{
		orderID: orderID,
		kind:    kind,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c GenerateDocumentCommand) Validate() error {
	return c.guard.Validate(ErrGenerateDocumentCommandIsNotConstructed)
}

// OrderID returns the identifier of the order.
func (c GenerateDocumentCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Kind returns which document is requested.
func (c GenerateDocumentCommand) Kind() DocumentKind {
	return c.kind
}
