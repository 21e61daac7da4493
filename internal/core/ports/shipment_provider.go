package ports

import (
	"context"
	"time"
)

// FailureKind classifies an upstream refusal.
type FailureKind string

const (
	// FailureTransient marks failures worth retrying: timeouts, 5xx, rate
	// limiting, expired auth.
	FailureTransient FailureKind = "transient"

	// FailureRejected marks failures a retry cannot fix: validation refusals,
	// unknown shipments, business-rule rejections.
	FailureRejected FailureKind = "rejected"
)

// Failure describes why the carrier declined an operation. A nil Failure on a
// result means the operation succeeded.
//
// Provider methods return failures in the result rather than as Go errors:
// a carrier saying "no" is an expected outcome the caller must branch on,
// not an exceptional condition. The error return is reserved for failures of
// the call itself, such as a cancelled context or an unreachable host.
type Failure struct {
	Kind       FailureKind
	StatusCode int
	Message    string
}

// Retryable reports whether the failure is transient.
func (f *Failure) Retryable() bool {
	return f != nil && f.Kind == FailureTransient
}

// ShipmentItem is one order line as the carrier expects it.
type ShipmentItem struct {
	Name     string
	Quantity int
	Price    float64
}

// CreateShipmentRequest carries everything the carrier needs to register a
// shipment for an order.
type CreateShipmentRequest struct {
	OrderID       string
	OrderDate     time.Time
	CustomerName  string
	CustomerPhone string
	AddressLine1  string
	City          string
	State         string
	Pincode       string
	Items         []ShipmentItem
	WeightKg      float64
	CODAmount     float64
}

// CreateShipmentResult reports the carrier-side identifiers of a newly
// registered shipment.
type CreateShipmentResult struct {
	ProviderOrderID string
	ShipmentID      string
	Failure         *Failure
}

// AWBResult reports the outcome of requesting an air waybill.
type AWBResult struct {
	AWBCode     string
	CourierName string
	Failure     *Failure
}

// DocumentResult reports the URL of a generated document (label, invoice or
// manifest).
type DocumentResult struct {
	URL     string
	Failure *Failure
}

// TrackingScan is one checkpoint from the carrier's tracking feed.
type TrackingScan struct {
	StatusCode string
	Location   string
	At         time.Time
}

// TrackResult reports the carrier's view of a shipment's progress.
type TrackResult struct {
	CurrentStatusCode string
	Scans             []TrackingScan
	Failure           *Failure
}

// CancelResult reports the outcome of a cancellation request.
type CancelResult struct {
	Failure *Failure
}

// PickupResult reports the outcome of scheduling a pickup.
type PickupResult struct {
	ScheduledAt time.Time
	Failure     *Failure
}

// ServiceabilityOption is one courier the carrier offers for a lane.
type ServiceabilityOption struct {
	CourierName   string
	Rate          float64
	EstimatedDays int
}

// ServiceabilityResult reports whether a pickup/delivery pincode pair is
// serviceable and with which couriers.
type ServiceabilityResult struct {
	Serviceable bool
	Options     []ServiceabilityOption
	Failure     *Failure
}

// ShipmentProviderClient is the outbound contract to the shipping carrier.
//
// All methods follow the same convention: the error return covers transport
// and context failures only; carrier-level refusals arrive as a Failure
// inside the result struct.
type ShipmentProviderClient interface {
	// CreateShipment registers an order with the carrier.
	CreateShipment(ctx context.Context, req CreateShipmentRequest) (CreateShipmentResult, error)

	// GenerateAWB requests an air waybill for a registered shipment.
	GenerateAWB(ctx context.Context, shipmentID string) (AWBResult, error)

	// GenerateLabel requests a printable shipping label for a shipment.
	GenerateLabel(ctx context.Context, shipmentID string) (DocumentResult, error)

	// GenerateInvoice requests a printable invoice for a carrier order.
	GenerateInvoice(ctx context.Context, providerOrderID string) (DocumentResult, error)

	// GenerateManifest requests the pickup manifest for a shipment.
	GenerateManifest(ctx context.Context, shipmentID string) (DocumentResult, error)

	// TrackShipment fetches the current tracking feed for an AWB.
	TrackShipment(ctx context.Context, awbCode string) (TrackResult, error)

	// CancelShipment asks the carrier to cancel a registered order.
	CancelShipment(ctx context.Context, providerOrderID string) (CancelResult, error)

	// SchedulePickup books a courier pickup for a shipment.
	SchedulePickup(ctx context.Context, shipmentID string) (PickupResult, error)

	// CheckServiceability asks which couriers serve a pincode pair.
	CheckServiceability(ctx context.Context, pickupPincode, deliveryPincode string, weightKg float64, cod bool) (ServiceabilityResult, error)
}
