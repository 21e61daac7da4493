package order

import (
	"time"

	"fulfillment/internal/pkg/errs"
)

// TrackingEvent is a single scan reported by the carrier for a shipment.
// At is the carrier-reported event time, not the time we received it.
type TrackingEvent struct {
	Status    Status
	RawStatus string
	Location  string
	At        time.Time
}

// isDuplicateOf reports whether two events describe the same carrier scan.
func (e TrackingEvent) isDuplicateOf(other TrackingEvent) bool {
	return e.RawStatus == other.RawStatus &&
		e.Location == other.Location &&
		e.At.Equal(other.At)
}

// Tracking holds the carrier-reported state of a shipment: the current
// status and the append-only history of scans, ordered by event time.
type Tracking struct {
	currentStatus Status
	currentRaw    string
	currentAt     time.Time
	history       []TrackingEvent
}

// CurrentStatus returns the internal status of the most recent applied event,
// or Unknown when no event has been applied yet.
func (t Tracking) CurrentStatus() Status {
	return t.currentStatus
}

// CurrentRawStatus returns the carrier's own code for the current status.
func (t Tracking) CurrentRawStatus() string {
	return t.currentRaw
}

// CurrentStatusAt returns the event time of the current status.
func (t Tracking) CurrentStatusAt() time.Time {
	return t.currentAt
}

// History returns a copy of the scan history, ordered by event time.
func (t Tracking) History() []TrackingEvent {
	out := make([]TrackingEvent, len(t.history))
	copy(out, t.history)
	return out
}

// apply records ev in the history and advances the current status when
// allowed. Returns what happened so the aggregate can react:
//
//   - duplicates of an already-recorded scan are dropped entirely
//   - every new event is inserted into the history in event-time order
//   - the current status moves only when ev is not older than the head,
//     EXCEPT terminal events, which always win: a terminal state must never
//     be missed because of scan reordering.
func (t *Tracking) apply(ev TrackingEvent) (recorded, advanced, stale bool) {
	for _, existing := range t.history {
		if ev.isDuplicateOf(existing) {
			return false, false, false
		}
	}

	// Insert keeping event-time order; equal timestamps keep receipt order.
	pos := len(t.history)
	for i, existing := range t.history {
		if ev.At.Before(existing.At) {
			pos = i
			break
		}
	}
	t.history = append(t.history, TrackingEvent{})
	copy(t.history[pos+1:], t.history[pos:])
	t.history[pos] = ev

	stale = !t.currentAt.IsZero() && ev.At.Before(t.currentAt)
	if stale && !ev.Status.IsTerminal() {
		return true, false, true
	}

	t.currentStatus = ev.Status
	t.currentRaw = ev.RawStatus
	t.currentAt = ev.At
	return true, true, stale
}

// Shipment is the carrier-side sub-record of an order, created when a
// shipment is registered with the carrier. shipmentID is the idempotency
// anchor: it is set exactly once per (non-forced) creation, and awbCode can
// only exist once shipmentID does; waybill assignment is a separate,
// failure-tolerant step.
type Shipment struct {
	providerOrderID string
	shipmentID      string
	awbCode         string
	courierName     string

	labelURL    string
	manifestURL string
	invoiceURL  string

	pickupScheduledAt  *time.Time
	pickupCompletedAt  *time.Time
	cancellationReason string

	tracking Tracking
}

func newShipment(providerOrderID, shipmentID string) (*Shipment, error) {
	if shipmentID == "" {
		return nil, errs.NewValueIsRequiredError("shipmentID")
	}
	if providerOrderID == "" {
		return nil, errs.NewValueIsRequiredError("providerOrderID")
	}

	return &Shipment{
		providerOrderID: providerOrderID,
		shipmentID:      shipmentID,
	}, nil
}

// RestoreShipment reconstructs a shipment from persistence. It trusts the
// stored field combination except for the awb-implies-shipment invariant,
// which is re-checked because a violation there corrupts idempotency.
func RestoreShipment(
	providerOrderID, shipmentID, awbCode, courierName string,
	labelURL, manifestURL, invoiceURL string,
	pickupScheduledAt, pickupCompletedAt *time.Time,
	cancellationReason string,
	history []TrackingEvent,
) (*Shipment, error) {
	if shipmentID == "" {
		return nil, errs.NewValueIsRequiredError("shipmentID")
	}
	if awbCode != "" && shipmentID == "" {
		return nil, errs.NewValueIsInvalidError("awbCode without shipmentID")
	}

	s := &Shipment{
		providerOrderID:    providerOrderID,
		shipmentID:         shipmentID,
		awbCode:            awbCode,
		courierName:        courierName,
		labelURL:           labelURL,
		manifestURL:        manifestURL,
		invoiceURL:         invoiceURL,
		pickupScheduledAt:  pickupScheduledAt,
		pickupCompletedAt:  pickupCompletedAt,
		cancellationReason: cancellationReason,
	}
	for _, ev := range history {
		s.tracking.apply(ev)
	}

	return s, nil
}

// ProviderOrderID returns the carrier's order identifier.
func (s *Shipment) ProviderOrderID() string {
	return s.providerOrderID
}

// ShipmentID returns the carrier's shipment identifier.
func (s *Shipment) ShipmentID() string {
	return s.shipmentID
}

// AWBCode returns the waybill number, empty until AWB assignment succeeds.
func (s *Shipment) AWBCode() string {
	return s.awbCode
}

// CourierName returns the courier chosen during AWB assignment.
func (s *Shipment) CourierName() string {
	return s.courierName
}

// LabelURL returns the shipping label document URL, empty until generated.
func (s *Shipment) LabelURL() string {
	return s.labelURL
}

// ManifestURL returns the manifest document URL, empty until generated.
func (s *Shipment) ManifestURL() string {
	return s.manifestURL
}

// InvoiceURL returns the invoice document URL, empty until generated.
func (s *Shipment) InvoiceURL() string {
	return s.invoiceURL
}

// PickupScheduledAt returns when carrier pickup was scheduled, nil if never.
func (s *Shipment) PickupScheduledAt() *time.Time {
	return s.pickupScheduledAt
}

// PickupCompletedAt returns when carrier pickup completed, nil if not yet.
func (s *Shipment) PickupCompletedAt() *time.Time {
	return s.pickupCompletedAt
}

// CancellationReason returns the recorded cancellation reason, if any.
func (s *Shipment) CancellationReason() string {
	return s.cancellationReason
}

// Tracking returns the carrier-reported tracking state.
func (s *Shipment) Tracking() Tracking {
	return s.tracking
}

func (s *Shipment) assignAWB(awbCode, courierName string) error {
	if awbCode == "" {
		return errs.NewValueIsRequiredError("awbCode")
	}

	s.awbCode = awbCode
	s.courierName = courierName
	return nil
}
