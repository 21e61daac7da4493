package order

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through NewOrder or RestoreOrder. This ensures all orders are validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

	// ErrShipmentAlreadyExists is returned by AttachShipment when a shipment is
	// already registered and force was not supplied. Callers treat this as an
	// idempotent success, not a failure: the existing identifiers are reused.
	ErrShipmentAlreadyExists = errors.New("shipment already exists for this order")

	// ErrNoShipment is returned by operations that require a carrier shipment
	// to have been created first.
	ErrNoShipment = errors.New("order has no shipment")

	// ErrOrderIsTerminal is returned when a mutation is attempted on an order
	// in a terminal status (Delivered, Cancelled, RTO).
	ErrOrderIsTerminal = errors.New("order is in a terminal status")

	// ErrTransitionNotAllowed is returned by ManualStatusUpdate when the
	// requested transition violates the status state machine and no override
	// was supplied.
	ErrTransitionNotAllowed = errors.New("status transition is not allowed")
)

// Item is a single order line.
type Item struct {
	Name     string
	Quantity int
	Price    float64
}

// ApplyOutcome describes what an external tracking event did to the order.
type ApplyOutcome struct {
	// Recorded is true when the event was appended to the tracking history.
	// False means the event was an exact duplicate of a recorded scan.
	Recorded bool

	// Stale is true when the event carried an older timestamp than the
	// current tracking head. Stale non-terminal events are recorded but do
	// not move any status.
	Stale bool

	// StatusChanged is true when the order-level status moved.
	StatusChanged bool

	// NewStatus is the order status after the event was applied.
	NewStatus Status
}

// Order is the aggregate root for fulfillment. It owns the shipment
// sub-record from the first creation call onward and is the single place
// where status transitions are validated: every mutation path (API command,
// webhook, poll, bulk, manual override) goes through its methods.
//
// Order maintains these invariants:
//   - at most one non-cancelled shipment; re-attachment without force fails
//     with ErrShipmentAlreadyExists
//   - awbCode is only ever set on an existing shipment
//   - tracking history is append-only and ordered by event time; stale
//     events never regress the current status, terminal events always land
//   - the status follows the state machine documented on Status
type Order struct {
	id            kernel.UUID
	customerName  string
	customerPhone string
	address       kernel.Address
	items         []Item
	weightKg      float64
	codAmount     float64

	status   Status
	shipment *Shipment

	isConstructed bool
}

// NewOrder creates a new Order in Placed status. Address and items are
// validated eagerly; a shipment cannot be created later without them.
func NewOrder(
	id kernel.UUID,
	customerName, customerPhone string,
	address kernel.Address,
	items []Item,
	weightKg, codAmount float64,
) (*Order, error) {
	o := &Order{
		status:        Placed,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomer(customerName, customerPhone),
		o.setAddress(address),
		o.setItems(items),
		o.setWeight(weightKg),
		o.setCODAmount(codAmount),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder reconstructs an order from persistence. The status must be a
// valid Status value; the rest is trusted as previously validated.
func RestoreOrder(
	id kernel.UUID,
	customerName, customerPhone string,
	address kernel.Address,
	items []Item,
	weightKg, codAmount float64,
	status Status,
	shipment *Shipment,
) (*Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := status.Validate(); err != nil {
		return nil, err
	}

	return &Order{
		id:            id,
		customerName:  customerName,
		customerPhone: customerPhone,
		address:       address,
		items:         items,
		weightKg:      weightKg,
		codAmount:     codAmount,
		status:        status,
		shipment:      shipment,
		isConstructed: true,
	}, nil
}

// Validate ensures the Order was created through NewOrder or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// CustomerName returns the recipient's name.
func (o *Order) CustomerName() string {
	return o.customerName
}

// CustomerPhone returns the recipient's phone number.
func (o *Order) CustomerPhone() string {
	return o.customerPhone
}

// Address returns the delivery address.
func (o *Order) Address() kernel.Address {
	return o.address
}

// Items returns the order lines.
func (o *Order) Items() []Item {
	out := make([]Item, len(o.items))
	copy(out, o.items)
	return out
}

// WeightKg returns the package weight in kilograms.
func (o *Order) WeightKg() float64 {
	return o.weightKg
}

// CODAmount returns the cash-on-delivery amount; 0 means prepaid.
func (o *Order) CODAmount() float64 {
	return o.codAmount
}

// Status returns the current fulfillment status.
func (o *Order) Status() Status {
	return o.status
}

// Shipment returns the shipment sub-record, nil before the first creation.
func (o *Order) Shipment() *Shipment {
	return o.shipment
}

// HasShipment reports whether a carrier shipment has been registered.
func (o *Order) HasShipment() bool {
	return o.shipment != nil && o.shipment.shipmentID != ""
}

// ValidateReadyForShipment checks the preconditions for creating a carrier
// shipment: a valid delivery address and at least one item. Orders restored
// from legacy rows may fail this even though construction succeeded.
func (o *Order) ValidateReadyForShipment() error {
	if err := o.address.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("deliveryAddress", err)
	}
	if len(o.items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}

	return nil
}

// AttachShipment records the carrier identifiers of a newly created shipment
// and moves the order to Processing. With an existing shipment and
// force=false it fails with ErrShipmentAlreadyExists so callers surface the
// existing identifiers instead of creating a second shipment. force replaces
// the shipment sub-record entirely (the previous one is superseded).
func (o *Order) AttachShipment(providerOrderID, shipmentID string, force bool) error {
	if o.status.IsTerminal() {
		return ErrOrderIsTerminal
	}
	if o.HasShipment() && !force {
		return ErrShipmentAlreadyExists
	}

	shipment, err := newShipment(providerOrderID, shipmentID)
	if err != nil {
		return err
	}

	o.shipment = shipment
	if o.status.CanTransitionTo(Processing) {
		o.status = Processing
	}

	return nil
}

// AssignAWB records the waybill produced for the shipment. The shipment must
// exist: a waybill can never precede shipment creation.
func (o *Order) AssignAWB(awbCode, courierName string) error {
	if !o.HasShipment() {
		return ErrNoShipment
	}

	return o.shipment.assignAWB(awbCode, courierName)
}

// SetLabelURL records the generated label document URL.
func (o *Order) SetLabelURL(url string) error {
	if !o.HasShipment() {
		return ErrNoShipment
	}

	o.shipment.labelURL = url
	return nil
}

// SetManifestURL records the generated manifest document URL.
func (o *Order) SetManifestURL(url string) error {
	if !o.HasShipment() {
		return ErrNoShipment
	}

	o.shipment.manifestURL = url
	return nil
}

// SetInvoiceURL records the generated invoice document URL.
func (o *Order) SetInvoiceURL(url string) error {
	if !o.HasShipment() {
		return ErrNoShipment
	}

	o.shipment.invoiceURL = url
	return nil
}

// MarkPickupScheduled records the pickup slot confirmed by the carrier.
func (o *Order) MarkPickupScheduled(at time.Time) error {
	if !o.HasShipment() {
		return ErrNoShipment
	}

	o.shipment.pickupScheduledAt = &at
	return nil
}

// Cancel moves the order to Cancelled and records the reason. It succeeds
// from any non-terminal status regardless of what the carrier said; the
// local system must never stay stuck waiting on an unreliable upstream.
func (o *Order) Cancel(reason string) error {
	if o.status.IsTerminal() {
		if o.status == Cancelled {
			return nil
		}
		return ErrOrderIsTerminal
	}

	o.status = Cancelled
	if o.shipment != nil {
		o.shipment.cancellationReason = reason
	}

	return nil
}

// ManualStatusUpdate applies a human-operator status change. Without
// override, the transition must be legal per the state machine; with
// override any valid target status is accepted (callers log the bypass).
func (o *Order) ManualStatusUpdate(newStatus Status, override bool) error {
	if err := newStatus.Validate(); err != nil {
		return err
	}

	if !o.status.CanTransitionTo(newStatus) && !override {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, o.status, newStatus)
	}

	o.status = newStatus
	return nil
}

// ApplyTrackingEvent is the single entry point for carrier-reported status
// changes, whether they arrive by webhook or by polling. It is idempotent:
// replaying a recorded scan changes nothing. Stale non-terminal events are
// recorded in the history without moving any status; terminal events are
// always applied regardless of ordering.
func (o *Order) ApplyTrackingEvent(ev TrackingEvent) (ApplyOutcome, error) {
	if !o.HasShipment() {
		return ApplyOutcome{}, ErrNoShipment
	}
	if err := ev.Status.Validate(); err != nil {
		return ApplyOutcome{}, err
	}
	if ev.At.IsZero() {
		return ApplyOutcome{}, errs.NewValueIsRequiredError("eventTime")
	}

	recorded, advanced, stale := o.shipment.tracking.apply(ev)
	outcome := ApplyOutcome{Recorded: recorded, Stale: stale, NewStatus: o.status}
	if !advanced {
		return outcome, nil
	}

	if o.status != ev.Status && o.status.CanTransitionTo(ev.Status) {
		o.status = ev.Status
		outcome.StatusChanged = true
		outcome.NewStatus = ev.Status
	}

	return outcome, nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCustomer(name, phone string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("customerName")
	}
	o.customerName = name
	o.customerPhone = phone
	return nil
}

func (o *Order) setAddress(address kernel.Address) error {
	if err := address.Validate(); err != nil {
		return err
	}
	o.address = address
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	for _, it := range items {
		if it.Name == "" {
			return errs.NewValueIsRequiredError("item name")
		}
		if it.Quantity <= 0 {
			return errs.NewValueIsInvalidErrorWithCause("item quantity",
				fmt.Errorf("%d is not greater than 0", it.Quantity))
		}
	}
	o.items = items
	return nil
}

func (o *Order) setWeight(weightKg float64) error {
	if weightKg <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("weightKg",
			fmt.Errorf("%v is not greater than 0", weightKg))
	}
	o.weightKg = weightKg
	return nil
}

func (o *Order) setCODAmount(codAmount float64) error {
	if codAmount < 0 {
		return errs.NewValueIsInvalidErrorWithCause("codAmount",
			fmt.Errorf("%v is negative", codAmount))
	}
	o.codAmount = codAmount
	return nil
}
