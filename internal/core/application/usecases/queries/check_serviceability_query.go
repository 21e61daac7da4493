package queries

import (
	"errors"
	"regexp"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrCheckServiceabilityQueryIsNotConstructed = errors.New(
	"CheckServiceabilityQuery must be created via NewCheckServiceabilityQuery constructor",
)

var pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// CheckServiceabilityQuery asks which couriers serve a pickup/delivery lane
// for a given weight and payment mode.
type CheckServiceabilityQuery struct { //nolint:recvcheck //using for validation
	pickupPincode   string
	deliveryPincode string
	weightKg        float64
	cod             bool

	guard guard.ConstructorGuard
}

// NewCheckServiceabilityQuery creates a serviceability query.
// Both pincodes must be 6 digits and the weight positive.
func NewCheckServiceabilityQuery(
	pickupPincode, deliveryPincode string, weightKg float64, cod bool,
) (CheckServiceabilityQuery, error) {
	if !pincodePattern.MatchString(pickupPincode) {
		return CheckServiceabilityQuery{}, errs.NewValueIsInvalidError("pickupPincode")
	}
	if !pincodePattern.MatchString(deliveryPincode) {
		return CheckServiceabilityQuery{}, errs.NewValueIsInvalidError("deliveryPincode")
	}
	if weightKg <= 0 {
		return CheckServiceabilityQuery{}, errs.NewValueIsInvalidError("weightKg")
	}

	return CheckServiceabilityQuery{
		pickupPincode:   pickupPincode,
		deliveryPincode: deliveryPincode,
		weightKg:        weightKg,
		cod:             cod,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q CheckServiceabilityQuery) Validate() error {
	return q.guard.Validate(ErrCheckServiceabilityQueryIsNotConstructed)
}

// PickupPincode returns the origin pincode.
func (q CheckServiceabilityQuery) PickupPincode() string {
	return q.pickupPincode
}

// DeliveryPincode returns the destination pincode.
func (q CheckServiceabilityQuery) DeliveryPincode() string {
	return q.deliveryPincode
}

// WeightKg returns the package weight.
func (q CheckServiceabilityQuery) WeightKg() float64 {
	return q.weightKg
}

// COD reports whether the shipment is cash on delivery.
func (q CheckServiceabilityQuery) COD() bool {
	return q.cod
}

// CourierOption is one courier offered for the lane.
type CourierOption struct {
	CourierName string
	Rate        float64
	ETADays     int
}

// CheckServiceabilityQueryResponse reports the carrier's answer for the lane.
type CheckServiceabilityQueryResponse struct {
	Serviceable bool
	Options     []CourierOption
}
