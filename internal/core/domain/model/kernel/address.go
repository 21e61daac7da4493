package kernel

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// ErrAddressIsNotConstructed is returned when an Address was not created
// through the NewAddress factory method.
var ErrAddressIsNotConstructed = errs.NewValueIsRequiredError(
	"Address must be created via NewAddress constructor")

const pincodeLength = 6

// Address is the delivery destination value object. A shipment cannot be
// created with the carrier without a complete address, so the constructor
// validates every field the carrier requires.
//
// Address is immutable; the zero value is invalid.
type Address struct { //nolint:recvcheck //pointer receivers used for construction only
	line1   string
	city    string
	state   string
	pincode string

	guard guard.ConstructorGuard
}

// NewAddress creates a validated Address. Pincode must be a 6-digit postal
// code (the carrier's serviceability API accepts nothing else).
func NewAddress(line1, city, state, pincode string) (Address, error) {
	address := Address{
		guard: guard.NewConstructorGuard(),
	}

	if err := address.setLine1(line1); err != nil {
		return Address{}, err
	}
	if err := address.setCity(city); err != nil {
		return Address{}, err
	}
	if err := address.setState(state); err != nil {
		return Address{}, err
	}
	if err := address.setPincode(pincode); err != nil {
		return Address{}, err
	}

	return address, nil
}

// Validate ensures the Address was created through NewAddress.
func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

// Line1 returns the street line of the address.
func (a Address) Line1() string {
	return a.line1
}

// City returns the city.
func (a Address) City() string {
	return a.city
}

// State returns the state or province.
func (a Address) State() string {
	return a.state
}

// Pincode returns the 6-digit postal code.
func (a Address) Pincode() string {
	return a.pincode
}

// IsEqual compares two addresses field by field.
func (a Address) IsEqual(other Address) bool {
	return a.line1 == other.line1 &&
		a.city == other.city &&
		a.state == other.state &&
		a.pincode == other.pincode
}

func (a *Address) setLine1(line1 string) error {
	if line1 == "" {
		return errs.NewValueIsRequiredError("line1")
	}
	a.line1 = line1
	return nil
}

func (a *Address) setCity(city string) error {
	if city == "" {
		return errs.NewValueIsRequiredError("city")
	}
	a.city = city
	return nil
}

func (a *Address) setState(state string) error {
	if state == "" {
		return errs.NewValueIsRequiredError("state")
	}
	a.state = state
	return nil
}

func (a *Address) setPincode(pincode string) error {
	if pincode == "" {
		return errs.NewValueIsRequiredError("pincode")
	}
	if len(pincode) != pincodeLength {
		return errs.NewValueIsInvalidErrorWithCause("pincode",
			fmt.Errorf("%q is not a %d-digit postal code", pincode, pincodeLength))
	}
	for _, r := range pincode {
		if r < '0' || r > '9' {
			return errs.NewValueIsInvalidErrorWithCause("pincode",
				fmt.Errorf("%q contains a non-digit character", pincode))
		}
	}

	a.pincode = pincode
	return nil
}
