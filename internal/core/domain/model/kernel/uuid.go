package kernel

import (
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrUUIDIsNotConstructed indicates that a UUID was not initialized through
// one of the constructor functions. Returned when validating a zero-value UUID.
var ErrUUIDIsNotConstructed = errs.NewValueIsRequiredError(
	"UUID must be created via NewUUID, UUIDFromString, or UUIDFromBytes")

// UUID is a value object wrapping github.com/google/uuid to provide
// domain-specific behavior and immutability. It identifies entities and
// aggregates; the zero value is invalid and must be constructed via
// NewUUID, UUIDFromString, or UUIDFromBytes.
//
// Example:
//
//	id := kernel.NewUUID()
//
//	id, err := kernel.UUIDFromString("550e8400-e29b-41d4-a716-446655440000")
//	if err != nil {
//	    // handle error
//	}
type UUID struct {
	value         uuid.UUID
	isConstructed bool
}

// NewUUID generates a new random (version 4) UUID.
func NewUUID() UUID {
	return UUID{value: uuid.New(), isConstructed: true}
}

// UUIDFromString parses the canonical string form of a UUID.
// Returns a ValueIsInvalidError when the string is not a valid UUID.
func UUIDFromString(s string) (UUID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, errs.NewValueIsInvalidErrorWithCause("uuid", err)
	}

	return UUID{value: parsed, isConstructed: true}, nil
}

// UUIDFromBytes builds a UUID from a 16-byte slice.
func UUIDFromBytes(b []byte) (UUID, error) {
	parsed, err := uuid.FromBytes(b)
	if err != nil {
		return UUID{}, errs.NewValueIsInvalidErrorWithCause("uuid", err)
	}

	return UUID{value: parsed, isConstructed: true}, nil
}

// Validate ensures the UUID was created through a constructor.
func (u UUID) Validate() error {
	if !u.isConstructed {
		return ErrUUIDIsNotConstructed
	}

	return nil
}

// IsEqual compares two UUIDs by value.
func (u UUID) IsEqual(other UUID) bool {
	return u.value == other.value
}

// String returns the canonical string representation.
func (u UUID) String() string {
	return u.value.String()
}

// Bytes returns the underlying uuid.UUID, usable as a 16-byte array.
func (u UUID) Bytes() uuid.UUID {
	return u.value
}
