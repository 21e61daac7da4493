// Package kernel contains shared value objects used across the domain model.
//
// The kernel provides:
//   - UUID: identifier value object wrapping github.com/google/uuid
//   - Address: validated delivery destination with a 6-digit pincode
//
// Value objects here are immutable, compared by value, and only
// constructible through their factory functions.
package kernel
