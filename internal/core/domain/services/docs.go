// Package services contains stateless domain services that operate across
// value objects without belonging to a single aggregate.
//
// Currently this is the StatusMapper, which normalizes the carrier's status
// vocabulary into the internal order status enum.
package services
