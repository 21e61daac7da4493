package services

import (
	"strings"

	"fulfillment/internal/core/domain/model/order"
)

// StatusMapper translates carrier-vocabulary status codes into the internal
// order status. It is pure and total: every input maps to a valid status.
// Unrecognized codes map to the caller's current status unchanged so that
// carrier vocabulary changes degrade gracefully instead of corrupting state.
type StatusMapper struct {
	byCode map[string]order.Status
}

// NewStatusMapper creates a mapper loaded with the carrier's status vocabulary.
func NewStatusMapper() *StatusMapper {
	return &StatusMapper{
		byCode: map[string]order.Status{
			"NEW":              order.Placed,
			"ORDER PLACED":     order.Placed,
			"AWB ASSIGNED":     order.Processing,
			"PICKUP SCHEDULED": order.Processing,
			"PICKUP GENERATED": order.Processing,
			"MANIFESTED":       order.Processing,
			"PICKED UP":        order.Shipped,
			"SHIPPED":          order.Shipped,
			"IN TRANSIT":       order.Shipped,
			"REACHED HUB":      order.Shipped,
			"OUT FOR DELIVERY": order.OutForDelivery,
			"DELIVERED":        order.Delivered,
			"CANCELED":         order.Cancelled,
			"CANCELLED":        order.Cancelled,
			"RTO INITIATED":    order.RTO,
			"RTO IN TRANSIT":   order.RTO,
			"RTO DELIVERED":    order.RTO,
		},
	}
}

// Map returns the internal status for a carrier status code. Matching is
// case-insensitive and whitespace-tolerant. Codes not in the vocabulary
// return current, never an error and never a reset to Placed.
func (m *StatusMapper) Map(carrierCode string, current order.Status) order.Status {
	normalized := strings.ToUpper(strings.TrimSpace(carrierCode))
	if status, ok := m.byCode[normalized]; ok {
		return status
	}

	return current
}

// Knows reports whether the carrier code is part of the known vocabulary.
// The webhook ingestor uses this to log unmapped codes without dropping them.
func (m *StatusMapper) Knows(carrierCode string) bool {
	_, ok := m.byCode[strings.ToUpper(strings.TrimSpace(carrierCode))]
	return ok
}
