package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetActiveShipmentsQueryHandler lists shipments worth polling: those with
// an assigned AWB whose order has not reached a terminal status.
type GetActiveShipmentsQueryHandler struct {
	db *gorm.DB
}

// NewGetActiveShipmentsQueryHandler creates a handler for active shipment queries.
func NewGetActiveShipmentsQueryHandler(db *gorm.DB) GetActiveShipmentsQueryHandler {
	return GetActiveShipmentsQueryHandler{db: db}
}

// Handle executes the query. Results are sorted by order ID for stable poll
// order across runs.
func (h GetActiveShipmentsQueryHandler) Handle(
	ctx context.Context,
	query GetActiveShipmentsQuery,
) ([]GetActiveShipmentsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	shipments := make([]GetActiveShipmentsQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			s.awb_code,
			s.courier_name,
			o.status
		FROM orders o
		JOIN shipments s ON s.order_id = o.id
		WHERE s.awb_code <> ''
		  AND o.status NOT IN (?, ?, ?)
		ORDER BY o.id
	`, order.Delivered.String(), order.Cancelled.String(), order.RTO.String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetActiveShipmentsQueryResponse
		var id uuid.UUID
		var status string

		if err = rows.Scan(&id, &resp.AWBCode, &resp.CourierName, &status); err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		resp.OrderID = orderID

		resp.Status, err = order.StatusFromString(status)
		if err != nil {
			return nil, err
		}

		shipments = append(shipments, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return shipments, nil
}
