// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"encoding/json"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
type OrderDTO struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerName  string     `gorm:"column:customer_name"`
	CustomerPhone string     `gorm:"column:customer_phone"`
	Address       AddressDTO `gorm:"embedded;embeddedPrefix:address_"`
	Items         []byte     `gorm:"type:jsonb"`
	WeightKg      float64    `gorm:"column:weight_kg"`
	CODAmount     float64    `gorm:"column:cod_amount"`
	Status        string     `gorm:"index"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// AddressDTO represents the embedded delivery address within the order table.
type AddressDTO struct {
	Line1   string
	City    string
	State   string
	Pincode string
}

// ShipmentDTO represents the carrier-side shipment record for an order.
// One row per order; force re-creation replaces the row in place.
type ShipmentDTO struct {
	OrderID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProviderOrderID    string     `gorm:"column:provider_order_id"`
	ShipmentID         string     `gorm:"column:shipment_id"`
	AWBCode            string     `gorm:"column:awb_code;index"`
	CourierName        string     `gorm:"column:courier_name"`
	LabelURL           string     `gorm:"column:label_url"`
	ManifestURL        string     `gorm:"column:manifest_url"`
	InvoiceURL         string     `gorm:"column:invoice_url"`
	PickupScheduledAt  *time.Time `gorm:"column:pickup_scheduled_at"`
	PickupCompletedAt  *time.Time `gorm:"column:pickup_completed_at"`
	CancellationReason string     `gorm:"column:cancellation_reason"`
}

// TableName specifies the database table name for shipment records.
func (ShipmentDTO) TableName() string {
	return "shipments"
}

// TrackingEventDTO represents one row of the append-only tracking history.
type TrackingEventDTO struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	OrderID   uuid.UUID `gorm:"type:uuid;index"`
	Status    string
	RawStatus string `gorm:"column:raw_status"`
	Location  string
	EventTime time.Time `gorm:"column:event_time;index"`
}

// TableName specifies the database table name for tracking events.
func (TrackingEventDTO) TableName() string {
	return "tracking_events"
}

type itemJSON struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(aggregate *order.Order) (OrderDTO, *ShipmentDTO, []TrackingEventDTO, error) {
	items := make([]itemJSON, 0, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		items = append(items, itemJSON{Name: item.Name, Quantity: item.Quantity, Price: item.Price})
	}

	rawItems, err := json.Marshal(items)
	if err != nil {
		return OrderDTO{}, nil, nil, err
	}

	address := aggregate.Address()
	dto := OrderDTO{
		ID:            aggregate.ID().Bytes(),
		CustomerName:  aggregate.CustomerName(),
		CustomerPhone: aggregate.CustomerPhone(),
		Address: AddressDTO{
			Line1:   address.Line1(),
			City:    address.City(),
			State:   address.State(),
			Pincode: address.Pincode(),
		},
		Items:     rawItems,
		WeightKg:  aggregate.WeightKg(),
		CODAmount: aggregate.CODAmount(),
		Status:    aggregate.Status().String(),
	}

	if !aggregate.HasShipment() {
		return dto, nil, nil, nil
	}

	shipment := aggregate.Shipment()
	shipmentDTO := &ShipmentDTO{
		OrderID:            dto.ID,
		ProviderOrderID:    shipment.ProviderOrderID(),
		ShipmentID:         shipment.ShipmentID(),
		AWBCode:            shipment.AWBCode(),
		CourierName:        shipment.CourierName(),
		LabelURL:           shipment.LabelURL(),
		ManifestURL:        shipment.ManifestURL(),
		InvoiceURL:         shipment.InvoiceURL(),
		PickupScheduledAt:  shipment.PickupScheduledAt(),
		PickupCompletedAt:  shipment.PickupCompletedAt(),
		CancellationReason: shipment.CancellationReason(),
	}

	history := shipment.Tracking().History()
	events := make([]TrackingEventDTO, 0, len(history))
	for _, ev := range history {
		events = append(events, TrackingEventDTO{
			OrderID:   dto.ID,
			Status:    ev.Status.String(),
			RawStatus: ev.RawStatus,
			Location:  ev.Location,
			EventTime: ev.At,
		})
	}

	return dto, shipmentDTO, events, nil
}

// toDomain converts database rows back to an order domain aggregate using RestoreOrder.
func toDomain(dto OrderDTO, shipmentDTO *ShipmentDTO, eventDTOs []TrackingEventDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	address, err := kernel.NewAddress(dto.Address.Line1, dto.Address.City, dto.Address.State, dto.Address.Pincode)
	if err != nil {
		return nil, err
	}

	var rawItems []itemJSON
	if len(dto.Items) > 0 {
		if err = json.Unmarshal(dto.Items, &rawItems); err != nil {
			return nil, err
		}
	}

	items := make([]order.Item, 0, len(rawItems))
	for _, item := range rawItems {
		items = append(items, order.Item{Name: item.Name, Quantity: item.Quantity, Price: item.Price})
	}

	status, err := order.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	var shipment *order.Shipment
	if shipmentDTO != nil {
		history := make([]order.TrackingEvent, 0, len(eventDTOs))
		for _, ev := range eventDTOs {
			evStatus, evErr := order.StatusFromString(ev.Status)
			if evErr != nil {
				return nil, evErr
			}
			history = append(history, order.TrackingEvent{
				Status:    evStatus,
				RawStatus: ev.RawStatus,
				Location:  ev.Location,
				At:        ev.EventTime,
			})
		}

		shipment, err = order.RestoreShipment(
			shipmentDTO.ProviderOrderID,
			shipmentDTO.ShipmentID,
			shipmentDTO.AWBCode,
			shipmentDTO.CourierName,
			shipmentDTO.LabelURL,
			shipmentDTO.ManifestURL,
			shipmentDTO.InvoiceURL,
			shipmentDTO.PickupScheduledAt,
			shipmentDTO.PickupCompletedAt,
			shipmentDTO.CancellationReason,
			history,
		)
		if err != nil {
			return nil, err
		}
	}

	return order.RestoreOrder(
		id,
		dto.CustomerName,
		dto.CustomerPhone,
		address,
		items,
		dto.WeightKg,
		dto.CODAmount,
		status,
		shipment,
	)
}
