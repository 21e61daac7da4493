package orderrepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, shipmentDTO, events, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	if err = r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	if err = r.saveShipment(ctx, dto, shipmentDTO, events); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing order to the database.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, shipmentDTO, events, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ?", dto.ID).
		Select("*").Omit("id").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	if err = r.saveShipment(ctx, dto, shipmentDTO, events); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order by ID, locking the row for the enclosing transaction.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return r.load(ctx, dto)
}

// GetByAWB retrieves the order whose shipment carries the given AWB code.
func (r *GormOrderRepository) GetByAWB(ctx context.Context, awbCode string) (*order.Order, error) {
	if awbCode == "" {
		return nil, errs.NewValueIsRequiredError("awbCode")
	}

	var shipmentDTO ShipmentDTO
	err := r.db.WithContext(ctx).First(&shipmentDTO, "awb_code = ?", awbCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("awb", awbCode)
		}
		return nil, err
	}

	id, err := kernel.UUIDFromBytes(shipmentDTO.OrderID[:])
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, id)
}

// GetAllWithActiveShipments retrieves orders holding a shipment in a
// non-terminal status.
func (r *GormOrderRepository) GetAllWithActiveShipments(ctx context.Context) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Joins("JOIN shipments ON shipments.order_id = orders.id").
		Where("orders.status NOT IN ?", []string{
			order.Delivered.String(), order.Cancelled.String(), order.RTO.String(),
		}).
		Order("orders.id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		aggregate, loadErr := r.load(ctx, dto)
		if loadErr != nil {
			return nil, loadErr
		}
		orders = append(orders, aggregate)
	}

	return orders, nil
}

// load fetches the shipment row and tracking history for an order row and
// assembles the aggregate.
func (r *GormOrderRepository) load(ctx context.Context, dto OrderDTO) (*order.Order, error) {
	var shipmentDTO *ShipmentDTO
	var found ShipmentDTO
	err := r.db.WithContext(ctx).First(&found, "order_id = ?", dto.ID).Error
	switch {
	case err == nil:
		shipmentDTO = &found
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Order has no shipment yet.
	default:
		return nil, err
	}

	var events []TrackingEventDTO
	if shipmentDTO != nil {
		err = r.db.WithContext(ctx).
			Where("order_id = ?", dto.ID).
			Order("event_time, id").
			Find(&events).Error
		if err != nil {
			return nil, err
		}
	}

	return toDomain(dto, shipmentDTO, events)
}

// saveShipment upserts the shipment row and rewrites the tracking history.
// History rows are few per order, so replace-on-write keeps the mapping
// simple and the order stable.
func (r *GormOrderRepository) saveShipment(
	ctx context.Context, dto OrderDTO, shipmentDTO *ShipmentDTO, events []TrackingEventDTO,
) error {
	if shipmentDTO == nil {
		return nil
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			UpdateAll: true,
		}).
		Create(shipmentDTO).Error
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).
		Where("order_id = ?", dto.ID).
		Delete(&TrackingEventDTO{}).Error
	if err != nil {
		return err
	}

	if len(events) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Create(&events).Error
}
