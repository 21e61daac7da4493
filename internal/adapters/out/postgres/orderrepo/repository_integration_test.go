package orderrepo_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type noopTracker struct{}

func (noopTracker) TrackAggregate(_ kernel.UUID, _ any) {}

// OrderRepositoryIntegrationTestSuite exercises the order repository against
// a real PostgreSQL database, round-tripping the full aggregate including
// shipment and tracking history.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	repo      *orderrepo.GormOrderRepository
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(&orderrepo.OrderDTO{}, &orderrepo.ShipmentDTO{}, &orderrepo.TrackingEventDTO{})
	suite.Require().NoError(err)

	suite.repo = orderrepo.NewGormOrderRepository(db, noopTracker{})
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE orders, shipments, tracking_events CASCADE").Error
	suite.Require().NoError(err)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) newOrder() *order.Order {
	address, err := kernel.NewAddress("221B Baker Street", "Mumbai", "Maharashtra", "400001")
	suite.Require().NoError(err)

	o, err := order.NewOrder(
		kernel.NewUUID(), "Asha Verma", "+919900112233", address,
		[]order.Item{
			{Name: "Ceramic Mug", Quantity: 2, Price: 349},
			{Name: "Coaster Set", Quantity: 1, Price: 199},
		},
		0.8, 897,
	)
	suite.Require().NoError(err)
	return o
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAddAndGet_RoundTripsBareOrder() {
	ctx := context.Background()
	aggregate := suite.newOrder()

	err := suite.repo.Add(ctx, aggregate)
	suite.Require().NoError(err)

	retrieved, err := suite.repo.Get(ctx, aggregate.ID())
	suite.Require().NoError(err)

	suite.True(retrieved.ID().IsEqual(aggregate.ID()))
	suite.Equal("Asha Verma", retrieved.CustomerName())
	suite.Equal("+919900112233", retrieved.CustomerPhone())
	suite.Equal("400001", retrieved.Address().Pincode())
	suite.Require().Len(retrieved.Items(), 2)
	suite.Equal("Ceramic Mug", retrieved.Items()[0].Name)
	suite.Equal(2, retrieved.Items()[0].Quantity)
	suite.InDelta(0.8, retrieved.WeightKg(), 0.001)
	suite.InDelta(897.0, retrieved.CODAmount(), 0.001)
	suite.Equal(order.Placed, retrieved.Status())
	suite.False(retrieved.HasShipment())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_PersistsShipmentAndHistory() {
	ctx := context.Background()
	aggregate := suite.newOrder()
	suite.Require().NoError(suite.repo.Add(ctx, aggregate))

	suite.Require().NoError(aggregate.AttachShipment("PO-1", "S100", false))
	suite.Require().NoError(aggregate.AssignAWB("AWB1", "Delhivery Surface"))
	suite.Require().NoError(aggregate.SetLabelURL("https://cdn.example.com/label.pdf"))

	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	_, err := aggregate.ApplyTrackingEvent(order.TrackingEvent{
		Status: order.Shipped, RawStatus: "PICKED UP", Location: "Mumbai", At: base,
	})
	suite.Require().NoError(err)
	_, err = aggregate.ApplyTrackingEvent(order.TrackingEvent{
		Status: order.OutForDelivery, RawStatus: "OUT FOR DELIVERY", Location: "Bengaluru", At: base.Add(24 * time.Hour),
	})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.repo.Update(ctx, aggregate))

	retrieved, err := suite.repo.Get(ctx, aggregate.ID())
	suite.Require().NoError(err)

	suite.Equal(order.OutForDelivery, retrieved.Status())
	suite.Require().True(retrieved.HasShipment())
	suite.Equal("PO-1", retrieved.Shipment().ProviderOrderID())
	suite.Equal("S100", retrieved.Shipment().ShipmentID())
	suite.Equal("AWB1", retrieved.Shipment().AWBCode())
	suite.Equal("Delhivery Surface", retrieved.Shipment().CourierName())
	suite.Equal("https://cdn.example.com/label.pdf", retrieved.Shipment().LabelURL())

	history := retrieved.Shipment().Tracking().History()
	suite.Require().Len(history, 2)
	suite.Equal("PICKED UP", history[0].RawStatus)
	suite.Equal("OUT FOR DELIVERY", history[1].RawStatus)
	suite.True(history[0].At.Before(history[1].At))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_RepeatedWritesKeepOneShipmentRow() {
	ctx := context.Background()
	aggregate := suite.newOrder()
	suite.Require().NoError(aggregate.AttachShipment("PO-1", "S100", false))
	suite.Require().NoError(suite.repo.Add(ctx, aggregate))

	suite.Require().NoError(aggregate.AssignAWB("AWB1", "Xpressbees"))
	suite.Require().NoError(suite.repo.Update(ctx, aggregate))
	suite.Require().NoError(suite.repo.Update(ctx, aggregate))

	var count int64
	err := suite.db.Model(&orderrepo.ShipmentDTO{}).
		Where("order_id = ?", aggregate.ID().Bytes()).
		Count(&count).Error
	suite.Require().NoError(err)
	suite.Equal(int64(1), count)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_UnknownOrderIsNotFound() {
	ctx := context.Background()

	_, err := suite.repo.Get(ctx, kernel.NewUUID())

	suite.Require().Error(err)
	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_UnknownOrderFails() {
	ctx := context.Background()
	aggregate := suite.newOrder()

	err := suite.repo.Update(ctx, aggregate)

	suite.Require().Error(err)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetByAWB() {
	ctx := context.Background()
	aggregate := suite.newOrder()
	suite.Require().NoError(aggregate.AttachShipment("PO-1", "S100", false))
	suite.Require().NoError(aggregate.AssignAWB("AWB77", "Delhivery Surface"))
	suite.Require().NoError(suite.repo.Add(ctx, aggregate))

	retrieved, err := suite.repo.GetByAWB(ctx, "AWB77")
	suite.Require().NoError(err)
	suite.True(retrieved.ID().IsEqual(aggregate.ID()))

	_, err = suite.repo.GetByAWB(ctx, "GHOST")
	suite.Require().Error(err)
	suite.ErrorIs(err, errs.ErrObjectNotFound)

	_, err = suite.repo.GetByAWB(ctx, "")
	suite.Require().Error(err)
	suite.ErrorIs(err, errs.ErrValueIsRequired)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetAllWithActiveShipments() {
	ctx := context.Background()

	active := suite.newOrder()
	suite.Require().NoError(active.AttachShipment("PO-1", "S100", false))
	suite.Require().NoError(suite.repo.Add(ctx, active))

	bare := suite.newOrder()
	suite.Require().NoError(suite.repo.Add(ctx, bare))

	cancelled := suite.newOrder()
	suite.Require().NoError(cancelled.AttachShipment("PO-2", "S200", false))
	suite.Require().NoError(cancelled.Cancel("customer request"))
	suite.Require().NoError(suite.repo.Add(ctx, cancelled))

	orders, err := suite.repo.GetAllWithActiveShipments(ctx)
	suite.Require().NoError(err)

	suite.Require().Len(orders, 1)
	suite.True(orders[0].ID().IsEqual(active.ID()))
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
