package commands_test

import (
	"context"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByAWB(ctx context.Context, awbCode string) (*order.Order, error) {
	args := m.Called(ctx, awbCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllWithActiveShipments(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockProvider struct{ mock.Mock }

func (m *MockProvider) CreateShipment(ctx context.Context, req ports.CreateShipmentRequest) (ports.CreateShipmentResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.CreateShipmentResult), args.Error(1)
}

func (m *MockProvider) GenerateAWB(ctx context.Context, shipmentID string) (ports.AWBResult, error) {
	args := m.Called(ctx, shipmentID)
	return args.Get(0).(ports.AWBResult), args.Error(1)
}

func (m *MockProvider) GenerateLabel(ctx context.Context, shipmentID string) (ports.DocumentResult, error) {
	args := m.Called(ctx, shipmentID)
	return args.Get(0).(ports.DocumentResult), args.Error(1)
}

func (m *MockProvider) GenerateInvoice(ctx context.Context, providerOrderID string) (ports.DocumentResult, error) {
	args := m.Called(ctx, providerOrderID)
	return args.Get(0).(ports.DocumentResult), args.Error(1)
}

func (m *MockProvider) GenerateManifest(ctx context.Context, shipmentID string) (ports.DocumentResult, error) {
	args := m.Called(ctx, shipmentID)
	return args.Get(0).(ports.DocumentResult), args.Error(1)
}

func (m *MockProvider) TrackShipment(ctx context.Context, awbCode string) (ports.TrackResult, error) {
	args := m.Called(ctx, awbCode)
	return args.Get(0).(ports.TrackResult), args.Error(1)
}

func (m *MockProvider) CancelShipment(ctx context.Context, providerOrderID string) (ports.CancelResult, error) {
	args := m.Called(ctx, providerOrderID)
	return args.Get(0).(ports.CancelResult), args.Error(1)
}

func (m *MockProvider) SchedulePickup(ctx context.Context, shipmentID string) (ports.PickupResult, error) {
	args := m.Called(ctx, shipmentID)
	return args.Get(0).(ports.PickupResult), args.Error(1)
}

func (m *MockProvider) CheckServiceability(ctx context.Context, pickupPincode, deliveryPincode string, weightKg float64, cod bool) (ports.ServiceabilityResult, error) {
	args := m.Called(ctx, pickupPincode, deliveryPincode, weightKg, cod)
	return args.Get(0).(ports.ServiceabilityResult), args.Error(1)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) NotifyStatusChange(ctx context.Context, n ports.StatusNotification) {
	m.Called(ctx, n)
}

type MockPacer struct{ mock.Mock }

func (m *MockPacer) Wait(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
