package commands_test

import (
	"io"
	"log/slog"
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestOrder(t *testing.T) *order.Order {
	t.Helper()
	address, err := kernel.NewAddress("221B Baker Street", "Mumbai", "Maharashtra", "400001")
	require.NoError(t, err)

	o, err := order.NewOrder(
		kernel.NewUUID(), "Asha Verma", "+919900112233", address,
		[]order.Item{{Name: "Ceramic Mug", Quantity: 2, Price: 349}},
		0.8, 0,
	)
	require.NoError(t, err)
	return o
}

func newShippedOrder(t *testing.T) *order.Order {
	t.Helper()
	o := newTestOrder(t)
	require.NoError(t, o.AttachShipment("PO-1", "S100", false))
	require.NoError(t, o.AssignAWB("AWB1", "Delhivery Surface"))
	return o
}

// lenientUoW wires a unit of work whose transaction lifecycle always
// succeeds, for tests that assert on repository and provider interactions.
func lenientUoW(repo *MockOrderRepository) *MockOrderUoW {
	uow := new(MockOrderUoW)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Commit", mock.Anything).Return(nil)
	uow.On("Rollback", mock.Anything).Return(nil)
	uow.On("OrderRepository").Return(repo)
	return uow
}

func lenientFactory(uow *MockOrderUoW) *MockOrderUoWFactory {
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)
	return factory
}
