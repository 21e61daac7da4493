package commands_test

import (
	"context"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCancelShipmentCommandHandler_Handle_Success(t *testing.T) {
	ctx := context.Background()
	aggregate := newShippedOrder(t)
	cmd, err := commands.NewCancelShipmentCommand(aggregate.ID(), "customer request")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)
	repo.On("Update", mock.Anything, aggregate).Return(nil)

	provider := new(MockProvider)
	provider.On("CancelShipment", mock.Anything, "PO-1").
		Return(ports.CancelResult{}, nil).Once()

	notifier := new(MockNotifier)
	notifier.On("NotifyStatusChange", mock.Anything, mock.AnythingOfType("ports.StatusNotification")).Once()

	h := commands.NewCancelShipmentCommandHandler(
		lenientFactory(lenientUoW(repo)), provider, notifier, discardLogger())

	result, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Cancelled, result.Status)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, order.Cancelled, aggregate.Status())
	assert.Equal(t, "customer request", aggregate.Shipment().CancellationReason())
	provider.AssertExpectations(t)
}

func TestCancelShipmentCommandHandler_Handle_CarrierRefusalIsFailOpen(t *testing.T) {
	ctx := context.Background()
	aggregate := newShippedOrder(t)
	cmd, err := commands.NewCancelShipmentCommand(aggregate.ID(), "customer request")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)
	repo.On("Update", mock.Anything, aggregate).Return(nil)

	provider := new(MockProvider)
	provider.On("CancelShipment", mock.Anything, "PO-1").
		Return(ports.CancelResult{
			Failure: &ports.Failure{Kind: ports.FailureRejected, StatusCode: 400, Message: "already manifested"},
		}, nil).Once()

	notifier := new(MockNotifier)
	notifier.On("NotifyStatusChange", mock.Anything, mock.AnythingOfType("ports.StatusNotification")).Once()

	h := commands.NewCancelShipmentCommandHandler(
		lenientFactory(lenientUoW(repo)), provider, notifier, discardLogger())

	result, err := h.Handle(ctx, cmd)

	// Local cancellation wins; the refusal is reported as a warning.
	require.NoError(t, err)
	assert.Equal(t, order.Cancelled, aggregate.Status())
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "carrier cancel failed")
}

func TestCancelShipmentCommandHandler_Handle_AlreadyCancelledIsIdempotent(t *testing.T) {
	ctx := context.Background()
	aggregate := newShippedOrder(t)
	require.NoError(t, aggregate.Cancel("first"))

	cmd, err := commands.NewCancelShipmentCommand(aggregate.ID(), "second")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)
	repo.On("Update", mock.Anything, aggregate).Return(nil)

	provider := new(MockProvider)
	notifier := new(MockNotifier)

	h := commands.NewCancelShipmentCommandHandler(
		lenientFactory(lenientUoW(repo)), provider, notifier, discardLogger())

	_, err = h.Handle(ctx, cmd)

	// A replay keeps the original reason and stays silent: the carrier was
	// asked and the customer messaged the first time around.
	require.NoError(t, err)
	assert.Equal(t, "first", aggregate.Shipment().CancellationReason())
	provider.AssertNotCalled(t, "CancelShipment", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "NotifyStatusChange", mock.Anything, mock.Anything)
}

func TestCancelShipmentCommandHandler_Handle_NoShipmentRejected(t *testing.T) {
	ctx := context.Background()
	aggregate := newTestOrder(t)

	cmd, err := commands.NewCancelShipmentCommand(aggregate.ID(), "customer request")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)

	provider := new(MockProvider)
	notifier := new(MockNotifier)

	h := commands.NewCancelShipmentCommandHandler(
		lenientFactory(lenientUoW(repo)), provider, notifier, discardLogger())

	_, err = h.Handle(ctx, cmd)

	require.ErrorIs(t, err, order.ErrNoShipment)
	assert.Equal(t, order.Placed, aggregate.Status())
	provider.AssertNotCalled(t, "CancelShipment", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "NotifyStatusChange", mock.Anything, mock.Anything)
}

func TestCancelShipmentCommandHandler_Handle_DeliveredOrderRejected(t *testing.T) {
	ctx := context.Background()
	aggregate := newShippedOrder(t)
	require.NoError(t, aggregate.ManualStatusUpdate(order.Delivered, false))

	cmd, err := commands.NewCancelShipmentCommand(aggregate.ID(), "too late")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)

	provider := new(MockProvider)

	h := commands.NewCancelShipmentCommandHandler(
		lenientFactory(lenientUoW(repo)), provider, new(MockNotifier), discardLogger())

	_, err = h.Handle(ctx, cmd)

	require.ErrorIs(t, err, order.ErrOrderIsTerminal)
	provider.AssertNotCalled(t, "CancelShipment", mock.Anything, mock.Anything)
}

func TestNewCancelShipmentCommand_RequiresReason(t *testing.T) {
	aggregate := newTestOrder(t)
	_, err := commands.NewCancelShipmentCommand(aggregate.ID(), "")
	require.Error(t, err)
}
