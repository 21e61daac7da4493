package commands_test

import (
	"context"
	"errors"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateShipmentCommandHandler_Handle_Success(t *testing.T) {
	ctx := context.Background()
	aggregate := newTestOrder(t)
	cmd, err := commands.NewCreateShipmentCommand(aggregate.ID(), false)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)
	repo.On("Update", mock.Anything, aggregate).Return(nil)

	provider := new(MockProvider)
	provider.On("CreateShipment", mock.Anything, mock.AnythingOfType("ports.CreateShipmentRequest")).
		Return(ports.CreateShipmentResult{ProviderOrderID: "PO-1", ShipmentID: "S100"}, nil).Once()
	provider.On("GenerateAWB", mock.Anything, "S100").
		Return(ports.AWBResult{AWBCode: "AWB1", CourierName: "Delhivery Surface"}, nil).Once()
	provider.On("GenerateLabel", mock.Anything, "S100").
		Return(ports.DocumentResult{URL: "https://cdn/label.pdf"}, nil).Once()

	notifier := new(MockNotifier)
	notifier.On("NotifyStatusChange", mock.Anything, mock.AnythingOfType("ports.StatusNotification")).Once()

	h := commands.NewCreateShipmentCommandHandler(
		lenientFactory(lenientUoW(repo)), provider, notifier, discardLogger())

	result, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.False(t, result.AlreadyExists)
	assert.Equal(t, "S100", result.ShipmentID)
	assert.Equal(t, "AWB1", result.AWBCode)
	assert.Equal(t, "https://cdn/label.pdf", result.LabelURL)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, order.Processing, aggregate.Status())
	provider.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestCreateShipmentCommandHandler_Handle_AlreadyExists(t *testing.T) {
	ctx := context.Background()
	aggregate := newShippedOrder(t)
	cmd, err := commands.NewCreateShipmentCommand(aggregate.ID(), false)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)

	provider := new(MockProvider)
	notifier := new(MockNotifier)

	h := commands.NewCreateShipmentCommandHandler(
		lenientFactory(lenientUoW(repo)), provider, notifier, discardLogger())

	result, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.True(t, result.AlreadyExists)
	assert.Equal(t, "S100", result.ShipmentID)
	assert.Equal(t, "AWB1", result.AWBCode)
	// No carrier call and no notification for the short-circuit.
	provider.AssertNotCalled(t, "CreateShipment", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "NotifyStatusChange", mock.Anything, mock.Anything)
}

func TestCreateShipmentCommandHandler_Handle_ProviderRejects(t *testing.T) {
	ctx := context.Background()
	aggregate := newTestOrder(t)
	cmd, err := commands.NewCreateShipmentCommand(aggregate.ID(), false)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)

	provider := new(MockProvider)
	provider.On("CreateShipment", mock.Anything, mock.AnythingOfType("ports.CreateShipmentRequest")).
		Return(ports.CreateShipmentResult{
			Failure: &ports.Failure{Kind: ports.FailureRejected, StatusCode: 422, Message: "invalid pincode"},
		}, nil).Once()

	h := commands.NewCreateShipmentCommandHandler(
		lenientFactory(lenientUoW(repo)), provider, new(MockNotifier), discardLogger())

	_, err = h.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrUpstreamRejected)
	assert.Equal(t, order.Placed, aggregate.Status())
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCreateShipmentCommandHandler_Handle_AWBFailureBecomesWarning(t *testing.T) {
	ctx := context.Background()
	aggregate := newTestOrder(t)
	cmd, err := commands.NewCreateShipmentCommand(aggregate.ID(), false)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)
	repo.On("Update", mock.Anything, aggregate).Return(nil)

	provider := new(MockProvider)
	provider.On("CreateShipment", mock.Anything, mock.AnythingOfType("ports.CreateShipmentRequest")).
		Return(ports.CreateShipmentResult{ProviderOrderID: "PO-1", ShipmentID: "S100"}, nil).Once()
	provider.On("GenerateAWB", mock.Anything, "S100").
		Return(ports.AWBResult{
			Failure: &ports.Failure{Kind: ports.FailureTransient, StatusCode: 503, Message: "courier pool busy"},
		}, nil).Once()
	provider.On("GenerateLabel", mock.Anything, "S100").
		Return(ports.DocumentResult{URL: "https://cdn/label.pdf"}, nil).Once()

	notifier := new(MockNotifier)
	notifier.On("NotifyStatusChange", mock.Anything, mock.AnythingOfType("ports.StatusNotification")).Once()

	h := commands.NewCreateShipmentCommandHandler(
		lenientFactory(lenientUoW(repo)), provider, notifier, discardLogger())

	result, err := h.Handle(ctx, cmd)

	// The shipment record survives; the AWB step degrades to a warning.
	require.NoError(t, err)
	assert.Equal(t, "S100", result.ShipmentID)
	assert.Empty(t, result.AWBCode)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "awb assignment failed")
	assert.Equal(t, order.Processing, aggregate.Status())
}

func TestCreateShipmentCommandHandler_Handle_OrderNotFound(t *testing.T) {
	ctx := context.Background()
	aggregate := newTestOrder(t)
	cmd, err := commands.NewCreateShipmentCommand(aggregate.ID(), false)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	repo.On("Get", mock.Anything, aggregate.ID()).
		Return(nil, errs.NewObjectNotFoundError("orderID", aggregate.ID().String()))

	h := commands.NewCreateShipmentCommandHandler(
		lenientFactory(lenientUoW(repo)), new(MockProvider), new(MockNotifier), discardLogger())

	_, err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestCreateShipmentCommandHandler_Handle_ValidationError(t *testing.T) {
	h := commands.NewCreateShipmentCommandHandler(
		new(MockOrderUoWFactory), new(MockProvider), new(MockNotifier), discardLogger())

	_, err := h.Handle(context.Background(), commands.CreateShipmentCommand{})
	require.ErrorIs(t, err, commands.ErrCreateShipmentCommandIsNotConstructed)
}

func TestCreateShipmentCommandHandler_Handle_BeginError(t *testing.T) {
	ctx := context.Background()
	aggregate := newTestOrder(t)
	cmd, err := commands.NewCreateShipmentCommand(aggregate.ID(), false)
	require.NoError(t, err)

	uow := new(MockOrderUoW)
	uow.On("Begin", mock.Anything).Return(errors.New("begin error"))

	h := commands.NewCreateShipmentCommandHandler(
		lenientFactory(uow), new(MockProvider), new(MockNotifier), discardLogger())

	_, err = h.Handle(ctx, cmd)
	require.Error(t, err)
}
