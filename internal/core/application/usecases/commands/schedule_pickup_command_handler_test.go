package commands_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSchedulePickupCommandHandler_Handle_BooksAndPersists(t *testing.T) {
	ctx := context.Background()
	aggregate := newShippedOrder(t)
	cmd, err := commands.NewSchedulePickupCommand(aggregate.ID())
	require.NoError(t, err)

	slot := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

	repo := new(MockOrderRepository)
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)
	repo.On("Update", mock.Anything, aggregate).Return(nil).Once()

	provider := new(MockProvider)
	provider.On("SchedulePickup", mock.Anything, "S100").
		Return(ports.PickupResult{ScheduledAt: slot}, nil).Once()

	h := commands.NewSchedulePickupCommandHandler(
		lenientFactory(lenientUoW(repo)), provider, discardLogger())

	result, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, slot, result.ScheduledAt)
	require.NotNil(t, aggregate.Shipment().PickupScheduledAt())
	assert.Equal(t, slot, *aggregate.Shipment().PickupScheduledAt())
}

func TestSchedulePickupCommandHandler_Handle_AlreadyBookedKeepsSlot(t *testing.T) {
	ctx := context.Background()
	aggregate := newShippedOrder(t)

	slot := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	require.NoError(t, aggregate.MarkPickupScheduled(slot))

	cmd, err := commands.NewSchedulePickupCommand(aggregate.ID())
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)

	provider := new(MockProvider)

	h := commands.NewSchedulePickupCommandHandler(
		lenientFactory(lenientUoW(repo)), provider, discardLogger())

	result, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, slot, result.ScheduledAt)
	provider.AssertNotCalled(t, "SchedulePickup", mock.Anything, mock.Anything)
}

func TestSchedulePickupCommandHandler_Handle_NoShipment(t *testing.T) {
	ctx := context.Background()
	aggregate := newTestOrder(t)
	cmd, err := commands.NewSchedulePickupCommand(aggregate.ID())
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)

	h := commands.NewSchedulePickupCommandHandler(
		lenientFactory(lenientUoW(repo)), new(MockProvider), discardLogger())

	_, err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, order.ErrNoShipment)
}

func TestSchedulePickupCommandHandler_Handle_CarrierRejection(t *testing.T) {
	ctx := context.Background()
	aggregate := newShippedOrder(t)
	cmd, err := commands.NewSchedulePickupCommand(aggregate.ID())
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)

	provider := new(MockProvider)
	provider.On("SchedulePickup", mock.Anything, "S100").
		Return(ports.PickupResult{
			Failure: &ports.Failure{Kind: ports.FailureRejected, StatusCode: 400, Message: "pickup address not serviceable"},
		}, nil).Once()

	h := commands.NewSchedulePickupCommandHandler(
		lenientFactory(lenientUoW(repo)), provider, discardLogger())

	_, err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrUpstreamRejected)
	assert.Nil(t, aggregate.Shipment().PickupScheduledAt())
}
