package commands_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newApplyHandler(
	repo *MockOrderRepository, notifier *MockNotifier,
) commands.ApplyExternalStatusCommandHandler {
	return commands.NewApplyExternalStatusCommandHandler(
		lenientFactory(lenientUoW(repo)), services.NewStatusMapper(), notifier, discardLogger())
}

func TestApplyExternalStatusCommandHandler_Handle_AdvancesStatus(t *testing.T) {
	ctx := context.Background()
	aggregate := newShippedOrder(t)
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	cmd, err := commands.NewApplyExternalStatusCommand(aggregate.ID(), "IN TRANSIT", at, "Mumbai Hub")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)
	repo.On("Update", mock.Anything, aggregate).Return(nil).Once()

	notifier := new(MockNotifier)
	notifier.On("NotifyStatusChange", mock.Anything, mock.AnythingOfType("ports.StatusNotification")).Once()

	h := newApplyHandler(repo, notifier)
	result, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.True(t, result.Recorded)
	assert.True(t, result.StatusChanged)
	assert.Equal(t, order.Shipped, result.Status)
	assert.Equal(t, order.Shipped, aggregate.Status())
	notifier.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestApplyExternalStatusCommandHandler_Handle_DuplicateSkipsWrite(t *testing.T) {
	ctx := context.Background()
	aggregate := newShippedOrder(t)
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	_, err := aggregate.ApplyTrackingEvent(order.TrackingEvent{
		Status: order.Shipped, RawStatus: "IN TRANSIT", Location: "Mumbai Hub", At: at,
	})
	require.NoError(t, err)

	cmd, err := commands.NewApplyExternalStatusCommand(aggregate.ID(), "IN TRANSIT", at, "Mumbai Hub")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)

	notifier := new(MockNotifier)

	h := newApplyHandler(repo, notifier)
	result, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.False(t, result.Recorded)
	assert.False(t, result.StatusChanged)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "NotifyStatusChange", mock.Anything, mock.Anything)
}

func TestApplyExternalStatusCommandHandler_Handle_StaleEventDoesNotRegress(t *testing.T) {
	ctx := context.Background()
	aggregate := newShippedOrder(t)
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	_, err := aggregate.ApplyTrackingEvent(order.TrackingEvent{
		Status: order.OutForDelivery, RawStatus: "OUT FOR DELIVERY", At: base.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	cmd, err := commands.NewApplyExternalStatusCommand(aggregate.ID(), "IN TRANSIT", base, "Pune Hub")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)
	repo.On("Update", mock.Anything, aggregate).Return(nil).Once()

	notifier := new(MockNotifier)

	h := newApplyHandler(repo, notifier)
	result, err := h.Handle(ctx, cmd)

	// Recorded into history but no regression and no notification.
	require.NoError(t, err)
	assert.True(t, result.Recorded)
	assert.True(t, result.Stale)
	assert.False(t, result.StatusChanged)
	assert.Equal(t, order.OutForDelivery, aggregate.Status())
	notifier.AssertNotCalled(t, "NotifyStatusChange", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestApplyExternalStatusCommandHandler_Handle_UnmappedCodeKeepsStatus(t *testing.T) {
	ctx := context.Background()
	aggregate := newShippedOrder(t)
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	cmd, err := commands.NewApplyExternalStatusCommand(aggregate.ID(), "HELD AT CUSTOMS", at, "")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil)
	repo.On("Update", mock.Anything, aggregate).Return(nil).Once()

	notifier := new(MockNotifier)

	h := newApplyHandler(repo, notifier)
	result, err := h.Handle(ctx, cmd)

	// The raw code lands in history; the status stays where it was.
	require.NoError(t, err)
	assert.True(t, result.Recorded)
	assert.False(t, result.StatusChanged)
	assert.Equal(t, order.Processing, aggregate.Status())

	history := aggregate.Shipment().Tracking().History()
	require.Len(t, history, 1)
	assert.Equal(t, "HELD AT CUSTOMS", history[0].RawStatus)
}

func TestNewApplyExternalStatusCommand_Validation(t *testing.T) {
	aggregate := newTestOrder(t)
	at := time.Now()

	_, err := commands.NewApplyExternalStatusCommand(aggregate.ID(), "", at, "")
	require.Error(t, err)

	_, err = commands.NewApplyExternalStatusCommand(aggregate.ID(), "DELIVERED", time.Time{}, "")
	require.Error(t, err)
}
