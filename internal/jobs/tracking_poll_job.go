package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/pkg/errs"

	"github.com/robfig/cron/v3"
)

// waiter spaces carrier calls inside a poll run. Satisfied by pacer.Pacer.
type waiter interface {
	Wait(ctx context.Context) error
}

// activeShipmentsLister is implemented by the active shipments query handler.
type activeShipmentsLister interface {
	Handle(ctx context.Context, q queries.GetActiveShipmentsQuery) ([]queries.GetActiveShipmentsQueryResponse, error)
}

// trackingRefresher is implemented by the refresh tracking command handler.
type trackingRefresher interface {
	Handle(ctx context.Context, cmd commands.RefreshTrackingCommand) (commands.RefreshTrackingResult, error)
}

// TrackingPollJob periodically refreshes tracking for every active shipment.
// It backs up the carrier's webhooks: a missed callback is picked up on the
// next sweep. Runs never overlap; if a sweep outlasts the schedule interval
// the next tick is skipped.
type TrackingPollJob struct {
	activeShipments activeShipmentsLister
	refreshHandler  trackingRefresher
	pacer           waiter
	schedule        string
	cron            *cron.Cron
	running         atomic.Bool
	logger          *slog.Logger
}

// NewTrackingPollJob creates the poll job. The schedule is a six-field cron
// expression with seconds, as in "0 */10 * * * *" for every ten minutes.
func NewTrackingPollJob(
	activeShipments activeShipmentsLister,
	refreshHandler trackingRefresher,
	pacer waiter,
	schedule string,
	logger *slog.Logger,
) *TrackingPollJob {
	return &TrackingPollJob{
		activeShipments: activeShipments,
		refreshHandler:  refreshHandler,
		pacer:           pacer,
		schedule:        schedule,
		cron:            cron.New(cron.WithSeconds()),
		logger:          logger.With("component", "tracking_poll_job"),
	}
}

// Start schedules the poll job.
func (j *TrackingPollJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		if !j.running.CompareAndSwap(false, true) {
			j.logger.Warn("tracking poll still running, skipping tick")
			return
		}
		defer j.running.Store(false)

		j.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("tracking poll job started", "schedule", j.schedule)
	return nil
}

// Stop stops the poll job. A sweep already in flight finishes on its own.
func (j *TrackingPollJob) Stop() {
	j.cron.Stop()
	j.logger.Info("tracking poll job stopped")
}

// RunOnce performs a single sweep over all active shipments.
func (j *TrackingPollJob) RunOnce(ctx context.Context) {
	shipments, err := j.activeShipments.Handle(ctx, queries.NewGetActiveShipmentsQuery())
	if err != nil {
		j.logger.Error("tracking poll failed to list active shipments", "error", err)
		return
	}
	if len(shipments) == 0 {
		return
	}

	refreshed, failed := 0, 0
	for _, shipment := range shipments {
		// Pacing runs before the refresh so consecutive carrier calls are
		// spaced; the pacer's first wait returns immediately.
		if waitErr := j.pacer.Wait(ctx); waitErr != nil {
			j.logger.Warn("tracking poll interrupted", "error", waitErr)
			return
		}

		if err = j.refresh(ctx, shipment); err != nil {
			failed++
			// Transient carrier trouble is routine here; the next sweep
			// retries every shipment anyway.
			if errors.Is(err, errs.ErrUpstreamTransient) {
				j.logger.Warn("tracking refresh deferred",
					"order_id", shipment.OrderID.String(), "error", err)
			} else {
				j.logger.Error("tracking refresh failed",
					"order_id", shipment.OrderID.String(), "error", err)
			}
		} else {
			refreshed++
		}
	}

	j.logger.Info("tracking poll finished",
		"total", len(shipments), "refreshed", refreshed, "failed", failed)
}

func (j *TrackingPollJob) refresh(ctx context.Context, shipment queries.GetActiveShipmentsQueryResponse) error {
	cmd, err := commands.NewRefreshTrackingCommand(shipment.OrderID)
	if err != nil {
		return err
	}

	_, err = j.refreshHandler.Handle(ctx, cmd)
	return err
}
