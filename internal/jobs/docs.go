// Package jobs provides scheduled background tasks for the fulfillment system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required for order fulfillment.
//
// # Available Jobs
//
// 1. TrackingPollJob - Sweeps all active shipments on a schedule and refreshes
// their tracking state from the carrier. It backs up webhooks: checkpoints the
// carrier never called back about are recovered on the next sweep.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(trackingPollJob)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The poll job takes a six-field cron expression with seconds, configured via
// TRACKING_POLL_SCHEDULE. The default "0 */10 * * * *" runs every ten minutes,
// which keeps well within the carrier's rate limits together with the pacer
// spacing individual calls inside a sweep.
//
// # Error Handling
//
// A failed refresh of one shipment never aborts the sweep; transient carrier
// errors are logged at warn level because the next sweep retries everything.
// Overlapping runs are prevented by skipping ticks while a sweep is in flight.
package jobs
