package jobs

import (
	"fmt"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	trackingPollJob *TrackingPollJob
}

// NewJobManager creates a job manager owning the tracking poll job.
func NewJobManager(trackingPollJob *TrackingPollJob) *JobManager {
	return &JobManager{
		trackingPollJob: trackingPollJob,
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.trackingPollJob.Start(); err != nil {
		return fmt.Errorf("failed to start tracking poll job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.trackingPollJob.Stop()
}
