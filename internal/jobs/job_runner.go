package jobs

import (
	"shiftboard-backend/internal/config"
	"shiftboard-backend/internal/logger"
	"shiftboard-backend/internal/repository"
	"shiftboard-backend/internal/service"
)

// JobRunner coordinates the scheduled maintenance jobs.
type JobRunner struct {
	slots    repository.SlotRepository
	requests service.ShiftRequestService
	config   *config.Config
}

func NewJobRunner(slots repository.SlotRepository, requests service.ShiftRequestService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		slots:    slots,
		requests: requests,
		config:   cfg,
	}
}

// Config exposes the runner's configuration for the scheduler.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery so one bad run
// cannot take the scheduler down.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllNightlyJobs runs every nightly job once (for manual execution).
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.UnpublishPastSlots()
	jr.ExpireStaleShiftRequests()
}
