package jobs

import (
	"context"
	"time"

	"shiftboard-backend/internal/logger"
)

// startOfToday returns midnight UTC of the current day. Slots and requests
// dated strictly before it are in the past.
func startOfToday() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// UnpublishPastSlots retires published slots whose date has passed so they
// drop out of every staff-facing view.
func (jr *JobRunner) UnpublishPastSlots() {
	jr.runWithRecovery("UnpublishPastSlots", func() {
		ctx := context.Background()
		count, err := jr.slots.UnpublishBefore(ctx, startOfToday())
		if err != nil {
			logger.Error("Failed to unpublish past slots", "error", err)
			return
		}
		logger.Info("Unpublished past slots", "count", count)
	})
}

// ExpireStaleShiftRequests rejects pending backdoor requests whose requested
// date has already passed.
func (jr *JobRunner) ExpireStaleShiftRequests() {
	jr.runWithRecovery("ExpireStaleShiftRequests", func() {
		ctx := context.Background()
		count, err := jr.requests.ExpireStale(ctx, startOfToday())
		if err != nil {
			logger.Error("Failed to expire stale shift requests", "error", err)
			return
		}
		logger.Info("Expired stale shift requests", "count", count)
	})
}
