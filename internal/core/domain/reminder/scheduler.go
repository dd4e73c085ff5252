package reminder

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrParseJobHandle = errors.New("invalid job handle")

// JobHandle identifies an outstanding delivery job. The handle is derived
// from the reminder ID and the fire time, so registering a job for the same
// (ID, fire time) pair always yields the same handle and is a no-op for the
// scheduling substrate.
type JobHandle string

func NewJobHandle(id ID, fireTime time.Time) JobHandle {
	return JobHandle(fmt.Sprintf("%d@%d", id, fireTime.Unix()))
}

func (h JobHandle) ReminderID() (ID, error) {
	rawID, _, found := strings.Cut(string(h), "@")
	if !found {
		return 0, ErrParseJobHandle
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return 0, ErrParseJobHandle
	}
	return ID(id), nil
}

type ScheduleInput struct {
	ID       ID
	Owner    Owner
	FireTime time.Time
}

// Scheduler registers delayed delivery jobs for reminders.
type Scheduler interface {
	// Schedule arranges a delivery at input.FireTime and returns the handle
	// of the registered job. Registration is idempotent with respect to the
	// (ID, FireTime) pair; a registration for an ID that already has a job
	// with a different fire time supersedes that job.
	Schedule(ctx context.Context, input ScheduleInput) (JobHandle, error)
	// Cancel stops the job identified by the handle. Cancellation is
	// best-effort: a handle whose job has already fired is not an error.
	Cancel(ctx context.Context, handle JobHandle) error
}
