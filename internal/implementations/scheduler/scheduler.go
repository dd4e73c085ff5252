package scheduler

import (
	"context"
	"errors"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/reminder"
	"sync"
	"time"
)

var ErrSchedulerClosed = errors.New("scheduler is closed")

// FireFunc is called when a job's fire time elapses. It runs on the timer's
// goroutine and must not block for long.
type FireFunc func(id reminder.ID, fireTime time.Time)

type job struct {
	handle   reminder.JobHandle
	fireTime time.Time
	timer    *time.Timer
}

// TimerScheduler keeps at most one pending delivery job per reminder, backed
// by in-process timers. Registration is idempotent on (ID, fire time): the
// same pair is a no-op, a new fire time for a known ID stops the old timer
// and replaces it. Timers do not survive a restart, the periodic sweep
// rebuilds them from the store.
type TimerScheduler struct {
	log  logging.Logger
	now  func() time.Time
	fire FireFunc

	lock   sync.Mutex
	jobs   map[reminder.ID]*job
	closed bool
}

func New(log logging.Logger, now func() time.Time, fire FireFunc) *TimerScheduler {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	if fire == nil {
		panic(e.NewNilArgumentError("fire"))
	}
	return &TimerScheduler{
		log:  log,
		now:  now,
		fire: fire,
		jobs: make(map[reminder.ID]*job),
	}
}

func (s *TimerScheduler) Schedule(
	ctx context.Context,
	input reminder.ScheduleInput,
) (reminder.JobHandle, error) {
	handle := reminder.NewJobHandle(input.ID, input.FireTime)

	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return "", ErrSchedulerClosed
	}

	if existing, ok := s.jobs[input.ID]; ok {
		if existing.handle == handle {
			return handle, nil
		}
		existing.timer.Stop()
		s.log.Info(
			ctx,
			"Superseding delivery job.",
			logging.Entry("reminderID", input.ID),
			logging.Entry("oldFireTime", existing.fireTime),
			logging.Entry("newFireTime", input.FireTime),
		)
	}

	delay := input.FireTime.Sub(s.now())
	if delay < 0 {
		// Late registration, e.g. re-arming after a slow store write:
		// fire right away instead of rejecting.
		delay = 0
	}
	j := &job{handle: handle, fireTime: input.FireTime}
	j.timer = time.AfterFunc(delay, func() {
		s.onFire(input.ID, handle, input.FireTime)
	})
	s.jobs[input.ID] = j

	s.log.Debug(
		ctx,
		"Delivery job registered.",
		logging.Entry("reminderID", input.ID),
		logging.Entry("fireTime", input.FireTime),
		logging.Entry("delay", delay),
	)
	return handle, nil
}

func (s *TimerScheduler) Cancel(ctx context.Context, handle reminder.JobHandle) error {
	id, err := handle.ReminderID()
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	j, ok := s.jobs[id]
	if !ok || j.handle != handle {
		// Already fired or superseded, cancellation is best-effort.
		return nil
	}
	j.timer.Stop()
	delete(s.jobs, id)
	s.log.Info(ctx, "Delivery job canceled.", logging.Entry("reminderID", id))
	return nil
}

func (s *TimerScheduler) onFire(id reminder.ID, handle reminder.JobHandle, fireTime time.Time) {
	s.lock.Lock()
	j, ok := s.jobs[id]
	if !ok || j.handle != handle || s.closed {
		// Canceled or superseded between the timer firing and this call.
		s.lock.Unlock()
		return
	}
	delete(s.jobs, id)
	s.lock.Unlock()

	s.fire(id, fireTime)
}

// Close stops all pending timers. Jobs already firing may still invoke the
// fire callback.
func (s *TimerScheduler) Close() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, j := range s.jobs {
		j.timer.Stop()
		delete(s.jobs, id)
	}
}
