package sweepreminders

import (
	"context"
	c "remindbot/internal/core/domain/common"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/core/services"
	"time"

	"github.com/golang-module/carbon/v2"
)

type Input struct{}

type Result struct {
	Registered int
	Fired      int
}

// Delayed jobs live only in process memory, so after a restart this service
// rebuilds them from the durable reminder records. Registration is
// idempotent on
// (reminder ID, fire time), a sweep tick that overlaps a live job is a no-op.
type service struct {
	log       logging.Logger
	reminders reminder.ReminderRepository
	scheduler reminder.Scheduler
	notifier  reminder.Notifier
	period    time.Duration
	now       func() time.Time
}

func New(
	log logging.Logger,
	reminders reminder.ReminderRepository,
	scheduler reminder.Scheduler,
	notifier reminder.Notifier,
	period time.Duration,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if reminders == nil {
		panic(e.NewNilArgumentError("reminders"))
	}
	if scheduler == nil {
		panic(e.NewNilArgumentError("scheduler"))
	}
	if notifier == nil {
		panic(e.NewNilArgumentError("notifier"))
	}
	if period <= 0 {
		panic("sweep period must be positive")
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:       log,
		reminders: reminders,
		scheduler: scheduler,
		notifier:  notifier,
		period:    period,
		now:       now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	singles, err := s.sweepSingleShot(ctx)
	if err != nil {
		return result, err
	}
	daily, err := s.sweepDaily(ctx)
	if err != nil {
		return result, err
	}
	weeklyRegistered, weeklyFired, err := s.sweepWeekly(ctx)
	if err != nil {
		return result, err
	}

	result.Registered = singles + daily + weeklyRegistered
	result.Fired = weeklyFired
	if result.Registered > 0 || result.Fired > 0 {
		s.log.Info(
			ctx,
			"Sweep completed.",
			logging.Entry("registered", result.Registered),
			logging.Entry("fired", result.Fired),
		)
	}
	return result, nil
}

// sweepSingleShot re-registers pending one-off reminders whose fire time is
// still ahead. Delivered ones keep their past fire time and are left alone.
func (s *service) sweepSingleShot(ctx context.Context) (registered int, err error) {
	reminders, err := s.reminders.ListByRecurrence(ctx, reminder.RecurrenceNone)
	if err != nil {
		logging.Error(ctx, s.log, err)
		return 0, err
	}
	now := s.now()
	for _, rem := range reminders {
		if !rem.FireTime.After(now) {
			continue
		}
		if ok := s.register(ctx, rem, rem.FireTime); ok {
			registered++
		}
	}
	return registered, nil
}

func (s *service) sweepDaily(ctx context.Context) (registered int, err error) {
	reminders, err := s.reminders.ListByRecurrence(ctx, reminder.RecurrenceDaily)
	if err != nil {
		logging.Error(ctx, s.log, err)
		return 0, err
	}
	now := s.now()
	for _, rem := range reminders {
		next := rem.FireTime
		if !next.After(now) {
			// Today's occurrence at the stored time-of-day, or tomorrow's
			// if it has already passed.
			next = reminder.RecurrenceDaily.NextAfter(rem.FireTime, now)
			if err := s.reminders.UpdateFireTime(ctx, rem.ID, next); err != nil {
				logging.Error(ctx, s.log, err, logging.Entry("reminderID", rem.ID))
				continue
			}
		}
		if ok := s.register(ctx, rem, next); ok {
			registered++
		}
	}
	return registered, nil
}

// sweepWeekly fires reminders whose weekly occurrence falls within the
// current sweep window directly through the notifier, then arms the next
// week's occurrence. Occurrences missed by more than one sweep period are
// not delivered late, only re-armed.
func (s *service) sweepWeekly(ctx context.Context) (registered int, fired int, err error) {
	reminders, err := s.reminders.ListByRecurrence(ctx, reminder.RecurrenceWeekly)
	if err != nil {
		logging.Error(ctx, s.log, err)
		return 0, 0, err
	}
	now := s.now()
	for _, rem := range reminders {
		if rem.FireTime.After(now) {
			// A live or recoverable future occurrence, make sure a job
			// exists for it.
			if ok := s.register(ctx, rem, rem.FireTime); ok {
				registered++
			}
			continue
		}

		occurrence := weeklyOccurrence(rem.FireTime, now)
		if sinceOccurrence := now.Sub(occurrence); sinceOccurrence >= 0 && sinceOccurrence < s.period {
			if err := s.notifier.Send(ctx, rem.Owner, rem.Message); err != nil {
				s.log.Error(
					ctx,
					"Could not deliver weekly reminder.",
					logging.Entry("reminderID", rem.ID),
					logging.Entry("err", err),
				)
			} else {
				fired++
			}
		}

		next := occurrence
		if !next.After(now) {
			next = next.AddDate(0, 0, 7)
		}
		if err := s.reminders.UpdateFireTime(ctx, rem.ID, next); err != nil {
			logging.Error(ctx, s.log, err, logging.Entry("reminderID", rem.ID))
			continue
		}
		rem.FireTime = next
		if ok := s.register(ctx, rem, next); ok {
			registered++
		}
	}
	return registered, fired, nil
}

func (s *service) register(ctx context.Context, rem reminder.Reminder, fireTime time.Time) bool {
	handle := reminder.NewJobHandle(rem.ID, fireTime)
	if rem.JobHandle.IsPresent && rem.JobHandle.Value == handle {
		// The record already points at this occurrence; Schedule is
		// idempotent anyway, but there is nothing to persist.
		if _, err := s.scheduler.Schedule(ctx, reminder.ScheduleInput{
			ID:       rem.ID,
			Owner:    rem.Owner,
			FireTime: fireTime,
		}); err != nil {
			logging.Error(ctx, s.log, err, logging.Entry("reminderID", rem.ID))
			return false
		}
		return true
	}

	scheduled, err := s.scheduler.Schedule(ctx, reminder.ScheduleInput{
		ID:       rem.ID,
		Owner:    rem.Owner,
		FireTime: fireTime,
	})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("reminderID", rem.ID))
		return false
	}
	if err := s.reminders.UpdateJobHandle(ctx, rem.ID, c.NewOptional(scheduled, true)); err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("reminderID", rem.ID))
		return false
	}
	return true
}

// weeklyOccurrence maps the stored fire time onto the current week: the same
// weekday and time-of-day, in the week containing now.
func weeklyOccurrence(fireTime time.Time, now time.Time) time.Time {
	occurrence := carbon.Time2Carbon(now).
		SetTimeMicro(fireTime.Hour(), fireTime.Minute(), fireTime.Second(), 0).
		Carbon2Time()
	dayDiff := int(fireTime.Weekday()) - int(now.Weekday())
	return occurrence.AddDate(0, 0, dayDiff)
}
