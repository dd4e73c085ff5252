package sendreminder

import (
	"context"
	"errors"
	c "remindbot/internal/core/domain/common"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/core/services"
	"time"
)

type Input struct {
	ReminderID reminder.ID
	FireTime   time.Time
}

type Result struct {
	Reminder reminder.Reminder
	Sent     bool
}

type service struct {
	log       logging.Logger
	reminders reminder.ReminderRepository
	scheduler reminder.Scheduler
	notifier  reminder.Notifier
	now       func() time.Time
}

func New(
	log logging.Logger,
	reminders reminder.ReminderRepository,
	scheduler reminder.Scheduler,
	notifier reminder.Notifier,
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
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:       log,
		reminders: reminders,
		scheduler: scheduler,
		notifier:  notifier,
		now:       now,
	}
}

// Run delivers a due reminder and, for recurring reminders, advances the fire
// time and registers the next delivery job. Delivery failures are logged and
// never roll back the advancement, a stuck record is worse than one missed
// delivery.
func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	rem, err := s.reminders.GetByID(ctx, input.ReminderID)
	if err != nil {
		if errors.Is(err, reminder.ErrReminderDoesNotExist) {
			// Deleted while the job was pending, the cancellation race
			// was lost by the delivery side.
			s.log.Info(ctx, "Reminder is gone, skip delivery.", logging.Entry("input", input))
			return result, nil
		}
		logging.Error(ctx, s.log, err, logging.Entry("input", input))
		return result, err
	}

	if !rem.FireTime.Equal(input.FireTime) {
		// A stale job for an occurrence that has already been superseded.
		s.log.Info(
			ctx,
			"Fire time does not match the record, skip delivery.",
			logging.Entry("input", input),
			logging.Entry("fireTime", rem.FireTime),
		)
		result.Reminder = rem
		return result, nil
	}

	if err := s.notifier.Send(ctx, rem.Owner, rem.Message); err != nil {
		s.log.Error(
			ctx,
			"Could not deliver reminder.",
			logging.Entry("reminderID", rem.ID),
			logging.Entry("err", err),
		)
	} else {
		result.Sent = true
	}

	if !rem.Recurrence.IsRecurring() {
		rem.JobHandle = c.NewOptional(reminder.JobHandle(""), false)
		if err := s.reminders.UpdateJobHandle(ctx, rem.ID, rem.JobHandle); err != nil {
			logging.Error(ctx, s.log, err, logging.Entry("reminderID", rem.ID))
			return result, err
		}
		s.log.Info(ctx, "Reminder delivered.", logging.Entry("reminderID", rem.ID))
		result.Reminder = rem
		return result, nil
	}

	rem, err = s.rearm(ctx, rem)
	result.Reminder = rem
	return result, err
}

// rearm persists the next fire time before registering the job, so a job is
// never registered against a stale time.
func (s *service) rearm(ctx context.Context, rem reminder.Reminder) (reminder.Reminder, error) {
	next := rem.Recurrence.NextAfter(rem.FireTime, s.now())
	if err := s.reminders.UpdateFireTime(ctx, rem.ID, next); err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("reminderID", rem.ID))
		return rem, err
	}
	rem.FireTime = next

	handle, err := s.scheduler.Schedule(ctx, reminder.ScheduleInput{
		ID:       rem.ID,
		Owner:    rem.Owner,
		FireTime: next,
	})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("reminderID", rem.ID))
		return rem, err
	}
	rem.JobHandle = c.NewOptional(handle, true)
	if err := s.reminders.UpdateJobHandle(ctx, rem.ID, rem.JobHandle); err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("reminderID", rem.ID))
		return rem, err
	}

	s.log.Info(
		ctx,
		"Recurring reminder re-armed.",
		logging.Entry("reminderID", rem.ID),
		logging.Entry("nextFireTime", next),
	)
	return rem, nil
}
