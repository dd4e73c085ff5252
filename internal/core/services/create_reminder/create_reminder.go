package createreminder

import (
	"context"
	c "remindbot/internal/core/domain/common"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/core/services"
	"time"
)

type Input struct {
	Owner      reminder.Owner
	FireTime   time.Time
	Message    string
	Recurrence reminder.Recurrence
}

func (i Input) Validate(now time.Time) error {
	if !i.FireTime.After(now) {
		return reminder.ErrReminderInPast
	}
	if i.Message == "" {
		return reminder.ErrReminderMessageEmpty
	}
	return nil
}

type Result struct {
	Reminder reminder.Reminder
}

type service struct {
	log       logging.Logger
	reminders reminder.ReminderRepository
	scheduler reminder.Scheduler
	now       func() time.Time
}

func New(
	log logging.Logger,
	reminders reminder.ReminderRepository,
	scheduler reminder.Scheduler,
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
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:       log,
		reminders: reminders,
		scheduler: scheduler,
		now:       now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	if err := input.Validate(s.now()); err != nil {
		return result, err
	}

	recurrence := input.Recurrence
	if recurrence == reminder.RecurrenceUnknown {
		recurrence = reminder.RecurrenceNone
	}
	createdReminder, err := s.reminders.Create(ctx, reminder.CreateInput{
		Owner:      input.Owner,
		FireTime:   input.FireTime,
		Message:    input.Message,
		CreatedAt:  s.now(),
		Recurrence: recurrence,
	})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("input", input))
		return result, err
	}

	handle, err := s.scheduler.Schedule(ctx, reminder.ScheduleInput{
		ID:       createdReminder.ID,
		Owner:    createdReminder.Owner,
		FireTime: createdReminder.FireTime,
	})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("reminderID", createdReminder.ID))
		return result, err
	}
	createdReminder.JobHandle = c.NewOptional(handle, true)
	if err := s.reminders.UpdateJobHandle(ctx, createdReminder.ID, createdReminder.JobHandle); err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("reminderID", createdReminder.ID))
		return result, err
	}

	s.log.Info(
		ctx,
		"Reminder successfully created.",
		logging.Entry("reminderID", createdReminder.ID),
		logging.Entry("fireTime", createdReminder.FireTime),
		logging.Entry("recurrence", createdReminder.Recurrence.String()),
	)
	result.Reminder = createdReminder
	return result, nil
}
