package deletereminder

import (
	"context"
	"errors"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/core/services"
)

type Input struct {
	Owner      reminder.Owner
	ReminderID reminder.ID
}

type Result struct{}

type service struct {
	log       logging.Logger
	reminders reminder.ReminderRepository
	scheduler reminder.Scheduler
}

func New(
	log logging.Logger,
	reminders reminder.ReminderRepository,
	scheduler reminder.Scheduler,
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
	return &service{log: log, reminders: reminders, scheduler: scheduler}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	rem, err := s.reminders.GetByID(ctx, input.ReminderID)
	if err != nil {
		if errors.Is(err, reminder.ErrReminderDoesNotExist) {
			s.log.Info(ctx, "Reminder not found.", logging.Entry("input", input))
		} else {
			logging.Error(ctx, s.log, err, logging.Entry("input", input))
		}
		return result, err
	}
	if rem.Owner != input.Owner {
		s.log.Info(ctx, "Reminder belongs to another owner.", logging.Entry("input", input))
		return result, reminder.ErrReminderDoesNotExist
	}

	// Best-effort: the job may have fired already, the delete must not fail
	// because the cancellation missed.
	if rem.JobHandle.IsPresent {
		if err := s.scheduler.Cancel(ctx, rem.JobHandle.Value); err != nil {
			s.log.Warning(
				ctx,
				"Could not cancel reminder delivery job.",
				logging.Entry("reminderID", rem.ID),
				logging.Entry("jobHandle", rem.JobHandle.Value),
				logging.Entry("err", err),
			)
		}
	}

	if err := s.reminders.Delete(ctx, input.ReminderID, input.Owner); err != nil {
		if errors.Is(err, reminder.ErrReminderDoesNotExist) {
			s.log.Info(ctx, "Reminder already deleted.", logging.Entry("input", input))
		} else {
			logging.Error(ctx, s.log, err, logging.Entry("input", input))
		}
		return result, err
	}

	s.log.Info(ctx, "Reminder deleted.", logging.Entry("reminderID", input.ReminderID))
	return result, nil
}
