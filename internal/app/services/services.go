package services

import (
	"remindbot/internal/app/deps"
	drl "remindbot/internal/core/domain/rate_limiter"
	"remindbot/internal/core/services"
	createreminder "remindbot/internal/core/services/create_reminder"
	deletereminder "remindbot/internal/core/services/delete_reminder"
	handlecommand "remindbot/internal/core/services/handle_command"
	listreminders "remindbot/internal/core/services/list_reminders"
	ratelimiting "remindbot/internal/core/services/rate_limiting"
	sendreminder "remindbot/internal/core/services/send_reminder"
	sweepreminders "remindbot/internal/core/services/sweep_reminders"
)

type Services struct {
	CreateReminder services.Service[createreminder.Input, createreminder.Result]
	ListReminders  services.Service[listreminders.Input, listreminders.Result]
	DeleteReminder services.Service[deletereminder.Input, deletereminder.Result]

	HandleCommand  services.Service[handlecommand.Input, handlecommand.Result]
	SendReminder   services.Service[sendreminder.Input, sendreminder.Result]
	SweepReminders services.Service[sweepreminders.Input, sweepreminders.Result]
}

func InitServices(deps *deps.Deps) *Services {
	s := &Services{}

	s.CreateReminder = createreminder.New(
		deps.Logger,
		deps.ReminderRepository,
		deps.ReminderScheduler,
		deps.Now,
	)
	s.ListReminders = listreminders.New(
		deps.Logger,
		deps.ReminderRepository,
		deps.Now,
	)
	s.DeleteReminder = deletereminder.New(
		deps.Logger,
		deps.ReminderRepository,
		deps.ReminderScheduler,
	)

	s.HandleCommand = ratelimiting.WithRateLimiting(
		deps.Logger,
		deps.RateLimiter,
		drl.Limit{Interval: drl.Minute, Value: deps.Config.CommandRateLimitPerMinute},
		handlecommand.New(
			deps.Logger,
			deps.CommandParser,
			s.CreateReminder,
			s.ListReminders,
			s.DeleteReminder,
			deps.ReminderNotifier,
		),
	)
	s.SendReminder = sendreminder.New(
		deps.Logger,
		deps.ReminderRepository,
		deps.ReminderScheduler,
		deps.ReminderNotifier,
		deps.Now,
	)
	s.SweepReminders = sweepreminders.New(
		deps.Logger,
		deps.ReminderRepository,
		deps.ReminderScheduler,
		deps.ReminderNotifier,
		deps.Config.SweepPeriod,
		deps.Now,
	)

	return s
}
