package handlecommand

import (
	"context"
	"errors"
	"fmt"
	c "remindbot/internal/core/domain/common"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/core/services"
	createreminder "remindbot/internal/core/services/create_reminder"
	deletereminder "remindbot/internal/core/services/delete_reminder"
	listreminders "remindbot/internal/core/services/list_reminders"
	"strings"
	"time"
)

const TimeLayout = "02.01.2006 15:04"

const (
	MsgNoReminders     = "You have no reminders"
	MsgListSent        = "Reminder list sent to WhatsApp"
	MsgInvalidID       = "Please provide a valid reminder ID in the format 'delete {id}'"
	MsgNotFound        = "Reminder not found"
	MsgInvalidFormat   = "Invalid date and time format. Please use dd.mm.yyyy HH:MM"
	MsgTimeInPast      = "Reminder time is in the past. Please set a future time"
	MsgEmptyMessage    = "Please provide a reminder message"
	MsgInternalError   = "Something went wrong, please try again later"
	MsgTooManyRequests = "Too many requests, please slow down"
	msgDeletedFmt      = "Reminder %d deleted successfully"
	msgScheduledFmt    = "Reminder scheduled for %s"
	msgListedReminder  = "Reminder %d. %s at %s"
)

type Status struct {
	v string
}

func (s Status) String() string {
	return s.v
}

var (
	StatusSuccess   = Status{v: "Success"}
	StatusScheduled = Status{v: "Reminder scheduled"}
	StatusError     = Status{v: "Error"}
)

type Input struct {
	Sender reminder.Owner
	Body   string
}

func (i Input) GetRateLimitKey() string {
	return fmt.Sprintf("handle-command::%s", i.Sender)
}

type Result struct {
	Status       Status
	Message      string
	ReminderTime c.Optional[time.Time]
}

type service struct {
	log            logging.Logger
	parser         reminder.CommandParser
	createReminder services.Service[createreminder.Input, createreminder.Result]
	listReminders  services.Service[listreminders.Input, listreminders.Result]
	deleteReminder services.Service[deletereminder.Input, deletereminder.Result]
	notifier       reminder.Notifier
}

func New(
	log logging.Logger,
	parser reminder.CommandParser,
	createReminder services.Service[createreminder.Input, createreminder.Result],
	listReminders services.Service[listreminders.Input, listreminders.Result],
	deleteReminder services.Service[deletereminder.Input, deletereminder.Result],
	notifier reminder.Notifier,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if parser == nil {
		panic(e.NewNilArgumentError("parser"))
	}
	if createReminder == nil {
		panic(e.NewNilArgumentError("createReminder"))
	}
	if listReminders == nil {
		panic(e.NewNilArgumentError("listReminders"))
	}
	if deleteReminder == nil {
		panic(e.NewNilArgumentError("deleteReminder"))
	}
	if notifier == nil {
		panic(e.NewNilArgumentError("notifier"))
	}
	return &service{
		log:            log,
		parser:         parser,
		createReminder: createReminder,
		listReminders:  listReminders,
		deleteReminder: deleteReminder,
		notifier:       notifier,
	}
}

// Run parses one inbound command, dispatches it and always answers: the
// user-facing feedback is relayed back through the notifier immediately,
// independently of any scheduled delivery. A command never returns an error
// to the transport, failures are reported as an Error result.
func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	command, err := s.parser.Parse(input.Body)
	if err != nil {
		result = s.parseErrorResult(err)
		s.reply(ctx, input.Sender, result.Message)
		return result, nil
	}

	// The reply is what the sender sees on WhatsApp, the result goes back
	// in the webhook response. They differ only for list: the list itself
	// is the reply and the response carries an acknowledgment.
	var reply string
	switch command := command.(type) {
	case reminder.ListCommand:
		result, reply = s.handleList(ctx, input.Sender)
	case reminder.DeleteCommand:
		result = s.handleDelete(ctx, input.Sender, command)
		reply = result.Message
	case reminder.CreateCommand:
		result = s.handleCreate(ctx, input.Sender, command)
		reply = result.Message
	default:
		logging.Error(ctx, s.log, fmt.Errorf("unexpected command type %T", command))
		result = Result{Status: StatusError, Message: MsgInternalError}
		reply = result.Message
	}

	s.reply(ctx, input.Sender, reply)
	return result, nil
}

func (s *service) handleList(ctx context.Context, sender reminder.Owner) (Result, string) {
	listed, err := s.listReminders.Run(ctx, listreminders.Input{Owner: sender})
	if err != nil {
		return Result{Status: StatusError, Message: MsgInternalError}, MsgInternalError
	}
	if len(listed.Reminders) == 0 {
		return Result{Status: StatusSuccess, Message: MsgNoReminders}, MsgNoReminders
	}
	lines := make([]string, 0, len(listed.Reminders))
	for _, rem := range listed.Reminders {
		lines = append(
			lines,
			fmt.Sprintf(msgListedReminder, rem.ID, rem.Message, rem.FireTime.Format(TimeLayout)),
		)
	}
	return Result{Status: StatusSuccess, Message: MsgListSent}, strings.Join(lines, "\n")
}

func (s *service) handleDelete(
	ctx context.Context,
	sender reminder.Owner,
	command reminder.DeleteCommand,
) Result {
	_, err := s.deleteReminder.Run(ctx, deletereminder.Input{
		Owner:      sender,
		ReminderID: command.ReminderID,
	})
	switch {
	case err == nil:
		return Result{
			Status:  StatusSuccess,
			Message: fmt.Sprintf(msgDeletedFmt, command.ReminderID),
		}
	case errors.Is(err, reminder.ErrReminderDoesNotExist):
		return Result{Status: StatusError, Message: MsgNotFound}
	default:
		return Result{Status: StatusError, Message: MsgInternalError}
	}
}

func (s *service) handleCreate(
	ctx context.Context,
	sender reminder.Owner,
	command reminder.CreateCommand,
) Result {
	created, err := s.createReminder.Run(ctx, createreminder.Input{
		Owner:      sender,
		FireTime:   command.FireTime,
		Message:    command.Message,
		Recurrence: command.Recurrence,
	})
	switch {
	case err == nil:
		return Result{
			Status:       StatusScheduled,
			Message:      fmt.Sprintf(msgScheduledFmt, created.Reminder.FireTime.Format(TimeLayout)),
			ReminderTime: c.NewOptional(created.Reminder.FireTime, true),
		}
	case errors.Is(err, reminder.ErrReminderInPast):
		return Result{Status: StatusError, Message: MsgTimeInPast}
	case errors.Is(err, reminder.ErrReminderMessageEmpty):
		return Result{Status: StatusError, Message: MsgEmptyMessage}
	default:
		return Result{Status: StatusError, Message: MsgInternalError}
	}
}

func (s *service) parseErrorResult(err error) Result {
	switch {
	case errors.Is(err, reminder.ErrParseReminderID):
		return Result{Status: StatusError, Message: MsgInvalidID}
	default:
		return Result{Status: StatusError, Message: MsgInvalidFormat}
	}
}

func (s *service) reply(ctx context.Context, to reminder.Owner, text string) {
	if err := s.notifier.Send(ctx, to, text); err != nil {
		s.log.Warning(
			ctx,
			"Could not send command feedback.",
			logging.Entry("to", to),
			logging.Entry("err", err),
		)
	}
}
