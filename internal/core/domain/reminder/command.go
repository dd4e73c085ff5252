package reminder

import (
	"errors"
	"time"
)

var (
	// ErrParseCommand means the text is not a recognized command and no
	// valid "DD.MM.YYYY HH:MM" date-time pattern was found in it.
	ErrParseCommand = errors.New("invalid command")
	// ErrParseReminderID means a delete command does not carry a well-formed
	// integer reminder ID.
	ErrParseReminderID = errors.New("invalid reminder id")
)

// Command is one of CreateCommand, ListCommand or DeleteCommand.
type Command interface {
	isCommand()
}

type CreateCommand struct {
	FireTime   time.Time
	Message    string
	Recurrence Recurrence
}

type ListCommand struct{}

type DeleteCommand struct {
	ReminderID ID
}

func (CreateCommand) isCommand() {}
func (ListCommand) isCommand()   {}
func (DeleteCommand) isCommand() {}

// CommandParser extracts a command from free inbound message text.
type CommandParser interface {
	Parse(raw string) (Command, error)
}
