package reminder

import "errors"

var (
	ErrReminderDoesNotExist = errors.New("reminder does not exist")
	ErrReminderInPast       = errors.New("reminder time is in the past")
	ErrReminderMessageEmpty = errors.New("reminder message is empty")
)
