package reminder

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-module/carbon/v2"
)

var ErrParseRecurrence = errors.New("invalid recurrence")

type Recurrence struct {
	v string
}

func (r Recurrence) String() string {
	return r.v
}

func ParseRecurrence(value string) (Recurrence, error) {
	switch value {
	case "none":
		return RecurrenceNone, nil
	case "daily":
		return RecurrenceDaily, nil
	case "weekly":
		return RecurrenceWeekly, nil
	default:
		return RecurrenceUnknown, ErrParseRecurrence
	}
}

var (
	RecurrenceUnknown = Recurrence{}
	RecurrenceNone    = Recurrence{v: "none"}
	RecurrenceDaily   = Recurrence{v: "daily"}
	RecurrenceWeekly  = Recurrence{v: "weekly"}
)

func (r Recurrence) IsRecurring() bool {
	return r == RecurrenceDaily || r == RecurrenceWeekly
}

// NextAfter computes the next occurrence for a recurring reminder.
//
// Daily reminders keep the time-of-day of the prior occurrence and fire on
// the nearest day for which that time-of-day is still strictly after now.
// Weekly reminders advance by exactly seven days from the prior occurrence,
// keeping both weekday and time-of-day.
func (r Recurrence) NextAfter(prior time.Time, now time.Time) time.Time {
	switch r {
	case RecurrenceDaily:
		next := carbon.Time2Carbon(now).
			SetTimeMicro(prior.Hour(), prior.Minute(), prior.Second(), 0).
			Carbon2Time()
		if !next.After(now) {
			next = carbon.Time2Carbon(next).AddDay().Carbon2Time()
		}
		return next
	case RecurrenceWeekly:
		return carbon.Time2Carbon(prior).AddWeeks(1).Carbon2Time()
	default:
		panic(fmt.Sprintf("unexpected recurrence: %v", r))
	}
}
