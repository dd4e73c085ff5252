package reminder

import (
	c "remindbot/internal/core/domain/common"
	e "remindbot/internal/core/domain/errors"
	"time"
)

type ID int64

// Owner is the recipient identity a reminder belongs to,
// e.g. "whatsapp:+14155238886".
type Owner string

type Reminder struct {
	ID         ID
	Owner      Owner
	FireTime   time.Time
	Message    string
	CreatedAt  time.Time
	Recurrence Recurrence
	JobHandle  c.Optional[JobHandle]
}

func (r *Reminder) Validate() error {
	if r.Owner == "" {
		return e.NewInvalidStateError("reminder owner must be set")
	}
	if r.Message == "" {
		return e.NewInvalidStateError("reminder message must not be empty")
	}
	if r.FireTime.IsZero() {
		return e.NewInvalidStateError("reminder fire time must be set")
	}
	if r.Recurrence == RecurrenceUnknown {
		return e.NewInvalidStateError("reminder recurrence must be set")
	}
	return nil
}
