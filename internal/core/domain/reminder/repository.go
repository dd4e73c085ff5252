package reminder

import (
	"context"
	c "remindbot/internal/core/domain/common"
	"time"
)

type CreateInput struct {
	Owner      Owner
	FireTime   time.Time
	Message    string
	CreatedAt  time.Time
	Recurrence Recurrence
}

type ReminderRepository interface {
	Create(ctx context.Context, input CreateInput) (Reminder, error)
	GetByID(ctx context.Context, id ID) (Reminder, error)
	// ListActive returns the owner's reminders with a fire time after now,
	// ordered by fire time ascending.
	ListActive(ctx context.Context, owner Owner, now time.Time) ([]Reminder, error)
	ListByRecurrence(ctx context.Context, recurrence Recurrence) ([]Reminder, error)
	UpdateFireTime(ctx context.Context, id ID, fireTime time.Time) error
	UpdateJobHandle(ctx context.Context, id ID, handle c.Optional[JobHandle]) error
	// Delete removes the reminder only if it belongs to the owner,
	// otherwise ErrReminderDoesNotExist is returned.
	Delete(ctx context.Context, id ID, owner Owner) error
}
