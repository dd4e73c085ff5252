package reminder

import (
	"context"
	c "remindbot/internal/core/domain/common"
	"sync"
	"time"
)

// TestReminderRepository is an in-memory ReminderRepository for tests.
type TestReminderRepository struct {
	CreateError          error
	GetError             error
	ListError            error
	UpdateFireTimeError  error
	UpdateJobHandleError error
	DeleteError          error

	Reminders map[ID]Reminder
	nextID    ID
	lock      sync.Mutex
}

func NewTestReminderRepository() *TestReminderRepository {
	return &TestReminderRepository{Reminders: make(map[ID]Reminder)}
}

func (r *TestReminderRepository) Create(ctx context.Context, input CreateInput) (rem Reminder, err error) {
	if r.CreateError != nil {
		return rem, r.CreateError
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	r.nextID++
	rem = Reminder{
		ID:         r.nextID,
		Owner:      input.Owner,
		FireTime:   input.FireTime,
		Message:    input.Message,
		CreatedAt:  input.CreatedAt,
		Recurrence: input.Recurrence,
	}
	r.Reminders[rem.ID] = rem
	return rem, nil
}

func (r *TestReminderRepository) GetByID(ctx context.Context, id ID) (rem Reminder, err error) {
	if r.GetError != nil {
		return rem, r.GetError
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	rem, ok := r.Reminders[id]
	if !ok {
		return rem, ErrReminderDoesNotExist
	}
	return rem, nil
}

func (r *TestReminderRepository) ListActive(
	ctx context.Context,
	owner Owner,
	now time.Time,
) ([]Reminder, error) {
	if r.ListError != nil {
		return nil, r.ListError
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	reminders := make([]Reminder, 0)
	for _, rem := range r.Reminders {
		if rem.Owner == owner && rem.FireTime.After(now) {
			reminders = append(reminders, rem)
		}
	}
	sortByFireTime(reminders)
	return reminders, nil
}

func (r *TestReminderRepository) ListByRecurrence(
	ctx context.Context,
	recurrence Recurrence,
) ([]Reminder, error) {
	if r.ListError != nil {
		return nil, r.ListError
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	reminders := make([]Reminder, 0)
	for _, rem := range r.Reminders {
		if rem.Recurrence == recurrence {
			reminders = append(reminders, rem)
		}
	}
	sortByFireTime(reminders)
	return reminders, nil
}

func (r *TestReminderRepository) UpdateFireTime(ctx context.Context, id ID, fireTime time.Time) error {
	if r.UpdateFireTimeError != nil {
		return r.UpdateFireTimeError
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	rem, ok := r.Reminders[id]
	if !ok {
		return ErrReminderDoesNotExist
	}
	rem.FireTime = fireTime
	r.Reminders[id] = rem
	return nil
}

func (r *TestReminderRepository) UpdateJobHandle(
	ctx context.Context,
	id ID,
	handle c.Optional[JobHandle],
) error {
	if r.UpdateJobHandleError != nil {
		return r.UpdateJobHandleError
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	rem, ok := r.Reminders[id]
	if !ok {
		return ErrReminderDoesNotExist
	}
	rem.JobHandle = handle
	r.Reminders[id] = rem
	return nil
}

func (r *TestReminderRepository) Delete(ctx context.Context, id ID, owner Owner) error {
	if r.DeleteError != nil {
		return r.DeleteError
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	rem, ok := r.Reminders[id]
	if !ok || rem.Owner != owner {
		return ErrReminderDoesNotExist
	}
	delete(r.Reminders, id)
	return nil
}

func sortByFireTime(reminders []Reminder) {
	// Insertion sort, the test data sets are tiny.
	for i := 1; i < len(reminders); i++ {
		for j := i; j > 0 && reminders[j].FireTime.Before(reminders[j-1].FireTime); j-- {
			reminders[j], reminders[j-1] = reminders[j-1], reminders[j]
		}
	}
}

// TestScheduler records registrations and cancellations.
type TestScheduler struct {
	ScheduleError error
	CancelError   error
	Scheduled     []ScheduleInput
	Canceled      []JobHandle
	lock          sync.Mutex
}

func NewTestScheduler() *TestScheduler {
	return &TestScheduler{}
}

func (s *TestScheduler) Schedule(ctx context.Context, input ScheduleInput) (JobHandle, error) {
	if s.ScheduleError != nil {
		return "", s.ScheduleError
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Scheduled = append(s.Scheduled, input)
	return NewJobHandle(input.ID, input.FireTime), nil
}

func (s *TestScheduler) Cancel(ctx context.Context, handle JobHandle) error {
	if s.CancelError != nil {
		return s.CancelError
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Canceled = append(s.Canceled, handle)
	return nil
}

type SentMessage struct {
	To   Owner
	Text string
}

// TestNotifier records sent messages.
type TestNotifier struct {
	SendError error
	Sent      []SentMessage
	lock      sync.Mutex
}

func NewTestNotifier() *TestNotifier {
	return &TestNotifier{}
}

func (n *TestNotifier) Send(ctx context.Context, to Owner, text string) error {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.Sent = append(n.Sent, SentMessage{To: to, Text: text})
	return n.SendError
}
