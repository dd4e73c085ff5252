package sweepreminders

import (
	"context"
	c "remindbot/internal/core/domain/common"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/core/services"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const OWNER = reminder.Owner("whatsapp:+14155238886")

var (
	// 2030-01-15 is a Tuesday.
	Now    time.Time     = time.Date(2030, 1, 15, 12, 0, 0, 0, time.UTC)
	Period time.Duration = time.Minute
)

type testSuite struct {
	suite.Suite
	logger    *logging.FakeLogger
	reminders *reminder.TestReminderRepository
	scheduler *reminder.TestScheduler
	notifier  *reminder.TestNotifier
	service   services.Service[Input, Result]
}

func (suite *testSuite) SetupTest() {
	suite.logger = logging.NewFakeLogger()
	suite.reminders = reminder.NewTestReminderRepository()
	suite.scheduler = reminder.NewTestScheduler()
	suite.notifier = reminder.NewTestNotifier()
	suite.service = New(
		suite.logger,
		suite.reminders,
		suite.scheduler,
		suite.notifier,
		Period,
		func() time.Time { return Now },
	)
}

func TestSweepRemindersService(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) createReminder(
	fireTime time.Time,
	recurrence reminder.Recurrence,
	withJob bool,
) reminder.Reminder {
	s.T().Helper()
	rem, err := s.reminders.Create(
		context.Background(),
		reminder.CreateInput{
			Owner:      OWNER,
			FireTime:   fireTime,
			Message:    "test",
			CreatedAt:  Now.Add(-30 * 24 * time.Hour),
			Recurrence: recurrence,
		},
	)
	s.Require().Nil(err)
	if withJob {
		handle := reminder.NewJobHandle(rem.ID, rem.FireTime)
		err = s.reminders.UpdateJobHandle(context.Background(), rem.ID, c.NewOptional(handle, true))
		s.Require().Nil(err)
		rem.JobHandle = c.NewOptional(handle, true)
	}
	return rem
}

func (s *testSuite) TestFutureSingleShotRegistered() {
	rem := s.createReminder(Now.Add(time.Hour), reminder.RecurrenceNone, false)

	result, err := s.service.Run(context.Background(), Input{})

	assert := s.Require()
	assert.Nil(err)
	assert.Equal(1, result.Registered)
	assert.Equal(0, result.Fired)
	assert.Len(s.scheduler.Scheduled, 1)
	assert.Equal(rem.ID, s.scheduler.Scheduled[0].ID)
	assert.Equal(rem.FireTime, s.scheduler.Scheduled[0].FireTime)

	stored, err := s.reminders.GetByID(context.Background(), rem.ID)
	assert.Nil(err)
	assert.True(stored.JobHandle.IsPresent)
	assert.Equal(reminder.NewJobHandle(rem.ID, rem.FireTime), stored.JobHandle.Value)
}

func (s *testSuite) TestDeliveredSingleShotIgnored() {
	s.createReminder(Now.Add(-time.Hour), reminder.RecurrenceNone, false)

	result, err := s.service.Run(context.Background(), Input{})

	assert := s.Require()
	assert.Nil(err)
	assert.Equal(0, result.Registered)
	assert.Empty(s.scheduler.Scheduled)
	assert.Empty(s.notifier.Sent)
}

func (s *testSuite) TestDailyRolledForward() {
	cases := []struct {
		id       string
		fireTime time.Time
		expected time.Time
	}{
		{
			id:       "time-of-day-still-ahead-today",
			fireTime: time.Date(2030, 1, 10, 15, 30, 0, 0, time.UTC),
			expected: time.Date(2030, 1, 15, 15, 30, 0, 0, time.UTC),
		},
		{
			id:       "time-of-day-already-passed-today",
			fireTime: time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC),
			expected: time.Date(2030, 1, 16, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, testcase := range cases {
		s.Run(testcase.id, func() {
			s.SetupTest()
			rem := s.createReminder(testcase.fireTime, reminder.RecurrenceDaily, false)

			result, err := s.service.Run(context.Background(), Input{})

			assert := s.Require()
			assert.Nil(err)
			assert.Equal(1, result.Registered)

			stored, err := s.reminders.GetByID(context.Background(), rem.ID)
			assert.Nil(err)
			assert.Equal(testcase.expected, stored.FireTime)
			assert.Len(s.scheduler.Scheduled, 1)
			assert.Equal(testcase.expected, s.scheduler.Scheduled[0].FireTime)
		})
	}
}

func (s *testSuite) TestFutureDailyKeepsFireTime() {
	rem := s.createReminder(Now.Add(2*time.Hour), reminder.RecurrenceDaily, true)

	result, err := s.service.Run(context.Background(), Input{})

	assert := s.Require()
	assert.Nil(err)
	assert.Equal(1, result.Registered)

	stored, err := s.reminders.GetByID(context.Background(), rem.ID)
	assert.Nil(err)
	assert.Equal(rem.FireTime, stored.FireTime)
}

func (s *testSuite) TestWeeklyMissedWithinWindowFired() {
	// Tuesday 11:59:30, thirty seconds before the sweep at 12:00:00.
	fireTime := time.Date(2030, 1, 8, 11, 59, 30, 0, time.UTC)
	rem := s.createReminder(fireTime, reminder.RecurrenceWeekly, false)

	result, err := s.service.Run(context.Background(), Input{})

	assert := s.Require()
	assert.Nil(err)
	assert.Equal(1, result.Fired)
	assert.Equal(1, result.Registered)
	assert.Equal([]reminder.SentMessage{{To: OWNER, Text: "test"}}, s.notifier.Sent)

	next := time.Date(2030, 1, 22, 11, 59, 30, 0, time.UTC)
	stored, err := s.reminders.GetByID(context.Background(), rem.ID)
	assert.Nil(err)
	assert.Equal(next, stored.FireTime)
	assert.Len(s.scheduler.Scheduled, 1)
	assert.Equal(next, s.scheduler.Scheduled[0].FireTime)
}

func (s *testSuite) TestWeeklyMissedOutsideWindowNotFired() {
	// Monday 09:00, more than a day before the sweep.
	fireTime := time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)
	rem := s.createReminder(fireTime, reminder.RecurrenceWeekly, false)

	result, err := s.service.Run(context.Background(), Input{})

	assert := s.Require()
	assert.Nil(err)
	assert.Equal(0, result.Fired)
	assert.Equal(1, result.Registered)
	assert.Empty(s.notifier.Sent)

	next := time.Date(2030, 1, 21, 9, 0, 0, 0, time.UTC)
	stored, err := s.reminders.GetByID(context.Background(), rem.ID)
	assert.Nil(err)
	assert.Equal(next, stored.FireTime)
}

func (s *testSuite) TestWeeklyOccurrenceLaterThisWeek() {
	// Missed last Friday, the coming occurrence is this Friday.
	fireTime := time.Date(2030, 1, 11, 18, 0, 0, 0, time.UTC)
	rem := s.createReminder(fireTime, reminder.RecurrenceWeekly, false)

	result, err := s.service.Run(context.Background(), Input{})

	assert := s.Require()
	assert.Nil(err)
	assert.Equal(0, result.Fired)
	assert.Equal(1, result.Registered)

	next := time.Date(2030, 1, 18, 18, 0, 0, 0, time.UTC)
	stored, err := s.reminders.GetByID(context.Background(), rem.ID)
	assert.Nil(err)
	assert.Equal(next, stored.FireTime)
}

func (s *testSuite) TestFutureWeeklyRegistered() {
	rem := s.createReminder(Now.Add(48*time.Hour), reminder.RecurrenceWeekly, false)

	result, err := s.service.Run(context.Background(), Input{})

	assert := s.Require()
	assert.Nil(err)
	assert.Equal(1, result.Registered)
	assert.Equal(0, result.Fired)
	assert.Len(s.scheduler.Scheduled, 1)
	assert.Equal(rem.FireTime, s.scheduler.Scheduled[0].FireTime)
}

func (s *testSuite) TestSweepIsIdempotent() {
	s.createReminder(Now.Add(time.Hour), reminder.RecurrenceNone, false)

	_, err := s.service.Run(context.Background(), Input{})
	s.Require().Nil(err)
	result, err := s.service.Run(context.Background(), Input{})

	assert := s.Require()
	assert.Nil(err)
	assert.Equal(1, result.Registered)
	assert.Len(s.scheduler.Scheduled, 2)
	assert.Equal(s.scheduler.Scheduled[0], s.scheduler.Scheduled[1])
}
