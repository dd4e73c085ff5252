package reminder

import (
	"context"
	c "remindbot/internal/core/domain/common"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/db"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/suite"
)

const OWNER = reminder.Owner("whatsapp:+14155238886")

var (
	Now      time.Time = time.Date(2030, 1, 15, 12, 0, 0, 0, time.UTC)
	FireTime time.Time = time.Date(2030, 1, 16, 9, 30, 0, 0, time.UTC)
)

type testSuite struct {
	suite.Suite
	pool *pgxpool.Pool
	repo *PgxReminderRepository
}

func (suite *testSuite) SetupSuite() {
	suite.pool = db.CreateTestPool()
	if suite.pool == nil {
		suite.T().Skip("TEST_POSTGRESQL_URL is not set")
	}
	suite.repo = NewPgxReminderRepository(suite.pool)
}

func (suite *testSuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
}

func (suite *testSuite) TearDownTest() {
	db.TruncateTables(suite.pool)
}

func TestPgxReminderRepository(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) createReminder(input reminder.CreateInput) reminder.Reminder {
	s.T().Helper()
	rem, err := s.repo.Create(context.Background(), input)
	s.Require().Nil(err)
	return rem
}

func defaultInput() reminder.CreateInput {
	return reminder.CreateInput{
		Owner:      OWNER,
		FireTime:   FireTime,
		Message:    "call the dentist",
		CreatedAt:  Now,
		Recurrence: reminder.RecurrenceNone,
	}
}

func (s *testSuite) TestCreateAndGet() {
	rem := s.createReminder(defaultInput())

	assert := s.Require()
	assert.Positive(int64(rem.ID))
	assert.Equal(OWNER, rem.Owner)
	assert.Equal("call the dentist", rem.Message)
	assert.Equal(reminder.RecurrenceNone, rem.Recurrence)
	assert.False(rem.JobHandle.IsPresent)

	got, err := s.repo.GetByID(context.Background(), rem.ID)
	assert.Nil(err)
	assert.Equal(rem.ID, got.ID)
	assert.True(got.FireTime.Equal(FireTime))
	assert.Equal(rem.Message, got.Message)
}

func (s *testSuite) TestCreateEmptyMessage() {
	input := defaultInput()
	input.Message = ""

	_, err := s.repo.Create(context.Background(), input)

	s.Require().ErrorIs(err, reminder.ErrReminderMessageEmpty)
}

func (s *testSuite) TestGetByIDDoesNotExist() {
	_, err := s.repo.GetByID(context.Background(), reminder.ID(404))

	s.Require().ErrorIs(err, reminder.ErrReminderDoesNotExist)
}

func (s *testSuite) TestListActive() {
	past := defaultInput()
	past.FireTime = Now.Add(-time.Hour)
	past.Message = "already delivered"
	s.createReminder(past)

	later := defaultInput()
	later.FireTime = Now.Add(48 * time.Hour)
	later.Message = "second"
	second := s.createReminder(later)

	soon := defaultInput()
	soon.FireTime = Now.Add(time.Hour)
	soon.Message = "first"
	first := s.createReminder(soon)

	other := defaultInput()
	other.Owner = reminder.Owner("whatsapp:+70000000000")
	other.FireTime = Now.Add(time.Hour)
	s.createReminder(other)

	listed, err := s.repo.ListActive(context.Background(), OWNER, Now)

	assert := s.Require()
	assert.Nil(err)
	assert.Len(listed, 2)
	assert.Equal(first.ID, listed[0].ID)
	assert.Equal(second.ID, listed[1].ID)
}

func (s *testSuite) TestListByRecurrence() {
	daily := defaultInput()
	daily.Recurrence = reminder.RecurrenceDaily
	dailyRem := s.createReminder(daily)
	s.createReminder(defaultInput())

	listed, err := s.repo.ListByRecurrence(context.Background(), reminder.RecurrenceDaily)

	assert := s.Require()
	assert.Nil(err)
	assert.Len(listed, 1)
	assert.Equal(dailyRem.ID, listed[0].ID)
	assert.Equal(reminder.RecurrenceDaily, listed[0].Recurrence)
}

func (s *testSuite) TestUpdateFireTime() {
	rem := s.createReminder(defaultInput())
	next := FireTime.AddDate(0, 0, 7)

	err := s.repo.UpdateFireTime(context.Background(), rem.ID, next)

	assert := s.Require()
	assert.Nil(err)
	got, err := s.repo.GetByID(context.Background(), rem.ID)
	assert.Nil(err)
	assert.True(got.FireTime.Equal(next))

	err = s.repo.UpdateFireTime(context.Background(), reminder.ID(404), next)
	assert.ErrorIs(err, reminder.ErrReminderDoesNotExist)
}

func (s *testSuite) TestUpdateJobHandle() {
	rem := s.createReminder(defaultInput())
	handle := reminder.NewJobHandle(rem.ID, rem.FireTime)

	err := s.repo.UpdateJobHandle(context.Background(), rem.ID, c.NewOptional(handle, true))

	assert := s.Require()
	assert.Nil(err)
	got, err := s.repo.GetByID(context.Background(), rem.ID)
	assert.Nil(err)
	assert.Equal(c.NewOptional(handle, true), got.JobHandle)

	err = s.repo.UpdateJobHandle(
		context.Background(),
		rem.ID,
		c.NewOptional(reminder.JobHandle(""), false),
	)
	assert.Nil(err)
	got, err = s.repo.GetByID(context.Background(), rem.ID)
	assert.Nil(err)
	assert.False(got.JobHandle.IsPresent)
}

func (s *testSuite) TestDelete() {
	rem := s.createReminder(defaultInput())

	err := s.repo.Delete(context.Background(), rem.ID, OWNER)

	assert := s.Require()
	assert.Nil(err)
	_, err = s.repo.GetByID(context.Background(), rem.ID)
	assert.ErrorIs(err, reminder.ErrReminderDoesNotExist)
}

func (s *testSuite) TestDeleteWrongOwner() {
	rem := s.createReminder(defaultInput())

	err := s.repo.Delete(context.Background(), rem.ID, reminder.Owner("whatsapp:+70000000000"))

	assert := s.Require()
	assert.ErrorIs(err, reminder.ErrReminderDoesNotExist)
	_, err = s.repo.GetByID(context.Background(), rem.ID)
	assert.Nil(err)
}
