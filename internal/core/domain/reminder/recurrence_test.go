package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseRecurrence(t *testing.T) {
	cases := []struct {
		value    string
		expected Recurrence
		err      error
	}{
		{value: "none", expected: RecurrenceNone},
		{value: "daily", expected: RecurrenceDaily},
		{value: "weekly", expected: RecurrenceWeekly},
		{value: "", expected: RecurrenceUnknown, err: ErrParseRecurrence},
		{value: "monthly", expected: RecurrenceUnknown, err: ErrParseRecurrence},
		{value: "Daily", expected: RecurrenceUnknown, err: ErrParseRecurrence},
	}
	for _, testcase := range cases {
		t.Run(testcase.value, func(t *testing.T) {
			parsed, err := ParseRecurrence(testcase.value)
			require.ErrorIs(t, err, testcase.err)
			require.Equal(t, testcase.expected, parsed)
		})
	}
}

func TestIsRecurring(t *testing.T) {
	require.False(t, RecurrenceNone.IsRecurring())
	require.True(t, RecurrenceDaily.IsRecurring())
	require.True(t, RecurrenceWeekly.IsRecurring())
}

func TestNextAfterDaily(t *testing.T) {
	cases := []struct {
		id       string
		prior    time.Time
		now      time.Time
		expected time.Time
	}{
		{
			id:       "time-of-day-still-ahead-today",
			prior:    time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC),
			now:      time.Date(2030, 1, 10, 8, 0, 0, 0, time.UTC),
			expected: time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC),
		},
		{
			id:       "time-of-day-already-passed-today",
			prior:    time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC),
			now:      time.Date(2030, 1, 10, 10, 0, 0, 0, time.UTC),
			expected: time.Date(2030, 1, 11, 9, 0, 0, 0, time.UTC),
		},
		{
			id:       "exactly-at-fire-time-rolls-to-tomorrow",
			prior:    time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC),
			now:      time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC),
			expected: time.Date(2030, 1, 11, 9, 0, 0, 0, time.UTC),
		},
		{
			id:       "just-fired",
			prior:    time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC),
			now:      time.Date(2030, 1, 1, 9, 0, 0, 1, time.UTC),
			expected: time.Date(2030, 1, 2, 9, 0, 0, 0, time.UTC),
		},
		{
			id:       "month-rollover",
			prior:    time.Date(2030, 1, 31, 23, 30, 0, 0, time.UTC),
			now:      time.Date(2030, 1, 31, 23, 45, 0, 0, time.UTC),
			expected: time.Date(2030, 2, 1, 23, 30, 0, 0, time.UTC),
		},
	}
	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			next := RecurrenceDaily.NextAfter(testcase.prior, testcase.now)
			require.Equal(t, testcase.expected, next)
		})
	}
}

func TestNextAfterWeekly(t *testing.T) {
	cases := []struct {
		id       string
		prior    time.Time
		now      time.Time
		expected time.Time
	}{
		{
			id:       "plain-week",
			prior:    time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC),
			now:      time.Date(2030, 1, 1, 9, 0, 30, 0, time.UTC),
			expected: time.Date(2030, 1, 8, 9, 0, 0, 0, time.UTC),
		},
		{
			id:       "year-rollover",
			prior:    time.Date(2030, 12, 30, 18, 15, 0, 0, time.UTC),
			now:      time.Date(2030, 12, 30, 18, 16, 0, 0, time.UTC),
			expected: time.Date(2031, 1, 6, 18, 15, 0, 0, time.UTC),
		},
	}
	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			next := RecurrenceWeekly.NextAfter(testcase.prior, testcase.now)
			require.Equal(t, testcase.expected, next)

			require.Equal(t, testcase.prior.Weekday(), next.Weekday())
		})
	}
}

func TestNextAfterPanicsForNonRecurring(t *testing.T) {
	now := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	require.Panics(t, func() { RecurrenceNone.NextAfter(now, now) })
	require.Panics(t, func() { RecurrenceUnknown.NextAfter(now, now) })
}
