package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewJobHandle(t *testing.T) {
	fireTime := time.Date(2030, 1, 15, 12, 0, 0, 0, time.UTC)
	handle := NewJobHandle(ID(42), fireTime)
	require.Equal(t, JobHandle("42@1894708800"), handle)
}

func TestJobHandleIsStablePerOccurrence(t *testing.T) {
	fireTime := time.Date(2030, 1, 15, 12, 0, 0, 0, time.UTC)
	require.Equal(t, NewJobHandle(ID(1), fireTime), NewJobHandle(ID(1), fireTime))
	require.NotEqual(t, NewJobHandle(ID(1), fireTime), NewJobHandle(ID(2), fireTime))
	require.NotEqual(
		t,
		NewJobHandle(ID(1), fireTime),
		NewJobHandle(ID(1), fireTime.Add(time.Second)),
	)
}

func TestJobHandleReminderID(t *testing.T) {
	cases := []struct {
		id       string
		handle   JobHandle
		expected ID
		err      error
	}{
		{id: "valid", handle: JobHandle("42@1894708800"), expected: ID(42)},
		{id: "no-separator", handle: JobHandle("42"), err: ErrParseJobHandle},
		{id: "not-a-number", handle: JobHandle("abc@123"), err: ErrParseJobHandle},
		{id: "empty", handle: JobHandle(""), err: ErrParseJobHandle},
	}
	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			id, err := testcase.handle.ReminderID()
			require.ErrorIs(t, err, testcase.err)
			require.Equal(t, testcase.expected, id)
		})
	}
}
