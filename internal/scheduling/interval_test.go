package scheduling

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "09:00", want: 9 * time.Hour},
		{in: "09:30:15", want: 9*time.Hour + 30*time.Minute + 15*time.Second},
		{in: " 13:05 ", want: 13*time.Hour + 5*time.Minute},
		{in: "9am", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestNewIntervalRejectsNonPositiveLength(t *testing.T) {
	date := mustDate("2025-06-02")

	_, err := NewInterval("R1", "E1", date, "11:00", "11:00")
	assert.True(t, errors.Is(err, ErrInvalidInterval))

	_, err = NewInterval("R1", "E1", date, "12:00", "11:00")
	assert.True(t, errors.Is(err, ErrInvalidInterval))
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	date := mustDate("2025-06-02")
	e1, err := NewInterval("R1", "E1", date, "09:00", "11:00")
	require.NoError(t, err)
	e2, err := NewInterval("R1", "E2", date, "10:30", "12:00")
	require.NoError(t, err)
	e3, err := NewInterval("R1", "E3", date, "11:00", "13:00")
	require.NoError(t, err)

	assert.True(t, e1.Overlaps(e2))
	assert.True(t, e2.Overlaps(e1))
	assert.False(t, e1.Overlaps(e3), "touching endpoints must not overlap")
	assert.False(t, e3.Overlaps(e1))
	assert.False(t, e1.Overlaps(e2.On("R2")), "different resources never overlap")

	nextDay, err := NewInterval("R1", "E4", mustDate("2025-06-03"), "09:00", "11:00")
	require.NoError(t, err)
	assert.False(t, e1.Overlaps(nextDay))
}

func TestOverlappingPairsFindsNonAdjacentOverlaps(t *testing.T) {
	date := mustDate("2025-06-02")
	build := func(id, start, end string) Interval {
		iv, err := NewInterval("R1", id, date, start, end)
		require.NoError(t, err)
		return iv
	}
	intervals := []Interval{
		build("S3", "11:30", "12:00"),
		build("LONG", "09:00", "13:00"),
		build("S1", "09:30", "10:00"),
		build("S2", "10:30", "11:00"),
	}

	pairs := OverlappingPairs(intervals)
	require.Len(t, pairs, 3)
	for _, p := range pairs {
		assert.Equal(t, "LONG", p[0].ExamID)
	}
	assert.Equal(t, "S1", pairs[0][1].ExamID)
	assert.Equal(t, "S2", pairs[1][1].ExamID)
	assert.Equal(t, "S3", pairs[2][1].ExamID)
}

func TestConflictingSkipsSameExam(t *testing.T) {
	date := mustDate("2025-06-02")
	candidate, err := NewInterval("P1", "E6", date, "10:00", "12:00")
	require.NoError(t, err)
	booked, err := NewInterval("P1", "E5", date, "09:00", "11:00")
	require.NoError(t, err)
	self, err := NewInterval("P1", "E6", date, "10:00", "12:00")
	require.NoError(t, err)
	later, err := NewInterval("P1", "E7", date, "12:00", "13:00")
	require.NoError(t, err)

	hits := Conflicting(candidate, []Interval{later, self, booked})
	require.Len(t, hits, 1)
	assert.Equal(t, "E5", hits[0].ExamID)
}
