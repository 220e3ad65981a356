package scheduling

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/models"
)

// ErrInvalidInterval reports an exam whose end time does not follow its start time.
var ErrInvalidInterval = errors.New("interval end must be after start")

var clockLayouts = []string{"15:04:05", "15:04"}

// Interval is one resource occupation on a calendar date. Start is inclusive, End exclusive.
type Interval struct {
	ResourceID string
	ExamID     string
	Start      time.Time
	End        time.Time
}

// ParseClock converts "15:04" or "15:04:05" into an offset from midnight.
func ParseClock(value string) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, trimmed)
		if err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("invalid clock value %q", value)
}

// NewInterval anchors a start/end clock pair on date.
func NewInterval(resourceID, examID string, date time.Time, start, end string) (Interval, error) {
	startOffset, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	endOffset, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	if endOffset <= startOffset {
		return Interval{}, fmt.Errorf("exam %s %s-%s: %w", examID, start, end, ErrInvalidInterval)
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return Interval{
		ResourceID: resourceID,
		ExamID:     examID,
		Start:      day.Add(startOffset),
		End:        day.Add(endOffset),
	}, nil
}

// ExamInterval builds the occupation of resourceID by exam.
func ExamInterval(resourceID string, exam models.Exam) (Interval, error) {
	return NewInterval(resourceID, exam.ID, exam.ExamDate, exam.StartTime, exam.EndTime)
}

// Date returns the calendar date of the interval.
func (i Interval) Date() string {
	return i.Start.Format(models.DateLayout)
}

// On returns a copy of the interval bound to another resource.
func (i Interval) On(resourceID string) Interval {
	i.ResourceID = resourceID
	return i
}

// Overlaps is the only overlap test in the engine. Intervals that merely touch do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	if i.ResourceID != other.ResourceID || i.Date() != other.Date() {
		return false
	}
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// OverlappingPairs returns every overlapping pair in intervals. The first element of each pair
// starts no later than the second.
func OverlappingPairs(intervals []Interval) [][2]Interval {
	sorted := append([]Interval(nil), intervals...)
	sortIntervals(sorted)

	var pairs [][2]Interval
	for i := range sorted {
		// sorted by start, so once a later interval starts at or after i ends no further one can overlap i
		for j := i + 1; j < len(sorted) && sorted[j].Start.Before(sorted[i].End); j++ {
			if sorted[i].Overlaps(sorted[j]) {
				pairs = append(pairs, [2]Interval{sorted[i], sorted[j]})
			}
		}
	}
	return pairs
}

// Conflicting returns the occupied intervals that overlap candidate.
func Conflicting(candidate Interval, occupied []Interval) []Interval {
	var hits []Interval
	for _, iv := range occupied {
		if iv.ExamID == candidate.ExamID {
			continue
		}
		if candidate.Overlaps(iv) {
			hits = append(hits, iv)
		}
	}
	sortIntervals(hits)
	return hits
}

func groupKey(iv Interval) string {
	return iv.ResourceID + "|" + iv.Date()
}

func sortIntervals(intervals []Interval) {
	sort.SliceStable(intervals, func(a, b int) bool {
		if !intervals[a].Start.Equal(intervals[b].Start) {
			return intervals[a].Start.Before(intervals[b].Start)
		}
		return intervals[a].ExamID < intervals[b].ExamID
	})
}
