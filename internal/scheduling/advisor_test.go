package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/models"
)

func TestDetectLargeGaps(t *testing.T) {
	exams := []models.ExamOccupancy{
		newExam("E3", "R1", "2025-06-02", "15:45", "16:30"),
		newExam("E1", "R1", "2025-06-02", "08:00", "09:00"),
		newExam("E2", "R2", "2025-06-02", "09:30", "11:00"),
		newExam("E4", "R1", "2025-06-03", "08:00", "09:00"),
		newExam("E5", "R1", "2025-06-03", "11:00", "12:00"),
	}

	findings := DetectLargeGaps(exams, DefaultPolicy())
	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, models.FindingLargeGap, f.Type)
	assert.Equal(t, models.SeverityInfo, f.Severity)
	assert.Equal(t, []string{"E2", "E3"}, examIDs(f))
	assert.InDelta(t, 4.8, f.GapHours, 0.0001)
	assert.Contains(t, f.Message, "4.8 hour gap")
}

func TestDetectLargeGapsHonoursThreshold(t *testing.T) {
	exams := []models.ExamOccupancy{
		newExam("E1", "R1", "2025-06-02", "08:00", "09:00"),
		newExam("E2", "R1", "2025-06-02", "10:00", "11:00"),
	}
	policy := DefaultPolicy()
	policy.LargeGapThreshold = 30 * time.Minute

	findings := DetectLargeGaps(exams, policy)
	require.Len(t, findings, 1)
	assert.InDelta(t, 1.0, findings[0].GapHours, 0.0001)
}

func TestDetectLowUtilization(t *testing.T) {
	small := newExam("E1", "R1", "2025-06-02", "08:00", "09:00")
	small.MaxStudents = 10
	smaller := newExam("E2", "R1", "2025-06-03", "08:00", "09:00")
	smaller.MaxStudents = 8
	busy := newExam("E3", "R2", "2025-06-02", "08:00", "09:00")
	busy.MaxStudents = 25

	findings := DetectLowUtilization([]models.ExamOccupancy{small, smaller, busy}, DefaultPolicy())
	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, models.FindingLowRoomUtilization, f.Type)
	assert.Equal(t, "R1", f.RoomID)
	assert.Equal(t, []string{"E1", "E2"}, examIDs(f))
	assert.InDelta(t, 0.3, f.Utilization, 0.0001)
	assert.Contains(t, f.Message, "estimate")
}
