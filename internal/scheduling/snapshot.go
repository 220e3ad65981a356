package scheduling

import (
	"sort"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/models"
)

type entry struct {
	exam     *models.ExamOccupancy
	interval Interval
}

// snapshot indexes the active, well-formed exams of one analysis run.
type snapshot struct {
	entries []entry
	byID    map[string]*models.ExamOccupancy
	skipped []string
}

func newSnapshot(exams []models.ExamOccupancy) snapshot {
	snap := snapshot{byID: make(map[string]*models.ExamOccupancy, len(exams))}
	for i := range exams {
		exam := &exams[i]
		if !exam.Status.Active() {
			continue
		}
		iv, err := ExamInterval("", exam.Exam)
		if err != nil {
			snap.skipped = append(snap.skipped, exam.ID)
			continue
		}
		snap.entries = append(snap.entries, entry{exam: exam, interval: iv})
		snap.byID[exam.ID] = exam
	}
	sort.SliceStable(snap.entries, func(a, b int) bool {
		ia, ib := snap.entries[a].interval, snap.entries[b].interval
		if !ia.Start.Equal(ib.Start) {
			return ia.Start.Before(ib.Start)
		}
		return ia.ExamID < ib.ExamID
	})
	sort.Strings(snap.skipped)
	return snap
}

func findingExam(exam *models.ExamOccupancy) models.FindingExam {
	return models.FindingExam{
		ExamID:    exam.ID,
		Title:     exam.Title,
		Date:      exam.DateKey(),
		StartTime: exam.StartTime,
		EndTime:   exam.EndTime,
	}
}

func roomLabel(exam *models.ExamOccupancy) string {
	if exam.RoomName != nil && *exam.RoomName != "" {
		return *exam.RoomName
	}
	if exam.RoomID != nil {
		return *exam.RoomID
	}
	return ""
}

func roomName(exam *models.ExamOccupancy) string {
	if exam.RoomName == nil {
		return ""
	}
	return *exam.RoomName
}

// sortFindings orders by date, resource, then the pair of exam ids compared lexicographically.
func sortFindings(findings []models.ScheduleFinding) {
	sort.SliceStable(findings, func(a, b int) bool {
		fa, fb := findings[a], findings[b]
		if fa.Date != fb.Date {
			return fa.Date < fb.Date
		}
		if ra, rb := resourceOf(fa), resourceOf(fb); ra != rb {
			return ra < rb
		}
		la, ha := examKeys(fa)
		lb, hb := examKeys(fb)
		if la != lb {
			return la < lb
		}
		return ha < hb
	})
}

func resourceOf(f models.ScheduleFinding) string {
	if f.ProctorID != "" {
		return f.ProctorID
	}
	return f.RoomID
}

func examKeys(f models.ScheduleFinding) (low, high string) {
	for i, e := range f.Exams {
		if i == 0 || e.ExamID < low {
			low = e.ExamID
		}
		if i == 0 || e.ExamID > high {
			high = e.ExamID
		}
	}
	return low, high
}

func nonNil(findings []models.ScheduleFinding) []models.ScheduleFinding {
	if findings == nil {
		return []models.ScheduleFinding{}
	}
	return findings
}
