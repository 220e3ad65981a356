package scheduling

import (
	"fmt"
	"math"
	"sort"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/models"
)

// DetectLargeGaps suggests consolidating days where consecutive exams, ordered by start time,
// leave more than LargeGapThreshold idle.
func DetectLargeGaps(exams []models.ExamOccupancy, policy Policy) []models.ScheduleFinding {
	return detectLargeGaps(newSnapshot(exams), policy.normalize())
}

func detectLargeGaps(snap snapshot, policy Policy) []models.ScheduleFinding {
	byDate := make(map[string][]entry)
	var dates []string
	for _, e := range snap.entries {
		date := e.interval.Date()
		if _, ok := byDate[date]; !ok {
			dates = append(dates, date)
		}
		byDate[date] = append(byDate[date], e)
	}

	var findings []models.ScheduleFinding
	for _, date := range dates {
		// snapshot entries are already ordered by start then exam id
		day := byDate[date]
		for i := 0; i+1 < len(day); i++ {
			cur, next := day[i], day[i+1]
			gap := next.interval.Start.Sub(cur.interval.End)
			if gap <= policy.LargeGapThreshold {
				continue
			}
			hours := math.Round(gap.Hours()*10) / 10
			findings = append(findings, models.ScheduleFinding{
				Type:     models.FindingLargeGap,
				Severity: models.SeverityInfo,
				Date:     date,
				Exams:    []models.FindingExam{findingExam(cur.exam), findingExam(next.exam)},
				GapHours: hours,
				Message: fmt.Sprintf("%.1f hour gap on %s between %q (ends %s) and %q (starts %s); consider moving them closer together",
					hours, date, cur.exam.Title, cur.exam.EndTime, next.exam.Title, next.exam.StartTime),
			})
		}
	}
	sortFindings(findings)
	return nonNil(findings)
}

// DetectLowUtilization flags rooms whose exams declare far fewer seats than the room offers.
// The ratio uses each exam's max_students, not live registrations, so it is only an estimate.
func DetectLowUtilization(exams []models.ExamOccupancy, policy Policy) []models.ScheduleFinding {
	return detectLowUtilization(newSnapshot(exams), policy.normalize())
}

func detectLowUtilization(snap snapshot, policy Policy) []models.ScheduleFinding {
	type roomUsage struct {
		name     string
		capacity int
		seats    int
		exams    []*models.ExamOccupancy
	}
	rooms := make(map[string]*roomUsage)
	for _, e := range snap.entries {
		exam := e.exam
		if !exam.HasRoom() || exam.RoomCapacity == nil || *exam.RoomCapacity <= 0 {
			continue
		}
		usage, ok := rooms[*exam.RoomID]
		if !ok {
			usage = &roomUsage{name: roomLabel(exam), capacity: *exam.RoomCapacity}
			rooms[*exam.RoomID] = usage
		}
		usage.seats += exam.MaxStudents
		usage.exams = append(usage.exams, exam)
	}

	ids := make([]string, 0, len(rooms))
	for id := range rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	findings := make([]models.ScheduleFinding, 0)
	for _, id := range ids {
		usage := rooms[id]
		utilization := float64(usage.seats) / float64(usage.capacity*len(usage.exams))
		if utilization >= policy.LowUtilizationThreshold {
			continue
		}
		refs := make([]models.FindingExam, 0, len(usage.exams))
		for _, exam := range usage.exams {
			refs = append(refs, findingExam(exam))
		}
		rounded := math.Round(utilization*100) / 100
		findings = append(findings, models.ScheduleFinding{
			Type:        models.FindingLowRoomUtilization,
			Severity:    models.SeverityInfo,
			RoomID:      id,
			RoomName:    roomName(usage.exams[0]),
			Exams:       refs,
			Capacity:    usage.capacity,
			Utilization: rounded,
			Message: fmt.Sprintf("Room %s is planned at %.0f%% of its %d seats across %d exam(s); consider a smaller room (estimate from declared exam sizes)",
				usage.name, utilization*100, usage.capacity, len(usage.exams)),
		})
	}
	return findings
}
