package scheduling

import (
	"fmt"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/models"
)

// DetectRoomConflicts reports every pair of active exams that overlap in the same room on the
// same date. Exams without a room are ignored.
func DetectRoomConflicts(exams []models.ExamOccupancy) []models.ScheduleFinding {
	return detectRoomConflicts(newSnapshot(exams))
}

func detectRoomConflicts(snap snapshot) []models.ScheduleFinding {
	groups := make(map[string][]Interval)
	var order []string
	for _, e := range snap.entries {
		if !e.exam.HasRoom() {
			continue
		}
		iv := e.interval.On(*e.exam.RoomID)
		key := groupKey(iv)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], iv)
	}

	var findings []models.ScheduleFinding
	for _, key := range order {
		for _, pair := range OverlappingPairs(groups[key]) {
			first, second := snap.byID[pair[0].ExamID], snap.byID[pair[1].ExamID]
			findings = append(findings, models.ScheduleFinding{
				Type:     models.FindingRoomDoubleBooking,
				Severity: models.SeverityCritical,
				Date:     pair[0].Date(),
				RoomID:   pair[0].ResourceID,
				RoomName: roomName(first),
				Exams:    []models.FindingExam{findingExam(first), findingExam(second)},
				Message: fmt.Sprintf("Room %s is double-booked on %s: %q (%s-%s) overlaps %q (%s-%s)",
					roomLabel(first), pair[0].Date(),
					first.Title, first.StartTime, first.EndTime,
					second.Title, second.StartTime, second.EndTime),
			})
		}
	}
	sortFindings(findings)
	return nonNil(findings)
}

// DetectProctorConflicts reports every pair of active exams sharing a proctor whose times overlap
// on the same date.
func DetectProctorConflicts(exams []models.ExamOccupancy) []models.ScheduleFinding {
	return detectProctorConflicts(newSnapshot(exams))
}

func detectProctorConflicts(snap snapshot) []models.ScheduleFinding {
	groups := make(map[string][]Interval)
	names := make(map[string]string)
	var order []string
	for _, e := range snap.entries {
		seen := make(map[string]struct{}, len(e.exam.Proctors))
		for _, p := range e.exam.Proctors {
			if p.ProctorID == "" {
				continue
			}
			if _, dup := seen[p.ProctorID]; dup {
				continue
			}
			seen[p.ProctorID] = struct{}{}
			if p.ProctorName != "" {
				names[p.ProctorID] = p.ProctorName
			}

			iv := e.interval.On(p.ProctorID)
			key := groupKey(iv)
			if _, ok := groups[key]; !ok {
				order = append(order, key)
			}
			groups[key] = append(groups[key], iv)
		}
	}

	var findings []models.ScheduleFinding
	for _, key := range order {
		for _, pair := range OverlappingPairs(groups[key]) {
			first, second := snap.byID[pair[0].ExamID], snap.byID[pair[1].ExamID]
			proctorID := pair[0].ResourceID
			label := names[proctorID]
			if label == "" {
				label = proctorID
			}
			findings = append(findings, models.ScheduleFinding{
				Type:        models.FindingProctorDoubleBooking,
				Severity:    models.SeverityCritical,
				Date:        pair[0].Date(),
				ProctorID:   proctorID,
				ProctorName: names[proctorID],
				Exams:       []models.FindingExam{findingExam(first), findingExam(second)},
				Message: fmt.Sprintf("Proctor %s is double-booked on %s: %q (%s-%s) overlaps %q (%s-%s)",
					label, pair[0].Date(),
					first.Title, first.StartTime, first.EndTime,
					second.Title, second.StartTime, second.EndTime),
			})
		}
	}
	sortFindings(findings)
	return nonNil(findings)
}
