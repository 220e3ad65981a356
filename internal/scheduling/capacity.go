package scheduling

import (
	"fmt"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/models"
)

// DetectOvercapacity warns when live registrations exceed the room capacity plus tolerance.
func DetectOvercapacity(exams []models.ExamOccupancy, policy Policy) []models.ScheduleFinding {
	return detectOvercapacity(newSnapshot(exams), policy.normalize())
}

func detectOvercapacity(snap snapshot, policy Policy) []models.ScheduleFinding {
	var findings []models.ScheduleFinding
	for _, e := range snap.entries {
		exam := e.exam
		if !exam.HasRoom() || exam.RoomCapacity == nil {
			continue
		}
		capacity := *exam.RoomCapacity
		if exam.RegisteredCount <= capacity+policy.OvercapacityTolerance {
			continue
		}
		overflow := exam.RegisteredCount - capacity
		findings = append(findings, models.ScheduleFinding{
			Type:       models.FindingRoomOvercapacity,
			Severity:   models.SeverityWarning,
			Date:       exam.DateKey(),
			RoomID:     *exam.RoomID,
			RoomName:   roomName(exam),
			Exams:      []models.FindingExam{findingExam(exam)},
			Registered: exam.RegisteredCount,
			Capacity:   capacity,
			Overflow:   overflow,
			Message: fmt.Sprintf("%q in room %s on %s has %d registered students for %d seats (%d over capacity)",
				exam.Title, roomLabel(exam), exam.DateKey(), exam.RegisteredCount, capacity, overflow),
		})
	}
	sortFindings(findings)
	return nonNil(findings)
}

// DetectUnderstaffing warns when an exam with registrations has fewer proctors than
// ceil(registered / StudentsPerProctor).
func DetectUnderstaffing(exams []models.ExamOccupancy, policy Policy) []models.ScheduleFinding {
	return detectUnderstaffing(newSnapshot(exams), policy.normalize())
}

func detectUnderstaffing(snap snapshot, policy Policy) []models.ScheduleFinding {
	var findings []models.ScheduleFinding
	for _, e := range snap.entries {
		exam := e.exam
		if exam.RegisteredCount <= 0 {
			continue
		}
		recommended := policy.RecommendedProctors(exam.RegisteredCount)
		assigned := exam.ProctorCount
		if n := len(exam.Proctors); n > assigned {
			assigned = n
		}
		if assigned >= recommended {
			continue
		}
		finding := models.ScheduleFinding{
			Type:                models.FindingProctorUnderstaffing,
			Severity:            models.SeverityWarning,
			Date:                exam.DateKey(),
			RoomName:            roomName(exam),
			Exams:               []models.FindingExam{findingExam(exam)},
			Registered:          exam.RegisteredCount,
			AssignedProctors:    assigned,
			RecommendedProctors: recommended,
			Message: fmt.Sprintf("%q on %s has %d proctor(s) for %d registered students; %d recommended at %d students per proctor",
				exam.Title, exam.DateKey(), assigned, exam.RegisteredCount, recommended, policy.StudentsPerProctor),
		}
		if exam.RoomID != nil {
			finding.RoomID = *exam.RoomID
		}
		findings = append(findings, finding)
	}
	sortFindings(findings)
	return nonNil(findings)
}

// SeatLimit returns how many students fit an exam in practice: its declared maximum, lowered to
// the assigned room's capacity when the room is smaller. Used for occupancy rates only.
func SeatLimit(maxStudents int, roomCapacity *int) int {
	if roomCapacity != nil && *roomCapacity > 0 && *roomCapacity < maxStudents {
		return *roomCapacity
	}
	return maxStudents
}
