package scheduling

import (
	"time"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/models"
)

func strPtr(v string) *string { return &v }

func intPtr(v int) *int { return &v }

func mustDate(value string) time.Time {
	d, err := time.Parse(models.DateLayout, value)
	if err != nil {
		panic(err)
	}
	return d
}

func newExam(id, roomID, date, start, end string) models.ExamOccupancy {
	exam := models.ExamOccupancy{
		Exam: models.Exam{
			ID:          id,
			Title:       "Exam " + id,
			ExamDate:    mustDate(date),
			StartTime:   start,
			EndTime:     end,
			Status:      models.ExamStatusPublished,
			MaxStudents: 30,
			Method:      models.ExamMethodOffline,
		},
	}
	if roomID != "" {
		exam.RoomID = strPtr(roomID)
		exam.RoomName = strPtr("Hall " + roomID)
		exam.RoomCapacity = intPtr(30)
	}
	return exam
}

func withProctors(exam models.ExamOccupancy, ids ...string) models.ExamOccupancy {
	for _, id := range ids {
		exam.Proctors = append(exam.Proctors, models.ProctorAssignmentDetail{
			ExamID:      exam.ID,
			ProctorID:   id,
			ProctorName: "Proctor " + id,
			Role:        models.ProctorRoleMain,
		})
	}
	exam.ProctorCount = len(exam.Proctors)
	return exam
}

func examIDs(f models.ScheduleFinding) []string {
	ids := make([]string, 0, len(f.Exams))
	for _, e := range f.Exams {
		ids = append(ids, e.ExamID)
	}
	return ids
}
