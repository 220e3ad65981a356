package models

import "time"

// ProctorRole distinguishes the lead invigilator from assistants.
type ProctorRole string

const (
	ProctorRoleMain      ProctorRole = "main"
	ProctorRoleAssistant ProctorRole = "assistant"
)

// ProctorAssignment links a proctor to an exam. (exam_id, proctor_id) is unique.
type ProctorAssignment struct {
	ID         string      `db:"id" json:"id"`
	ExamID     string      `db:"exam_id" json:"exam_id"`
	ProctorID  string      `db:"proctor_id" json:"proctor_id"`
	Role       ProctorRole `db:"role" json:"role"`
	AssignedAt time.Time   `db:"assigned_at" json:"assigned_at"`
}

// ProctorAssignmentDetail carries the proctor's display name.
type ProctorAssignmentDetail struct {
	ID          string      `db:"id" json:"id"`
	ExamID      string      `db:"exam_id" json:"exam_id"`
	ProctorID   string      `db:"proctor_id" json:"proctor_id"`
	ProctorName string      `db:"proctor_name" json:"proctor_name"`
	Role        ProctorRole `db:"role" json:"role"`
}

// ProctorBooking is an exam a proctor is already committed to.
type ProctorBooking struct {
	ProctorID string     `db:"proctor_id"`
	ExamID    string     `db:"exam_id"`
	Title     string     `db:"title"`
	ExamDate  time.Time  `db:"exam_date"`
	StartTime string     `db:"start_time"`
	EndTime   string     `db:"end_time"`
	Status    ExamStatus `db:"status"`
}
