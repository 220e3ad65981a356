package models

import "time"

// RegistrationStatus enumerates the registration lifecycle.
type RegistrationStatus string

const (
	RegistrationStatusPending   RegistrationStatus = "pending"
	RegistrationStatusApproved  RegistrationStatus = "approved"
	RegistrationStatusCancelled RegistrationStatus = "cancelled"
	RegistrationStatusWithdrawn RegistrationStatus = "withdrawn"
)

// ActiveRegistrationStatuses count toward exam occupancy.
var ActiveRegistrationStatuses = []RegistrationStatus{
	RegistrationStatusPending,
	RegistrationStatusApproved,
}

// Registration is a student's enrollment in an exam sitting.
type Registration struct {
	ID           string             `db:"id" json:"id"`
	ExamID       string             `db:"exam_id" json:"exam_id"`
	StudentID    string             `db:"student_id" json:"student_id"`
	Status       RegistrationStatus `db:"status" json:"status"`
	RegisteredAt time.Time          `db:"registered_at" json:"registered_at"`
}
