package models

import "time"

// DateLayout is the wire and storage layout of calendar dates.
const DateLayout = "2006-01-02"

// ExamStatus enumerates the exam lifecycle.
type ExamStatus string

const (
	ExamStatusDraft      ExamStatus = "draft"
	ExamStatusPublished  ExamStatus = "published"
	ExamStatusInProgress ExamStatus = "in_progress"
	ExamStatusCompleted  ExamStatus = "completed"
	ExamStatusCancelled  ExamStatus = "cancelled"
)

// ActiveExamStatuses lists every status that occupies rooms and proctors.
var ActiveExamStatuses = []ExamStatus{
	ExamStatusDraft,
	ExamStatusPublished,
	ExamStatusInProgress,
	ExamStatusCompleted,
}

// Active reports whether the exam takes part in conflict and capacity checks.
func (s ExamStatus) Active() bool {
	return s != ExamStatusCancelled && s != ""
}

// ExamMethod describes how an exam is delivered.
type ExamMethod string

const (
	ExamMethodOffline ExamMethod = "offline"
	ExamMethodOnline  ExamMethod = "online"
	ExamMethodHybrid  ExamMethod = "hybrid"
)

// Exam is a scheduled exam sitting. RoomID is nil for unassigned or online exams.
// StartTime and EndTime are wall-clock values ("15:04" or "15:04:05") on ExamDate.
type Exam struct {
	ID          string     `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	SubjectID   string     `db:"subject_id" json:"subject_id"`
	RoomID      *string    `db:"room_id" json:"room_id,omitempty"`
	ExamDate    time.Time  `db:"exam_date" json:"-"`
	StartTime   string     `db:"start_time" json:"start_time"`
	EndTime     string     `db:"end_time" json:"end_time"`
	Status      ExamStatus `db:"status" json:"status"`
	MaxStudents int        `db:"max_students" json:"max_students"`
	Method      ExamMethod `db:"method" json:"method"`
}

// DateKey returns the exam date formatted with DateLayout.
func (e Exam) DateKey() string {
	return e.ExamDate.Format(DateLayout)
}

// HasRoom reports whether a physical room is assigned.
func (e Exam) HasRoom() bool {
	return e.RoomID != nil && *e.RoomID != ""
}

// ExamOccupancy is an exam joined with its room, live registration count and proctors.
type ExamOccupancy struct {
	Exam
	Date            string                    `db:"-" json:"exam_date"`
	SubjectName     string                    `db:"subject_name" json:"subject_name"`
	RoomName        *string                   `db:"room_name" json:"room_name,omitempty"`
	RoomCapacity    *int                      `db:"room_capacity" json:"room_capacity,omitempty"`
	RegisteredCount int                       `db:"registered_count" json:"registered_count"`
	ProctorCount    int                       `db:"proctor_count" json:"proctor_count"`
	OccupancyRate   *float64                  `db:"-" json:"occupancy_rate,omitempty"`
	Proctors        []ProctorAssignmentDetail `db:"-" json:"proctors,omitempty"`
}

// ScheduleFilter narrows snapshot queries.
type ScheduleFilter struct {
	DateFrom  time.Time
	DateTo    time.Time
	Statuses  []ExamStatus
	RoomID    string
	SubjectID string
}
