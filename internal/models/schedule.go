package models

import "time"

// FindingSeverity ranks report entries.
type FindingSeverity string

const (
	SeverityCritical FindingSeverity = "critical"
	SeverityWarning  FindingSeverity = "warning"
	SeverityInfo     FindingSeverity = "info"
)

// FindingType identifies the check that produced a finding.
type FindingType string

const (
	FindingRoomDoubleBooking    FindingType = "room_double_booking"
	FindingProctorDoubleBooking FindingType = "proctor_double_booking"
	FindingRoomOvercapacity     FindingType = "room_overcapacity"
	FindingProctorUnderstaffing FindingType = "proctor_understaffing"
	FindingLargeGap             FindingType = "large_gap"
	FindingLowRoomUtilization   FindingType = "low_room_utilization"
)

// FindingExam is the exam reference embedded in findings and conflict payloads.
type FindingExam struct {
	ExamID    string `json:"exam_id"`
	Title     string `json:"title"`
	Date      string `json:"exam_date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// ScheduleFinding is a single entry in a conflict report.
type ScheduleFinding struct {
	Type                FindingType     `json:"type"`
	Severity            FindingSeverity `json:"severity"`
	Date                string          `json:"date,omitempty"`
	RoomID              string          `json:"room_id,omitempty"`
	RoomName            string          `json:"room_name,omitempty"`
	ProctorID           string          `json:"proctor_id,omitempty"`
	ProctorName         string          `json:"proctor_name,omitempty"`
	Exams               []FindingExam   `json:"exams"`
	Message             string          `json:"message"`
	Registered          int             `json:"registered,omitempty"`
	Capacity            int             `json:"capacity,omitempty"`
	Overflow            int             `json:"overflow,omitempty"`
	AssignedProctors    int             `json:"assigned_proctors,omitempty"`
	RecommendedProctors int             `json:"recommended_proctors,omitempty"`
	GapHours            float64         `json:"gap_hours,omitempty"`
	Utilization         float64         `json:"utilization,omitempty"`
}

// ReportSummary counts findings per bucket and per type.
type ReportSummary struct {
	Critical      int                 `json:"critical"`
	Warning       int                 `json:"warning"`
	Info          int                 `json:"info"`
	Total         int                 `json:"total"`
	ByType        map[FindingType]int `json:"by_type"`
	ExamsAnalyzed int                 `json:"exams_analyzed"`
	ExamsSkipped  []string            `json:"exams_skipped,omitempty"`
}

// ConflictReport groups findings by severity for a date range.
type ConflictReport struct {
	DateFrom    string            `json:"date_from"`
	DateTo      string            `json:"date_to"`
	Severity    string            `json:"severity"`
	Summary     ReportSummary     `json:"summary"`
	Critical    []ScheduleFinding `json:"critical"`
	Warning     []ScheduleFinding `json:"warning"`
	Info        []ScheduleFinding `json:"info"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Findings returns every bucket flattened, critical first.
func (r ConflictReport) Findings() []ScheduleFinding {
	out := make([]ScheduleFinding, 0, len(r.Critical)+len(r.Warning)+len(r.Info))
	out = append(out, r.Critical...)
	out = append(out, r.Warning...)
	return append(out, r.Info...)
}

// ScheduleOverview lists exams with occupancy and proctor staffing for a date range.
type ScheduleOverview struct {
	DateFrom    string          `json:"date_from"`
	DateTo      string          `json:"date_to"`
	Exams       []ExamOccupancy `json:"exams"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// AssignmentResult reports the outcome of a bulk student or proctor assignment.
type AssignmentResult struct {
	ExamID             string   `json:"exam_id"`
	Created            int      `json:"created"`
	AlreadyAssigned    int      `json:"already_assigned"`
	TotalRequested     int      `json:"total_requested"`
	CreatedIDs         []string `json:"created_ids"`
	AlreadyAssignedIDs []string `json:"already_assigned_ids"`
	Warnings           []string `json:"warnings,omitempty"`
}

// CapacityExceeded is the payload attached to a rejected student assignment.
type CapacityExceeded struct {
	ExamID     string `json:"exam_id"`
	Capacity   int    `json:"capacity"`
	Registered int    `json:"registered"`
	Available  int    `json:"available"`
	Requested  int    `json:"requested"`
}

// ProctorConflict lists the exams a single proctor is already committed to.
type ProctorConflict struct {
	ProctorID        string        `json:"proctor_id"`
	ProctorName      string        `json:"proctor_name"`
	ConflictingExams []FindingExam `json:"conflicting_exams"`
}

// ProctorConflictError is returned when a proctor assignment would double-book someone.
type ProctorConflictError struct {
	Message   string            `json:"message"`
	Exam      FindingExam       `json:"exam"`
	Conflicts []ProctorConflict `json:"conflicts"`
}

// Error implements the error interface for conflict errors.
func (e *ProctorConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
