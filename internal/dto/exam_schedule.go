package dto

// ScheduleWindowQuery is the date window shared by the report endpoints. Dates use YYYY-MM-DD.
type ScheduleWindowQuery struct {
	DateFrom string `form:"date_from" json:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `form:"date_to" json:"date_to" validate:"omitempty,datetime=2006-01-02"`
}

// ScheduleConflictsQuery selects the window and severity bucket of a conflict report.
type ScheduleConflictsQuery struct {
	ScheduleWindowQuery
	Severity string `form:"severity" json:"severity" validate:"omitempty,oneof=critical warning info all"`
}

// ExportConflictsQuery renders a conflict report as a downloadable file.
type ExportConflictsQuery struct {
	ScheduleConflictsQuery
	Format string `form:"format" json:"format" validate:"omitempty,oneof=csv pdf"`
}

// ScheduleOverviewQuery narrows the occupancy overview.
type ScheduleOverviewQuery struct {
	ScheduleWindowQuery
	RoomID    string `form:"room_id" json:"room_id"`
	SubjectID string `form:"subject_id" json:"subject_id"`
}

// AssignStudentsRequest registers students for an exam in one batch.
type AssignStudentsRequest struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1,dive,required"`
}

// ProctorAssignmentInput proposes one proctor for an exam.
type ProctorAssignmentInput struct {
	ProctorID string `json:"proctor_id" validate:"required"`
	Role      string `json:"role" validate:"omitempty,oneof=main assistant"`
}

// AssignProctorsRequest assigns proctors to an exam in one batch.
type AssignProctorsRequest struct {
	Proctors []ProctorAssignmentInput `json:"proctors" validate:"required,min=1,dive"`
}
