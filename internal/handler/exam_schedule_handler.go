package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/dto"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/models"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/service"
	appErrors "github.com/Zookegger/ExamPro-Scheduler-sub000/pkg/errors"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/pkg/response"
)

type examScheduleReader interface {
	GetScheduleConflicts(ctx context.Context, query dto.ScheduleConflictsQuery) (*models.ConflictReport, error)
	GetScheduleOverview(ctx context.Context, query dto.ScheduleOverviewQuery) (*models.ScheduleOverview, error)
	ExportConflicts(ctx context.Context, query dto.ExportConflictsQuery) (*service.ExportedReport, error)
}

type examAssigner interface {
	AssignStudents(ctx context.Context, examID string, req dto.AssignStudentsRequest, actor string) (*models.AssignmentResult, error)
	AssignProctors(ctx context.Context, examID string, req dto.AssignProctorsRequest, actor string) (*models.AssignmentResult, error)
}

// ExamScheduleHandler exposes conflict reports and resource assignment endpoints.
type ExamScheduleHandler struct {
	schedule examScheduleReader
	assigner examAssigner
}

// NewExamScheduleHandler constructs the handler.
func NewExamScheduleHandler(schedule *service.ExamScheduleService, assigner *service.ExamAssignmentService) *ExamScheduleHandler {
	return &ExamScheduleHandler{schedule: schedule, assigner: assigner}
}

// Conflicts godoc
// @Summary Detect exam schedule conflicts
// @Description Room and proctor double-bookings are critical; overcapacity and understaffing are warnings; gaps and low utilization are info.
// @Tags ExamSchedule
// @Produce json
// @Param date_from query string false "First date (YYYY-MM-DD), defaults to today"
// @Param date_to query string false "Last date (YYYY-MM-DD)"
// @Param severity query string false "critical, warning, info or all"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /exam-schedule/conflicts [get]
func (h *ExamScheduleHandler) Conflicts(c *gin.Context) {
	var query dto.ScheduleConflictsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	report, err := h.schedule.GetScheduleConflicts(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, map[string]interface{}{
		"total":          report.Summary.Total,
		"exams_analyzed": report.Summary.ExamsAnalyzed,
	})
}

// Overview godoc
// @Summary List exams with occupancy and proctors
// @Tags ExamSchedule
// @Produce json
// @Param date_from query string false "First date (YYYY-MM-DD)"
// @Param date_to query string false "Last date (YYYY-MM-DD)"
// @Param room_id query string false "Room ID"
// @Param subject_id query string false "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /exam-schedule/overview [get]
func (h *ExamScheduleHandler) Overview(c *gin.Context) {
	var query dto.ScheduleOverviewQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	overview, err := h.schedule.GetScheduleOverview(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, map[string]interface{}{"total": len(overview.Exams)})
}

// ExportConflicts godoc
// @Summary Download the conflict report
// @Tags ExamSchedule
// @Produce text/csv
// @Produce application/pdf
// @Param date_from query string false "First date (YYYY-MM-DD)"
// @Param date_to query string false "Last date (YYYY-MM-DD)"
// @Param severity query string false "critical, warning, info or all"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /exam-schedule/conflicts/export [get]
func (h *ExamScheduleHandler) ExportConflicts(c *gin.Context) {
	var query dto.ExportConflictsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	exported, err := h.schedule.ExportConflicts(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, exported.ContentType, exported.Filename, exported.Payload)
}

// AssignStudents godoc
// @Summary Register students for an exam
// @Description Rejects the whole batch with CAPACITY_EXCEEDED when the new students do not fit. Students already registered are counted, not duplicated.
// @Tags ExamSchedule
// @Accept json
// @Produce json
// @Param id path string true "Exam ID"
// @Param payload body dto.AssignStudentsRequest true "Student IDs"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /exams/{id}/students [post]
func (h *ExamScheduleHandler) AssignStudents(c *gin.Context) {
	var req dto.AssignStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.assigner.AssignStudents(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondAssignment(c, result)
}

// AssignProctors godoc
// @Summary Assign proctors to an exam
// @Description Rejects the whole batch with CONFLICT when any proctor already covers an overlapping exam on the same date.
// @Tags ExamSchedule
// @Accept json
// @Produce json
// @Param id path string true "Exam ID"
// @Param payload body dto.AssignProctorsRequest true "Proctors"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /exams/{id}/proctors [post]
func (h *ExamScheduleHandler) AssignProctors(c *gin.Context) {
	var req dto.AssignProctorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.assigner.AssignProctors(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondAssignment(c, result)
}

// respondAssignment answers 201 when anything was written and 200 for a pure re-submission.
func respondAssignment(c *gin.Context, result *models.AssignmentResult) {
	if result.Created > 0 {
		response.Created(c, result)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
