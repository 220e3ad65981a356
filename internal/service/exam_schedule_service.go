package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/dto"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/models"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/scheduling"
	appErrors "github.com/Zookegger/ExamPro-Scheduler-sub000/pkg/errors"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/pkg/export"
)

type examSnapshotReader interface {
	ListSnapshot(ctx context.Context, exec sqlx.ExtContext, filter models.ScheduleFilter) ([]models.ExamOccupancy, error)
}

type examProctorLister interface {
	ListByExamIDs(ctx context.Context, exec sqlx.ExtContext, examIDs []string) ([]models.ProctorAssignmentDetail, error)
}

type findingsRecorder interface {
	RecordFindings(report *models.ConflictReport)
	ObserveReport(duration time.Duration)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ScheduleWindowConfig bounds the date ranges accepted by report queries.
type ScheduleWindowConfig struct {
	DefaultRangeDays int
	MaxRangeDays     int
}

// ExportedReport is a rendered conflict report ready for download.
type ExportedReport struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExamScheduleService builds conflict reports and occupancy overviews from a consistent snapshot.
type ExamScheduleService struct {
	exams     examSnapshotReader
	proctors  examProctorLister
	tx        txProvider
	policy    scheduling.Policy
	window    ScheduleWindowConfig
	metrics   findingsRecorder
	renderers map[models.ReportFormat]datasetRenderer
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewExamScheduleService wires report dependencies. tx may be nil, in which case reads run
// without a snapshot transaction.
func NewExamScheduleService(
	exams examSnapshotReader,
	proctors examProctorLister,
	tx txProvider,
	policy scheduling.Policy,
	window ScheduleWindowConfig,
	metrics findingsRecorder,
	validate *validator.Validate,
	logger *zap.Logger,
) *ExamScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if window.DefaultRangeDays <= 0 {
		window.DefaultRangeDays = 30
	}
	if window.MaxRangeDays <= 0 {
		window.MaxRangeDays = 366
	}
	return &ExamScheduleService{
		exams:    exams,
		proctors: proctors,
		tx:       tx,
		policy:   policy,
		window:   window,
		metrics:  metrics,
		renderers: map[models.ReportFormat]datasetRenderer{
			models.ReportFormatCSV: export.NewCSVExporter(),
			models.ReportFormatPDF: export.NewPDFExporter(),
		},
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// GetScheduleConflicts analyses every active exam in the window and returns the findings
// selected by the severity filter.
func (s *ExamScheduleService) GetScheduleConflicts(ctx context.Context, query dto.ScheduleConflictsQuery) (*models.ConflictReport, error) {
	query.Severity = normalizeChoice(query.Severity)
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conflict report query")
	}
	severity, err := scheduling.ParseSeverityFilter(query.Severity)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid severity filter")
	}
	from, to, err := s.resolveWindow(query.ScheduleWindowQuery)
	if err != nil {
		return nil, err
	}

	exams, err := s.loadSnapshot(ctx, models.ScheduleFilter{DateFrom: from, DateTo: to})
	if err != nil {
		return nil, err
	}

	started := time.Now()
	analysis := scheduling.Analyze(exams, s.policy)
	report := analysis.Report(from, to, severity, s.now())
	if len(analysis.Skipped) > 0 {
		s.logger.Warn("exams with invalid time range skipped",
			zap.Strings("exam_ids", analysis.Skipped),
			zap.String("date_from", report.DateFrom),
			zap.String("date_to", report.DateTo),
		)
	}
	if s.metrics != nil {
		s.metrics.ObserveReport(time.Since(started))
		s.metrics.RecordFindings(&report)
	}
	s.logger.Debug("schedule conflict report built",
		zap.String("date_from", report.DateFrom),
		zap.String("date_to", report.DateTo),
		zap.Int("exams", analysis.Analyzed),
		zap.Int("critical", report.Summary.Critical),
		zap.Int("warning", report.Summary.Warning),
		zap.Int("info", report.Summary.Info),
	)
	return &report, nil
}

// GetScheduleOverview lists active exams in the window with live registration and proctor counts.
func (s *ExamScheduleService) GetScheduleOverview(ctx context.Context, query dto.ScheduleOverviewQuery) (*models.ScheduleOverview, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid overview query")
	}
	from, to, err := s.resolveWindow(query.ScheduleWindowQuery)
	if err != nil {
		return nil, err
	}

	exams, err := s.loadSnapshot(ctx, models.ScheduleFilter{
		DateFrom:  from,
		DateTo:    to,
		RoomID:    strings.TrimSpace(query.RoomID),
		SubjectID: strings.TrimSpace(query.SubjectID),
	})
	if err != nil {
		return nil, err
	}

	for i := range exams {
		limit := scheduling.SeatLimit(exams[i].MaxStudents, exams[i].RoomCapacity)
		if limit > 0 {
			rate := float64(exams[i].RegisteredCount) / float64(limit)
			exams[i].OccupancyRate = &rate
		}
		if exams[i].Proctors == nil {
			exams[i].Proctors = []models.ProctorAssignmentDetail{}
		}
	}

	return &models.ScheduleOverview{
		DateFrom:    from.Format(models.DateLayout),
		DateTo:      to.Format(models.DateLayout),
		Exams:       exams,
		GeneratedAt: s.now().UTC(),
	}, nil
}

// ExportConflicts renders the conflict report as CSV or PDF.
func (s *ExamScheduleService) ExportConflicts(ctx context.Context, query dto.ExportConflictsQuery) (*ExportedReport, error) {
	query.Format = normalizeChoice(query.Format)
	query.Severity = normalizeChoice(query.Severity)
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export query")
	}
	format := models.ReportFormat(query.Format)
	if format == "" {
		format = models.ReportFormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %s", format))
	}

	report, err := s.GetScheduleConflicts(ctx, query.ScheduleConflictsQuery)
	if err != nil {
		return nil, err
	}

	payload, err := renderer.Render(ReportDataset(*report))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render conflict report")
	}
	return &ExportedReport{
		Filename:    fmt.Sprintf("exam_conflicts_%s_%s.%s", report.DateFrom, report.DateTo, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Payload:     payload,
	}, nil
}

// ReportDataset flattens a conflict report into one row per finding.
func ReportDataset(report models.ConflictReport) export.Dataset {
	headers := []string{"Severity", "Type", "Date", "Resource", "Exams", "Message"}
	findings := report.Findings()
	rows := make([]map[string]string, 0, len(findings))
	for _, f := range findings {
		titles := make([]string, 0, len(f.Exams))
		for _, exam := range f.Exams {
			titles = append(titles, fmt.Sprintf("%s (%s %s-%s)", exam.Title, exam.Date, exam.StartTime, exam.EndTime))
		}
		rows = append(rows, map[string]string{
			"Severity": string(f.Severity),
			"Type":     string(f.Type),
			"Date":     f.Date,
			"Resource": findingResource(f),
			"Exams":    strings.Join(titles, "; "),
			"Message":  f.Message,
		})
	}
	return export.Dataset{
		Title: fmt.Sprintf("Exam schedule conflicts %s to %s", report.DateFrom, report.DateTo),
		Notes: []string{
			fmt.Sprintf("Severity: %s", report.Severity),
			fmt.Sprintf("Critical: %d  Warning: %d  Info: %d", report.Summary.Critical, report.Summary.Warning, report.Summary.Info),
			fmt.Sprintf("Generated at %s", report.GeneratedAt.Format(time.RFC3339)),
		},
		Headers: headers,
		Rows:    rows,
	}
}

func findingResource(f models.ScheduleFinding) string {
	switch {
	case f.ProctorID != "":
		if f.ProctorName != "" {
			return f.ProctorName
		}
		return f.ProctorID
	case f.RoomName != "":
		return f.RoomName
	default:
		return f.RoomID
	}
}

// resolveWindow applies the default window and rejects inverted or oversized ranges.
func (s *ExamScheduleService) resolveWindow(q dto.ScheduleWindowQuery) (time.Time, time.Time, error) {
	from := s.now().UTC().Truncate(24 * time.Hour)
	if raw := strings.TrimSpace(q.DateFrom); raw != "" {
		parsed, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date_from must be YYYY-MM-DD")
		}
		from = parsed
	}

	to := from.AddDate(0, 0, s.window.DefaultRangeDays)
	if raw := strings.TrimSpace(q.DateTo); raw != "" {
		parsed, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date_to must be YYYY-MM-DD")
		}
		to = parsed
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date_to must not be before date_from")
	}
	if to.Sub(from) > time.Duration(s.window.MaxRangeDays)*24*time.Hour {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("date range must not exceed %d days", s.window.MaxRangeDays))
	}
	return from, to, nil
}

// loadSnapshot reads exams and their proctors inside one read-only repeatable-read transaction
// so both queries observe the same data.
func (s *ExamScheduleService) loadSnapshot(ctx context.Context, filter models.ScheduleFilter) ([]models.ExamOccupancy, error) {
	if s.tx == nil {
		return s.readSnapshot(ctx, nil, filter)
	}

	tx, err := s.tx.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, appErrors.Store(err, "failed to open schedule snapshot")
	}
	exams, err := s.readSnapshot(ctx, tx, filter)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Store(err, "failed to close schedule snapshot")
	}
	return exams, nil
}

func (s *ExamScheduleService) readSnapshot(ctx context.Context, exec sqlx.ExtContext, filter models.ScheduleFilter) ([]models.ExamOccupancy, error) {
	exams, err := s.exams.ListSnapshot(ctx, exec, filter)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load exam schedule")
	}
	if len(exams) == 0 {
		return []models.ExamOccupancy{}, nil
	}

	ids := make([]string, 0, len(exams))
	for _, exam := range exams {
		ids = append(ids, exam.ID)
	}
	assignments, err := s.proctors.ListByExamIDs(ctx, exec, ids)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load exam proctors")
	}

	byExam := make(map[string][]models.ProctorAssignmentDetail, len(exams))
	for _, a := range assignments {
		byExam[a.ExamID] = append(byExam[a.ExamID], a)
	}
	for i := range exams {
		exams[i].Proctors = byExam[exams[i].ID]
	}
	return exams, nil
}

// normalizeChoice lowercases an enumerated query value so CRITICAL and critical are equivalent.
func normalizeChoice(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
