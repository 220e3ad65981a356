package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/dto"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/models"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/scheduling"
	appErrors "github.com/Zookegger/ExamPro-Scheduler-sub000/pkg/errors"
)

type snapshotReaderStub struct {
	exams   []models.ExamOccupancy
	err     error
	filters []models.ScheduleFilter
}

func (s *snapshotReaderStub) ListSnapshot(ctx context.Context, exec sqlx.ExtContext, filter models.ScheduleFilter) ([]models.ExamOccupancy, error) {
	s.filters = append(s.filters, filter)
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.ExamOccupancy, len(s.exams))
	copy(out, s.exams)
	return out, nil
}

type proctorListerStub struct {
	assignments []models.ProctorAssignmentDetail
}

func (s *proctorListerStub) ListByExamIDs(ctx context.Context, exec sqlx.ExtContext, examIDs []string) ([]models.ProctorAssignmentDetail, error) {
	return s.assignments, nil
}

type findingsRecorderStub struct {
	reports int
	byType  map[models.FindingType]int
}

func (r *findingsRecorderStub) RecordFindings(report *models.ConflictReport) {
	r.reports++
	r.byType = report.Summary.ByType
}

func (r *findingsRecorderStub) ObserveReport(duration time.Duration) {}

func occupancy(id, roomID, date, start, end string, registered int) models.ExamOccupancy {
	exam := examOn(id, date, start, end, 30, roomID)
	occ := models.ExamOccupancy{Exam: *exam, Date: date, SubjectName: "Subject " + id, RegisteredCount: registered}
	if roomID != "" {
		name := "Hall " + roomID
		capacity := 30
		occ.RoomName = &name
		occ.RoomCapacity = &capacity
	}
	return occ
}

func newScheduleService(t *testing.T, exams []models.ExamOccupancy, assignments []models.ProctorAssignmentDetail) (*ExamScheduleService, *snapshotReaderStub, *findingsRecorderStub) {
	reader := &snapshotReaderStub{exams: exams}
	recorder := &findingsRecorderStub{}
	svc := NewExamScheduleService(reader, &proctorListerStub{assignments: assignments}, nil, scheduling.DefaultPolicy(),
		ScheduleWindowConfig{DefaultRangeDays: 30, MaxRangeDays: 90}, recorder, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 8, 30, 0, 0, time.UTC) }
	return svc, reader, recorder
}

func window(from, to string) dto.ScheduleWindowQuery {
	return dto.ScheduleWindowQuery{DateFrom: from, DateTo: to}
}

func TestGetScheduleConflictsDetectsRoomDoubleBooking(t *testing.T) {
	svc, reader, recorder := newScheduleService(t, []models.ExamOccupancy{
		occupancy("E1", "R1", "2026-06-01", "09:00", "11:00", 10),
		occupancy("E2", "R1", "2026-06-01", "10:30", "12:00", 10),
		occupancy("E3", "R1", "2026-06-01", "12:00", "13:00", 10),
	}, nil)

	report, err := svc.GetScheduleConflicts(context.Background(), dto.ScheduleConflictsQuery{
		ScheduleWindowQuery: window("2026-06-01", "2026-06-07"),
		Severity:            "critical",
	})
	require.NoError(t, err)

	require.Len(t, report.Critical, 1)
	finding := report.Critical[0]
	assert.Equal(t, models.FindingRoomDoubleBooking, finding.Type)
	require.Len(t, finding.Exams, 2)
	assert.Equal(t, "E1", finding.Exams[0].ExamID)
	assert.Equal(t, "E2", finding.Exams[1].ExamID)
	assert.Empty(t, report.Warning)
	assert.Empty(t, report.Info)
	assert.Equal(t, 1, report.Summary.Critical)
	assert.Equal(t, 3, report.Summary.ExamsAnalyzed)
	assert.Equal(t, "critical", report.Severity)

	require.Len(t, reader.filters, 1)
	assert.Equal(t, "2026-06-01", reader.filters[0].DateFrom.Format(models.DateLayout))
	assert.Equal(t, "2026-06-07", reader.filters[0].DateTo.Format(models.DateLayout))
	assert.Equal(t, 1, recorder.reports)
	assert.Equal(t, 1, recorder.byType[models.FindingRoomDoubleBooking])
}

func TestGetScheduleConflictsAttachesProctors(t *testing.T) {
	svc, _, _ := newScheduleService(t, []models.ExamOccupancy{
		occupancy("E5", "R1", "2026-06-01", "09:00", "11:00", 10),
		occupancy("E6", "R2", "2026-06-01", "10:00", "12:00", 10),
	}, []models.ProctorAssignmentDetail{
		{ExamID: "E5", ProctorID: "P1", ProctorName: "Ana", Role: models.ProctorRoleMain},
		{ExamID: "E6", ProctorID: "P1", ProctorName: "Ana", Role: models.ProctorRoleMain},
	})

	report, err := svc.GetScheduleConflicts(context.Background(), dto.ScheduleConflictsQuery{ScheduleWindowQuery: window("2026-06-01", "2026-06-01")})
	require.NoError(t, err)
	require.Len(t, report.Critical, 1)
	assert.Equal(t, models.FindingProctorDoubleBooking, report.Critical[0].Type)
	assert.Equal(t, "P1", report.Critical[0].ProctorID)
	assert.Equal(t, "all", report.Severity)
}

func TestGetScheduleConflictsTouchingExamsAreClean(t *testing.T) {
	svc, _, _ := newScheduleService(t, []models.ExamOccupancy{
		occupancy("E3", "R1", "2026-06-01", "09:00", "11:00", 10),
		occupancy("E4", "R1", "2026-06-01", "11:00", "13:00", 10),
	}, nil)

	report, err := svc.GetScheduleConflicts(context.Background(), dto.ScheduleConflictsQuery{
		ScheduleWindowQuery: window("2026-06-01", "2026-06-01"),
		Severity:            "critical",
	})
	require.NoError(t, err)
	assert.Empty(t, report.Critical)
}

func TestGetScheduleConflictsSeverityIsCaseInsensitive(t *testing.T) {
	svc, _, _ := newScheduleService(t, []models.ExamOccupancy{
		occupancy("E1", "R1", "2026-06-01", "09:00", "11:00", 10),
		occupancy("E2", "R1", "2026-06-01", "10:00", "12:00", 10),
	}, nil)

	report, err := svc.GetScheduleConflicts(context.Background(), dto.ScheduleConflictsQuery{
		ScheduleWindowQuery: window("2026-06-01", "2026-06-01"),
		Severity:            " CRITICAL ",
	})
	require.NoError(t, err)
	assert.Equal(t, "critical", report.Severity)
	assert.Len(t, report.Critical, 1)
}

func TestGetScheduleConflictsDefaultsWindow(t *testing.T) {
	svc, reader, _ := newScheduleService(t, nil, nil)

	report, err := svc.GetScheduleConflicts(context.Background(), dto.ScheduleConflictsQuery{})
	require.NoError(t, err)
	assert.Equal(t, "2026-06-01", report.DateFrom)
	assert.Equal(t, "2026-07-01", report.DateTo)
	assert.Equal(t, 0, report.Summary.Total)
	assert.Len(t, reader.filters, 1)
}

func TestGetScheduleConflictsRejectsBadQueries(t *testing.T) {
	svc, reader, _ := newScheduleService(t, nil, nil)

	cases := map[string]dto.ScheduleConflictsQuery{
		"inverted":  {ScheduleWindowQuery: window("2026-06-10", "2026-06-01")},
		"too wide":  {ScheduleWindowQuery: window("2026-01-01", "2026-12-31")},
		"bad date":  {ScheduleWindowQuery: window("01/06/2026", "")},
		"bad level": {Severity: "fatal"},
	}
	for name, query := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.GetScheduleConflicts(context.Background(), query)
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErrors.ErrValidation))
		})
	}
	assert.Empty(t, reader.filters)
}

func TestGetScheduleConflictsStoreFailure(t *testing.T) {
	svc, reader, _ := newScheduleService(t, nil, nil)
	reader.err = errors.New("connection refused")

	_, err := svc.GetScheduleConflicts(context.Background(), dto.ScheduleConflictsQuery{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrTransientStore))
}

func TestGetScheduleConflictsUsesSnapshotTransaction(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	reader := &snapshotReaderStub{exams: []models.ExamOccupancy{occupancy("E1", "R1", "2026-06-01", "09:00", "11:00", 10)}}
	svc := NewExamScheduleService(reader, &proctorListerStub{}, tx, scheduling.DefaultPolicy(), ScheduleWindowConfig{}, nil, nil, nil)
	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := svc.GetScheduleConflicts(context.Background(), dto.ScheduleConflictsQuery{ScheduleWindowQuery: window("2026-06-01", "2026-06-02")})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetScheduleConflictsRollsBackOnFailure(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	reader := &snapshotReaderStub{err: errors.New("boom")}
	svc := NewExamScheduleService(reader, &proctorListerStub{}, tx, scheduling.DefaultPolicy(), ScheduleWindowConfig{}, nil, nil, nil)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.GetScheduleConflicts(context.Background(), dto.ScheduleConflictsQuery{ScheduleWindowQuery: window("2026-06-01", "2026-06-02")})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetScheduleOverviewComputesOccupancy(t *testing.T) {
	online := occupancy("E2", "", "2026-06-02", "09:00", "10:00", 0)
	svc, reader, _ := newScheduleService(t, []models.ExamOccupancy{
		occupancy("E1", "R1", "2026-06-01", "09:00", "11:00", 15),
		online,
	}, []models.ProctorAssignmentDetail{{ExamID: "E1", ProctorID: "P1", ProctorName: "Ana", Role: models.ProctorRoleMain}})

	overview, err := svc.GetScheduleOverview(context.Background(), dto.ScheduleOverviewQuery{
		ScheduleWindowQuery: window("2026-06-01", "2026-06-07"),
		RoomID:              " R1 ",
	})
	require.NoError(t, err)
	require.Len(t, overview.Exams, 2)
	require.NotNil(t, overview.Exams[0].OccupancyRate)
	assert.InDelta(t, 0.5, *overview.Exams[0].OccupancyRate, 0.0001)
	require.Len(t, overview.Exams[0].Proctors, 1)
	assert.NotNil(t, overview.Exams[1].Proctors)
	assert.Equal(t, "R1", reader.filters[0].RoomID)
}

func TestExportConflictsRendersCSV(t *testing.T) {
	svc, _, _ := newScheduleService(t, []models.ExamOccupancy{
		occupancy("E1", "R1", "2026-06-01", "09:00", "11:00", 10),
		occupancy("E2", "R1", "2026-06-01", "10:30", "12:00", 10),
	}, nil)

	exported, err := svc.ExportConflicts(context.Background(), dto.ExportConflictsQuery{
		ScheduleConflictsQuery: dto.ScheduleConflictsQuery{ScheduleWindowQuery: window("2026-06-01", "2026-06-02")},
	})
	require.NoError(t, err)
	assert.Equal(t, "exam_conflicts_2026-06-01_2026-06-02.csv", exported.Filename)
	assert.True(t, strings.HasPrefix(exported.ContentType, "text/csv"))
	assert.Contains(t, string(exported.Payload), "room_double_booking")
	assert.Contains(t, string(exported.Payload), "Hall R1")
}

func TestExportConflictsRendersPDF(t *testing.T) {
	svc, _, _ := newScheduleService(t, []models.ExamOccupancy{
		occupancy("E1", "R1", "2026-06-01", "09:00", "11:00", 10),
	}, nil)

	exported, err := svc.ExportConflicts(context.Background(), dto.ExportConflictsQuery{
		ScheduleConflictsQuery: dto.ScheduleConflictsQuery{ScheduleWindowQuery: window("2026-06-01", "2026-06-02")},
		Format:                 "pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", exported.ContentType)
	assert.True(t, bytes.HasPrefix(exported.Payload, []byte("%PDF")))
}

func TestExportConflictsFormatIsCaseInsensitive(t *testing.T) {
	svc, _, _ := newScheduleService(t, []models.ExamOccupancy{
		occupancy("E1", "R1", "2026-06-01", "09:00", "11:00", 10),
	}, nil)

	exported, err := svc.ExportConflicts(context.Background(), dto.ExportConflictsQuery{
		ScheduleConflictsQuery: dto.ScheduleConflictsQuery{ScheduleWindowQuery: window("2026-06-01", "2026-06-02"), Severity: "Warning"},
		Format:                 "PDF",
	})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", exported.ContentType)
}

func TestExportConflictsRejectsFormat(t *testing.T) {
	svc, _, _ := newScheduleService(t, nil, nil)

	_, err := svc.ExportConflicts(context.Background(), dto.ExportConflictsQuery{Format: "xlsx"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
