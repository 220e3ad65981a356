package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/models"
)

var snapshotColumns = []string{
	"id", "title", "subject_id", "room_id", "exam_date", "start_time", "end_time", "status", "max_students", "method",
	"subject_name", "room_name", "room_capacity", "registered_count", "proctor_count",
}

func TestExamRepositoryListSnapshot(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(snapshotColumns).
		AddRow("e1", "Algebra", "sub-1", "r1", date, "09:00:00", "11:00:00", "published", 30, "offline", "Math", "Hall A", 40, 25, 1).
		AddRow("e2", "Essay", "sub-2", nil, date, "13:00:00", "14:00:00", "draft", 50, "online", "English", nil, nil, 0, 0)
	mock.ExpectQuery(regexp.QuoteMeta("FROM exams e")).
		WithArgs("2025-06-01", "2025-06-30", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	exams, err := repo.ListSnapshot(context.Background(), nil, models.ScheduleFilter{
		DateFrom: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		DateTo:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, exams, 2)

	assert.Equal(t, "2025-06-02", exams[0].Date)
	require.NotNil(t, exams[0].RoomCapacity)
	assert.Equal(t, 40, *exams[0].RoomCapacity)
	assert.Equal(t, 25, exams[0].RegisteredCount)
	assert.Equal(t, models.ExamStatusPublished, exams[0].Status)
	assert.Equal(t, "09:00:00", exams[0].StartTime)

	assert.False(t, exams[1].HasRoom())
	assert.Nil(t, exams[1].RoomName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryListSnapshotFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("e.room_id = $5 AND e.subject_id = $6")).
		WithArgs("2025-06-01", "2025-06-02", sqlmock.AnyArg(), sqlmock.AnyArg(), "r1", "sub-1").
		WillReturnRows(sqlmock.NewRows(snapshotColumns))

	exams, err := repo.ListSnapshot(context.Background(), nil, models.ScheduleFilter{
		DateFrom:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		DateTo:    time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		RoomID:    "r1",
		SubjectID: "sub-1",
	})
	require.NoError(t, err)
	assert.Empty(t, exams)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryFindByIDForUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	rows := sqlmock.NewRows(snapshotColumns[:10]).
		AddRow("e4", "Physics", "sub-3", "r1", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), "09:00", "11:00", "published", 20, "offline")
	mock.ExpectQuery(regexp.QuoteMeta("FROM exams e WHERE e.id = $1 FOR UPDATE")).
		WithArgs("e4").
		WillReturnRows(rows)

	exam, err := repo.FindByIDForUpdate(context.Background(), nil, "e4")
	require.NoError(t, err)
	assert.Equal(t, 20, exam.MaxStudents)
	assert.Equal(t, "2025-06-02", exam.DateKey())

	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.FindByIDForUpdate(context.Background(), nil, "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryListByProctorsOnDate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"proctor_id", "exam_id", "title", "exam_date", "start_time", "end_time", "status"}).
		AddRow("p1", "e5", "Chemistry", date, "09:00:00", "11:00:00", "published")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE ep.proctor_id = ANY($1) AND e.exam_date = $2 AND e.id <> $3 AND e.status <> $4")).
		WithArgs(sqlmock.AnyArg(), "2025-06-02", "e6", "cancelled").
		WillReturnRows(rows)

	bookings, err := repo.ListByProctorsOnDate(context.Background(), nil, []string{"p1", "p2"}, date, "e6")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "e5", bookings[0].ExamID)
	assert.Equal(t, "p1", bookings[0].ProctorID)

	none, err := repo.ListByProctorsOnDate(context.Background(), nil, nil, date, "e6")
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NoError(t, mock.ExpectationsWereMet())
}
