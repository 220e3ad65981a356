package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/models"
)

const examColumns = `e.id, e.title, e.subject_id, e.room_id, e.exam_date, e.start_time, e.end_time, e.status, e.max_students, e.method`

// ExamRepository reads exam sittings and their live occupancy.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs the repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

func (r *ExamRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListSnapshot returns exams in the filter's date range joined with room, subject, active
// registration count and proctor count.
func (r *ExamRepository) ListSnapshot(ctx context.Context, exec sqlx.ExtContext, filter models.ScheduleFilter) ([]models.ExamOccupancy, error) {
	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = models.ActiveExamStatuses
	}

	args := []interface{}{
		filter.DateFrom.Format(models.DateLayout),
		filter.DateTo.Format(models.DateLayout),
		pq.Array(registrationStatusStrings(models.ActiveRegistrationStatuses)),
		pq.Array(examStatusStrings(statuses)),
	}
	conditions := []string{"e.exam_date BETWEEN $1 AND $2", "e.status = ANY($4)"}
	if filter.RoomID != "" {
		args = append(args, filter.RoomID)
		conditions = append(conditions, fmt.Sprintf("e.room_id = $%d", len(args)))
	}
	if filter.SubjectID != "" {
		args = append(args, filter.SubjectID)
		conditions = append(conditions, fmt.Sprintf("e.subject_id = $%d", len(args)))
	}

	query := `SELECT ` + examColumns + `,
       COALESCE(s.name, '') AS subject_name, rm.name AS room_name, rm.capacity AS room_capacity,
       (SELECT COUNT(*) FROM exam_registrations er WHERE er.exam_id = e.id AND er.status = ANY($3)) AS registered_count,
       (SELECT COUNT(*) FROM exam_proctors ep WHERE ep.exam_id = e.id) AS proctor_count
FROM exams e
LEFT JOIN subjects s ON s.id = e.subject_id
LEFT JOIN rooms rm ON rm.id = e.room_id
WHERE ` + strings.Join(conditions, " AND ") + `
ORDER BY e.exam_date ASC, e.start_time ASC, e.id ASC`

	var exams []models.ExamOccupancy
	if err := sqlx.SelectContext(ctx, r.exec(exec), &exams, query, args...); err != nil {
		return nil, fmt.Errorf("list exam snapshot: %w", err)
	}
	for i := range exams {
		exams[i].Date = exams[i].DateKey()
	}
	return exams, nil
}

// FindByIDForUpdate loads an exam and locks its row until the surrounding transaction ends.
func (r *ExamRepository) FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Exam, error) {
	const query = `SELECT ` + examColumns + ` FROM exams e WHERE e.id = $1 FOR UPDATE`
	var exam models.Exam
	if err := sqlx.GetContext(ctx, r.exec(exec), &exam, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find exam for update: %w", err)
	}
	return &exam, nil
}

// ListByProctorsOnDate returns the non-cancelled exams the given proctors already cover on date,
// leaving out excludeExamID.
func (r *ExamRepository) ListByProctorsOnDate(ctx context.Context, exec sqlx.ExtContext, proctorIDs []string, date time.Time, excludeExamID string) ([]models.ProctorBooking, error) {
	if len(proctorIDs) == 0 {
		return []models.ProctorBooking{}, nil
	}
	const query = `
SELECT ep.proctor_id, e.id AS exam_id, e.title, e.exam_date, e.start_time, e.end_time, e.status
FROM exam_proctors ep
JOIN exams e ON e.id = ep.exam_id
WHERE ep.proctor_id = ANY($1) AND e.exam_date = $2 AND e.id <> $3 AND e.status <> $4
ORDER BY ep.proctor_id ASC, e.start_time ASC, e.id ASC`
	var bookings []models.ProctorBooking
	if err := sqlx.SelectContext(ctx, r.exec(exec), &bookings, query,
		pq.Array(proctorIDs), date.Format(models.DateLayout), excludeExamID, models.ExamStatusCancelled); err != nil {
		return nil, fmt.Errorf("list proctor bookings: %w", err)
	}
	return bookings, nil
}

func examStatusStrings(statuses []models.ExamStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func registrationStatusStrings(statuses []models.RegistrationStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
