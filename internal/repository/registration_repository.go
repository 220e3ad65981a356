package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/models"
)

// ErrRegistrationActive is returned when the upsert finds a pending or approved row for the
// same student, meaning another writer registered them first.
var ErrRegistrationActive = errors.New("exam registration already active")

// RegistrationRepository persists student exam registrations.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CountActive returns the number of pending or approved registrations for an exam.
func (r *RegistrationRepository) CountActive(ctx context.Context, exec sqlx.ExtContext, examID string) (int, error) {
	const query = `SELECT COUNT(*) FROM exam_registrations WHERE exam_id = $1 AND status = ANY($2)`
	var count int
	if err := sqlx.GetContext(ctx, r.exec(exec), &count, query,
		examID, pq.Array(registrationStatusStrings(models.ActiveRegistrationStatuses))); err != nil {
		return 0, fmt.Errorf("count active registrations: %w", err)
	}
	return count, nil
}

// ListStudentIDs returns the students registered for an exam with one of statuses.
func (r *RegistrationRepository) ListStudentIDs(ctx context.Context, exec sqlx.ExtContext, examID string, statuses []models.RegistrationStatus) ([]string, error) {
	if len(statuses) == 0 {
		statuses = models.ActiveRegistrationStatuses
	}
	const query = `SELECT student_id FROM exam_registrations WHERE exam_id = $1 AND status = ANY($2) ORDER BY student_id ASC`
	var ids []string
	if err := sqlx.SelectContext(ctx, r.exec(exec), &ids, query, examID, pq.Array(registrationStatusStrings(statuses))); err != nil {
		return nil, fmt.Errorf("list registered students: %w", err)
	}
	return ids, nil
}

// CreateBatch inserts registrations. A cancelled or withdrawn row for the same student is
// reactivated instead of duplicated.
func (r *RegistrationRepository) CreateBatch(ctx context.Context, exec sqlx.ExtContext, registrations []models.Registration) error {
	if len(registrations) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO exam_registrations (id, exam_id, student_id, status, registered_at)
VALUES (:id, :exam_id, :student_id, :status, :registered_at)
ON CONFLICT (exam_id, student_id) DO UPDATE
SET status = EXCLUDED.status,
    registered_at = EXCLUDED.registered_at
WHERE exam_registrations.status IN ('cancelled', 'withdrawn')`

	for i := range registrations {
		reg := &registrations[i]
		if reg.ID == "" {
			reg.ID = uuid.NewString()
		}
		if reg.Status == "" {
			reg.Status = models.RegistrationStatusApproved
		}
		if reg.RegisteredAt.IsZero() {
			reg.RegisteredAt = now
		}
		res, err := sqlx.NamedExecContext(ctx, target, query, reg)
		if err != nil {
			return fmt.Errorf("create exam registration: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("create exam registration: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("create exam registration for student %s: %w", reg.StudentID, ErrRegistrationActive)
		}
	}
	return nil
}
