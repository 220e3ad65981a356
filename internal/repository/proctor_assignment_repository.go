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

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres unique constraint failure or a registration
// upsert that lost to an already active row.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, ErrRegistrationActive) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// ProctorAssignmentRepository persists exam proctor assignments.
type ProctorAssignmentRepository struct {
	db *sqlx.DB
}

// NewProctorAssignmentRepository constructs the repository.
func NewProctorAssignmentRepository(db *sqlx.DB) *ProctorAssignmentRepository {
	return &ProctorAssignmentRepository{db: db}
}

func (r *ProctorAssignmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListByExamIDs returns the assignments of the given exams with proctor names.
func (r *ProctorAssignmentRepository) ListByExamIDs(ctx context.Context, exec sqlx.ExtContext, examIDs []string) ([]models.ProctorAssignmentDetail, error) {
	if len(examIDs) == 0 {
		return []models.ProctorAssignmentDetail{}, nil
	}
	const query = `
SELECT ep.id, ep.exam_id, ep.proctor_id, COALESCE(u.full_name, '') AS proctor_name, ep.role
FROM exam_proctors ep
LEFT JOIN users u ON u.id = ep.proctor_id
WHERE ep.exam_id = ANY($1)
ORDER BY ep.exam_id ASC, ep.role DESC, ep.proctor_id ASC`
	var assignments []models.ProctorAssignmentDetail
	if err := sqlx.SelectContext(ctx, r.exec(exec), &assignments, query, pq.Array(examIDs)); err != nil {
		return nil, fmt.Errorf("list exam proctors: %w", err)
	}
	return assignments, nil
}

// ListProctorIDs returns the proctors already assigned to an exam.
func (r *ProctorAssignmentRepository) ListProctorIDs(ctx context.Context, exec sqlx.ExtContext, examID string) ([]string, error) {
	const query = `SELECT proctor_id FROM exam_proctors WHERE exam_id = $1 ORDER BY proctor_id ASC`
	var ids []string
	if err := sqlx.SelectContext(ctx, r.exec(exec), &ids, query, examID); err != nil {
		return nil, fmt.Errorf("list exam proctor ids: %w", err)
	}
	return ids, nil
}

// CreateBatch inserts assignments. The (exam_id, proctor_id) unique constraint rejects duplicates.
func (r *ProctorAssignmentRepository) CreateBatch(ctx context.Context, exec sqlx.ExtContext, assignments []models.ProctorAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `INSERT INTO exam_proctors (id, exam_id, proctor_id, role, assigned_at)
VALUES (:id, :exam_id, :proctor_id, :role, :assigned_at)`

	for i := range assignments {
		assignment := &assignments[i]
		if assignment.ID == "" {
			assignment.ID = uuid.NewString()
		}
		if assignment.Role == "" {
			assignment.Role = models.ProctorRoleAssistant
		}
		if assignment.AssignedAt.IsZero() {
			assignment.AssignedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, assignment); err != nil {
			return fmt.Errorf("create exam proctor: %w", err)
		}
	}
	return nil
}
