package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/models"
)

// UserRepository reads students and proctors from the users table.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, full_name, role, active FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// ListByIDs returns the active users among ids holding role. Missing ids are simply absent from
// the result.
func (r *UserRepository) ListByIDs(ctx context.Context, exec sqlx.ExtContext, ids []string, role models.UserRole) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	const query = `SELECT id, full_name, role, active FROM users WHERE id = ANY($1) AND role = $2 AND active = TRUE ORDER BY id ASC`
	var users []models.User
	if err := sqlx.SelectContext(ctx, r.exec(exec), &users, query, pq.Array(ids), string(role)); err != nil {
		return nil, fmt.Errorf("list users by ids: %w", err)
	}
	return users, nil
}
