package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/models"
)

// RoomRepository reads examination rooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs the repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// FindByID returns a room by identifier.
func (r *RoomRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Room, error) {
	target := exec
	if target == nil {
		target = r.db
	}
	const query = `SELECT id, name, capacity, is_active FROM rooms WHERE id = $1 LIMIT 1`
	var room models.Room
	if err := sqlx.GetContext(ctx, target, &room, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find room by id: %w", err)
	}
	return &room, nil
}
