package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	query := regexp.QuoteMeta("SELECT id, name, capacity, is_active FROM rooms WHERE id = $1 LIMIT 1")
	mock.ExpectQuery(query).
		WithArgs("R1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "capacity", "is_active"}).AddRow("R1", "Hall 1", 30, true))

	room, err := repo.FindByID(context.Background(), nil, "R1")
	require.NoError(t, err)
	assert.Equal(t, "Hall 1", room.Name)
	assert.Equal(t, 30, room.Capacity)
	assert.True(t, room.Active)

	mock.ExpectQuery(query).WithArgs("missing").WillReturnError(sql.ErrNoRows)
	_, err = repo.FindByID(context.Background(), nil, "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryFindByIDInsideTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM rooms WHERE id = \\$1").
		WithArgs("R2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "capacity", "is_active"}).AddRow("R2", "Lab", 12, true))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)
	room, err := repo.FindByID(context.Background(), tx, "R2")
	require.NoError(t, err)
	assert.Equal(t, 12, room.Capacity)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
