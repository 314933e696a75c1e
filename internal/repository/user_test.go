package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_Follow(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
		wantCreated  bool
	}{
		{name: "new edge created", rowsAffected: 1, wantCreated: true},
		{name: "edge already exists", rowsAffected: 0, wantCreated: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewUserRepository(db)

			mock.ExpectExec(regexp.QuoteMeta(
				`INSERT INTO follows (follower_id, followee_id, created_at) VALUES ($1, $2, CURRENT_TIMESTAMP) ON CONFLICT (follower_id, followee_id) DO NOTHING`)).
				WithArgs(1, 2).
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))

			created, err := repo.Follow(context.Background(), 1, 2)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, created)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Unfollow(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
		wantRemoved  bool
	}{
		{name: "edge removed", rowsAffected: 1, wantRemoved: true},
		{name: "no edge to remove", rowsAffected: 0, wantRemoved: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewUserRepository(db)

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(
				`DELETE FROM "follows" WHERE follower_id = $1 AND followee_id = $2`)).
				WithArgs(1, 2).
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))
			mock.ExpectCommit()

			removed, err := repo.Unfollow(context.Background(), 1, 2)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRemoved, removed)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT users\..*FROM "users"`).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := repo.GetByID(context.Background(), 99, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Search_Limit(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "username"}).
		AddRow(1, "amira").
		AddRow(2, "amir")
	mock.ExpectQuery(`SELECT .* FROM "users" WHERE username ILIKE .* LIMIT`).
		WillReturnRows(rows)

	users, err := repo.Search(context.Background(), "ami", 20)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
