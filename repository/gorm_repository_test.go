package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRepoMock(t *testing.T) (*GORMRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open gorm: %v", err)
	}

	repo := NewGORMRepository(gormDB)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestGetUserByUsername_Found(t *testing.T) {
	repo, mock, cleanup := setupRepoMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "username", "email", "role", "deactivated"}).
		AddRow("user-1", "alice", "alice@example.com", "patient", false)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnRows(rows)

	user, err := repo.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil {
		t.Fatal("expected a user, got nil")
	}
	if user.ID != "user-1" || user.Username != "alice" {
		t.Errorf("user = %+v; want user-1/alice", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	repo, mock, cleanup := setupRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	user, err := repo.GetUserByUsername(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil for missing user, got %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetUserByUsername_QueryError(t *testing.T) {
	repo, mock, cleanup := setupRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetUserByUsername(context.Background(), "alice")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetSessionByToken_ExcludesExpired(t *testing.T) {
	repo, mock, cleanup := setupRepoMock(t)
	defer cleanup()

	// Expired sessions are filtered in SQL, so the query returns no rows
	mock.ExpectQuery(`SELECT \* FROM "sessions" WHERE token = \$1 AND expires_at > \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	session, err := repo.GetSessionByToken(context.Background(), "hashed-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session != nil {
		t.Errorf("expected nil for expired session, got %+v", session)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDeleteTrackingEntry_NotFound(t *testing.T) {
	repo, mock, cleanup := setupRepoMock(t)
	defer cleanup()

	// Soft delete issues an UPDATE on deleted_at
	mock.ExpectExec(`UPDATE "tracking_entries" SET "deleted_at"=`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteTrackingEntry(context.Background(), "missing", "user-1")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("error = %v; want gorm.ErrRecordNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestLikeCommunityPost_NotFound(t *testing.T) {
	repo, mock, cleanup := setupRepoMock(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE "community_posts" SET "likes"=likes \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.LikeCommunityPost(context.Background(), "missing")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("error = %v; want gorm.ErrRecordNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestLikeCommunityPost_Success(t *testing.T) {
	repo, mock, cleanup := setupRepoMock(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE "community_posts" SET "likes"=likes \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.LikeCommunityPost(context.Background(), "post-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
