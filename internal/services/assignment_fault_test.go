package services

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB opens a GORM handle over a sqlmock connection so storage faults
// can be injected at exact points of a transaction.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestUnassignAbortsOnLookupFailure(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewAssignmentService(db)

	storageErr := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `tasks`").WillReturnError(storageErr)
	mock.ExpectRollback()

	err := svc.Unassign("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	assert.ErrorIs(t, err, storageErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnassignSurfacesCommitFailure(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewAssignmentService(db)

	taskID := "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	now := time.Now()
	commitErr := errors.New("commit refused")

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `tasks`").WillReturnRows(
		sqlmock.NewRows([]string{
			"id", "name", "description", "deadline", "completed",
			"assigned_user", "assigned_user_name", "date_created",
		}).AddRow(taskID, "doomed", "", now, false, "", "unassigned", now),
	)
	mock.ExpectExec("DELETE FROM `tasks`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(commitErr)

	err := svc.Unassign(taskID)

	assert.ErrorIs(t, err, commitErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}
