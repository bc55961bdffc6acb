package repository

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/sisacad/sisacad-api/internal/models"
)

var errBoom = errors.New("boom")

func TestCascadeRepositoryPlanCountsDependents(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCascadeRepository(db)

	scope := models.CascadeScope{Kind: models.CascadeSection, RootID: "sec-1"}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM attendance_records").
		WithArgs("sec-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM enrollments").
		WithArgs("sec-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM materials").
		WithArgs("sec-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM class_sessions").
		WithArgs("sec-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(8))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM").
		WithArgs("sec-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	plan, err := repo.Plan(context.Background(), scope)
	require.NoError(t, err)
	require.Equal(t, 12, plan.AttendanceRecords)
	require.Equal(t, 5, plan.Enrollments)
	require.Equal(t, 3, plan.Materials)
	require.Equal(t, 8, plan.ClassSessions)
	require.Equal(t, 2, plan.Assignments)
	require.True(t, plan.HasDependents())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCascadeRepositoryExecuteDeletesDeepestFirst(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCascadeRepository(db)

	scope := models.CascadeScope{Kind: models.CascadeSection, RootID: "sec-1"}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM attendance_records\\s+WHERE enrollment_id").
		WithArgs("sec-1").WillReturnResult(sqlmock.NewResult(0, 10))
	mock.ExpectExec("DELETE FROM attendance_records\\s+WHERE session_id").
		WithArgs("sec-1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM enrollments").
		WithArgs("sec-1").WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec("DELETE FROM materials").
		WithArgs("sec-1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM class_sessions").
		WithArgs("sec-1").WillReturnResult(sqlmock.NewResult(0, 8))
	mock.ExpectExec("DELETE FROM assignments").
		WithArgs("sec-1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM sections").
		WithArgs("sec-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.Execute(context.Background(), scope)
	require.NoError(t, err)
	require.Equal(t, 12, result.AttendanceRecords)
	require.Equal(t, 5, result.Enrollments)
	require.Equal(t, 3, result.Materials)
	require.Equal(t, 8, result.ClassSessions)
	require.Equal(t, 2, result.Assignments)
	require.True(t, result.RootDeleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCascadeRepositoryExecuteRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCascadeRepository(db)

	scope := models.CascadeScope{Kind: models.CascadeScheduleBlock, RootID: "blk-1"}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM attendance_records").
		WithArgs("blk-1").WillReturnError(errBoom)
	mock.ExpectRollback()

	_, err := repo.Execute(context.Background(), scope)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
