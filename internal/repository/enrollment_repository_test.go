package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/sisacad/sisacad-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEnrollmentRepositoryExistsActiveByCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("SELECT 1 FROM enrollments e").
		WithArgs("stu-1", "course-1", models.EnrollmentActive).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsActiveByCourse(context.Background(), "stu-1", "course-1")
	require.NoError(t, err)
	require.True(t, exists)

	mock.ExpectQuery("SELECT 1 FROM enrollments e").
		WithArgs("stu-1", "course-2", models.EnrollmentActive).
		WillReturnError(sql.ErrNoRows)

	exists, err = repo.ExistsActiveByCourse(context.Background(), "stu-1", "course-2")
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListActiveDetailed(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "student_id", "assignment_id", "status", "enrolled_at", "withdrawn_at",
		"course_id", "course_code", "course_name", "course_cycle",
		"section_code", "teacher_name", "room_code", "kind", "day", "start_min", "end_min",
		"attendance_pct",
	}).AddRow("enr-1", "stu-1", "asg-1", models.EnrollmentActive, time.Now(), nil,
		"course-1", "MAT101", "Calculus I", 1,
		"A", "R. Quispe", "B-201", models.KindLecture, models.Monday, 480, 580, 75.0)

	mock.ExpectQuery("FROM enrollments e").
		WithArgs("stu-1", models.EnrollmentActive).
		WillReturnRows(rows)

	details, err := repo.ListActiveDetailed(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.Equal(t, "course-1", details[0].CourseID)
	require.Equal(t, models.Monday, details[0].Day)
	require.InDelta(t, 75.0, details[0].AttendancePct, 0.001)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateGeneratesIDAndDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("INSERT INTO enrollments").
		WillReturnResult(sqlmock.NewResult(1, 1))

	enrollment := &models.Enrollment{StudentID: "stu-1", AssignmentID: "asg-1"}
	err := repo.Create(context.Background(), enrollment)
	require.NoError(t, err)
	require.NotEmpty(t, enrollment.ID)
	require.Equal(t, models.EnrollmentActive, enrollment.Status)
	require.False(t, enrollment.EnrolledAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryWithdrawMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET status = $2, withdrawn_at = $3 WHERE id = $1 AND status = $4")).
		WithArgs("enr-404", models.EnrollmentWithdrawn, sqlmock.AnyArg(), models.EnrollmentActive).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Withdraw(context.Background(), "enr-404", time.Now())
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDeleteHardRemovesAttendanceFirst(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attendance_records WHERE enrollment_id = $1")).
		WithArgs("enr-1").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM enrollments WHERE id = $1")).
		WithArgs("enr-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.DeleteHard(context.Background(), "enr-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
