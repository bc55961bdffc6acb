package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/sisacad/sisacad-api/internal/models"
)

func TestAssignmentRepositoryListByRoomAndDay(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "course_id", "section_id", "teacher_id", "room_id", "block_id", "kind",
		"day", "start_min", "end_min", "student_capacity", "created_at", "updated_at",
	}).AddRow("asg-1", "course-1", "sec-1", "tea-1", "room-1", nil, models.KindLecture,
		models.Monday, 480, 580, 30, time.Now(), time.Now())

	mock.ExpectQuery("FROM assignments WHERE room_id").
		WithArgs("room-1", models.Monday).
		WillReturnRows(rows)

	assignments, err := repo.ListByRoomAndDay(context.Background(), "room-1", models.Monday)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.Equal(t, models.MinuteOfDay(480), assignments[0].StartMin)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryExistsSlotExcludesSelf(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery("SELECT 1 FROM assignments WHERE course_id").
		WithArgs("course-1", "sec-1", models.Monday, models.MinuteOfDay(480), "asg-1").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsSlot(context.Background(), "course-1", "sec-1", models.Monday, 480, "asg-1")
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryCreateBatchIsTransactional(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO assignments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO assignments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	lecture := &models.Assignment{
		CourseID: "course-1", SectionID: "sec-1", TeacherID: "tea-1", RoomID: "room-1",
		Kind: models.KindLecture, Day: models.Monday, StartMin: 480, EndMin: 580, StudentCapacity: 30,
	}
	lab := &models.Assignment{
		CourseID: "course-1", SectionID: "sec-1", TeacherID: "tea-1", RoomID: "room-2",
		Kind: models.KindLab, Day: models.Wednesday, StartMin: 600, EndMin: 700, StudentCapacity: 30,
	}

	err := repo.CreateBatch(context.Background(), []*models.Assignment{lecture, lab})
	require.NoError(t, err)
	require.NotEmpty(t, lecture.ID)
	require.NotEmpty(t, lab.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryCreateBatchRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO assignments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO assignments").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	batch := []*models.Assignment{
		{CourseID: "course-1", SectionID: "sec-1", Kind: models.KindLecture, Day: models.Monday},
		{CourseID: "course-1", SectionID: "sec-1", Kind: models.KindLab, Day: models.Tuesday},
	}

	err := repo.CreateBatch(context.Background(), batch)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
