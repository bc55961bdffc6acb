package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sisacad/sisacad-api/internal/models"
	appErrors "github.com/sisacad/sisacad-api/pkg/errors"
)

type mockCatalog struct {
	courses  map[string]*models.Course
	rooms    map[string]*models.Room
	sections map[string]*models.Section
	teachers map[string]*models.Teacher
	students map[string]*models.Student
}

func (m *mockCatalog) FindCourse(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCatalog) FindRoom(ctx context.Context, id string) (*models.Room, error) {
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCatalog) FindSection(ctx context.Context, id string) (*models.Section, error) {
	if s, ok := m.sections[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCatalog) FindTeacher(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := m.teachers[id]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCatalog) FindStudent(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockBlockRepo struct {
	blocks map[string]*models.ScheduleBlock
}

func (m *mockBlockRepo) FindByID(ctx context.Context, id string) (*models.ScheduleBlock, error) {
	if b, ok := m.blocks[id]; ok {
		return b, nil
	}
	return nil, sql.ErrNoRows
}

type mockAssignmentRepo struct {
	mu          sync.Mutex
	assignments []models.Assignment
	summaries   []models.SectionSummary
	cyclesSeen  []int
	nextID      int
}

func (m *mockAssignmentRepo) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.assignments {
		if a.ID == id {
			copied := a
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAssignmentRepo) ListByRoomAndDay(ctx context.Context, roomID string, day models.Weekday) ([]models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Assignment
	for _, a := range m.assignments {
		if a.RoomID == roomID && a.Day == day {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAssignmentRepo) ListByTeacherAndDay(ctx context.Context, teacherID string, day models.Weekday) ([]models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Assignment
	for _, a := range m.assignments {
		if a.TeacherID == teacherID && a.Day == day {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAssignmentRepo) ExistsSlot(ctx context.Context, courseID, sectionID string, day models.Weekday, start models.MinuteOfDay, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.assignments {
		if a.ID == excludeID {
			continue
		}
		if a.CourseID == courseID && a.SectionID == sectionID && a.Day == day && a.StartMin == start {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAssignmentRepo) ExistsKind(ctx context.Context, courseID, sectionID string, kind models.AssignmentKind) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.assignments {
		if a.CourseID == courseID && a.SectionID == sectionID && a.Kind == kind {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAssignmentRepo) CreateBatch(ctx context.Context, assignments []*models.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range assignments {
		m.nextID++
		a.ID = fmt.Sprintf("asg-%d", m.nextID)
		a.CreatedAt = time.Now()
		m.assignments = append(m.assignments, *a)
	}
	return nil
}

func (m *mockAssignmentRepo) Update(ctx context.Context, assignment *models.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.assignments {
		if a.ID == assignment.ID {
			m.assignments[i] = *assignment
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockAssignmentRepo) List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, int, error) {
	return nil, 0, nil
}

func (m *mockAssignmentRepo) ListOpenByCycles(ctx context.Context, cycles []int) ([]models.SectionSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cyclesSeen = cycles
	return m.summaries, nil
}

func newAssignmentFixture() (*AssignmentService, *mockAssignmentRepo, *mockCatalog) {
	catalog := &mockCatalog{
		courses: map[string]*models.Course{
			"course-1": {ID: "course-1", Code: "MAT101", Name: "Calculus I", Cycle: 1, LectureHours: 2, LabHours: 0, Status: models.StatusActive},
			"course-2": {ID: "course-2", Code: "FIS201", Name: "Physics II", Cycle: 3, LectureHours: 2, LabHours: 2, Status: models.StatusActive},
		},
		rooms: map[string]*models.Room{
			"room-1": {ID: "room-1", Code: "B-201", Capacity: 40, Status: models.RoomOperational},
			"room-2": {ID: "room-2", Code: "LAB-1", Capacity: 25, Status: models.RoomOperational},
			"room-x": {ID: "room-x", Code: "C-105", Capacity: 40, Status: models.RoomMaintenance},
		},
		sections: map[string]*models.Section{
			"sec-1": {ID: "sec-1", Code: "A", Cycle: 1, Status: models.StatusActive},
		},
		teachers: map[string]*models.Teacher{
			"tea-1": {ID: "tea-1", FullName: "R. Quispe", Status: models.StatusActive},
			"tea-2": {ID: "tea-2", FullName: "M. Torres", Status: models.StatusActive},
		},
	}
	repo := &mockAssignmentRepo{}
	svc := NewAssignmentService(repo, catalog, &mockBlockRepo{}, nil, nil, nil, nil)
	return svc, repo, catalog
}

func lectureReq(roomID, teacherID, day, start string) models.CreateAssignmentRequest {
	return models.CreateAssignmentRequest{
		CourseID:             "course-1",
		SectionID:            "sec-1",
		ExpectedStudentCount: 30,
		Lecture:              &models.KindSpec{TeacherID: teacherID, RoomID: roomID, Day: day, Start: start},
	}
}

func TestAssignmentCreateDerivesEndTime(t *testing.T) {
	svc, repo, _ := newAssignmentFixture()

	created, err := svc.Create(context.Background(), lectureReq("room-1", "tea-1", "MONDAY", "08:00"))
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, models.MinuteOfDay(8*60), created[0].StartMin)
	assert.Equal(t, models.MinuteOfDay(8*60+100), created[0].EndMin)
	assert.Len(t, repo.assignments, 1)
}

func TestAssignmentCreateHoursMismatch(t *testing.T) {
	svc, _, _ := newAssignmentFixture()

	// Lab placement for a course with no lab hours.
	req := lectureReq("room-1", "tea-1", "MONDAY", "08:00")
	req.Lab = &models.KindSpec{TeacherID: "tea-1", RoomID: "room-2", Day: "TUESDAY", Start: "08:00"}
	_, err := svc.Create(context.Background(), req)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrHoursMismatch))

	// Missing lab placement for a course that requires one.
	req = models.CreateAssignmentRequest{
		CourseID:             "course-2",
		SectionID:            "sec-1",
		ExpectedStudentCount: 20,
		Lecture:              &models.KindSpec{TeacherID: "tea-1", RoomID: "room-1", Day: "MONDAY", Start: "08:00"},
	}
	_, err = svc.Create(context.Background(), req)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrHoursMismatch))
}

func TestAssignmentCreateRoomChecks(t *testing.T) {
	svc, _, _ := newAssignmentFixture()

	_, err := svc.Create(context.Background(), lectureReq("room-x", "tea-1", "MONDAY", "08:00"))
	assert.True(t, appErrors.HasCode(err, appErrors.ErrRoomInactive))

	req := lectureReq("room-2", "tea-1", "MONDAY", "08:00")
	req.ExpectedStudentCount = 30 // room-2 holds 25
	_, err = svc.Create(context.Background(), req)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrCapacityExceeded))
}

func TestAssignmentCreateRoomConflict(t *testing.T) {
	svc, _, _ := newAssignmentFixture()

	_, err := svc.Create(context.Background(), lectureReq("room-1", "tea-1", "MONDAY", "08:00"))
	require.NoError(t, err)

	// Overlapping block in the same room, different course slot owner.
	req := lectureReq("room-1", "tea-2", "MONDAY", "09:00")
	req.CourseID = "course-1"
	req.SectionID = "sec-1"
	_, err = svc.Create(context.Background(), req)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrRoomConflict))
}

func TestAssignmentCreateTeacherConflictAcrossRooms(t *testing.T) {
	svc, _, _ := newAssignmentFixture()

	_, err := svc.Create(context.Background(), lectureReq("room-1", "tea-1", "MONDAY", "08:00"))
	require.NoError(t, err)

	// Same teacher, different room, overlapping time.
	req := models.CreateAssignmentRequest{
		CourseID:             "course-2",
		SectionID:            "sec-1",
		ExpectedStudentCount: 20,
		Lecture:              &models.KindSpec{TeacherID: "tea-1", RoomID: "room-2", Day: "MONDAY", Start: "09:00"},
		Lab:                  &models.KindSpec{TeacherID: "tea-2", RoomID: "room-2", Day: "FRIDAY", Start: "10:00"},
	}
	_, err = svc.Create(context.Background(), req)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrTeacherConflict))
}

func TestAssignmentCreateBackToBackIsAllowed(t *testing.T) {
	svc, _, _ := newAssignmentFixture()

	_, err := svc.Create(context.Background(), lectureReq("room-1", "tea-1", "MONDAY", "08:00"))
	require.NoError(t, err)

	// course-1 lecture ends 09:40; a block starting exactly then is fine.
	req := models.CreateAssignmentRequest{
		CourseID:             "course-2",
		SectionID:            "sec-1",
		ExpectedStudentCount: 20,
		Lecture:              &models.KindSpec{TeacherID: "tea-1", RoomID: "room-1", Day: "MONDAY", Start: "09:40"},
		Lab:                  &models.KindSpec{TeacherID: "tea-2", RoomID: "room-2", Day: "FRIDAY", Start: "10:00"},
	}
	_, err = svc.Create(context.Background(), req)
	require.NoError(t, err)
}

func TestAssignmentCreateLectureAndLabCannotShareSlot(t *testing.T) {
	svc, _, _ := newAssignmentFixture()

	req := models.CreateAssignmentRequest{
		CourseID:             "course-2",
		SectionID:            "sec-1",
		ExpectedStudentCount: 20,
		Lecture:              &models.KindSpec{TeacherID: "tea-1", RoomID: "room-1", Day: "MONDAY", Start: "08:00"},
		Lab:                  &models.KindSpec{TeacherID: "tea-2", RoomID: "room-2", Day: "MONDAY", Start: "08:00"},
	}
	_, err := svc.Create(context.Background(), req)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrDuplicateSlot))
}

func TestAssignmentCreateDuplicateKind(t *testing.T) {
	svc, _, _ := newAssignmentFixture()

	_, err := svc.Create(context.Background(), lectureReq("room-1", "tea-1", "MONDAY", "08:00"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), lectureReq("room-2", "tea-2", "TUESDAY", "10:00"))
	assert.True(t, appErrors.HasCode(err, appErrors.ErrDuplicateSlot))
}

func TestAssignmentCreateConcurrentOneWinner(t *testing.T) {
	svc, repo, catalog := newAssignmentFixture()
	catalog.courses["course-3"] = &models.Course{ID: "course-3", Code: "QUI101", Cycle: 1, LectureHours: 2, Status: models.StatusActive}

	var wg sync.WaitGroup
	results := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := svc.Create(context.Background(), lectureReq("room-1", "tea-1", "MONDAY", "08:00"))
		results <- err
	}()
	go func() {
		defer wg.Done()
		req := lectureReq("room-1", "tea-2", "MONDAY", "08:30")
		req.CourseID = "course-3"
		_, err := svc.Create(context.Background(), req)
		results <- err
	}()
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case appErrors.HasCode(err, appErrors.ErrRoomConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)
	assert.Len(t, repo.assignments, 1)
}

func TestAssignmentEditExcludesSelfFromConflictScan(t *testing.T) {
	svc, repo, _ := newAssignmentFixture()

	created, err := svc.Create(context.Background(), lectureReq("room-1", "tea-1", "MONDAY", "08:00"))
	require.NoError(t, err)
	id := created[0].ID

	// Shift by 30 minutes; overlaps only its own previous block.
	updated, err := svc.Edit(context.Background(), id, models.EditAssignmentRequest{
		TeacherID:            "tea-1",
		RoomID:               "room-1",
		Day:                  "MONDAY",
		Start:                "08:30",
		ExpectedStudentCount: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, models.MinuteOfDay(8*60+30), updated.StartMin)
	assert.Len(t, repo.assignments, 1)
}

func TestAssignmentEditStillDetectsForeignConflicts(t *testing.T) {
	svc, _, catalog := newAssignmentFixture()
	catalog.courses["course-3"] = &models.Course{ID: "course-3", Code: "QUI101", Cycle: 1, LectureHours: 2, Status: models.StatusActive}

	created, err := svc.Create(context.Background(), lectureReq("room-1", "tea-1", "MONDAY", "08:00"))
	require.NoError(t, err)

	other := lectureReq("room-1", "tea-2", "MONDAY", "11:00")
	other.CourseID = "course-3"
	_, err = svc.Create(context.Background(), other)
	require.NoError(t, err)

	_, err = svc.Edit(context.Background(), created[0].ID, models.EditAssignmentRequest{
		TeacherID:            "tea-1",
		RoomID:               "room-1",
		Day:                  "MONDAY",
		Start:                "11:30",
		ExpectedStudentCount: 30,
	})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrRoomConflict))
}

func TestAssignmentCreateResolvesCatalogBlock(t *testing.T) {
	catalog := &mockCatalog{
		courses:  map[string]*models.Course{"course-1": {ID: "course-1", Code: "MAT101", Cycle: 1, LectureHours: 2, Status: models.StatusActive}},
		rooms:    map[string]*models.Room{"room-1": {ID: "room-1", Code: "B-201", Capacity: 40, Status: models.RoomOperational}},
		sections: map[string]*models.Section{"sec-1": {ID: "sec-1", Code: "A", Status: models.StatusActive}},
		teachers: map[string]*models.Teacher{"tea-1": {ID: "tea-1", Status: models.StatusActive}},
	}
	blocks := &mockBlockRepo{blocks: map[string]*models.ScheduleBlock{
		"blk-1": {ID: "blk-1", Code: "LUN-M1", Day: models.Monday, StartMin: 8 * 60, EndMin: 8*60 + 100},
	}}
	repo := &mockAssignmentRepo{}
	svc := NewAssignmentService(repo, catalog, blocks, nil, nil, nil, nil)

	req := models.CreateAssignmentRequest{
		CourseID:             "course-1",
		SectionID:            "sec-1",
		ExpectedStudentCount: 30,
		Lecture:              &models.KindSpec{TeacherID: "tea-1", RoomID: "room-1", BlockID: "blk-1"},
	}
	created, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, models.Monday, created[0].Day)
	require.NotNil(t, created[0].BlockID)
	assert.Equal(t, "blk-1", *created[0].BlockID)
}
