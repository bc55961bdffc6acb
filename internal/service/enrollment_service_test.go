package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sisacad/sisacad-api/internal/models"
	appErrors "github.com/sisacad/sisacad-api/pkg/errors"
)

type mockEnrollRepo struct {
	enrollments map[string]models.Enrollment
	details     []models.EnrollmentDetail
	created     *models.Enrollment
	withdrawn   []string
	deleted     []string
	nextID      int
}

func (m *mockEnrollRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollRepo) ExistsActiveByCourse(ctx context.Context, studentID, courseID string) (bool, error) {
	for _, d := range m.details {
		if d.StudentID == studentID && d.CourseID == courseID && d.Status == models.EnrollmentActive {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEnrollRepo) ListActiveDetailed(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	var out []models.EnrollmentDetail
	for _, d := range m.details {
		if d.StudentID == studentID && d.Status == models.EnrollmentActive {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockEnrollRepo) CountActiveByAssignment(ctx context.Context, assignmentID string) (int, error) {
	count := 0
	for _, d := range m.details {
		if d.AssignmentID == assignmentID && d.Status == models.EnrollmentActive {
			count++
		}
	}
	return count, nil
}

func (m *mockEnrollRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if m.enrollments == nil {
		m.enrollments = make(map[string]models.Enrollment)
	}
	m.nextID++
	enrollment.ID = fmt.Sprintf("enr-%d", m.nextID)
	m.enrollments[enrollment.ID] = *enrollment
	m.created = enrollment
	return nil
}

func (m *mockEnrollRepo) Withdraw(ctx context.Context, id string, at time.Time) error {
	if _, ok := m.enrollments[id]; !ok {
		return sql.ErrNoRows
	}
	m.withdrawn = append(m.withdrawn, id)
	return nil
}

func (m *mockEnrollRepo) DeleteHard(ctx context.Context, id string) error {
	if _, ok := m.enrollments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.enrollments, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockGrades struct {
	passed map[string]map[string]bool
}

func (m *mockGrades) PassedCourseIDs(ctx context.Context, studentID string, passingGrade float64) (map[string]bool, error) {
	if p, ok := m.passed[studentID]; ok {
		return p, nil
	}
	return map[string]bool{}, nil
}

type mockPrereqs struct {
	edges map[string][]models.PrerequisiteDetail
}

func (m *mockPrereqs) RequiredFor(ctx context.Context, courseID string) ([]models.PrerequisiteDetail, error) {
	return m.edges[courseID], nil
}

type mockNotifier struct {
	sent []models.Notification
}

func (m *mockNotifier) Notify(n models.Notification) {
	m.sent = append(m.sent, n)
}

type enrollmentFixture struct {
	svc      *EnrollmentService
	repo     *mockEnrollRepo
	asgRepo  *mockAssignmentRepo
	catalog  *mockCatalog
	grades   *mockGrades
	prereqs  *mockPrereqs
	notifier *mockNotifier
}

func newEnrollmentFixture(now time.Time) *enrollmentFixture {
	catalog := &mockCatalog{
		courses: map[string]*models.Course{
			"course-1": {ID: "course-1", Code: "MAT101", Name: "Calculus I", Cycle: 1, LectureHours: 2, Status: models.StatusActive},
			"course-2": {ID: "course-2", Code: "FIS201", Name: "Physics II", Cycle: 1, LectureHours: 2, Status: models.StatusActive},
			"course-3": {ID: "course-3", Code: "QUI301", Name: "Chemistry III", Cycle: 3, LectureHours: 2, Status: models.StatusActive},
		},
		students: map[string]*models.Student{
			"stu-1": {ID: "stu-1", Code: "S001", FullName: "A. Flores", StartLabel: "2023-I", Status: models.StatusActive},
		},
	}
	asgRepo := &mockAssignmentRepo{assignments: []models.Assignment{
		{ID: "asg-mat", CourseID: "course-1", SectionID: "sec-1", TeacherID: "tea-1", RoomID: "room-1",
			Kind: models.KindLecture, Day: models.Monday, StartMin: 8 * 60, EndMin: 8*60 + 100, StudentCapacity: 30},
		{ID: "asg-fis", CourseID: "course-2", SectionID: "sec-1", TeacherID: "tea-2", RoomID: "room-2",
			Kind: models.KindLecture, Day: models.Monday, StartMin: 9 * 60, EndMin: 9*60 + 100, StudentCapacity: 30},
		{ID: "asg-qui", CourseID: "course-3", SectionID: "sec-2", TeacherID: "tea-3", RoomID: "room-3",
			Kind: models.KindLecture, Day: models.Monday, StartMin: 8 * 60, EndMin: 8*60 + 100, StudentCapacity: 30},
	}}
	repo := &mockEnrollRepo{}
	grades := &mockGrades{passed: map[string]map[string]bool{}}
	prereqs := &mockPrereqs{edges: map[string][]models.PrerequisiteDetail{}}
	notif := &mockNotifier{}

	svc := NewEnrollmentService(EnrollmentServiceDeps{
		Repo:        repo,
		Assignments: asgRepo,
		Catalog:     catalog,
		Grades:      grades,
		Prereqs:     prereqs,
		Notifier:    notif,
		Now:         func() time.Time { return now },
	})
	return &enrollmentFixture{svc: svc, repo: repo, asgRepo: asgRepo, catalog: catalog, grades: grades, prereqs: prereqs, notifier: notif}
}

func firstHalf2025() time.Time {
	return time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
}

func TestEnrollSuccessNotifies(t *testing.T) {
	f := newEnrollmentFixture(firstHalf2025())

	enrollment, err := f.svc.Enroll(context.Background(), models.EnrollRequest{StudentID: "stu-1", AssignmentID: "asg-mat"})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentActive, enrollment.Status)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, models.NotifyEnrolled, f.notifier.sent[0].Kind)
	assert.Equal(t, "MAT101", f.notifier.sent[0].CourseCode)
}

func TestEnrollRejectsDuplicateCourseAnySection(t *testing.T) {
	f := newEnrollmentFixture(firstHalf2025())
	f.asgRepo.assignments = append(f.asgRepo.assignments, models.Assignment{
		ID: "asg-mat-b", CourseID: "course-1", SectionID: "sec-2", TeacherID: "tea-4", RoomID: "room-4",
		Kind: models.KindLecture, Day: models.Friday, StartMin: 8 * 60, EndMin: 8*60 + 100, StudentCapacity: 30,
	})
	f.repo.details = []models.EnrollmentDetail{{
		Enrollment: models.Enrollment{ID: "enr-1", StudentID: "stu-1", AssignmentID: "asg-mat", Status: models.EnrollmentActive},
		CourseID:   "course-1", CourseName: "Calculus I", CourseCycle: 1,
		Day: models.Monday, StartMin: 8 * 60, EndMin: 8*60 + 100,
	}}

	_, err := f.svc.Enroll(context.Background(), models.EnrollRequest{StudentID: "stu-1", AssignmentID: "asg-mat-b"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrAlreadyEnrolled))
}

func TestEnrollSameCycleConflictNamesCourse(t *testing.T) {
	f := newEnrollmentFixture(firstHalf2025())
	// Active MAT101 Monday 08:00-09:40; FIS201 Monday 09:00 overlaps, same cycle.
	f.repo.details = []models.EnrollmentDetail{{
		Enrollment: models.Enrollment{ID: "enr-1", StudentID: "stu-1", AssignmentID: "asg-mat", Status: models.EnrollmentActive},
		CourseID:   "course-1", CourseName: "Calculus I", CourseCycle: 1,
		Day: models.Monday, StartMin: 8 * 60, EndMin: 8*60 + 100,
	}}

	_, err := f.svc.Enroll(context.Background(), models.EnrollRequest{StudentID: "stu-1", AssignmentID: "asg-fis"})
	require.True(t, appErrors.HasCode(err, appErrors.ErrScheduleConflict))
	assert.Contains(t, err.Error(), "Calculus I")
}

func TestEnrollDifferentCycleOverlapAllowed(t *testing.T) {
	f := newEnrollmentFixture(firstHalf2025())
	// Same Monday 08:00 slot but the enrolled course is cycle 1 and the
	// target QUI301 is cycle 3; the conflict check is scoped per cycle.
	f.repo.details = []models.EnrollmentDetail{{
		Enrollment: models.Enrollment{ID: "enr-1", StudentID: "stu-1", AssignmentID: "asg-mat", Status: models.EnrollmentActive},
		CourseID:   "course-1", CourseName: "Calculus I", CourseCycle: 1,
		Day: models.Monday, StartMin: 8 * 60, EndMin: 8*60 + 100,
	}}

	_, err := f.svc.Enroll(context.Background(), models.EnrollRequest{StudentID: "stu-1", AssignmentID: "asg-qui"})
	require.NoError(t, err)
}

func TestEnrollPrerequisiteGating(t *testing.T) {
	f := newEnrollmentFixture(firstHalf2025())
	f.prereqs.edges["course-3"] = []models.PrerequisiteDetail{
		{Prerequisite: models.Prerequisite{CourseID: "course-3", RequiredCourseID: "course-1"}, RequiredCourseCode: "MAT101"},
		{Prerequisite: models.Prerequisite{CourseID: "course-3", RequiredCourseID: "course-2"}, RequiredCourseCode: "FIS201"},
	}
	f.grades.passed["stu-1"] = map[string]bool{"course-1": true}

	_, err := f.svc.Enroll(context.Background(), models.EnrollRequest{StudentID: "stu-1", AssignmentID: "asg-qui"})
	require.True(t, appErrors.HasCode(err, appErrors.ErrMissingPrerequisites))
	assert.Contains(t, err.Error(), "FIS201")
	assert.NotContains(t, err.Error(), "MAT101,")

	// Once the second prerequisite is passed the same attempt succeeds.
	f.grades.passed["stu-1"]["course-2"] = true
	_, err = f.svc.Enroll(context.Background(), models.EnrollRequest{StudentID: "stu-1", AssignmentID: "asg-qui"})
	require.NoError(t, err)
}

func TestEligibleSectionsOddCycleOpensNext(t *testing.T) {
	// 2023-I evaluated in H1 2025 is cycle V, odd: window is {5, 6}.
	f := newEnrollmentFixture(firstHalf2025())

	result, err := f.svc.ListEligibleSections(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 5, result.CurrentCycle)
	assert.Equal(t, "V", result.CycleLabel)
	assert.Equal(t, []int{5, 6}, result.Cycles)
	assert.Equal(t, []int{5, 6}, f.asgRepo.cyclesSeen)
	assert.Empty(t, result.Warning)
}

func TestEligibleSectionsEvenCycleOnlyCurrent(t *testing.T) {
	// 2023-I evaluated in H2 2025 is cycle VI, even: window is {6}.
	f := newEnrollmentFixture(time.Date(2025, time.September, 10, 9, 0, 0, 0, time.UTC))

	result, err := f.svc.ListEligibleSections(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 6, result.CurrentCycle)
	assert.Equal(t, []int{6}, result.Cycles)
	assert.Equal(t, []int{6}, f.asgRepo.cyclesSeen)
}

func TestEligibleSectionsMalformedLabelWarns(t *testing.T) {
	f := newEnrollmentFixture(firstHalf2025())
	f.catalog.students["stu-1"].StartLabel = "garbage"

	result, err := f.svc.ListEligibleSections(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.CurrentCycle)
	assert.NotEmpty(t, result.Warning)
}

func TestWithdrawAndUnenroll(t *testing.T) {
	f := newEnrollmentFixture(firstHalf2025())
	f.repo.enrollments = map[string]models.Enrollment{
		"enr-1": {ID: "enr-1", StudentID: "stu-1", AssignmentID: "asg-mat", Status: models.EnrollmentActive},
		"enr-2": {ID: "enr-2", StudentID: "stu-1", AssignmentID: "asg-fis", Status: models.EnrollmentActive},
	}

	require.NoError(t, f.svc.Withdraw(context.Background(), "enr-1"))
	assert.Equal(t, []string{"enr-1"}, f.repo.withdrawn)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, models.NotifyWithdrawn, f.notifier.sent[0].Kind)
	assert.Equal(t, "MAT101", f.notifier.sent[0].CourseCode)

	require.NoError(t, f.svc.Unenroll(context.Background(), "enr-2"))
	assert.Equal(t, []string{"enr-2"}, f.repo.deleted)

	err := f.svc.Withdraw(context.Background(), "enr-404")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestEnrollAssignmentFull(t *testing.T) {
	f := newEnrollmentFixture(firstHalf2025())
	for i := 0; i < 30; i++ {
		f.repo.details = append(f.repo.details, models.EnrollmentDetail{
			Enrollment: models.Enrollment{
				ID: fmt.Sprintf("enr-%d", i), StudentID: fmt.Sprintf("other-%d", i),
				AssignmentID: "asg-mat", Status: models.EnrollmentActive,
			},
			CourseID: "course-1", CourseCycle: 1,
		})
	}

	_, err := f.svc.Enroll(context.Background(), models.EnrollRequest{StudentID: "stu-1", AssignmentID: "asg-mat"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrCapacityExceeded))
}
