package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sisacad/sisacad-api/internal/models"
	appErrors "github.com/sisacad/sisacad-api/pkg/errors"
	"github.com/sisacad/sisacad-api/pkg/lock"
)

type enrollmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	ExistsActiveByCourse(ctx context.Context, studentID, courseID string) (bool, error)
	ListActiveDetailed(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	CountActiveByAssignment(ctx context.Context, assignmentID string) (int, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Withdraw(ctx context.Context, id string, at time.Time) error
	DeleteHard(ctx context.Context, id string) error
}

type assignmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	ListOpenByCycles(ctx context.Context, cycles []int) ([]models.SectionSummary, error)
}

type gradeReader interface {
	PassedCourseIDs(ctx context.Context, studentID string, passingGrade float64) (map[string]bool, error)
}

type prerequisiteReader interface {
	RequiredFor(ctx context.Context, courseID string) ([]models.PrerequisiteDetail, error)
}

type notifier interface {
	Notify(notification models.Notification)
}

type metricsRecorder interface {
	RecordEnrollment(outcome string)
	RecordCacheLookup(hit bool)
}

// EnrollmentService validates and records student enrollments.
type EnrollmentService struct {
	repo         enrollmentRepository
	assignments  assignmentReader
	catalog      catalogReader
	grades       gradeReader
	prereqs      prerequisiteReader
	notifier     notifier
	metrics      metricsRecorder
	cache        *redis.Client
	cacheTTL     time.Duration
	passingGrade float64
	locks        *lock.Keyed
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// EnrollmentServiceDeps bundles the collaborators of EnrollmentService.
type EnrollmentServiceDeps struct {
	Repo         enrollmentRepository
	Assignments  assignmentReader
	Catalog      catalogReader
	Grades       gradeReader
	Prereqs      prerequisiteReader
	Notifier     notifier
	Metrics      metricsRecorder
	Cache        *redis.Client
	CacheTTL     time.Duration
	PassingGrade float64
	Locks        *lock.Keyed
	Validator    *validator.Validate
	Logger       *zap.Logger
	Now          func() time.Time
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(deps EnrollmentServiceDeps) *EnrollmentService {
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Locks == nil {
		deps.Locks = lock.NewKeyed()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.PassingGrade <= 0 {
		deps.PassingGrade = models.PassingGrade
	}
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = 5 * time.Minute
	}
	return &EnrollmentService{
		repo:         deps.Repo,
		assignments:  deps.Assignments,
		catalog:      deps.Catalog,
		grades:       deps.Grades,
		prereqs:      deps.Prereqs,
		notifier:     deps.Notifier,
		metrics:      deps.Metrics,
		cache:        deps.Cache,
		cacheTTL:     deps.CacheTTL,
		passingGrade: deps.PassingGrade,
		locks:        deps.Locks,
		validator:    deps.Validator,
		logger:       deps.Logger,
		now:          deps.Now,
	}
}

// Enroll registers a student into an assignment after the duplicate-course,
// same-cycle conflict and prerequisite checks all pass.
func (s *EnrollmentService) Enroll(ctx context.Context, req models.EnrollRequest) (enrollment *models.Enrollment, err error) {
	if s.metrics != nil {
		defer func() {
			outcome := "ok"
			if err != nil {
				outcome = appErrors.FromError(err).Code
			}
			s.metrics.RecordEnrollment(outcome)
		}()
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	student, err := s.catalog.FindStudent(ctx, req.StudentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	assignment, err := s.assignments.FindByID(ctx, req.AssignmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	course, err := s.catalog.FindCourse(ctx, assignment.CourseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	// The duplicate check and the insert must be atomic per student and
	// course, or two concurrent attempts can both pass and double-enroll.
	release := s.locks.LockAll("enroll:" + req.StudentID + ":" + assignment.CourseID)
	defer release()

	enrolled, err := s.repo.ExistsActiveByCourse(ctx, req.StudentID, assignment.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing enrollment")
	}
	if enrolled {
		return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled,
			fmt.Sprintf("already enrolled in course %s", course.Code))
	}

	count, err := s.repo.CountActiveByAssignment(ctx, req.AssignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	if assignment.StudentCapacity > 0 && count >= assignment.StudentCapacity {
		return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, "assignment is full")
	}

	active, err := s.repo.ListActiveDetailed(ctx, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current schedule")
	}
	target := assignment.Block()
	for _, current := range active {
		if current.CourseCycle != course.Cycle {
			continue
		}
		if target.Overlaps(current.Block()) {
			return nil, appErrors.Clone(appErrors.ErrScheduleConflict,
				fmt.Sprintf("conflicts with %s (%s)", current.CourseName, current.Block()))
		}
	}

	if err := s.checkPrerequisites(ctx, req.StudentID, assignment.CourseID); err != nil {
		return nil, err
	}

	enrollment = &models.Enrollment{
		StudentID:    req.StudentID,
		AssignmentID: req.AssignmentID,
		Status:       models.EnrollmentActive,
		EnrolledAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	s.invalidateEligibleCache(ctx, req.StudentID)
	if s.notifier != nil {
		s.notifier.Notify(models.Notification{
			Kind:       models.NotifyEnrolled,
			StudentID:  student.ID,
			CourseCode: course.Code,
			CourseName: course.Name,
			OccurredAt: enrollment.EnrolledAt,
		})
	}

	s.logger.Info("student enrolled",
		zap.String("student_id", req.StudentID),
		zap.String("assignment_id", req.AssignmentID),
		zap.String("course_code", course.Code),
	)
	return enrollment, nil
}

// ListEligibleSections returns the sections a student may enroll in for the
// current cycle window. Odd cycles also open the next cycle's sections.
func (s *EnrollmentService) ListEligibleSections(ctx context.Context, studentID string) (*models.EligibleSections, error) {
	student, err := s.catalog.FindStudent(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if cached := s.readEligibleCache(ctx, studentID); cached != nil {
		if s.metrics != nil {
			s.metrics.RecordCacheLookup(true)
		}
		return cached, nil
	}
	if s.metrics != nil && s.cache != nil {
		s.metrics.RecordCacheLookup(false)
	}

	current, cycleErr := models.CurrentCycle(student.StartLabel, s.now())
	result := &models.EligibleSections{
		CurrentCycle: current,
		CycleLabel:   models.Roman(current),
		Cycles:       models.EligibleCycles(current),
	}
	if cycleErr != nil {
		result.Warning = fmt.Sprintf("start label %q is malformed, defaulting to cycle I", student.StartLabel)
		s.logger.Warn("malformed student start label",
			zap.String("student_id", studentID),
			zap.String("start_label", student.StartLabel),
		)
	}

	sections, err := s.assignments.ListOpenByCycles(ctx, result.Cycles)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list open sections")
	}
	for i := range sections {
		sections[i].StartClock = sections[i].StartMin.Clock()
		sections[i].EndClock = sections[i].EndMin.Clock()
	}
	result.Sections = sections

	s.writeEligibleCache(ctx, studentID, result)
	return result, nil
}

// ListStudentSchedule returns the student's active weekly timetable.
func (s *EnrollmentService) ListStudentSchedule(ctx context.Context, studentID string) (*models.StudentSchedule, error) {
	if _, err := s.catalog.FindStudent(ctx, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	entries, err := s.repo.ListActiveDetailed(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	for i := range entries {
		entries[i].StartClock = entries[i].StartMin.Clock()
		entries[i].EndClock = entries[i].EndMin.Clock()
	}
	return &models.StudentSchedule{StudentID: studentID, Entries: entries}, nil
}

// Withdraw terminates an active enrollment, keeping the row for history.
func (s *EnrollmentService) Withdraw(ctx context.Context, enrollmentID string) error {
	enrollment, err := s.repo.FindByID(ctx, enrollmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if err := s.repo.Withdraw(ctx, enrollmentID, s.now().UTC()); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrConflict, "enrollment is not active")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to withdraw enrollment")
	}
	s.invalidateEligibleCache(ctx, enrollment.StudentID)
	s.notifyWithdrawn(ctx, enrollment)
	s.logger.Info("enrollment withdrawn", zap.String("enrollment_id", enrollmentID))
	return nil
}

// notifyWithdrawn emits the withdrawal event. Lookup failures only suppress
// the notification, the withdrawal itself already committed.
func (s *EnrollmentService) notifyWithdrawn(ctx context.Context, enrollment *models.Enrollment) {
	if s.notifier == nil {
		return
	}
	assignment, err := s.assignments.FindByID(ctx, enrollment.AssignmentID)
	if err != nil {
		return
	}
	course, err := s.catalog.FindCourse(ctx, assignment.CourseID)
	if err != nil {
		return
	}
	s.notifier.Notify(models.Notification{
		Kind:       models.NotifyWithdrawn,
		StudentID:  enrollment.StudentID,
		CourseCode: course.Code,
		CourseName: course.Name,
		OccurredAt: s.now().UTC(),
	})
}

// Unenroll removes the enrollment and its attendance records entirely.
func (s *EnrollmentService) Unenroll(ctx context.Context, enrollmentID string) error {
	enrollment, err := s.repo.FindByID(ctx, enrollmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if err := s.repo.DeleteHard(ctx, enrollmentID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
	}
	s.invalidateEligibleCache(ctx, enrollment.StudentID)
	s.logger.Info("enrollment removed", zap.String("enrollment_id", enrollmentID))
	return nil
}

// CurrentCycle exposes the cycle calculation for a start label.
func (s *EnrollmentService) CurrentCycle(startLabel string) (int, string, string) {
	cycle, err := models.CurrentCycle(startLabel, s.now())
	warning := ""
	if err != nil {
		warning = fmt.Sprintf("start label %q is malformed, defaulting to cycle I", startLabel)
	}
	return cycle, models.Roman(cycle), warning
}

func (s *EnrollmentService) checkPrerequisites(ctx context.Context, studentID, courseID string) error {
	required, err := s.prereqs.RequiredFor(ctx, courseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load prerequisites")
	}
	if len(required) == 0 {
		return nil
	}
	passed, err := s.grades.PassedCourseIDs(ctx, studentID, s.passingGrade)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade history")
	}

	var missing []string
	for _, edge := range required {
		if !passed[edge.RequiredCourseID] {
			missing = append(missing, edge.RequiredCourseCode)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return appErrors.Clone(appErrors.ErrMissingPrerequisites,
			fmt.Sprintf("missing prerequisites: %s", strings.Join(missing, ", ")))
	}
	return nil
}

func eligibleCacheKey(studentID string) string {
	return "eligible-sections:" + studentID
}

func (s *EnrollmentService) readEligibleCache(ctx context.Context, studentID string) *models.EligibleSections {
	if s.cache == nil {
		return nil
	}
	payload, err := s.cache.Get(ctx, eligibleCacheKey(studentID)).Bytes()
	if err != nil {
		return nil
	}
	var cached models.EligibleSections
	if err := json.Unmarshal(payload, &cached); err != nil {
		return nil
	}
	return &cached
}

func (s *EnrollmentService) writeEligibleCache(ctx context.Context, studentID string, result *models.EligibleSections) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, eligibleCacheKey(studentID), payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("failed to cache eligible sections", zap.Error(err))
	}
}

func (s *EnrollmentService) invalidateEligibleCache(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, eligibleCacheKey(studentID)).Err(); err != nil {
		s.logger.Warn("failed to invalidate eligible sections cache", zap.Error(err))
	}
}
