package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sisacad/sisacad-api/internal/models"
	appErrors "github.com/sisacad/sisacad-api/pkg/errors"
	"github.com/sisacad/sisacad-api/pkg/lock"
)

type assignmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	ListByRoomAndDay(ctx context.Context, roomID string, day models.Weekday) ([]models.Assignment, error)
	ListByTeacherAndDay(ctx context.Context, teacherID string, day models.Weekday) ([]models.Assignment, error)
	ExistsSlot(ctx context.Context, courseID, sectionID string, day models.Weekday, start models.MinuteOfDay, excludeID string) (bool, error)
	ExistsKind(ctx context.Context, courseID, sectionID string, kind models.AssignmentKind) (bool, error)
	CreateBatch(ctx context.Context, assignments []*models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, int, error)
}

type catalogReader interface {
	FindCourse(ctx context.Context, id string) (*models.Course, error)
	FindRoom(ctx context.Context, id string) (*models.Room, error)
	FindSection(ctx context.Context, id string) (*models.Section, error)
	FindTeacher(ctx context.Context, id string) (*models.Teacher, error)
	FindStudent(ctx context.Context, id string) (*models.Student, error)
}

type blockReader interface {
	FindByID(ctx context.Context, id string) (*models.ScheduleBlock, error)
}

type validationRecorder interface {
	RecordValidation(outcome string)
}

// AssignmentService validates and persists schedule placements.
type AssignmentService struct {
	repo      assignmentRepository
	catalog   catalogReader
	blocks    blockReader
	locks     *lock.Keyed
	metrics   validationRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs AssignmentService.
func NewAssignmentService(repo assignmentRepository, catalog catalogReader, blocks blockReader, locks *lock.Keyed, metrics validationRecorder, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if locks == nil {
		locks = lock.NewKeyed()
	}
	return &AssignmentService{repo: repo, catalog: catalog, blocks: blocks, locks: locks, metrics: metrics, validator: validate, logger: logger}
}

// placement is a fully resolved per-kind proposal ready for conflict checks.
type placement struct {
	kind    models.AssignmentKind
	teacher *models.Teacher
	room    *models.Room
	blockID *string
	block   models.TimeBlock
}

// Create validates the proposed placements of a course within a section and
// persists one assignment row per required kind, atomically.
func (s *AssignmentService) Create(ctx context.Context, req models.CreateAssignmentRequest) (assignments []*models.Assignment, err error) {
	if s.metrics != nil {
		defer func() {
			outcome := "ok"
			if err != nil {
				outcome = appErrors.FromError(err).Code
			}
			s.metrics.RecordValidation(outcome)
		}()
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	course, err := s.catalog.FindCourse(ctx, req.CourseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	section, err := s.catalog.FindSection(ctx, req.SectionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	if section.Status != models.StatusActive {
		return nil, appErrors.Clone(appErrors.ErrSectionInactive, "")
	}

	specs := []struct {
		kind  models.AssignmentKind
		hours int
		spec  *models.KindSpec
	}{
		{models.KindLecture, course.LectureHours, req.Lecture},
		{models.KindLab, course.LabHours, req.Lab},
	}

	var placements []placement
	for _, entry := range specs {
		if entry.hours == 0 {
			if entry.spec != nil {
				return nil, appErrors.Clone(appErrors.ErrHoursMismatch,
					fmt.Sprintf("course %s requires no %s hours but a placement was supplied", course.Code, entry.kind))
			}
			continue
		}
		if entry.spec == nil {
			return nil, appErrors.Clone(appErrors.ErrHoursMismatch,
				fmt.Sprintf("course %s requires %s hours but no placement was supplied", course.Code, entry.kind))
		}
		resolved, err := s.resolvePlacement(ctx, entry.kind, entry.hours, *entry.spec, req.ExpectedStudentCount)
		if err != nil {
			return nil, err
		}
		placements = append(placements, *resolved)

		exists, err := s.repo.ExistsKind(ctx, req.CourseID, req.SectionID, entry.kind)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing assignment")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrDuplicateSlot,
				fmt.Sprintf("course %s already has a %s assignment in this section", course.Code, entry.kind))
		}
	}

	if len(placements) == 2 && placements[0].block.SameSlot(placements[1].block) {
		return nil, appErrors.Clone(appErrors.ErrDuplicateSlot, "lecture and lab cannot share the same day and start time")
	}

	// Conflict scans and the insert must be atomic per room and teacher, or
	// two concurrent placements can both pass the scan and double-book.
	keys := make([]string, 0, len(placements)*2)
	for _, p := range placements {
		keys = append(keys, "room:"+p.room.ID, "teacher:"+p.teacher.ID)
	}
	release := s.locks.LockAll(keys...)
	defer release()

	for _, p := range placements {
		if err := s.checkConflicts(ctx, req.CourseID, req.SectionID, p, ""); err != nil {
			return nil, err
		}
	}

	assignments = make([]*models.Assignment, 0, len(placements))
	for _, p := range placements {
		assignments = append(assignments, &models.Assignment{
			CourseID:        req.CourseID,
			SectionID:       req.SectionID,
			TeacherID:       p.teacher.ID,
			RoomID:          p.room.ID,
			BlockID:         p.blockID,
			Kind:            p.kind,
			Day:             p.block.Day,
			StartMin:        p.block.StartMin,
			EndMin:          p.block.EndMin,
			StudentCapacity: req.ExpectedStudentCount,
		})
	}
	if err := s.repo.CreateBatch(ctx, assignments); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignments")
	}

	s.logger.Info("assignments created",
		zap.String("course_id", req.CourseID),
		zap.String("section_id", req.SectionID),
		zap.Int("count", len(assignments)),
	)
	return assignments, nil
}

// Edit re-places an existing assignment, excluding it from conflict scans.
func (s *AssignmentService) Edit(ctx context.Context, id string, req models.EditAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	assignment, err := s.repo.FindByID(ctx, id)
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

	hours := course.LectureHours
	if assignment.Kind == models.KindLab {
		hours = course.LabHours
	}
	if hours == 0 {
		return nil, appErrors.Clone(appErrors.ErrHoursMismatch,
			fmt.Sprintf("course %s requires no %s hours", course.Code, assignment.Kind))
	}

	spec := models.KindSpec{
		TeacherID: req.TeacherID,
		RoomID:    req.RoomID,
		BlockID:   req.BlockID,
		Day:       req.Day,
		Start:     req.Start,
	}
	resolved, err := s.resolvePlacement(ctx, assignment.Kind, hours, spec, req.ExpectedStudentCount)
	if err != nil {
		return nil, err
	}

	release := s.locks.LockAll("room:"+resolved.room.ID, "teacher:"+resolved.teacher.ID)
	defer release()

	if err := s.checkConflicts(ctx, assignment.CourseID, assignment.SectionID, *resolved, assignment.ID); err != nil {
		return nil, err
	}

	assignment.TeacherID = resolved.teacher.ID
	assignment.RoomID = resolved.room.ID
	assignment.BlockID = resolved.blockID
	assignment.Day = resolved.block.Day
	assignment.StartMin = resolved.block.StartMin
	assignment.EndMin = resolved.block.EndMin
	assignment.StudentCapacity = req.ExpectedStudentCount

	if err := s.repo.Update(ctx, assignment); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}

	s.logger.Info("assignment updated", zap.String("assignment_id", assignment.ID))
	return assignment, nil
}

// List returns assignment details with pagination metadata.
func (s *AssignmentService) List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, *models.Pagination, error) {
	details, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	for i := range details {
		details[i].StartClock = details[i].StartMin.Clock()
		details[i].EndClock = details[i].EndMin.Clock()
	}
	return details, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// resolvePlacement loads the teacher and room of one kind spec, derives its
// time block and runs the static room checks.
func (s *AssignmentService) resolvePlacement(ctx context.Context, kind models.AssignmentKind, hours int, spec models.KindSpec, expectedStudents int) (*placement, error) {
	teacher, err := s.catalog.FindTeacher(ctx, spec.TeacherID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if teacher.Status != models.StatusActive {
		return nil, appErrors.Clone(appErrors.ErrTeacherInactive, "")
	}

	room, err := s.catalog.FindRoom(ctx, spec.RoomID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	if room.Status != models.RoomOperational {
		return nil, appErrors.Clone(appErrors.ErrRoomInactive,
			fmt.Sprintf("room %s is %s", room.Code, room.Status))
	}
	if expectedStudents > room.Capacity {
		return nil, appErrors.Clone(appErrors.ErrCapacityExceeded,
			fmt.Sprintf("room %s holds %d students, %d expected", room.Code, room.Capacity, expectedStudents))
	}

	var day models.Weekday
	var start models.MinuteOfDay
	var blockID *string
	switch {
	case spec.BlockID != "":
		catalogBlock, err := s.blocks.FindByID(ctx, spec.BlockID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule block not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule block")
		}
		day = catalogBlock.Day
		start = catalogBlock.StartMin
		blockID = &catalogBlock.ID
	default:
		day, err = models.ParseWeekday(spec.Day)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		start, err = models.ParseClock(spec.Start)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
	}

	block, err := models.NewTimeBlock(day, start, hours)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	return &placement{kind: kind, teacher: teacher, room: room, blockID: blockID, block: block}, nil
}

// checkConflicts runs the room, teacher and duplicate slot scans for one
// placement, skipping the assignment identified by excludeID.
func (s *AssignmentService) checkConflicts(ctx context.Context, courseID, sectionID string, p placement, excludeID string) error {
	roomBusy, err := s.repo.ListByRoomAndDay(ctx, p.room.ID, p.block.Day)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan room schedule")
	}
	for _, other := range roomBusy {
		if other.ID == excludeID {
			continue
		}
		if p.block.Overlaps(other.Block()) {
			return appErrors.Clone(appErrors.ErrRoomConflict,
				fmt.Sprintf("room %s is booked %s", p.room.Code, other.Block()))
		}
	}

	teacherBusy, err := s.repo.ListByTeacherAndDay(ctx, p.teacher.ID, p.block.Day)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan teacher schedule")
	}
	for _, other := range teacherBusy {
		if other.ID == excludeID {
			continue
		}
		if p.block.Overlaps(other.Block()) {
			return appErrors.Clone(appErrors.ErrTeacherConflict,
				fmt.Sprintf("teacher %s is scheduled %s", p.teacher.FullName, other.Block()))
		}
	}

	duplicate, err := s.repo.ExistsSlot(ctx, courseID, sectionID, p.block.Day, p.block.StartMin, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check duplicate slot")
	}
	if duplicate {
		return appErrors.Clone(appErrors.ErrDuplicateSlot, "")
	}
	return nil
}
