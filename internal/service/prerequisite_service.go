package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sisacad/sisacad-api/internal/models"
	appErrors "github.com/sisacad/sisacad-api/pkg/errors"
)

type prerequisiteRepository interface {
	RequiredFor(ctx context.Context, courseID string) ([]models.PrerequisiteDetail, error)
	ListAll(ctx context.Context) ([]models.PrerequisiteDetail, error)
	Exists(ctx context.Context, courseID, requiredCourseID string) (bool, error)
	Create(ctx context.Context, edge *models.Prerequisite) error
	Delete(ctx context.Context, id string) error
	DeleteByCourse(ctx context.Context, courseID string) (int, error)
}

type courseReader interface {
	FindCourse(ctx context.Context, id string) (*models.Course, error)
}

// PrerequisiteService manages the prerequisite edge set. The graph must stay
// acyclic; self loops and direct two-course cycles are rejected here, at the
// data-entry boundary.
type PrerequisiteService struct {
	repo      prerequisiteRepository
	courses   courseReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPrerequisiteService constructs PrerequisiteService.
func NewPrerequisiteService(repo prerequisiteRepository, courses courseReader, validate *validator.Validate, logger *zap.Logger) *PrerequisiteService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrerequisiteService{repo: repo, courses: courses, validator: validate, logger: logger}
}

// ListForCourse returns the prerequisite edges of a course.
func (s *PrerequisiteService) ListForCourse(ctx context.Context, courseID string) ([]models.PrerequisiteDetail, error) {
	if _, err := s.courses.FindCourse(ctx, courseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	edges, err := s.repo.RequiredFor(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list prerequisites")
	}
	return edges, nil
}

// ListWithPrerequisites returns every course that has at least one
// prerequisite, with its edges grouped.
func (s *PrerequisiteService) ListWithPrerequisites(ctx context.Context) ([]models.CoursePrerequisites, error) {
	edges, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list prerequisites")
	}

	grouped := make([]models.CoursePrerequisites, 0)
	for _, edge := range edges {
		if n := len(grouped); n > 0 && grouped[n-1].CourseID == edge.CourseID {
			grouped[n-1].Requirements = append(grouped[n-1].Requirements, edge)
			continue
		}
		grouped = append(grouped, models.CoursePrerequisites{
			CourseID:     edge.CourseID,
			CourseCode:   edge.CourseCode,
			CourseName:   edge.CourseName,
			Requirements: []models.PrerequisiteDetail{edge},
		})
	}
	return grouped, nil
}

// Create registers a new edge after the acyclicity boundary checks.
func (s *PrerequisiteService) Create(ctx context.Context, req models.CreatePrerequisiteRequest) (*models.Prerequisite, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid prerequisite payload")
	}
	if req.CourseID == req.RequiredCourseID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a course cannot require itself")
	}

	for _, id := range []string{req.CourseID, req.RequiredCourseID} {
		if _, err := s.courses.FindCourse(ctx, id); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
		}
	}

	exists, err := s.repo.Exists(ctx, req.CourseID, req.RequiredCourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check prerequisite")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "prerequisite already registered")
	}

	reverse, err := s.repo.Exists(ctx, req.RequiredCourseID, req.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check prerequisite")
	}
	if reverse {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reverse prerequisite already exists; cycle rejected")
	}

	edge := &models.Prerequisite{CourseID: req.CourseID, RequiredCourseID: req.RequiredCourseID}
	if err := s.repo.Create(ctx, edge); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create prerequisite")
	}

	s.logger.Info("prerequisite created",
		zap.String("course_id", edge.CourseID),
		zap.String("required_course_id", edge.RequiredCourseID),
	)
	return edge, nil
}

// Delete removes an edge.
func (s *PrerequisiteService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "prerequisite not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete prerequisite")
	}
	return nil
}

// DeleteForCourse removes every edge leaving a course and reports how many
// were removed. Deleting from a course with no edges is not an error.
func (s *PrerequisiteService) DeleteForCourse(ctx context.Context, courseID string) (int, error) {
	if _, err := s.courses.FindCourse(ctx, courseID); err != nil {
		if err == sql.ErrNoRows {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	removed, err := s.repo.DeleteByCourse(ctx, courseID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete prerequisites")
	}
	s.logger.Info("course prerequisites cleared",
		zap.String("course_id", courseID),
		zap.Int("removed", removed),
	)
	return removed, nil
}
