package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/sisacad/sisacad-api/internal/models"
	appErrors "github.com/sisacad/sisacad-api/pkg/errors"
)

type cascadeRepository interface {
	Plan(ctx context.Context, scope models.CascadeScope) (*models.CascadePlan, error)
	Execute(ctx context.Context, scope models.CascadeScope) (*models.CascadeResult, error)
}

type sectionReader interface {
	FindSection(ctx context.Context, id string) (*models.Section, error)
}

type scheduleBlockReader interface {
	FindByID(ctx context.Context, id string) (*models.ScheduleBlock, error)
}

// CascadeService plans and executes ordered cascade deletions. Execution
// with dependents requires an explicit confirmation from the caller.
type CascadeService struct {
	repo     cascadeRepository
	sections sectionReader
	blocks   scheduleBlockReader
	logger   *zap.Logger
}

// NewCascadeService constructs CascadeService.
func NewCascadeService(repo cascadeRepository, sections sectionReader, blocks scheduleBlockReader, logger *zap.Logger) *CascadeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CascadeService{repo: repo, sections: sections, blocks: blocks, logger: logger}
}

// Plan returns the dependency summary of the cascade without deleting.
func (s *CascadeService) Plan(ctx context.Context, scope models.CascadeScope) (*models.CascadePlan, error) {
	if err := s.checkRoot(ctx, scope); err != nil {
		return nil, err
	}
	plan, err := s.repo.Plan(ctx, scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to plan cascade delete")
	}
	return plan, nil
}

// Execute deletes the root and all its dependents, deepest first. Unless
// confirmed, a scope with dependents is rejected with the plan attached so
// the caller can show what would be removed.
func (s *CascadeService) Execute(ctx context.Context, scope models.CascadeScope, confirmed bool) (*models.CascadeResult, *models.CascadePlan, error) {
	plan, err := s.Plan(ctx, scope)
	if err != nil {
		return nil, nil, err
	}
	if plan.HasDependents() && !confirmed {
		return nil, plan, appErrors.Clone(appErrors.ErrConfirmationRequired, "")
	}

	result, err := s.repo.Execute(ctx, scope)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to execute cascade delete")
	}

	s.logger.Info("cascade delete executed",
		zap.String("scope", string(scope.Kind)),
		zap.String("root_id", scope.RootID),
		zap.Int("enrollments", result.Enrollments),
		zap.Int("attendance_records", result.AttendanceRecords),
		zap.Int("assignments", result.Assignments),
	)
	return result, nil, nil
}

func (s *CascadeService) checkRoot(ctx context.Context, scope models.CascadeScope) error {
	var err error
	switch scope.Kind {
	case models.CascadeSection:
		_, err = s.sections.FindSection(ctx, scope.RootID)
	case models.CascadeScheduleBlock:
		_, err = s.blocks.FindByID(ctx, scope.RootID)
	case models.CascadeAssignment:
		// The assignment's existence is verified by the delete itself.
		return nil
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unknown cascade scope")
	}
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "cascade root not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cascade root")
	}
	return nil
}
