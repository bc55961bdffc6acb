package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sisacad/sisacad-api/internal/models"
	appErrors "github.com/sisacad/sisacad-api/pkg/errors"
)

type scheduleBlockRepository interface {
	FindByID(ctx context.Context, id string) (*models.ScheduleBlock, error)
	List(ctx context.Context) ([]models.ScheduleBlock, error)
	CountShiftSlots(ctx context.Context, day models.Weekday, shiftLow, shiftHigh models.MinuteOfDay, excludeID string) (int, error)
	ExistsSpan(ctx context.Context, day models.Weekday, start, end models.MinuteOfDay, excludeID string) (bool, error)
	Create(ctx context.Context, block *models.ScheduleBlock) error
	Update(ctx context.Context, block *models.ScheduleBlock) error
}

// BlockService manages the reusable schedule slot catalog.
type BlockService struct {
	repo      scheduleBlockRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBlockService constructs BlockService.
func NewBlockService(repo scheduleBlockRepository, validate *validator.Validate, logger *zap.Logger) *BlockService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlockService{repo: repo, validator: validate, logger: logger}
}

// List returns the slot catalog.
func (s *BlockService) List(ctx context.Context) ([]models.ScheduleBlock, error) {
	blocks, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule blocks")
	}
	for i := range blocks {
		blocks[i].FillClocks()
	}
	return blocks, nil
}

// shift boundaries in minutes since midnight.
var shiftBounds = map[string][2]models.MinuteOfDay{
	"M": {0, 12 * 60},
	"T": {12 * 60, 19 * 60},
	"N": {19 * 60, 24 * 60},
}

// maxBlockHours caps a single slot's length in teaching hours.
const maxBlockHours = 6

// parseSpan turns the request fields into a validated time block.
func (s *BlockService) parseSpan(day, start string, hours int) (models.TimeBlock, error) {
	if hours > maxBlockHours {
		return models.TimeBlock{}, appErrors.Clone(appErrors.ErrValidation, "a slot spans at most 6 teaching hours")
	}
	weekday, err := models.ParseWeekday(day)
	if err != nil {
		return models.TimeBlock{}, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	startMin, err := models.ParseClock(start)
	if err != nil {
		return models.TimeBlock{}, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	span, err := models.NewTimeBlock(weekday, startMin, hours)
	if err != nil {
		return models.TimeBlock{}, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	return span, nil
}

// nextCode derives the catalog code the span would receive, skipping
// excludeID so a moved slot does not count itself.
func (s *BlockService) nextCode(ctx context.Context, span models.TimeBlock, excludeID string) (string, error) {
	bounds := shiftBounds[span.ShiftCode()]
	existing, err := s.repo.CountShiftSlots(ctx, span.Day, bounds[0], bounds[1], excludeID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sequence schedule block")
	}
	return models.BlockCode(span, existing+1), nil
}

// NextCode previews the code a new slot at the given placement would get.
func (s *BlockService) NextCode(ctx context.Context, day, start string, hours int) (string, error) {
	span, err := s.parseSpan(day, start, hours)
	if err != nil {
		return "", err
	}
	return s.nextCode(ctx, span, "")
}

// Create registers a new catalog slot, generating its code from the day,
// shift and position within the shift. Two slots never share an exact span.
func (s *BlockService) Create(ctx context.Context, req models.CreateScheduleBlockRequest) (*models.ScheduleBlock, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule block payload")
	}
	span, err := s.parseSpan(req.Day, req.Start, req.Hours)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.ExistsSpan(ctx, span.Day, span.StartMin, span.EndMin, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check schedule block span")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a schedule block with this day and span already exists")
	}

	code, err := s.nextCode(ctx, span, "")
	if err != nil {
		return nil, err
	}

	block := &models.ScheduleBlock{
		Code:     code,
		Day:      span.Day,
		StartMin: span.StartMin,
		EndMin:   span.EndMin,
	}
	if err := s.repo.Create(ctx, block); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule block")
	}
	block.FillClocks()

	s.logger.Info("schedule block created", zap.String("code", block.Code))
	return block, nil
}

// Update moves an existing slot to a new placement and regenerates its code.
func (s *BlockService) Update(ctx context.Context, id string, req models.EditScheduleBlockRequest) (*models.ScheduleBlock, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule block payload")
	}
	block, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule block not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule block")
	}

	span, err := s.parseSpan(req.Day, req.Start, req.Hours)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.ExistsSpan(ctx, span.Day, span.StartMin, span.EndMin, block.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check schedule block span")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a schedule block with this day and span already exists")
	}

	code, err := s.nextCode(ctx, span, block.ID)
	if err != nil {
		return nil, err
	}

	block.Code = code
	block.Day = span.Day
	block.StartMin = span.StartMin
	block.EndMin = span.EndMin
	if err := s.repo.Update(ctx, block); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule block not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule block")
	}
	block.FillClocks()

	s.logger.Info("schedule block updated", zap.String("id", block.ID), zap.String("code", block.Code))
	return block, nil
}
