package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sisacad/sisacad-api/internal/models"
)

// ScheduleBlockRepository handles the reusable schedule slot catalog.
type ScheduleBlockRepository struct {
	db *sqlx.DB
}

// NewScheduleBlockRepository constructs the repository.
func NewScheduleBlockRepository(db *sqlx.DB) *ScheduleBlockRepository {
	return &ScheduleBlockRepository{db: db}
}

// FindByID returns a schedule block by its ID.
func (r *ScheduleBlockRepository) FindByID(ctx context.Context, id string) (*models.ScheduleBlock, error) {
	const query = `SELECT id, code, day, start_min, end_min, created_at FROM schedule_blocks WHERE id = $1`
	var block models.ScheduleBlock
	if err := r.db.GetContext(ctx, &block, query, id); err != nil {
		return nil, err
	}
	return &block, nil
}

// List returns the full catalog ordered by day and start time.
func (r *ScheduleBlockRepository) List(ctx context.Context) ([]models.ScheduleBlock, error) {
	const query = `SELECT id, code, day, start_min, end_min, created_at
        FROM schedule_blocks ORDER BY day, start_min`
	var blocks []models.ScheduleBlock
	if err := r.db.SelectContext(ctx, &blocks, query); err != nil {
		return nil, fmt.Errorf("list schedule blocks: %w", err)
	}
	return blocks, nil
}

// CountShiftSlots returns how many catalog slots exist for a day and shift,
// skipping excludeID when re-coding a moved slot. The next slot's code
// sequence is the count plus one.
func (r *ScheduleBlockRepository) CountShiftSlots(ctx context.Context, day models.Weekday, shiftLow, shiftHigh models.MinuteOfDay, excludeID string) (int, error) {
	const query = `SELECT COUNT(*) FROM schedule_blocks
        WHERE day = $1 AND start_min >= $2 AND start_min < $3 AND id <> $4`
	var count int
	if err := r.db.GetContext(ctx, &count, query, day, shiftLow, shiftHigh, excludeID); err != nil {
		return 0, fmt.Errorf("count shift slots: %w", err)
	}
	return count, nil
}

// ExistsSpan reports whether another slot already covers the exact day and
// minute span.
func (r *ScheduleBlockRepository) ExistsSpan(ctx context.Context, day models.Weekday, start, end models.MinuteOfDay, excludeID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM schedule_blocks
        WHERE day = $1 AND start_min = $2 AND end_min = $3 AND id <> $4)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, day, start, end, excludeID); err != nil {
		return false, fmt.Errorf("check slot span: %w", err)
	}
	return exists, nil
}

// Create persists a new catalog slot.
func (r *ScheduleBlockRepository) Create(ctx context.Context, block *models.ScheduleBlock) error {
	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	if block.CreatedAt.IsZero() {
		block.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO schedule_blocks (id, code, day, start_min, end_min, created_at)
        VALUES (:id, :code, :day, :start_min, :end_min, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, block); err != nil {
		return fmt.Errorf("create schedule block: %w", err)
	}
	return nil
}

// Update rewrites the slot's placement and code.
func (r *ScheduleBlockRepository) Update(ctx context.Context, block *models.ScheduleBlock) error {
	const query = `UPDATE schedule_blocks SET code = :code, day = :day, start_min = :start_min, end_min = :end_min
        WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, block)
	if err != nil {
		return fmt.Errorf("update schedule block: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update schedule block: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
