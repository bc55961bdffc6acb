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

// PrerequisiteRepository handles the prerequisite edge set.
type PrerequisiteRepository struct {
	db *sqlx.DB
}

// NewPrerequisiteRepository constructs the repository.
func NewPrerequisiteRepository(db *sqlx.DB) *PrerequisiteRepository {
	return &PrerequisiteRepository{db: db}
}

// RequiredFor returns the courses that must be passed before enrolling in
// the given course.
func (r *PrerequisiteRepository) RequiredFor(ctx context.Context, courseID string) ([]models.PrerequisiteDetail, error) {
	const query = `SELECT p.id, p.course_id, p.required_course_id, p.created_at,
        c.code AS course_code, c.name AS course_name,
        rc.code AS required_course_code, rc.name AS required_course_name
        FROM prerequisites p
        JOIN courses c ON c.id = p.course_id
        JOIN courses rc ON rc.id = p.required_course_id
        WHERE p.course_id = $1
        ORDER BY rc.code`
	var edges []models.PrerequisiteDetail
	if err := r.db.SelectContext(ctx, &edges, query, courseID); err != nil {
		return nil, fmt.Errorf("list prerequisites: %w", err)
	}
	return edges, nil
}

// ListAll returns every edge in the graph, grouped by course code.
func (r *PrerequisiteRepository) ListAll(ctx context.Context) ([]models.PrerequisiteDetail, error) {
	const query = `SELECT p.id, p.course_id, p.required_course_id, p.created_at,
        c.code AS course_code, c.name AS course_name,
        rc.code AS required_course_code, rc.name AS required_course_name
        FROM prerequisites p
        JOIN courses c ON c.id = p.course_id
        JOIN courses rc ON rc.id = p.required_course_id
        ORDER BY c.code, rc.code`
	var edges []models.PrerequisiteDetail
	if err := r.db.SelectContext(ctx, &edges, query); err != nil {
		return nil, fmt.Errorf("list all prerequisites: %w", err)
	}
	return edges, nil
}

// Exists checks whether the directed edge is already registered.
func (r *PrerequisiteRepository) Exists(ctx context.Context, courseID, requiredCourseID string) (bool, error) {
	const query = `SELECT 1 FROM prerequisites WHERE course_id = $1 AND required_course_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, courseID, requiredCourseID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check prerequisite: %w", err)
	}
	return true, nil
}

// Create persists a new edge.
func (r *PrerequisiteRepository) Create(ctx context.Context, edge *models.Prerequisite) error {
	if edge.ID == "" {
		edge.ID = uuid.NewString()
	}
	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO prerequisites (id, course_id, required_course_id, created_at)
        VALUES (:id, :course_id, :required_course_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, edge); err != nil {
		return fmt.Errorf("create prerequisite: %w", err)
	}
	return nil
}

// Delete removes an edge by ID.
func (r *PrerequisiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM prerequisites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete prerequisite: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByCourse removes every edge leaving the given course and returns how
// many were removed.
func (r *PrerequisiteRepository) DeleteByCourse(ctx context.Context, courseID string) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM prerequisites WHERE course_id = $1`, courseID)
	if err != nil {
		return 0, fmt.Errorf("delete course prerequisites: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete course prerequisites: %w", err)
	}
	return int(affected), nil
}
