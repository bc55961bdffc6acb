package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sisacad/sisacad-api/internal/models"
)

// CascadeRepository computes and executes ordered cascade deletions for a
// section, a schedule block, or a single assignment. Deletion always removes
// children before parents and runs in one transaction.
type CascadeRepository struct {
	db *sqlx.DB
}

// NewCascadeRepository constructs the repository.
func NewCascadeRepository(db *sqlx.DB) *CascadeRepository {
	return &CascadeRepository{db: db}
}

// assignmentScope returns the WHERE fragment selecting the assignments under
// the given scope root.
func assignmentScope(scope models.CascadeScope) (string, error) {
	switch scope.Kind {
	case models.CascadeSection:
		return "SELECT id FROM assignments WHERE section_id = $1", nil
	case models.CascadeScheduleBlock:
		return "SELECT id FROM assignments WHERE block_id = $1", nil
	case models.CascadeAssignment:
		return "SELECT id FROM assignments WHERE id = $1", nil
	}
	return "", fmt.Errorf("unknown cascade scope %q", scope.Kind)
}

// Plan counts the dependent rows that executing the cascade would remove.
func (r *CascadeRepository) Plan(ctx context.Context, scope models.CascadeScope) (*models.CascadePlan, error) {
	sub, err := assignmentScope(scope)
	if err != nil {
		return nil, err
	}

	plan := &models.CascadePlan{Scope: scope}

	counts := []struct {
		dest  *int
		query string
	}{
		{&plan.AttendanceRecords, fmt.Sprintf(`SELECT COUNT(*) FROM attendance_records ar
            WHERE ar.enrollment_id IN (SELECT e.id FROM enrollments e WHERE e.assignment_id IN (%s))
            OR ar.session_id IN (SELECT cs.id FROM class_sessions cs WHERE cs.assignment_id IN (%s))`, sub, sub)},
		{&plan.Enrollments, fmt.Sprintf(`SELECT COUNT(*) FROM enrollments WHERE assignment_id IN (%s)`, sub)},
		{&plan.Materials, fmt.Sprintf(`SELECT COUNT(*) FROM materials WHERE assignment_id IN (%s)`, sub)},
		{&plan.ClassSessions, fmt.Sprintf(`SELECT COUNT(*) FROM class_sessions WHERE assignment_id IN (%s)`, sub)},
		{&plan.Assignments, fmt.Sprintf(`SELECT COUNT(*) FROM (%s) scoped`, sub)},
	}

	for _, c := range counts {
		if err := r.db.GetContext(ctx, c.dest, c.query, scope.RootID); err != nil {
			return nil, fmt.Errorf("count cascade dependents: %w", err)
		}
	}
	return plan, nil
}

// Execute removes all dependents and the root in one transaction, deepest
// first, and reports the rows deleted per category.
func (r *CascadeRepository) Execute(ctx context.Context, scope models.CascadeScope) (*models.CascadeResult, error) {
	sub, err := assignmentScope(scope)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin cascade delete: %w", err)
	}
	defer tx.Rollback()

	result := &models.CascadeResult{Scope: scope}

	steps := []struct {
		dest  *int
		query string
	}{
		{&result.AttendanceRecords, fmt.Sprintf(`DELETE FROM attendance_records
            WHERE enrollment_id IN (SELECT e.id FROM enrollments e WHERE e.assignment_id IN (%s))`, sub)},
		{&result.AttendanceRecords, fmt.Sprintf(`DELETE FROM attendance_records
            WHERE session_id IN (SELECT cs.id FROM class_sessions cs WHERE cs.assignment_id IN (%s))`, sub)},
		{&result.Enrollments, fmt.Sprintf(`DELETE FROM enrollments WHERE assignment_id IN (%s)`, sub)},
		{&result.Materials, fmt.Sprintf(`DELETE FROM materials WHERE assignment_id IN (%s)`, sub)},
		{&result.ClassSessions, fmt.Sprintf(`DELETE FROM class_sessions WHERE assignment_id IN (%s)`, sub)},
		{&result.Assignments, fmt.Sprintf(`DELETE FROM assignments WHERE id IN (%s)`, sub)},
	}

	for i, step := range steps {
		res, err := tx.ExecContext(ctx, step.query, scope.RootID)
		if err != nil {
			return nil, fmt.Errorf("cascade delete step %d: %w", i+1, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("cascade delete step %d rows: %w", i+1, err)
		}
		*step.dest += int(affected)
	}

	switch scope.Kind {
	case models.CascadeSection:
		res, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE id = $1`, scope.RootID)
		if err != nil {
			return nil, fmt.Errorf("delete section: %w", err)
		}
		affected, _ := res.RowsAffected()
		result.RootDeleted = affected > 0
	case models.CascadeScheduleBlock:
		res, err := tx.ExecContext(ctx, `DELETE FROM schedule_blocks WHERE id = $1`, scope.RootID)
		if err != nil {
			return nil, fmt.Errorf("delete schedule block: %w", err)
		}
		affected, _ := res.RowsAffected()
		result.RootDeleted = affected > 0
	case models.CascadeAssignment:
		result.RootDeleted = result.Assignments > 0
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit cascade delete: %w", err)
	}
	return result, nil
}
