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

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, assignment_id, status, enrolled_at, withdrawn_at
        FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ExistsActiveByCourse checks whether the student already holds an active
// enrollment in any assignment of the given course, regardless of section.
func (r *EnrollmentRepository) ExistsActiveByCourse(ctx context.Context, studentID, courseID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments e
        JOIN assignments a ON a.id = e.assignment_id
        WHERE e.student_id = $1 AND a.course_id = $2 AND e.status = $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, courseID, models.EnrollmentActive); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check active enrollment: %w", err)
	}
	return true, nil
}

// ListActiveDetailed returns the student's active enrollments joined with
// their assignment schedule and course data.
func (r *EnrollmentRepository) ListActiveDetailed(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.assignment_id, e.status, e.enrolled_at, e.withdrawn_at,
        a.course_id, c.code AS course_code, c.name AS course_name, c.cycle AS course_cycle,
        s.code AS section_code, t.full_name AS teacher_name, r.code AS room_code,
        a.kind, a.day, a.start_min, a.end_min,
        COALESCE((SELECT ROUND(100.0 * COUNT(*) FILTER (WHERE ar.present) / NULLIF(COUNT(*), 0), 1)
            FROM attendance_records ar WHERE ar.enrollment_id = e.id), 0) AS attendance_pct
        FROM enrollments e
        JOIN assignments a ON a.id = e.assignment_id
        JOIN courses c ON c.id = a.course_id
        JOIN sections s ON s.id = a.section_id
        JOIN teachers t ON t.id = a.teacher_id
        JOIN rooms r ON r.id = a.room_id
        WHERE e.student_id = $1 AND e.status = $2
        ORDER BY a.day, a.start_min`
	var details []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &details, query, studentID, models.EnrollmentActive); err != nil {
		return nil, fmt.Errorf("list active enrollments: %w", err)
	}
	return details, nil
}

// CountActiveByAssignment returns the number of active enrollments an
// assignment currently holds.
func (r *EnrollmentRepository) CountActiveByAssignment(ctx context.Context, assignmentID string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE assignment_id = $1 AND status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, assignmentID, models.EnrollmentActive); err != nil {
		return 0, fmt.Errorf("count assignment enrollments: %w", err)
	}
	return count, nil
}

// Create persists a new enrollment record.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentActive
	}
	const query = `INSERT INTO enrollments (id, student_id, assignment_id, status, enrolled_at, withdrawn_at)
        VALUES (:id, :student_id, :assignment_id, :status, :enrolled_at, :withdrawn_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Withdraw terminates an enrollment without deleting it.
func (r *EnrollmentRepository) Withdraw(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE enrollments SET status = $2, withdrawn_at = $3 WHERE id = $1 AND status = $4`
	result, err := r.db.ExecContext(ctx, query, id, models.EnrollmentWithdrawn, at, models.EnrollmentActive)
	if err != nil {
		return fmt.Errorf("withdraw enrollment: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteHard removes the enrollment row and its attendance records in one
// transaction, so a crash cannot orphan attendance rows.
func (r *EnrollmentRepository) DeleteHard(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin unenroll: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance_records WHERE enrollment_id = $1`, id); err != nil {
		return fmt.Errorf("delete enrollment attendance: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit unenroll: %w", err)
	}
	return nil
}
