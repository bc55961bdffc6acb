package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// GradeRepository reads the grade history used for prerequisite checks.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// PassedCourseIDs returns the IDs of every course the student has passed
// with at least the given final grade.
func (r *GradeRepository) PassedCourseIDs(ctx context.Context, studentID string, passingGrade float64) (map[string]bool, error) {
	const query = `SELECT DISTINCT course_id FROM grades WHERE student_id = $1 AND final_grade >= $2`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, studentID, passingGrade); err != nil {
		return nil, fmt.Errorf("list passed courses: %w", err)
	}
	passed := make(map[string]bool, len(ids))
	for _, id := range ids {
		passed[id] = true
	}
	return passed, nil
}
