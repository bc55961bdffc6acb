package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sisacad/sisacad-api/internal/models"
)

// AssignmentRepository handles persistence of schedule assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = `id, course_id, section_id, teacher_id, room_id, block_id, kind,
        day, start_min, end_min, student_capacity, created_at, updated_at`

// FindByID returns an assignment by its ID.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignments WHERE id = $1`, assignmentColumns)
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListByRoomAndDay returns every assignment occupying a room on a day. The
// conflict scan covers all sections and courses.
func (r *AssignmentRepository) ListByRoomAndDay(ctx context.Context, roomID string, day models.Weekday) ([]models.Assignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignments WHERE room_id = $1 AND day = $2`, assignmentColumns)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, roomID, day); err != nil {
		return nil, fmt.Errorf("list room assignments: %w", err)
	}
	return assignments, nil
}

// ListByTeacherAndDay returns every assignment a teacher holds on a day,
// across all rooms.
func (r *AssignmentRepository) ListByTeacherAndDay(ctx context.Context, teacherID string, day models.Weekday) ([]models.Assignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignments WHERE teacher_id = $1 AND day = $2`, assignmentColumns)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, teacherID, day); err != nil {
		return nil, fmt.Errorf("list teacher assignments: %w", err)
	}
	return assignments, nil
}

// ExistsSlot checks whether the exact (course, section, day, start) slot is
// already registered, optionally excluding one assignment from the match.
func (r *AssignmentRepository) ExistsSlot(ctx context.Context, courseID, sectionID string, day models.Weekday, start models.MinuteOfDay, excludeID string) (bool, error) {
	query := "SELECT 1 FROM assignments WHERE course_id = $1 AND section_id = $2 AND day = $3 AND start_min = $4"
	args := []interface{}{courseID, sectionID, day, start}
	if excludeID != "" {
		query += fmt.Sprintf(" AND id <> $%d", len(args)+1)
		args = append(args, excludeID)
	}
	query += " LIMIT 1"
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check assignment slot: %w", err)
	}
	return true, nil
}

// ExistsKind checks whether the (course, section, kind) pairing already has
// an assignment row.
func (r *AssignmentRepository) ExistsKind(ctx context.Context, courseID, sectionID string, kind models.AssignmentKind) (bool, error) {
	const query = `SELECT 1 FROM assignments WHERE course_id = $1 AND section_id = $2 AND kind = $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, courseID, sectionID, kind); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check assignment kind: %w", err)
	}
	return true, nil
}

// CreateBatch persists all assignment rows of one placement atomically.
func (r *AssignmentRepository) CreateBatch(ctx context.Context, assignments []*models.Assignment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create assignments: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	const query = `INSERT INTO assignments (id, course_id, section_id, teacher_id, room_id, block_id, kind,
        day, start_min, end_min, student_capacity, created_at, updated_at)
        VALUES (:id, :course_id, :section_id, :teacher_id, :room_id, :block_id, :kind,
        :day, :start_min, :end_min, :student_capacity, :created_at, :updated_at)`

	for _, assignment := range assignments {
		if assignment.ID == "" {
			assignment.ID = uuid.NewString()
		}
		if assignment.CreatedAt.IsZero() {
			assignment.CreatedAt = now
		}
		assignment.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, assignment); err != nil {
			return fmt.Errorf("create assignment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create assignments: %w", err)
	}
	return nil
}

// Update rewrites the placement of an existing assignment.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	assignment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assignments SET teacher_id = :teacher_id, room_id = :room_id, block_id = :block_id,
        day = :day, start_min = :start_min, end_min = :end_min, student_capacity = :student_capacity,
        updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, assignment)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns assignment details filtered by the provided criteria.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, int, error) {
	base := `FROM assignments a
JOIN courses c ON c.id = a.course_id
JOIN sections s ON s.id = a.section_id
JOIN teachers t ON t.id = a.teacher_id
JOIN rooms r ON r.id = a.room_id`
	var conditions []string
	var args []interface{}

	if filter.SectionID != "" {
		conditions = append(conditions, fmt.Sprintf("a.section_id = $%d", len(args)+1))
		args = append(args, filter.SectionID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("a.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("a.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("a.room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT a.id, a.course_id, a.section_id, a.teacher_id, a.room_id, a.block_id, a.kind,
        a.day, a.start_min, a.end_min, a.student_capacity, a.created_at, a.updated_at,
        c.code AS course_code, c.name AS course_name, s.code AS section_code,
        t.full_name AS teacher_name, r.code AS room_code
        %s ORDER BY a.day, a.start_min LIMIT %d OFFSET %d`, base+clause, size, offset)

	var details []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}
	return details, total, nil
}

// ListOpenByCycles returns enrollable section summaries for courses in the
// given cycles, with current enrollment counts.
func (r *AssignmentRepository) ListOpenByCycles(ctx context.Context, cycles []int) ([]models.SectionSummary, error) {
	if len(cycles) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(cycles))
	args := make([]interface{}, len(cycles))
	for i, cycle := range cycles {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = cycle
	}

	query := fmt.Sprintf(`SELECT a.id AS assignment_id, a.section_id, s.code AS section_code,
        a.course_id, c.code AS course_code, c.name AS course_name, c.cycle AS course_cycle,
        t.full_name AS teacher_name, r.code AS room_code, a.kind, a.day, a.start_min, a.end_min,
        a.student_capacity AS capacity,
        (SELECT COUNT(*) FROM enrollments e WHERE e.assignment_id = a.id AND e.status = 'ACTIVE') AS enrolled
        FROM assignments a
        JOIN courses c ON c.id = a.course_id
        JOIN sections s ON s.id = a.section_id
        JOIN teachers t ON t.id = a.teacher_id
        JOIN rooms r ON r.id = a.room_id
        WHERE c.cycle IN (%s) AND c.status = 'ACTIVE' AND s.status = 'ACTIVE'
        ORDER BY c.cycle, c.code, s.code, a.kind`, strings.Join(placeholders, ","))

	var summaries []models.SectionSummary
	if err := r.db.SelectContext(ctx, &summaries, query, args...); err != nil {
		return nil, fmt.Errorf("list open sections: %w", err)
	}
	return summaries, nil
}
