package models

// CascadeScopeKind selects what root record a cascade deletion targets.
type CascadeScopeKind string

// Cascade scopes.
const (
	CascadeSection       CascadeScopeKind = "SECTION"
	CascadeScheduleBlock CascadeScopeKind = "SCHEDULE_BLOCK"
	CascadeAssignment    CascadeScopeKind = "ASSIGNMENT"
)

// CascadeScope identifies the record whose dependents must be removed.
type CascadeScope struct {
	Kind   CascadeScopeKind `json:"kind"`
	RootID string           `json:"root_id"`
}

// CascadePlan lists, deepest first, what a cascade deletion will remove. It
// is shown to the caller for confirmation before anything is deleted.
type CascadePlan struct {
	Scope             CascadeScope `json:"scope"`
	AttendanceRecords int          `json:"attendance_records"`
	Enrollments       int          `json:"enrollments"`
	Materials         int          `json:"materials"`
	ClassSessions     int          `json:"class_sessions"`
	Assignments       int          `json:"assignments"`
}

// HasDependents reports whether executing the plan removes anything beyond
// the root record itself.
func (p CascadePlan) HasDependents() bool {
	return p.AttendanceRecords > 0 || p.Enrollments > 0 || p.Materials > 0 ||
		p.ClassSessions > 0 || p.Assignments > 0
}

// CascadeResult reports the rows actually deleted, per category.
type CascadeResult struct {
	Scope             CascadeScope `json:"scope"`
	AttendanceRecords int          `json:"attendance_records"`
	Enrollments       int          `json:"enrollments"`
	Materials         int          `json:"materials"`
	ClassSessions     int          `json:"class_sessions"`
	Assignments       int          `json:"assignments"`
	RootDeleted       bool         `json:"root_deleted"`
}

// ClassSession is a dated meeting of an assignment.
type ClassSession struct {
	ID           string  `db:"id" json:"id"`
	AssignmentID string  `db:"assignment_id" json:"assignment_id"`
	SessionDate  string  `db:"session_date" json:"session_date"`
	Topic        *string `db:"topic" json:"topic,omitempty"`
}

// AttendanceRecord marks a student's presence in one class session.
type AttendanceRecord struct {
	ID           string `db:"id" json:"id"`
	EnrollmentID string `db:"enrollment_id" json:"enrollment_id"`
	SessionID    string `db:"session_id" json:"session_id"`
	Present      bool   `db:"present" json:"present"`
}

// Material is a teaching resource attached to an assignment.
type Material struct {
	ID           string `db:"id" json:"id"`
	AssignmentID string `db:"assignment_id" json:"assignment_id"`
	Title        string `db:"title" json:"title"`
	URL          string `db:"url" json:"url"`
}
