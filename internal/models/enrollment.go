package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentActive    EnrollmentStatus = "ACTIVE"
	EnrollmentWithdrawn EnrollmentStatus = "WITHDRAWN"
)

// Enrollment registers a student into one assignment.
type Enrollment struct {
	ID           string           `db:"id" json:"id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	AssignmentID string           `db:"assignment_id" json:"assignment_id"`
	Status       EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt   time.Time        `db:"enrolled_at" json:"enrolled_at"`
	WithdrawnAt  *time.Time       `db:"withdrawn_at" json:"withdrawn_at,omitempty"`
}

// EnrollmentDetail joins an enrollment with its assignment and course so the
// conflict checks and schedule listing need a single query.
type EnrollmentDetail struct {
	Enrollment
	CourseID    string         `db:"course_id" json:"course_id"`
	CourseCode  string         `db:"course_code" json:"course_code"`
	CourseName  string         `db:"course_name" json:"course_name"`
	CourseCycle int            `db:"course_cycle" json:"course_cycle"`
	SectionCode string         `db:"section_code" json:"section_code"`
	TeacherName string         `db:"teacher_name" json:"teacher_name"`
	RoomCode    string         `db:"room_code" json:"room_code"`
	Kind        AssignmentKind `db:"kind" json:"kind"`
	Day         Weekday        `db:"day" json:"day"`
	StartMin    MinuteOfDay    `db:"start_min" json:"-"`
	EndMin      MinuteOfDay    `db:"end_min" json:"-"`
	StartClock  string         `db:"-" json:"start"`
	EndClock    string         `db:"-" json:"end"`

	// AttendancePct is the share of registered sessions marked present,
	// 0 when no attendance has been captured yet.
	AttendancePct float64 `db:"attendance_pct" json:"attendance_pct"`
}

// Block returns the enrolled assignment's schedule span.
func (d EnrollmentDetail) Block() TimeBlock {
	return TimeBlock{Day: d.Day, StartMin: d.StartMin, EndMin: d.EndMin}
}

// EnrollRequest is the enrollment mutation payload.
type EnrollRequest struct {
	StudentID    string `json:"student_id" validate:"required"`
	AssignmentID string `json:"assignment_id" validate:"required"`
}

// SectionSummary is one row of the eligible-sections listing.
type SectionSummary struct {
	AssignmentID string         `db:"assignment_id" json:"assignment_id"`
	SectionID    string         `db:"section_id" json:"section_id"`
	SectionCode  string         `db:"section_code" json:"section_code"`
	CourseID     string         `db:"course_id" json:"course_id"`
	CourseCode   string         `db:"course_code" json:"course_code"`
	CourseName   string         `db:"course_name" json:"course_name"`
	CourseCycle  int            `db:"course_cycle" json:"course_cycle"`
	TeacherName  string         `db:"teacher_name" json:"teacher_name"`
	RoomCode     string         `db:"room_code" json:"room_code"`
	Kind         AssignmentKind `db:"kind" json:"kind"`
	Day          Weekday        `db:"day" json:"day"`
	StartMin     MinuteOfDay    `db:"start_min" json:"-"`
	EndMin       MinuteOfDay    `db:"end_min" json:"-"`
	Enrolled     int            `db:"enrolled" json:"enrolled"`
	Capacity     int            `db:"capacity" json:"capacity"`
	StartClock   string         `db:"-" json:"start"`
	EndClock     string         `db:"-" json:"end"`
}

// EligibleSections is the read-path result: the computed cycle window plus
// the sections a student may join, with any cycle label warning attached.
type EligibleSections struct {
	CurrentCycle int              `json:"current_cycle"`
	CycleLabel   string           `json:"cycle_label"`
	Cycles       []int            `json:"cycles"`
	Warning      string           `json:"warning,omitempty"`
	Sections     []SectionSummary `json:"sections"`
}

// StudentSchedule is the weekly timetable of a student's active enrollments.
type StudentSchedule struct {
	StudentID string             `json:"student_id"`
	Entries   []EnrollmentDetail `json:"entries"`
}
