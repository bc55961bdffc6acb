package models

import "time"

// AssignmentKind distinguishes the teaching modality of an assignment.
type AssignmentKind string

// Assignment kinds.
const (
	KindLecture AssignmentKind = "LECTURE"
	KindLab     AssignmentKind = "LAB"
)

// Valid reports whether the kind is one of the closed set.
func (k AssignmentKind) Valid() bool {
	return k == KindLecture || k == KindLab
}

// Assignment binds a course and section to a teacher, room and time block
// for one teaching modality.
type Assignment struct {
	ID              string         `db:"id" json:"id"`
	CourseID        string         `db:"course_id" json:"course_id"`
	SectionID       string         `db:"section_id" json:"section_id"`
	TeacherID       string         `db:"teacher_id" json:"teacher_id"`
	RoomID          string         `db:"room_id" json:"room_id"`
	BlockID         *string        `db:"block_id" json:"block_id,omitempty"`
	Kind            AssignmentKind `db:"kind" json:"kind"`
	Day             Weekday        `db:"day" json:"day"`
	StartMin        MinuteOfDay    `db:"start_min" json:"-"`
	EndMin          MinuteOfDay    `db:"end_min" json:"-"`
	StudentCapacity int            `db:"student_capacity" json:"student_capacity"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// Block returns the assignment's schedule span as a value type.
func (a Assignment) Block() TimeBlock {
	return TimeBlock{Day: a.Day, StartMin: a.StartMin, EndMin: a.EndMin}
}

// AssignmentDetail enriches an assignment with catalog names for listings.
type AssignmentDetail struct {
	Assignment
	CourseCode  string `db:"course_code" json:"course_code"`
	CourseName  string `db:"course_name" json:"course_name"`
	SectionCode string `db:"section_code" json:"section_code"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	RoomCode    string `db:"room_code" json:"room_code"`
	StartClock  string `db:"-" json:"start"`
	EndClock    string `db:"-" json:"end"`
}

// KindSpec is the proposed placement for one teaching modality. A slot comes
// either from the schedule block catalog or from an explicit day and start.
type KindSpec struct {
	TeacherID string `json:"teacher_id" validate:"required"`
	RoomID    string `json:"room_id" validate:"required"`
	BlockID   string `json:"block_id"`
	Day       string `json:"day"`
	Start     string `json:"start"`
}

// CreateAssignmentRequest proposes placements for a course within a section.
// A modality must be present exactly when the course requires hours for it.
type CreateAssignmentRequest struct {
	CourseID             string    `json:"course_id" validate:"required"`
	SectionID            string    `json:"section_id" validate:"required"`
	ExpectedStudentCount int       `json:"expected_student_count" validate:"required,min=1"`
	Lecture              *KindSpec `json:"lecture"`
	Lab                  *KindSpec `json:"lab"`
}

// EditAssignmentRequest re-places a single existing assignment.
type EditAssignmentRequest struct {
	TeacherID            string `json:"teacher_id" validate:"required"`
	RoomID               string `json:"room_id" validate:"required"`
	BlockID              string `json:"block_id"`
	Day                  string `json:"day"`
	Start                string `json:"start"`
	ExpectedStudentCount int    `json:"expected_student_count" validate:"required,min=1"`
}

// AssignmentFilter narrows assignment listings.
type AssignmentFilter struct {
	SectionID string
	CourseID  string
	TeacherID string
	RoomID    string
	Page      int
	PageSize  int
}
