package models

import "time"

// Prerequisite is a directed edge: CourseID requires RequiredCourseID to be
// passed before enrollment.
type Prerequisite struct {
	ID               string    `db:"id" json:"id"`
	CourseID         string    `db:"course_id" json:"course_id"`
	RequiredCourseID string    `db:"required_course_id" json:"required_course_id"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// PrerequisiteDetail names both courses of an edge for listings.
type PrerequisiteDetail struct {
	Prerequisite
	CourseCode         string `db:"course_code" json:"course_code"`
	CourseName         string `db:"course_name" json:"course_name"`
	RequiredCourseCode string `db:"required_course_code" json:"required_course_code"`
	RequiredCourseName string `db:"required_course_name" json:"required_course_name"`
}

// CoursePrerequisites groups a course with every edge leaving it, for the
// catalog-wide prerequisite overview.
type CoursePrerequisites struct {
	CourseID     string               `json:"course_id"`
	CourseCode   string               `json:"course_code"`
	CourseName   string               `json:"course_name"`
	Requirements []PrerequisiteDetail `json:"requirements"`
}

// CreatePrerequisiteRequest registers a new edge.
type CreatePrerequisiteRequest struct {
	CourseID         string `json:"course_id" validate:"required"`
	RequiredCourseID string `json:"required_course_id" validate:"required"`
}

// PassingGrade is the minimum final grade that counts a course as passed,
// on a 0-20 scale.
const PassingGrade = 11

// Grade is a student's final grade record for a course.
type Grade struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	FinalGrade float64   `db:"final_grade" json:"final_grade"`
	TermLabel  string    `db:"term_label" json:"term_label"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}
