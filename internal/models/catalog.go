package models

import "time"

// RecordStatus marks whether a catalog record is operational.
type RecordStatus string

// Catalog record statuses.
const (
	StatusActive   RecordStatus = "ACTIVE"
	StatusInactive RecordStatus = "INACTIVE"
)

// Course is a curriculum entry. Lecture and lab hours drive how many
// assignments a section needs; either may be zero.
type Course struct {
	ID           string       `db:"id" json:"id"`
	Code         string       `db:"code" json:"code"`
	Name         string       `db:"name" json:"name"`
	Cycle        int          `db:"cycle" json:"cycle"`
	LectureHours int          `db:"lecture_hours" json:"lecture_hours"`
	LabHours     int          `db:"lab_hours" json:"lab_hours"`
	Credits      int          `db:"credits" json:"credits"`
	Status       RecordStatus `db:"status" json:"status"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// RoomStatus tracks whether a room can host classes.
type RoomStatus string

// Room statuses. Only operational rooms accept assignments.
const (
	RoomOperational RoomStatus = "OPERATIONAL"
	RoomMaintenance RoomStatus = "MAINTENANCE"
	RoomRetired     RoomStatus = "RETIRED"
)

// Room is a physical classroom or laboratory.
type Room struct {
	ID        string     `db:"id" json:"id"`
	Code      string     `db:"code" json:"code"`
	Name      string     `db:"name" json:"name"`
	Capacity  int        `db:"capacity" json:"capacity"`
	Kind      string     `db:"kind" json:"kind"`
	Status    RoomStatus `db:"status" json:"status"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Section groups students of one cycle within an academic term.
type Section struct {
	ID        string       `db:"id" json:"id"`
	Code      string       `db:"code" json:"code"`
	TermLabel string       `db:"term_label" json:"term_label"`
	Cycle     int          `db:"cycle" json:"cycle"`
	Capacity  int          `db:"capacity" json:"capacity"`
	Status    RecordStatus `db:"status" json:"status"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// Teacher is a personnel directory entry referenced by assignments.
type Teacher struct {
	ID        string       `db:"id" json:"id"`
	Code      string       `db:"code" json:"code"`
	FullName  string       `db:"full_name" json:"full_name"`
	Email     string       `db:"email" json:"email"`
	Status    RecordStatus `db:"status" json:"status"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// Student is an enrolled learner. StartLabel records the term the student
// first registered, e.g. "2023-I", and drives the cycle calculation.
type Student struct {
	ID         string       `db:"id" json:"id"`
	Code       string       `db:"code" json:"code"`
	FullName   string       `db:"full_name" json:"full_name"`
	Email      string       `db:"email" json:"email"`
	StartLabel string       `db:"start_label" json:"start_label"`
	Status     RecordStatus `db:"status" json:"status"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updated_at"`
}

// CourseFilter narrows course listings.
type CourseFilter struct {
	Cycle    int
	Status   RecordStatus
	Search   string
	Page     int
	PageSize int
}
