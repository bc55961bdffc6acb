package models

import "time"

// NotificationKind tags the event that produced a notification.
type NotificationKind string

// Notification kinds emitted by the enrollment flow.
const (
	NotifyEnrolled  NotificationKind = "ENROLLED"
	NotifyWithdrawn NotificationKind = "WITHDRAWN"
)

// Notification is an outbound event handed to the mailer queue after the
// owning transaction commits, never inside it.
type Notification struct {
	Kind       NotificationKind `json:"kind"`
	StudentID  string           `json:"student_id"`
	CourseCode string           `json:"course_code"`
	CourseName string           `json:"course_name"`
	OccurredAt time.Time        `json:"occurred_at"`
}
