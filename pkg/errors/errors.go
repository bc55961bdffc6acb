package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound   = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict   = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal   = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// Assignment validation failures. Each is recoverable by correcting the input.
var (
	ErrHoursMismatch    = New("HOURS_MISMATCH", http.StatusBadRequest, "time block does not match course hour requirements")
	ErrRoomInactive     = New("ROOM_INACTIVE", http.StatusBadRequest, "room is not operational")
	ErrCapacityExceeded = New("CAPACITY_EXCEEDED", http.StatusBadRequest, "expected students exceed room capacity")
	ErrRoomConflict     = New("ROOM_CONFLICT", http.StatusConflict, "room already booked for an overlapping time block")
	ErrTeacherConflict  = New("TEACHER_CONFLICT", http.StatusConflict, "teacher already scheduled for an overlapping time block")
	ErrDuplicateSlot    = New("DUPLICATE_SLOT", http.StatusConflict, "assignment already registered for this slot")
	ErrTeacherInactive  = New("TEACHER_INACTIVE", http.StatusPreconditionFailed, "teacher is inactive")
	ErrSectionInactive  = New("SECTION_INACTIVE", http.StatusPreconditionFailed, "section is inactive")
)

// Enrollment failures.
var (
	ErrAlreadyEnrolled      = New("ALREADY_ENROLLED", http.StatusConflict, "student already enrolled in this course")
	ErrScheduleConflict     = New("SCHEDULE_CONFLICT", http.StatusConflict, "time conflict with an enrolled course in the same cycle")
	ErrMissingPrerequisites = New("MISSING_PREREQUISITES", http.StatusPreconditionFailed, "prerequisite courses not passed")
)

// ErrConfirmationRequired signals a cascade delete that needs an explicit
// confirmation because dependent records exist.
var ErrConfirmationRequired = New("CONFIRMATION_REQUIRED", http.StatusConflict, "dependent records exist; confirmation required")

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// HasCode reports whether err carries the same code as target.
func HasCode(err error, target *Error) bool {
	if err == nil || target == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code == target.Code
	}
	return false
}
