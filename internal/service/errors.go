package service

import (
	"errors"
	"fmt"

	"github.com/hadir-app/hadir-api/internal/dto"
)

// Sentinel errors shared across services.
var (
	// ErrAttendanceNotFound indicates the requested ledger row does not exist.
	ErrAttendanceNotFound = errors.New("attendance record not found")
	// ErrStudentNotFound indicates no student matches the given identifier.
	ErrStudentNotFound = errors.New("student not found")
	// ErrTeacherNotFound indicates no teacher matches the given identifier.
	ErrTeacherNotFound = errors.New("teacher not found")
	// ErrUserNotFound indicates no user matches the given identifier.
	ErrUserNotFound = errors.New("user not found")
	// ErrClassNotFound indicates the requested class does not exist.
	ErrClassNotFound = errors.New("class not found")
	// ErrCredentialNotFound indicates no student holds the scanned QR credential.
	ErrCredentialNotFound = errors.New("no student matches this qr code")
	// ErrSeedDisabled indicates seeding is switched off for this environment.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the supplied seed token does not match.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// DuplicateAttendanceError rejects a second record for the same
// (student, date, teacher) triple. Existing carries the conflicting
// row so callers can show "already recorded today" feedback.
type DuplicateAttendanceError struct {
	Existing dto.AttendanceResponse
}

func (e *DuplicateAttendanceError) Error() string {
	return "attendance already recorded for this student today"
}

// UniquenessError reports a field value already registered to another
// user, mapped to a validation-style response rather than a raw
// storage fault.
type UniquenessError struct {
	Field string
}

func (e *UniquenessError) Error() string {
	return fmt.Sprintf("this %s is already registered", e.Field)
}
