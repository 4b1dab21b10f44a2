package dto

import "github.com/hadir-app/hadir-api/internal/models"

// ScanRequest is the QR check-in payload. The recording method and the
// attendance date are fixed by the scan path; only status and notes
// are caller-controlled.
type ScanRequest struct {
	QRCode string `json:"qr_code" validate:"required"`
	Status string `json:"status" validate:"required,oneof=present absent late excused"`
	Notes  string `json:"notes" validate:"omitempty,max=500"`
}

// StudentProfile is the public slice of a student identity echoed back
// after a scan.
type StudentProfile struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	NISN   string `json:"nisn,omitempty"`
	Class  string `json:"class,omitempty"`
	QRCode string `json:"qr_code,omitempty"`
}

// ScanResponse mirrors the scan endpoint's JSON envelope. On rejection
// ExistingAttendance carries the conflicting record so callers can
// show "already recorded" feedback.
type ScanResponse struct {
	Success            bool                `json:"success"`
	Message            string              `json:"message"`
	Student            *StudentProfile     `json:"student,omitempty"`
	Attendance         *AttendanceResponse `json:"attendance,omitempty"`
	ExistingAttendance *AttendanceResponse `json:"existing_attendance,omitempty"`
}

// NewStudentProfile projects a user onto the scan response shape.
func NewStudentProfile(user models.User) *StudentProfile {
	profile := &StudentProfile{
		ID:    user.ID,
		Name:  user.Name,
		Class: user.Class,
	}
	if user.NISN != nil {
		profile.NISN = *user.NISN
	}
	if user.QRCode != nil {
		profile.QRCode = *user.QRCode
	}
	return profile
}
