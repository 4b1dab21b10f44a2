package models

import "time"

// Attendance statuses.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusExcused = "excused"
)

// Recording methods.
const (
	MethodQRScan      = "qr_scan"
	MethodManualCheck = "manual_check"
)

// Attendance is a single ledger entry: one student, the teacher who
// recorded it, and a calendar date. The composite unique index on
// (student_id, attendance_date, teacher_id) guarantees a teacher can
// record a student at most once per day even under concurrent
// check-ins; a different teacher may still record the same student on
// the same day.
type Attendance struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	StudentID      uint       `gorm:"not null;uniqueIndex:idx_attendance_triple;index:idx_attendance_student_date" json:"student_id"`
	TeacherID      uint       `gorm:"not null;uniqueIndex:idx_attendance_triple;index" json:"teacher_id"`
	AttendanceDate time.Time  `gorm:"type:date;not null;uniqueIndex:idx_attendance_triple;index:idx_attendance_student_date;index" json:"attendance_date"`
	Status         string     `gorm:"size:16;not null;default:present;index" json:"status"`
	Method         string     `gorm:"size:16;not null" json:"method"`
	CheckInTime    *time.Time `json:"check_in_time"`
	Notes          string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Student        *User      `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student,omitempty"`
	Teacher        *User      `gorm:"foreignKey:TeacherID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"teacher,omitempty"`
}

// DateOnly truncates t to its calendar date in local time. Attendance
// dates carry no time component; every comparison goes through this.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
