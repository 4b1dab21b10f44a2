package models

import "time"

// Role values assigned to a user at creation. The role never changes
// afterwards.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Teacher positions. Wali Kelas (homeroom teacher) manages a single
// class; the managed class name is stored in the Subject field, a
// quirk inherited from the source data.
const (
	PositionWaliKelas      = "Wali Kelas"
	PositionMataPelajaran  = "Mata Pelajaran"
	PositionPembinaHalaqoh = "Pembina Halaqoh"
	PositionPembinaEskul   = "Pembina Eskul"
)

// Positions lists the valid teacher positions.
func Positions() []string {
	return []string{PositionWaliKelas, PositionMataPelajaran, PositionPembinaHalaqoh, PositionPembinaEskul}
}

// User is a person known to the system: an admin, a teacher, or a
// student. Role-specific columns are nullable; the services enforce
// that only the columns belonging to the user's role are ever set.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Email         string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password      string    `gorm:"size:255" json:"-"`
	Role          string    `gorm:"size:16;not null;default:student;index" json:"role"`
	NISN          *string   `gorm:"size:20;uniqueIndex" json:"nisn,omitempty"`
	TeacherNumber *string   `gorm:"size:20;uniqueIndex" json:"teacher_number,omitempty"`
	Position      string    `gorm:"size:64" json:"position,omitempty"`
	Subject       string    `gorm:"size:100" json:"subject,omitempty"`
	Class         string    `gorm:"size:50;index" json:"class,omitempty"`
	QRCode        *string   `gorm:"size:32;uniqueIndex" json:"qr_code,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsTeacher reports whether the user holds the teacher role.
func (u User) IsTeacher() bool { return u.Role == RoleTeacher }

// IsStudent reports whether the user holds the student role.
func (u User) IsStudent() bool { return u.Role == RoleStudent }

// IsHomeroomTeacher reports whether the teacher manages a class roster.
func (u User) IsHomeroomTeacher() bool {
	return u.IsTeacher() && u.Position == PositionWaliKelas
}
