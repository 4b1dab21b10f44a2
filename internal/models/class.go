package models

import "time"

// Class is a named group of students, e.g. "XI-IPA-1". Students
// reference a class by name through User.Class, not by foreign key;
// renaming a class does not move its students. That loose match is
// deliberate compatibility behavior and the teacher dashboard depends
// on it.
type Class struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	GradeLevel        string    `gorm:"size:16;not null;index" json:"grade_level"`
	Program           string    `gorm:"size:50" json:"program,omitempty"`
	HomeroomTeacherID *uint     `gorm:"index" json:"homeroom_teacher_id,omitempty"`
	Capacity          int       `gorm:"not null;default:30" json:"capacity"`
	Description       string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	HomeroomTeacher   *User     `gorm:"foreignKey:HomeroomTeacherID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"homeroom_teacher,omitempty"`
}
