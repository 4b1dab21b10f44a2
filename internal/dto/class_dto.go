package dto

import (
	"time"

	"github.com/hadir-app/hadir-api/internal/models"
)

// ClassCreateRequest captures the registry form for a class.
type ClassCreateRequest struct {
	Name              string `json:"name" validate:"required,max=50"`
	GradeLevel        string `json:"grade_level" validate:"required,max=16"`
	Program           string `json:"program" validate:"omitempty,max=50"`
	HomeroomTeacherID *uint  `json:"homeroom_teacher_id" validate:"omitempty,gt=0"`
	Capacity          int    `json:"capacity" validate:"omitempty,gte=1,lte=100"`
	Description       string `json:"description" validate:"omitempty,max=1000"`
}

// ClassUpdateRequest edits a class registry entry.
type ClassUpdateRequest struct {
	Name              string `json:"name" validate:"required,max=50"`
	GradeLevel        string `json:"grade_level" validate:"required,max=16"`
	Program           string `json:"program" validate:"omitempty,max=50"`
	HomeroomTeacherID *uint  `json:"homeroom_teacher_id" validate:"omitempty,gt=0"`
	Capacity          int    `json:"capacity" validate:"omitempty,gte=1,lte=100"`
	Description       string `json:"description" validate:"omitempty,max=1000"`
}

// ClassResponse serializes a class registry entry.
type ClassResponse struct {
	ID                uint       `json:"id"`
	Name              string     `json:"name"`
	GradeLevel        string     `json:"grade_level"`
	Program           string     `json:"program,omitempty"`
	HomeroomTeacherID *uint      `json:"homeroom_teacher_id,omitempty"`
	HomeroomTeacher   *UserLite  `json:"homeroom_teacher,omitempty"`
	Capacity          int        `json:"capacity"`
	Description       string     `json:"description,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// NewClassResponse converts a Class model into a DTO.
func NewClassResponse(model models.Class) ClassResponse {
	response := ClassResponse{
		ID:                model.ID,
		Name:              model.Name,
		GradeLevel:        model.GradeLevel,
		Program:           model.Program,
		HomeroomTeacherID: model.HomeroomTeacherID,
		Capacity:          model.Capacity,
		Description:       model.Description,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
	if model.HomeroomTeacher != nil {
		response.HomeroomTeacher = &UserLite{ID: model.HomeroomTeacher.ID, Name: model.HomeroomTeacher.Name}
	}
	return response
}

// NewClassResponseSlice converts a slice of models.
func NewClassResponseSlice(classes []models.Class) []ClassResponse {
	responses := make([]ClassResponse, 0, len(classes))
	for _, class := range classes {
		responses = append(responses, NewClassResponse(class))
	}
	return responses
}
