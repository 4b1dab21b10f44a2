package dto

import (
	"time"

	"github.com/hadir-app/hadir-api/internal/models"
)

// TeacherListRequest defines filters for listing teachers.
type TeacherListRequest struct {
	Search   string `query:"search" validate:"omitempty,max=255"`
	Position string `query:"position" validate:"omitempty,oneof='Wali Kelas' 'Mata Pelajaran' 'Pembina Halaqoh' 'Pembina Eskul'"`
	Page     int    `query:"page"`
}

// TeacherCreateRequest captures the admin form for registering a
// teacher. For Wali Kelas the Subject field names the managed class.
type TeacherCreateRequest struct {
	Name          string `json:"name" validate:"required,max=255"`
	Email         string `json:"email" validate:"required,email,max=255"`
	TeacherNumber string `json:"teacher_number" validate:"required,max=20"`
	Position      string `json:"position" validate:"required,oneof='Wali Kelas' 'Mata Pelajaran' 'Pembina Halaqoh' 'Pembina Eskul'"`
	Subject       string `json:"subject" validate:"omitempty,max=100"`
	Password      string `json:"password" validate:"omitempty,min=8"`
}

// TeacherUpdateRequest edits a teacher.
type TeacherUpdateRequest struct {
	Name          string `json:"name" validate:"required,max=255"`
	Email         string `json:"email" validate:"required,email,max=255"`
	TeacherNumber string `json:"teacher_number" validate:"required,max=20"`
	Position      string `json:"position" validate:"required,oneof='Wali Kelas' 'Mata Pelajaran' 'Pembina Halaqoh' 'Pembina Eskul'"`
	Subject       string `json:"subject" validate:"omitempty,max=100"`
	Password      string `json:"password" validate:"omitempty,min=8"`
}

// TeacherResponse serializes a teacher for API clients.
type TeacherResponse struct {
	ID                uint                 `json:"id"`
	Name              string               `json:"name"`
	Email             string               `json:"email"`
	TeacherNumber     string               `json:"teacher_number"`
	Position          string               `json:"position"`
	Subject           string               `json:"subject,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
	RecentAttendances []AttendanceResponse `json:"recent_attendances,omitempty"`
}

// TeacherListResponse wraps a paginated teacher listing.
type TeacherListResponse struct {
	Items      []TeacherResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewTeacherResponse converts a User model into a teacher DTO.
func NewTeacherResponse(model models.User) TeacherResponse {
	response := TeacherResponse{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		Position:  model.Position,
		Subject:   model.Subject,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if model.TeacherNumber != nil {
		response.TeacherNumber = *model.TeacherNumber
	}
	return response
}

// NewTeacherResponseSlice converts a slice of models.
func NewTeacherResponseSlice(users []models.User) []TeacherResponse {
	responses := make([]TeacherResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewTeacherResponse(user))
	}
	return responses
}
