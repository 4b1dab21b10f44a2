package dto

import (
	"time"

	"github.com/hadir-app/hadir-api/internal/models"
)

// StudentListRequest defines filters for listing students.
type StudentListRequest struct {
	Search string `query:"search" validate:"omitempty,max=255"`
	Class  string `query:"class" validate:"omitempty,max=50"`
	Page   int    `query:"page"`
}

// StudentCreateRequest captures the admin form for enrolling a student.
// A QR credential is issued automatically; a default password applies
// when none is supplied.
type StudentCreateRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	NISN     string `json:"nisn" validate:"required,max=20"`
	Class    string `json:"class" validate:"required,max=50"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

// StudentUpdateRequest edits a student; RegenerateQR overwrites the
// credential in place, invalidating the old string immediately.
type StudentUpdateRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	Email        string `json:"email" validate:"required,email,max=255"`
	NISN         string `json:"nisn" validate:"required,max=20"`
	Class        string `json:"class" validate:"required,max=50"`
	Password     string `json:"password" validate:"omitempty,min=8"`
	RegenerateQR bool   `json:"regenerate_qr"`
}

// StudentResponse serializes a student for API clients.
type StudentResponse struct {
	ID                uint                 `json:"id"`
	Name              string               `json:"name"`
	Email             string               `json:"email"`
	NISN              string               `json:"nisn"`
	Class             string               `json:"class"`
	QRCode            string               `json:"qr_code"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
	RecentAttendances []AttendanceResponse `json:"recent_attendances,omitempty"`
}

// StudentListResponse wraps a paginated student listing together with
// the distinct class names backing filter dropdowns.
type StudentListResponse struct {
	Items      []StudentResponse `json:"items"`
	Classes    []string          `json:"classes"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewStudentResponse converts a User model into a student DTO.
func NewStudentResponse(model models.User) StudentResponse {
	response := StudentResponse{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		Class:     model.Class,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if model.NISN != nil {
		response.NISN = *model.NISN
	}
	if model.QRCode != nil {
		response.QRCode = *model.QRCode
	}
	return response
}

// NewStudentResponseSlice converts a slice of models.
func NewStudentResponseSlice(users []models.User) []StudentResponse {
	responses := make([]StudentResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewStudentResponse(user))
	}
	return responses
}
