package dto

import (
	"time"

	"github.com/hadir-app/hadir-api/internal/models"
)

// Wire formats for calendar dates and check-in clock times.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginationMeta derives pagination metadata from filter inputs.
func NewPaginationMeta(page, pageSize int, total int64) PaginationMeta {
	if page <= 0 {
		page = 1
	}

	meta := PaginationMeta{Page: page, PageSize: pageSize, TotalItems: total}
	if pageSize > 0 {
		meta.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}

	return meta
}

// AttendanceListRequest describes query string filters for the ledger
// listing. A start/end range wins over an exact date; with neither
// given the listing defaults to today.
type AttendanceListRequest struct {
	StartDate string `query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `query:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Date      string `query:"date" validate:"omitempty,datetime=2006-01-02"`
	StudentID uint   `query:"student_id"`
	Class     string `query:"class" validate:"omitempty,max=50"`
	Status    string `query:"status" validate:"omitempty,oneof=present absent late excused"`
	Page      int    `query:"page"`
}

// AttendanceCreateRequest is the manual-entry payload. Date and
// check-in time default to now when omitted.
type AttendanceCreateRequest struct {
	StudentID      uint   `json:"student_id" validate:"required,gt=0"`
	AttendanceDate string `json:"attendance_date" validate:"omitempty,datetime=2006-01-02"`
	Status         string `json:"status" validate:"required,oneof=present absent late excused"`
	Method         string `json:"method" validate:"required,oneof=qr_scan manual_check"`
	CheckInTime    string `json:"check_in_time" validate:"omitempty"`
	Notes          string `json:"notes" validate:"omitempty,max=500"`
}

// AttendanceUpdateRequest replaces an existing record in full.
type AttendanceUpdateRequest struct {
	StudentID      uint   `json:"student_id" validate:"required,gt=0"`
	AttendanceDate string `json:"attendance_date" validate:"required,datetime=2006-01-02"`
	Status         string `json:"status" validate:"required,oneof=present absent late excused"`
	Method         string `json:"method" validate:"required,oneof=qr_scan manual_check"`
	CheckInTime    string `json:"check_in_time" validate:"omitempty"`
	Notes          string `json:"notes" validate:"omitempty,max=500"`
}

// UserLite summarizes a person inside attendance responses.
type UserLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	NISN  string `json:"nisn,omitempty"`
	Class string `json:"class,omitempty"`
}

// AttendanceResponse is returned to API clients when viewing ledger rows.
type AttendanceResponse struct {
	ID             uint      `json:"id"`
	StudentID      uint      `json:"student_id"`
	TeacherID      uint      `json:"teacher_id"`
	AttendanceDate string    `json:"attendance_date"`
	Status         string    `json:"status"`
	Method         string    `json:"method"`
	CheckInTime    string    `json:"check_in_time,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Student        *UserLite `json:"student,omitempty"`
	Teacher        *UserLite `json:"teacher,omitempty"`
}

// AttendanceListResponse wraps a paginated ledger listing.
type AttendanceListResponse struct {
	Items      []AttendanceResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
}

// NewAttendanceResponse converts an Attendance model into a DTO.
func NewAttendanceResponse(model models.Attendance) AttendanceResponse {
	response := AttendanceResponse{
		ID:             model.ID,
		StudentID:      model.StudentID,
		TeacherID:      model.TeacherID,
		AttendanceDate: model.AttendanceDate.Format(DateLayout),
		Status:         model.Status,
		Method:         model.Method,
		Notes:          model.Notes,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}

	if model.CheckInTime != nil {
		response.CheckInTime = model.CheckInTime.Format(TimeLayout)
	}

	if model.Student != nil {
		response.Student = newUserLite(*model.Student)
	}

	if model.Teacher != nil {
		response.Teacher = newUserLite(*model.Teacher)
	}

	return response
}

// NewAttendanceResponseSlice converts a slice of models.
func NewAttendanceResponseSlice(records []models.Attendance) []AttendanceResponse {
	responses := make([]AttendanceResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, NewAttendanceResponse(record))
	}
	return responses
}

func newUserLite(user models.User) *UserLite {
	lite := &UserLite{
		ID:    user.ID,
		Name:  user.Name,
		Class: user.Class,
	}
	if user.NISN != nil {
		lite.NISN = *user.NISN
	}
	return lite
}
