package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/hadir-app/hadir-api/internal/dto"
	"github.com/hadir-app/hadir-api/internal/models"
	"github.com/hadir-app/hadir-api/internal/observability"
	"github.com/hadir-app/hadir-api/internal/repository"
)

// Listings always page by 20.
const attendancePageSize = 20

// AttendanceService owns the ledger: recording with the duplicate
// policy, full-replace updates, deletion, and filtered listings.
type AttendanceService interface {
	List(ctx context.Context, req dto.AttendanceListRequest) (dto.AttendanceListResponse, error)
	Get(ctx context.Context, id uint) (dto.AttendanceResponse, error)
	Record(ctx context.Context, teacherID uint, req dto.AttendanceCreateRequest) (dto.AttendanceResponse, error)
	Update(ctx context.Context, id uint, req dto.AttendanceUpdateRequest) (dto.AttendanceResponse, error)
	Delete(ctx context.Context, id uint) error
}

type attendanceService struct {
	ledger    repository.AttendanceRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewAttendanceService constructs an AttendanceService instance.
func NewAttendanceService(ledger repository.AttendanceRepository, validate *validator.Validate, logger zerolog.Logger) AttendanceService {
	return &attendanceService{
		ledger:    ledger,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "attendance_service").Logger(),
		tracer:    otel.Tracer("github.com/hadir-app/hadir-api/internal/service/attendance"),
		now:       time.Now,
	}
}

func (s *attendanceService) List(ctx context.Context, req dto.AttendanceListRequest) (dto.AttendanceListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AttendanceListResponse{}, err
	}

	filter := repository.AttendanceFilter{
		Class:    req.Class,
		Status:   req.Status,
		Page:     req.Page,
		PageSize: attendancePageSize,
	}

	if req.StudentID > 0 {
		studentID := req.StudentID
		filter.StudentID = &studentID
	}

	// A start/end range wins over an exact date; without either the
	// listing covers today only.
	switch {
	case req.StartDate != "" && req.EndDate != "":
		start, _ := time.Parse(dto.DateLayout, req.StartDate)
		end, _ := time.Parse(dto.DateLayout, req.EndDate)
		filter.StartDate = &start
		filter.EndDate = &end
	case req.Date != "":
		date, _ := time.Parse(dto.DateLayout, req.Date)
		filter.Date = &date
	default:
		today := models.DateOnly(s.now())
		filter.Date = &today
	}

	records, total, err := s.ledger.List(ctx, filter)
	if err != nil {
		return dto.AttendanceListResponse{}, err
	}

	return dto.AttendanceListResponse{
		Items:      dto.NewAttendanceResponseSlice(records),
		Pagination: dto.NewPaginationMeta(req.Page, attendancePageSize, total),
	}, nil
}

func (s *attendanceService) Get(ctx context.Context, id uint) (dto.AttendanceResponse, error) {
	record, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttendanceResponse{}, ErrAttendanceNotFound
		}
		return dto.AttendanceResponse{}, err
	}

	return dto.NewAttendanceResponse(record), nil
}

// Record persists one ledger row for (student, teacher, date). A row
// already covering the triple rejects the call with the existing
// record attached; the composite unique index closes the remaining
// race between the lookup and the insert.
func (s *attendanceService) Record(ctx context.Context, teacherID uint, req dto.AttendanceCreateRequest) (dto.AttendanceResponse, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.record")
	span.SetAttributes(
		attribute.Int64("attendance.student_id", int64(req.StudentID)),
		attribute.Int64("attendance.teacher_id", int64(teacherID)),
		attribute.String("attendance.method", req.Method),
	)
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AttendanceResponse{}, err
	}

	date := models.DateOnly(s.now())
	if req.AttendanceDate != "" {
		parsed, err := time.Parse(dto.DateLayout, req.AttendanceDate)
		if err != nil {
			return dto.AttendanceResponse{}, fmt.Errorf("invalid attendance date: %w", err)
		}
		date = models.DateOnly(parsed)
	}

	checkIn := s.now()
	if req.CheckInTime != "" {
		parsed, err := parseClockTime(req.CheckInTime, date)
		if err != nil {
			return dto.AttendanceResponse{}, err
		}
		checkIn = parsed
	}

	if existing, err := s.ledger.FindByTriple(ctx, req.StudentID, teacherID, date); err == nil {
		span.SetStatus(codes.Error, "duplicate_attendance")
		return dto.AttendanceResponse{}, &DuplicateAttendanceError{Existing: dto.NewAttendanceResponse(existing)}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		return dto.AttendanceResponse{}, err
	}

	record := models.Attendance{
		StudentID:      req.StudentID,
		TeacherID:      teacherID,
		AttendanceDate: date,
		Status:         req.Status,
		Method:         req.Method,
		CheckInTime:    &checkIn,
		Notes:          s.sanitizer.Sanitize(req.Notes),
	}

	if err := s.ledger.Create(ctx, &record); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race to a concurrent check-in for the same triple.
			span.SetStatus(codes.Error, "duplicate_attendance")
			if existing, lookupErr := s.ledger.FindByTriple(ctx, req.StudentID, teacherID, date); lookupErr == nil {
				return dto.AttendanceResponse{}, &DuplicateAttendanceError{Existing: dto.NewAttendanceResponse(existing)}
			}
			return dto.AttendanceResponse{}, &DuplicateAttendanceError{}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "create_failed")
		return dto.AttendanceResponse{}, err
	}

	created, err := s.ledger.GetByID(ctx, record.ID)
	if err != nil {
		return dto.AttendanceResponse{}, err
	}

	observability.CheckIns().WithLabelValues(created.Method, created.Status).Inc()

	s.logger.Info().
		Uint("attendance_id", created.ID).
		Uint("student_id", created.StudentID).
		Uint("teacher_id", created.TeacherID).
		Str("method", created.Method).
		Msg("attendance recorded")

	return dto.NewAttendanceResponse(created), nil
}

// Update replaces the editable fields in full. The duplicate triple is
// deliberately not re-checked against the new values, matching the
// original system; the unique index rejects an edit that would collide
// and that rejection surfaces as a duplicate error.
func (s *attendanceService) Update(ctx context.Context, id uint, req dto.AttendanceUpdateRequest) (dto.AttendanceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AttendanceResponse{}, err
	}

	record, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttendanceResponse{}, ErrAttendanceNotFound
		}
		return dto.AttendanceResponse{}, err
	}

	date, err := time.Parse(dto.DateLayout, req.AttendanceDate)
	if err != nil {
		return dto.AttendanceResponse{}, fmt.Errorf("invalid attendance date: %w", err)
	}

	record.StudentID = req.StudentID
	record.AttendanceDate = models.DateOnly(date)
	record.Status = req.Status
	record.Method = req.Method
	record.Notes = s.sanitizer.Sanitize(req.Notes)
	record.Student = nil
	record.Teacher = nil

	if req.CheckInTime != "" {
		checkIn, err := parseClockTime(req.CheckInTime, record.AttendanceDate)
		if err != nil {
			return dto.AttendanceResponse{}, err
		}
		record.CheckInTime = &checkIn
	} else {
		record.CheckInTime = nil
	}

	if err := s.ledger.Update(ctx, &record); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if existing, lookupErr := s.ledger.FindByTriple(ctx, record.StudentID, record.TeacherID, record.AttendanceDate); lookupErr == nil {
				return dto.AttendanceResponse{}, &DuplicateAttendanceError{Existing: dto.NewAttendanceResponse(existing)}
			}
			return dto.AttendanceResponse{}, &DuplicateAttendanceError{}
		}
		return dto.AttendanceResponse{}, err
	}

	updated, err := s.ledger.GetByID(ctx, record.ID)
	if err != nil {
		return dto.AttendanceResponse{}, err
	}

	s.logger.Info().Uint("attendance_id", updated.ID).Msg("attendance updated")

	return dto.NewAttendanceResponse(updated), nil
}

func (s *attendanceService) Delete(ctx context.Context, id uint) error {
	if err := s.ledger.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttendanceNotFound
		}
		return err
	}

	s.logger.Info().Uint("attendance_id", id).Msg("attendance deleted")

	return nil
}

// parseClockTime interprets an HH:MM or HH:MM:SS string on the given
// calendar date.
func parseClockTime(value string, date time.Time) (time.Time, error) {
	var parsed time.Time
	var err error
	for _, layout := range []string{dto.TimeLayout, "15:04"} {
		parsed, err = time.Parse(layout, value)
		if err == nil {
			return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), parsed.Second(), 0, date.Location()), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid check-in time: %q", value)
}
