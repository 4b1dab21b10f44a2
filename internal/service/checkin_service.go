package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hadir-app/hadir-api/internal/dto"
	"github.com/hadir-app/hadir-api/internal/models"
	"github.com/hadir-app/hadir-api/internal/observability"
)

// CheckInService orchestrates scan-based check-in: resolve the QR
// credential, then record attendance for today under the acting
// teacher. The scan path always tags qr_scan and uses "now" for date
// and check-in time, ignoring any caller-supplied values.
type CheckInService interface {
	Scan(ctx context.Context, teacherID uint, req dto.ScanRequest) (dto.ScanResponse, error)
}

type checkInService struct {
	credentials CredentialService
	attendance  AttendanceService
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewCheckInService composes the credential resolver and the ledger.
func NewCheckInService(credentials CredentialService, attendance AttendanceService, validate *validator.Validate, logger zerolog.Logger) CheckInService {
	return &checkInService{
		credentials: credentials,
		attendance:  attendance,
		validator:   validate,
		logger:      logger.With().Str("component", "checkin_service").Logger(),
		tracer:      otel.Tracer("github.com/hadir-app/hadir-api/internal/service/checkin"),
	}
}

// Scan runs one check-in attempt. On rejection the returned response
// is still populated so callers can render the failure, and the error
// identifies the reason (ErrCredentialNotFound or
// DuplicateAttendanceError).
func (s *checkInService) Scan(ctx context.Context, teacherID uint, req dto.ScanRequest) (dto.ScanResponse, error) {
	ctx, span := s.tracer.Start(ctx, "checkin.scan")
	span.SetAttributes(attribute.Int64("checkin.teacher_id", int64(teacherID)))
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ScanResponse{}, err
	}

	student, err := s.credentials.Resolve(ctx, req.QRCode)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			span.SetStatus(codes.Error, "credential_not_found")
			return dto.ScanResponse{
				Success: false,
				Message: "Student not found with this QR code.",
			}, err
		}
		span.RecordError(err)
		return dto.ScanResponse{}, err
	}

	span.SetAttributes(attribute.Int64("checkin.student_id", int64(student.ID)))

	record, err := s.attendance.Record(ctx, teacherID, dto.AttendanceCreateRequest{
		StudentID: student.ID,
		Status:    req.Status,
		Method:    models.MethodQRScan,
		Notes:     req.Notes,
	})
	if err != nil {
		var duplicate *DuplicateAttendanceError
		if errors.As(err, &duplicate) {
			span.SetStatus(codes.Error, "duplicate_attendance")
			observability.DuplicateScans().Inc()
			s.logger.Info().
				Uint("student_id", student.ID).
				Uint("teacher_id", teacherID).
				Msg("scan rejected, already recorded today")

			return dto.ScanResponse{
				Success:            false,
				Message:            "Attendance already recorded for this student today.",
				Student:            dto.NewStudentProfile(student),
				ExistingAttendance: &duplicate.Existing,
			}, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "record_failed")
		return dto.ScanResponse{}, err
	}

	s.logger.Info().
		Uint("student_id", student.ID).
		Uint("teacher_id", teacherID).
		Str("status", record.Status).
		Msg("scan recorded")

	return dto.ScanResponse{
		Success:    true,
		Message:    "Attendance recorded successfully.",
		Student:    dto.NewStudentProfile(student),
		Attendance: &record,
	}, nil
}
