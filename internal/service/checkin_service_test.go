package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hadir-app/hadir-api/internal/dto"
	"github.com/hadir-app/hadir-api/internal/models"
	"github.com/hadir-app/hadir-api/internal/repository"
)

func setupCheckInService(t *testing.T) (*gorm.DB, CheckInService) {
	t.Helper()

	db := setupServiceDB(t, "checkin")
	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.Nop()

	users := repository.NewUserRepository(db)
	ledger := repository.NewAttendanceRepository(db)
	credentials := NewCredentialService(users, logger)
	attendance := NewAttendanceService(ledger, validate, logger)
	if concrete, ok := attendance.(*attendanceService); ok {
		concrete.now = func() time.Time { return fixedNow }
	}

	return db, NewCheckInService(credentials, attendance, validate, logger)
}

func TestCheckInServiceScanRecords(t *testing.T) {
	db, svc := setupCheckInService(t)
	student := createStudent(t, db, "Budi", "0011223344", "XI-IPA 1")
	teacher := createTeacher(t, db, "Guru A", "TCH-0001", models.PositionMataPelajaran, "Fisika")

	response, err := svc.Scan(context.Background(), teacher.ID, dto.ScanRequest{
		QRCode: *student.QRCode,
		Status: models.StatusPresent,
	})
	require.NoError(t, err)
	require.True(t, response.Success)
	require.Equal(t, "Attendance recorded successfully.", response.Message)
	require.NotNil(t, response.Student)
	require.Equal(t, student.Name, response.Student.Name)
	require.NotNil(t, response.Attendance)
	require.Equal(t, models.MethodQRScan, response.Attendance.Method)
	require.Equal(t, "2026-03-02", response.Attendance.AttendanceDate)
}

func TestCheckInServiceScanUnknownCredential(t *testing.T) {
	db, svc := setupCheckInService(t)
	teacher := createTeacher(t, db, "Guru A", "TCH-0001", models.PositionMataPelajaran, "Fisika")

	response, err := svc.Scan(context.Background(), teacher.ID, dto.ScanRequest{
		QRCode: "STD-MISSING1",
		Status: models.StatusPresent,
	})
	require.True(t, errors.Is(err, ErrCredentialNotFound))
	require.False(t, response.Success)
	require.Equal(t, "Student not found with this QR code.", response.Message)
	require.Nil(t, response.Student)
}

func TestCheckInServiceScanDuplicate(t *testing.T) {
	db, svc := setupCheckInService(t)
	student := createStudent(t, db, "Budi", "0011223344", "XI-IPA 1")
	teacher := createTeacher(t, db, "Guru A", "TCH-0001", models.PositionMataPelajaran, "Fisika")

	ctx := context.Background()
	first, err := svc.Scan(ctx, teacher.ID, dto.ScanRequest{QRCode: *student.QRCode, Status: models.StatusPresent})
	require.NoError(t, err)

	response, err := svc.Scan(ctx, teacher.ID, dto.ScanRequest{QRCode: *student.QRCode, Status: models.StatusPresent})

	var duplicate *DuplicateAttendanceError
	require.True(t, errors.As(err, &duplicate))
	require.False(t, response.Success)
	require.Equal(t, "Attendance already recorded for this student today.", response.Message)
	require.NotNil(t, response.Student)
	require.NotNil(t, response.ExistingAttendance)
	require.Equal(t, first.Attendance.ID, response.ExistingAttendance.ID)
}

func TestCheckInServiceScanValidatesPayload(t *testing.T) {
	db, svc := setupCheckInService(t)
	teacher := createTeacher(t, db, "Guru A", "TCH-0001", models.PositionMataPelajaran, "Fisika")

	_, err := svc.Scan(context.Background(), teacher.ID, dto.ScanRequest{Status: models.StatusPresent})

	var validationErrors validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrors))
}
