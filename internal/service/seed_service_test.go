package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hadir-app/hadir-api/internal/dto"
	"github.com/hadir-app/hadir-api/internal/models"
	"github.com/hadir-app/hadir-api/internal/repository"
)

func setupSeedService(t *testing.T, enabled bool, token string) SeedService {
	t.Helper()

	db := setupServiceDB(t, "seed")
	logger := zerolog.Nop()

	users := repository.NewUserRepository(db)
	classes := repository.NewClassRepository(db)
	ledger := repository.NewAttendanceRepository(db)
	credentials := NewCredentialService(users, logger)

	return NewSeedService(users, classes, ledger, credentials, enabled, token, logger)
}

func TestSeedServiceDisabled(t *testing.T) {
	svc := setupSeedService(t, false, "secret")

	_, err := svc.Seed(context.Background(), dto.SeedRequest{Token: "secret"})
	require.True(t, errors.Is(err, ErrSeedDisabled))
}

func TestSeedServiceRejectsBadToken(t *testing.T) {
	svc := setupSeedService(t, true, "secret")

	_, err := svc.Seed(context.Background(), dto.SeedRequest{Token: "wrong"})
	require.True(t, errors.Is(err, ErrSeedUnauthorized))
}

func TestSeedServicePopulatesDemoData(t *testing.T) {
	db := setupServiceDB(t, "seed_full")
	logger := zerolog.Nop()

	users := repository.NewUserRepository(db)
	classes := repository.NewClassRepository(db)
	ledger := repository.NewAttendanceRepository(db)
	credentials := NewCredentialService(users, logger)

	svc := NewSeedService(users, classes, ledger, credentials, true, "secret", logger)

	summary, err := svc.Seed(context.Background(), dto.SeedRequest{Token: "secret"})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Admins)
	require.Equal(t, 10, summary.Teachers)
	require.Equal(t, 50, summary.Students)
	require.Equal(t, 8, summary.Classes)
	require.Greater(t, summary.Attendances, 0)

	// Every student carries a resolvable credential.
	var students []models.User
	require.NoError(t, db.Where("role = ?", models.RoleStudent).Find(&students).Error)
	require.Len(t, students, 50)
	for _, student := range students {
		require.NotNil(t, student.QRCode)
		require.Regexp(t, credentialPattern, *student.QRCode)
	}

	// No attendance lands on a weekend.
	var rows []models.Attendance
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, summary.Attendances)
	for _, row := range rows {
		require.NotEqual(t, time.Saturday, row.AttendanceDate.Weekday())
		require.NotEqual(t, time.Sunday, row.AttendanceDate.Weekday())
		require.Contains(t, []string{models.StatusPresent, models.StatusAbsent, models.StatusLate, models.StatusExcused}, row.Status)
		require.Contains(t, []string{models.MethodQRScan, models.MethodManualCheck}, row.Method)
	}

	// Running twice does not duplicate identities.
	again, err := svc.Seed(context.Background(), dto.SeedRequest{Token: "secret"})
	require.NoError(t, err)
	require.Zero(t, again.Admins)
	require.Zero(t, again.Students)

	var studentCount int64
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", models.RoleStudent).Count(&studentCount).Error)
	require.EqualValues(t, 50, studentCount)
}
