package service

import (
	"context"
	"io"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hadir-app/hadir-api/internal/dto"
	"github.com/hadir-app/hadir-api/internal/models"
	"github.com/hadir-app/hadir-api/internal/repository"
)

func setupTeacherService(t *testing.T) (*gorm.DB, TeacherService) {
	t.Helper()

	db := setupServiceDB(t, "teacher_service")
	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())

	users := repository.NewUserRepository(db)
	ledger := repository.NewAttendanceRepository(db)

	return db, NewTeacherService(users, ledger, validate, logger)
}

func TestTeacherServiceCreateHashesDefaultPassword(t *testing.T) {
	db, svc := setupTeacherService(t)

	created, err := svc.Create(context.Background(), dto.TeacherCreateRequest{
		Name:          "Budi Santoso",
		Email:         "budi@test.local",
		TeacherNumber: "TCH-1001",
		Position:      models.PositionMataPelajaran,
		Subject:       "Matematika",
	})
	require.NoError(t, err)
	require.Equal(t, "TCH-1001", created.TeacherNumber)

	var stored models.User
	require.NoError(t, db.First(&stored, created.ID).Error)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte(defaultPassword)))
}

func TestTeacherServiceCreateRejectsTakenIdentifiers(t *testing.T) {
	_, svc := setupTeacherService(t)

	first := dto.TeacherCreateRequest{
		Name:          "Budi Santoso",
		Email:         "budi@test.local",
		TeacherNumber: "TCH-1001",
		Position:      models.PositionMataPelajaran,
		Subject:       "Matematika",
	}
	_, err := svc.Create(context.Background(), first)
	require.NoError(t, err)

	second := first
	second.Name = "Citra Dewi"
	second.TeacherNumber = "TCH-1002"
	_, err = svc.Create(context.Background(), second)

	var unique *UniquenessError
	require.ErrorAs(t, err, &unique)
	require.Equal(t, "email", unique.Field)

	second.Email = "citra@test.local"
	second.TeacherNumber = first.TeacherNumber
	_, err = svc.Create(context.Background(), second)
	require.ErrorAs(t, err, &unique)
	require.Equal(t, "teacher number", unique.Field)
}

func TestTeacherServiceRejectsNonTeachers(t *testing.T) {
	db, svc := setupTeacherService(t)

	student := createStudent(t, db, "Ani Lestari", "0012345678", "X-IPA 1")

	_, err := svc.Get(context.Background(), student.ID)
	require.ErrorIs(t, err, ErrTeacherNotFound)

	_, err = svc.Get(context.Background(), 9999)
	require.ErrorIs(t, err, ErrTeacherNotFound)

	err = svc.Delete(context.Background(), student.ID)
	require.ErrorIs(t, err, ErrTeacherNotFound)
}

func TestTeacherServiceGetIncludesRecentAttendance(t *testing.T) {
	db, svc := setupTeacherService(t)

	teacher := createTeacher(t, db, "Budi Santoso", "TCH-1001", models.PositionMataPelajaran, "Matematika")
	other := createTeacher(t, db, "Citra Dewi", "TCH-1002", models.PositionMataPelajaran, "Fisika")
	student := createStudent(t, db, "Ani Lestari", "0012345678", "X-IPA 1")

	recordAttendance(t, db, student.ID, teacher.ID, fixedNow, models.StatusPresent)
	recordAttendance(t, db, student.ID, other.ID, fixedNow.AddDate(0, 0, -1), models.StatusLate)

	got, err := svc.Get(context.Background(), teacher.ID)
	require.NoError(t, err)
	require.Len(t, got.RecentAttendances, 1)
	require.Equal(t, student.ID, got.RecentAttendances[0].StudentID)
}

func TestTeacherServiceUpdateChangesPassword(t *testing.T) {
	db, svc := setupTeacherService(t)

	teacher := createTeacher(t, db, "Budi Santoso", "TCH-1001", models.PositionMataPelajaran, "Matematika")

	updated, err := svc.Update(context.Background(), teacher.ID, dto.TeacherUpdateRequest{
		Name:          "Budi Santoso",
		Email:         "budi@test.local",
		TeacherNumber: "TCH-1001",
		Position:      models.PositionWaliKelas,
		Subject:       "X-IPA 1",
		Password:      "rahasia-baru",
	})
	require.NoError(t, err)
	require.Equal(t, models.PositionWaliKelas, updated.Position)

	var stored models.User
	require.NoError(t, db.First(&stored, teacher.ID).Error)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("rahasia-baru")))
}

func TestTeacherServiceListFiltersByPosition(t *testing.T) {
	db, svc := setupTeacherService(t)

	createTeacher(t, db, "Budi Santoso", "TCH-1001", models.PositionWaliKelas, "X-IPA 1")
	createTeacher(t, db, "Citra Dewi", "TCH-1002", models.PositionMataPelajaran, "Fisika")

	listing, err := svc.List(context.Background(), dto.TeacherListRequest{
		Position: models.PositionWaliKelas,
		Page:     1,
	})
	require.NoError(t, err)
	require.Len(t, listing.Items, 1)
	require.Equal(t, "Budi Santoso", listing.Items[0].Name)
	require.Equal(t, int64(1), listing.Pagination.TotalItems)
}
