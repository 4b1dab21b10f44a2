package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hadir-app/hadir-api/internal/dto"
	"github.com/hadir-app/hadir-api/internal/models"
	"github.com/hadir-app/hadir-api/internal/repository"
)

func setupClassService(t *testing.T) (*gorm.DB, ClassService) {
	t.Helper()

	db := setupServiceDB(t, "class")
	validate := validator.New(validator.WithRequiredStructEnabled())

	return db, NewClassService(repository.NewClassRepository(db), repository.NewUserRepository(db), validate, zerolog.Nop())
}

func TestClassServiceCreateDefaultsCapacity(t *testing.T) {
	db, svc := setupClassService(t)
	teacher := createTeacher(t, db, "Wali XI", "TCH-0001", models.PositionWaliKelas, "XI-IPA 1")

	response, err := svc.Create(context.Background(), dto.ClassCreateRequest{
		Name:              "XI-IPA 1",
		GradeLevel:        "XI",
		Program:           "IPA",
		HomeroomTeacherID: &teacher.ID,
	})
	require.NoError(t, err)
	require.Equal(t, 30, response.Capacity)
	require.NotNil(t, response.HomeroomTeacherID)
	require.Equal(t, teacher.ID, *response.HomeroomTeacherID)
}

func TestClassServiceCreateRejectsDuplicateName(t *testing.T) {
	_, svc := setupClassService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.ClassCreateRequest{Name: "XI-IPA 1", GradeLevel: "XI"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, dto.ClassCreateRequest{Name: "XI-IPA 1", GradeLevel: "XI"})

	var uniqueness *UniquenessError
	require.True(t, errors.As(err, &uniqueness))
	require.Equal(t, "class name", uniqueness.Field)
}

func TestClassServiceRejectsInvalidHomeroomTeacher(t *testing.T) {
	db, svc := setupClassService(t)
	student := createStudent(t, db, "Budi", "0011223344", "XI-IPA 1")
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.ClassCreateRequest{Name: "XI-IPA 1", GradeLevel: "XI", HomeroomTeacherID: &student.ID})
	require.True(t, errors.Is(err, ErrTeacherNotFound))

	missing := uint(9999)
	_, err = svc.Create(ctx, dto.ClassCreateRequest{Name: "XI-IPA 1", GradeLevel: "XI", HomeroomTeacherID: &missing})
	require.True(t, errors.Is(err, ErrTeacherNotFound))
}

func TestClassServiceRenameKeepsStudents(t *testing.T) {
	db, svc := setupClassService(t)
	createStudent(t, db, "Budi", "0011223344", "XI-IPA 1")
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.ClassCreateRequest{Name: "XI-IPA 1", GradeLevel: "XI"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, dto.ClassUpdateRequest{Name: "XI-IPA One", GradeLevel: "XI"})
	require.NoError(t, err)

	// Membership is a loose name match; renaming the registry entry
	// leaves student rows pointing at the old name.
	var student models.User
	require.NoError(t, db.Where("nisn = ?", "0011223344").First(&student).Error)
	require.Equal(t, "XI-IPA 1", student.Class)
}

func TestClassServiceListFiltersByGrade(t *testing.T) {
	_, svc := setupClassService(t)
	ctx := context.Background()

	for _, tc := range []struct{ name, grade string }{
		{"X-IPA 1", "X"},
		{"XI-IPA 1", "XI"},
		{"XI-IPS 1", "XI"},
	} {
		_, err := svc.Create(ctx, dto.ClassCreateRequest{Name: tc.name, GradeLevel: tc.grade})
		require.NoError(t, err)
	}

	classes, err := svc.List(ctx, "XI")
	require.NoError(t, err)
	require.Len(t, classes, 2)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestClassServiceDeleteMissing(t *testing.T) {
	_, svc := setupClassService(t)
	require.True(t, errors.Is(svc.Delete(context.Background(), 9999), ErrClassNotFound))
}
