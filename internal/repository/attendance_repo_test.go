package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hadir-app/hadir-api/internal/models"
)

func setupLedgerDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:ledger_%d?mode=memory&cache=shared&_foreign_keys=on", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Class{}, &models.Attendance{}))

	return db
}

func seedStudent(t *testing.T, db *gorm.DB, name, nisn, class string) models.User {
	t.Helper()

	qr := "STD-" + nisn
	user := models.User{
		Name:   name,
		Email:  nisn + "@test.local",
		Role:   models.RoleStudent,
		NISN:   &nisn,
		Class:  class,
		QRCode: &qr,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedTeacher(t *testing.T, db *gorm.DB, name, number string) models.User {
	t.Helper()

	user := models.User{
		Name:          name,
		Email:         number + "@test.local",
		Role:          models.RoleTeacher,
		TeacherNumber: &number,
		Position:      models.PositionMataPelajaran,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestAttendanceRepositoryDuplicateTriple(t *testing.T) {
	db := setupLedgerDB(t)
	repo := NewAttendanceRepository(db)
	ctx := context.Background()

	student := seedStudent(t, db, "Siswa A", "0011223344", "XI-IPA 1")
	teacher := seedTeacher(t, db, "Guru A", "TCH-0001")
	other := seedTeacher(t, db, "Guru B", "TCH-0002")

	date := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	first := models.Attendance{StudentID: student.ID, TeacherID: teacher.ID, AttendanceDate: date, Status: models.StatusPresent, Method: models.MethodQRScan}
	require.NoError(t, repo.Create(ctx, &first))

	dup := models.Attendance{StudentID: student.ID, TeacherID: teacher.ID, AttendanceDate: date, Status: models.StatusLate, Method: models.MethodManualCheck}
	err := repo.Create(ctx, &dup)
	require.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	// A different teacher may record the same student on the same day.
	byOther := models.Attendance{StudentID: student.ID, TeacherID: other.ID, AttendanceDate: date, Status: models.StatusPresent, Method: models.MethodManualCheck}
	require.NoError(t, repo.Create(ctx, &byOther))

	found, err := repo.FindByTriple(ctx, student.ID, teacher.ID, date.Add(13*time.Hour))
	require.NoError(t, err)
	require.Equal(t, first.ID, found.ID)
	require.NotNil(t, found.Student)
	require.Equal(t, student.Name, found.Student.Name)
}

func TestAttendanceRepositoryListFilters(t *testing.T) {
	db := setupLedgerDB(t)
	repo := NewAttendanceRepository(db)
	ctx := context.Background()

	alpha := seedStudent(t, db, "Siswa Alpha", "0000000001", "XI-IPA 1")
	beta := seedStudent(t, db, "Siswa Beta", "0000000002", "XI-IPS 1")
	teacher := seedTeacher(t, db, "Guru A", "TCH-0001")

	day := func(d int) time.Time { return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC) }
	rows := []models.Attendance{
		{StudentID: alpha.ID, TeacherID: teacher.ID, AttendanceDate: day(2), Status: models.StatusPresent, Method: models.MethodQRScan},
		{StudentID: alpha.ID, TeacherID: teacher.ID, AttendanceDate: day(3), Status: models.StatusLate, Method: models.MethodQRScan},
		{StudentID: alpha.ID, TeacherID: teacher.ID, AttendanceDate: day(4), Status: models.StatusPresent, Method: models.MethodManualCheck},
		{StudentID: beta.ID, TeacherID: teacher.ID, AttendanceDate: day(3), Status: models.StatusAbsent, Method: models.MethodManualCheck},
	}
	for i := range rows {
		require.NoError(t, repo.Create(ctx, &rows[i]))
	}

	start, end := day(2), day(3)
	listed, total, err := repo.List(ctx, AttendanceFilter{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, listed, 3)
	// Newest date first.
	require.Equal(t, "2026-03-03", listed[0].AttendanceDate.Format("2006-01-02"))

	exact := day(3)
	listed, total, err = repo.List(ctx, AttendanceFilter{Date: &exact})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)

	listed, total, err = repo.List(ctx, AttendanceFilter{Class: "XI-IPS 1"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, beta.ID, listed[0].StudentID)

	listed, total, err = repo.List(ctx, AttendanceFilter{Status: models.StatusPresent, StudentID: &alpha.ID})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	for _, row := range listed {
		require.Equal(t, models.StatusPresent, row.Status)
	}

	listed, total, err = repo.List(ctx, AttendanceFilter{StartDate: &start, EndDate: &end, Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, listed, 1)
}

func TestAttendanceRepositoryDeleteStudentCascades(t *testing.T) {
	db := setupLedgerDB(t)
	repo := NewAttendanceRepository(db)
	ctx := context.Background()

	student := seedStudent(t, db, "Siswa A", "0011223344", "XI-IPA 1")
	teacher := seedTeacher(t, db, "Guru A", "TCH-0001")

	row := models.Attendance{StudentID: student.ID, TeacherID: teacher.ID, AttendanceDate: time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), Status: models.StatusPresent, Method: models.MethodQRScan}
	require.NoError(t, repo.Create(ctx, &row))

	require.NoError(t, db.Delete(&models.User{}, student.ID).Error)

	var count int64
	require.NoError(t, db.Model(&models.Attendance{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestAttendanceRepositoryRecent(t *testing.T) {
	db := setupLedgerDB(t)
	repo := NewAttendanceRepository(db)
	ctx := context.Background()

	student := seedStudent(t, db, "Siswa A", "0011223344", "XI-IPA 1")
	teacher := seedTeacher(t, db, "Guru A", "TCH-0001")
	other := seedTeacher(t, db, "Guru B", "TCH-0002")

	for d := 1; d <= 5; d++ {
		row := models.Attendance{StudentID: student.ID, TeacherID: teacher.ID, AttendanceDate: time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC), Status: models.StatusPresent, Method: models.MethodQRScan}
		require.NoError(t, repo.Create(ctx, &row))
	}
	extra := models.Attendance{StudentID: student.ID, TeacherID: other.ID, AttendanceDate: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), Status: models.StatusLate, Method: models.MethodManualCheck}
	require.NoError(t, repo.Create(ctx, &extra))

	recent, err := repo.Recent(ctx, nil, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)

	scoped, err := repo.Recent(ctx, &other.ID, 10)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	require.Equal(t, other.ID, scoped[0].TeacherID)

	since := time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)
	forStudent, err := repo.ListForStudent(ctx, student.ID, &since, 10)
	require.NoError(t, err)
	require.Len(t, forStudent, 3)
	for _, row := range forStudent {
		require.False(t, row.AttendanceDate.Before(since))
	}
}

func TestAttendanceRepositoryDeleteMissing(t *testing.T) {
	db := setupLedgerDB(t)
	repo := NewAttendanceRepository(db)

	err := repo.Delete(context.Background(), 9999)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
