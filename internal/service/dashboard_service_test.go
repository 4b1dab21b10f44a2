package service

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hadir-app/hadir-api/internal/models"
	"github.com/hadir-app/hadir-api/internal/repository"
)

func setupDashboardService(t *testing.T, cache *redis.Client) (*gorm.DB, DashboardService) {
	t.Helper()

	db := setupServiceDB(t, "dashboard")
	svc := NewDashboardService(
		repository.NewUserRepository(db),
		repository.NewClassRepository(db),
		repository.NewAttendanceRepository(db),
		cache,
		time.Minute,
		zerolog.Nop(),
	)
	if concrete, ok := svc.(*dashboardService); ok {
		concrete.now = func() time.Time { return fixedNow }
	}

	return db, svc
}

func recordAttendance(t *testing.T, db *gorm.DB, studentID, teacherID uint, date time.Time, status string) {
	t.Helper()

	row := models.Attendance{
		StudentID:      studentID,
		TeacherID:      teacherID,
		AttendanceDate: models.DateOnly(date),
		Status:         status,
		Method:         models.MethodManualCheck,
	}
	require.NoError(t, db.Create(&row).Error)
}

func TestDashboardServiceAdminStats(t *testing.T) {
	db, svc := setupDashboardService(t, nil)

	alpha := createStudent(t, db, "Siswa Alpha", "0000000001", "XI-IPA 1")
	beta := createStudent(t, db, "Siswa Beta", "0000000002", "XI-IPA 1")
	teacher := createTeacher(t, db, "Guru A", "TCH-0001", models.PositionMataPelajaran, "Fisika")
	require.NoError(t, db.Create(&models.Class{Name: "XI-IPA 1", GradeLevel: "XI", Capacity: 30}).Error)

	today := models.DateOnly(fixedNow)
	recordAttendance(t, db, alpha.ID, teacher.ID, today, models.StatusPresent)
	recordAttendance(t, db, beta.ID, teacher.ID, today, models.StatusLate)
	// Today is Monday 2026-03-02; Sunday the 1st is in the month but
	// outside the week, and February is outside both.
	recordAttendance(t, db, alpha.ID, teacher.ID, today.AddDate(0, 0, -1), models.StatusPresent)
	recordAttendance(t, db, alpha.ID, teacher.ID, today.AddDate(0, 0, -10), models.StatusAbsent)

	response, err := svc.GetAdminDashboard(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, response.Stats.TotalStudents)
	require.EqualValues(t, 1, response.Stats.TotalTeachers)
	require.EqualValues(t, 1, response.Stats.TotalClasses)
	require.EqualValues(t, 2, response.Stats.TodayAttendance)
	require.EqualValues(t, 2, response.Stats.WeekAttendance)
	require.EqualValues(t, 3, response.Stats.MonthAttendance)
	require.EqualValues(t, 1, response.Stats.PresentToday)
	require.EqualValues(t, 0, response.Stats.AbsentToday)
	require.EqualValues(t, 1, response.Stats.LateToday)
	require.Len(t, response.RecentAttendances, 4)
}

func TestDashboardServiceCaching(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	cache := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	db, svc := setupDashboardService(t, cache)

	createStudent(t, db, "Siswa Alpha", "0000000001", "XI-IPA 1")

	ctx := context.Background()
	first, err := svc.GetAdminDashboard(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, first.Stats.TotalStudents)
	require.True(t, mini.Exists("dashboard:admin"))

	// A second read comes from the cache and ignores new rows.
	createStudent(t, db, "Siswa Beta", "0000000002", "XI-IPA 1")
	second, err := svc.GetAdminDashboard(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, second.Stats.TotalStudents)

	mini.FastForward(2 * time.Minute)
	third, err := svc.GetAdminDashboard(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, third.Stats.TotalStudents)
}

func TestDashboardServiceHomeroomTeacherScope(t *testing.T) {
	db, svc := setupDashboardService(t, nil)

	homeroom := createTeacher(t, db, "Wali XI", "TCH-0001", models.PositionWaliKelas, "XI-IPA 1")
	subject := createTeacher(t, db, "Guru Mapel", "TCH-0002", models.PositionMataPelajaran, "Fisika")
	inClass := createStudent(t, db, "Siswa Alpha", "0000000001", "XI-IPA 1")
	createStudent(t, db, "Siswa Beta", "0000000002", "XI-IPS 1")

	today := models.DateOnly(fixedNow)
	recordAttendance(t, db, inClass.ID, homeroom.ID, today, models.StatusPresent)

	ctx := context.Background()

	// Wali Kelas sees only the managed class roster.
	scoped, err := svc.GetTeacherDashboard(ctx, homeroom.ID)
	require.NoError(t, err)
	require.Equal(t, 1, scoped.Stats.ManagedStudents)
	require.Len(t, scoped.ManagedStudents, 1)
	require.Equal(t, "Siswa Alpha", scoped.ManagedStudents[0].Name)
	require.EqualValues(t, 1, scoped.Stats.TodayAttendance)
	require.EqualValues(t, 1, scoped.Stats.PresentToday)

	// Other positions see the whole student body.
	broad, err := svc.GetTeacherDashboard(ctx, subject.ID)
	require.NoError(t, err)
	require.Equal(t, 2, broad.Stats.ManagedStudents)
	require.EqualValues(t, 0, broad.Stats.TodayAttendance)
}

func TestDashboardServiceStudentStats(t *testing.T) {
	db, svc := setupDashboardService(t, nil)

	student := createStudent(t, db, "Siswa Alpha", "0000000001", "XI-IPA 1")
	teacher := createTeacher(t, db, "Guru A", "TCH-0001", models.PositionMataPelajaran, "Fisika")

	monthStart := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	recordAttendance(t, db, student.ID, teacher.ID, monthStart, models.StatusPresent)
	recordAttendance(t, db, student.ID, teacher.ID, monthStart.AddDate(0, 0, 1), models.StatusLate)
	// Last month's rows stay out of the current stats.
	recordAttendance(t, db, student.ID, teacher.ID, monthStart.AddDate(0, 0, -5), models.StatusAbsent)

	response, err := svc.GetStudentDashboard(context.Background(), student.ID)
	require.NoError(t, err)
	require.Equal(t, 1, response.Stats.TotalPresent)
	require.Equal(t, 1, response.Stats.TotalLate)
	require.Equal(t, 0, response.Stats.TotalAbsent)
	require.Len(t, response.Attendances, 2)
	require.Equal(t, *student.QRCode, response.QRCode)
}

func TestDashboardServiceRejectsWrongRole(t *testing.T) {
	db, svc := setupDashboardService(t, nil)

	student := createStudent(t, db, "Siswa Alpha", "0000000001", "XI-IPA 1")
	teacher := createTeacher(t, db, "Guru A", "TCH-0001", models.PositionMataPelajaran, "Fisika")

	ctx := context.Background()
	_, err := svc.GetTeacherDashboard(ctx, student.ID)
	require.True(t, errors.Is(err, ErrTeacherNotFound))

	_, err = svc.GetStudentDashboard(ctx, teacher.ID)
	require.True(t, errors.Is(err, ErrStudentNotFound))
}
