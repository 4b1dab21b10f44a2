package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/hadir-app/hadir-api/internal/dto"
	"github.com/hadir-app/hadir-api/internal/models"
	"github.com/hadir-app/hadir-api/internal/repository"
)

// DashboardService produces the role-scoped dashboard aggregates,
// cached in Redis for a configurable TTL. A nil cache client disables
// caching.
type DashboardService interface {
	GetAdminDashboard(ctx context.Context) (dto.AdminDashboardResponse, error)
	GetTeacherDashboard(ctx context.Context, teacherID uint) (dto.TeacherDashboardResponse, error)
	GetStudentDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error)
}

type dashboardService struct {
	users    repository.UserRepository
	classes  repository.ClassRepository
	ledger   repository.AttendanceRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewDashboardService builds the dashboard aggregator.
func NewDashboardService(users repository.UserRepository, classes repository.ClassRepository, ledger repository.AttendanceRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		users:    users,
		classes:  classes,
		ledger:   ledger,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
		tracer:   otel.Tracer("github.com/hadir-app/hadir-api/internal/service/dashboard"),
		now:      time.Now,
	}
}

func (s *dashboardService) GetAdminDashboard(ctx context.Context) (dto.AdminDashboardResponse, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.admin")
	defer span.End()

	const cacheKey = "dashboard:admin"

	var cached dto.AdminDashboardResponse
	if s.readCache(ctx, cacheKey, &cached) {
		span.SetAttributes(attribute.Bool("dashboard.cache_hit", true))
		return cached, nil
	}

	today := models.DateOnly(s.now())
	weekStart := startOfWeek(today)
	monthStart := startOfMonth(today)

	var response dto.AdminDashboardResponse
	var err error

	if response.Stats.TotalStudents, err = s.users.CountByRole(ctx, models.RoleStudent); err != nil {
		return dto.AdminDashboardResponse{}, err
	}
	if response.Stats.TotalTeachers, err = s.users.CountByRole(ctx, models.RoleTeacher); err != nil {
		return dto.AdminDashboardResponse{}, err
	}
	if response.Stats.TotalClasses, err = s.classes.Count(ctx); err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	counts := []struct {
		target *int64
		filter repository.AttendanceFilter
	}{
		{&response.Stats.TodayAttendance, repository.AttendanceFilter{Date: &today}},
		{&response.Stats.WeekAttendance, repository.AttendanceFilter{StartDate: &weekStart}},
		{&response.Stats.MonthAttendance, repository.AttendanceFilter{StartDate: &monthStart}},
		{&response.Stats.PresentToday, repository.AttendanceFilter{Date: &today, Status: models.StatusPresent}},
		{&response.Stats.AbsentToday, repository.AttendanceFilter{Date: &today, Status: models.StatusAbsent}},
		{&response.Stats.LateToday, repository.AttendanceFilter{Date: &today, Status: models.StatusLate}},
	}
	for _, c := range counts {
		if *c.target, err = s.ledger.Count(ctx, c.filter); err != nil {
			return dto.AdminDashboardResponse{}, err
		}
	}

	recent, err := s.ledger.Recent(ctx, nil, 10)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}
	response.RecentAttendances = dto.NewAttendanceResponseSlice(recent)

	s.writeCache(ctx, cacheKey, response)

	return response, nil
}

func (s *dashboardService) GetTeacherDashboard(ctx context.Context, teacherID uint) (dto.TeacherDashboardResponse, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.teacher")
	span.SetAttributes(attribute.Int64("dashboard.teacher_id", int64(teacherID)))
	defer span.End()

	cacheKey := fmt.Sprintf("dashboard:teacher:%d", teacherID)

	var cached dto.TeacherDashboardResponse
	if s.readCache(ctx, cacheKey, &cached) {
		span.SetAttributes(attribute.Bool("dashboard.cache_hit", true))
		return cached, nil
	}

	teacher, err := s.users.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeacherDashboardResponse{}, ErrTeacherNotFound
		}
		return dto.TeacherDashboardResponse{}, err
	}
	if !teacher.IsTeacher() {
		return dto.TeacherDashboardResponse{}, ErrTeacherNotFound
	}

	// Wali Kelas manages the class named by the subject field; every
	// other position sees the whole student body.
	managedClass := ""
	if teacher.IsHomeroomTeacher() {
		managedClass = teacher.Subject
	}
	managed, err := s.users.ListStudents(ctx, managedClass)
	if err != nil {
		return dto.TeacherDashboardResponse{}, err
	}

	today := models.DateOnly(s.now())
	var response dto.TeacherDashboardResponse
	response.Stats.ManagedStudents = len(managed)

	counts := []struct {
		target *int64
		status string
	}{
		{&response.Stats.TodayAttendance, ""},
		{&response.Stats.PresentToday, models.StatusPresent},
		{&response.Stats.AbsentToday, models.StatusAbsent},
	}
	for _, c := range counts {
		filter := repository.AttendanceFilter{Date: &today, TeacherID: &teacher.ID, Status: c.status}
		if *c.target, err = s.ledger.Count(ctx, filter); err != nil {
			return dto.TeacherDashboardResponse{}, err
		}
	}

	recent, err := s.ledger.Recent(ctx, &teacher.ID, 10)
	if err != nil {
		return dto.TeacherDashboardResponse{}, err
	}
	response.RecentAttendances = dto.NewAttendanceResponseSlice(recent)

	response.ManagedStudents = make([]dto.UserLite, 0, len(managed))
	for _, student := range managed {
		lite := dto.UserLite{ID: student.ID, Name: student.Name, Class: student.Class}
		if student.NISN != nil {
			lite.NISN = *student.NISN
		}
		response.ManagedStudents = append(response.ManagedStudents, lite)
	}

	s.writeCache(ctx, cacheKey, response)

	return response, nil
}

func (s *dashboardService) GetStudentDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.student")
	span.SetAttributes(attribute.Int64("dashboard.student_id", int64(studentID)))
	defer span.End()

	cacheKey := fmt.Sprintf("dashboard:student:%d", studentID)

	var cached dto.StudentDashboardResponse
	if s.readCache(ctx, cacheKey, &cached) {
		span.SetAttributes(attribute.Bool("dashboard.cache_hit", true))
		return cached, nil
	}

	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentDashboardResponse{}, ErrStudentNotFound
		}
		return dto.StudentDashboardResponse{}, err
	}
	if !student.IsStudent() {
		return dto.StudentDashboardResponse{}, ErrStudentNotFound
	}

	monthStart := startOfMonth(models.DateOnly(s.now()))
	records, err := s.ledger.ListForStudent(ctx, student.ID, &monthStart, 20)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	response := dto.StudentDashboardResponse{
		Attendances: dto.NewAttendanceResponseSlice(records),
	}
	if student.QRCode != nil {
		response.QRCode = *student.QRCode
	}

	for _, record := range records {
		switch record.Status {
		case models.StatusPresent:
			response.Stats.TotalPresent++
		case models.StatusAbsent:
			response.Stats.TotalAbsent++
		case models.StatusLate:
			response.Stats.TotalLate++
		case models.StatusExcused:
			response.Stats.TotalExcused++
		}
	}

	s.writeCache(ctx, cacheKey, response)

	return response, nil
}

func (s *dashboardService) readCache(ctx context.Context, key string, target interface{}) bool {
	if s.cache == nil {
		return false
	}

	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read dashboard cache")
		}
		return false
	}

	if err := json.Unmarshal([]byte(cached), target); err != nil {
		return false
	}

	s.logger.Debug().Str("key", key).Msg("dashboard cache hit")
	return true
}

func (s *dashboardService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store dashboard cache")
	}
}

// startOfWeek returns Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return models.DateOnly(t).AddDate(0, 0, -(weekday - 1))
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
