package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hadir-app/hadir-api/internal/dto"
	"github.com/hadir-app/hadir-api/internal/models"
	"github.com/hadir-app/hadir-api/internal/repository"
)

// SeedService populates the database with demo data: an admin, a
// teaching staff, a student body spread over classes, and a month of
// attendance history. It is token gated and intended for development
// and staging environments only.
type SeedService interface {
	Seed(ctx context.Context, req dto.SeedRequest) (dto.SeedSummary, error)
}

type seedService struct {
	users       repository.UserRepository
	classes     repository.ClassRepository
	ledger      repository.AttendanceRepository
	credentials CredentialService
	enabled     bool
	token       string
	logger      zerolog.Logger
	now         func() time.Time
	rng         *rand.Rand
}

// NewSeedService constructs a SeedService. When enabled is false every
// run is rejected regardless of token.
func NewSeedService(users repository.UserRepository, classes repository.ClassRepository, ledger repository.AttendanceRepository, credentials CredentialService, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		users:       users,
		classes:     classes,
		ledger:      ledger,
		credentials: credentials,
		enabled:     enabled,
		token:       token,
		logger:      logger.With().Str("component", "seed_service").Logger(),
		now:         time.Now,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

var seedClassNames = []string{
	"X-IPA 1", "X-IPA 2", "X-IPS 1", "X-IPS 2",
	"XI-IPA 1", "XI-IPA 2", "XI-IPS 1", "XII-IPA 1",
}

var seedSubjects = []string{
	"Matematika", "Bahasa Indonesia", "Bahasa Inggris", "Fisika",
	"Kimia", "Biologi", "Sejarah", "Geografi", "Ekonomi", "Informatika",
}

func (s *seedService) Seed(ctx context.Context, req dto.SeedRequest) (dto.SeedSummary, error) {
	if !s.enabled {
		return dto.SeedSummary{}, ErrSeedDisabled
	}
	if subtle.ConstantTimeCompare([]byte(req.Token), []byte(s.token)) != 1 {
		return dto.SeedSummary{}, ErrSeedUnauthorized
	}

	started := s.now()
	s.logger.Info().Msg("seeding demo data")

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return dto.SeedSummary{}, fmt.Errorf("failed to hash seed password: %w", err)
	}
	password := string(hash)

	var summary dto.SeedSummary

	admin := models.User{
		Name:     "Administrator",
		Email:    "admin@hadir.sch.id",
		Password: password,
		Role:     models.RoleAdmin,
	}
	if _, err := s.createUser(ctx, &admin, &summary.Admins); err != nil {
		return summary, err
	}

	teachers, err := s.seedTeachers(ctx, password, &summary)
	if err != nil {
		return summary, err
	}

	if err := s.seedClasses(ctx, teachers, &summary); err != nil {
		return summary, err
	}

	students, err := s.seedStudents(ctx, password, &summary)
	if err != nil {
		return summary, err
	}

	if err := s.seedAttendances(ctx, teachers, students, &summary); err != nil {
		return summary, err
	}

	s.logger.Info().
		Dur("elapsed", s.now().Sub(started)).
		Int("students", summary.Students).
		Int("attendances", summary.Attendances).
		Msg("seeding finished")

	return summary, nil
}

func (s *seedService) seedTeachers(ctx context.Context, password string, summary *dto.SeedSummary) ([]models.User, error) {
	positions := models.Positions()
	teachers := make([]models.User, 0, 10)

	for i := 0; i < 10; i++ {
		number := fmt.Sprintf("TCH-%04d", i+1)
		position := positions[i%len(positions)]

		teacher := models.User{
			Name:          fmt.Sprintf("Guru %02d", i+1),
			Email:         fmt.Sprintf("guru%02d@hadir.sch.id", i+1),
			Password:      password,
			Role:          models.RoleTeacher,
			TeacherNumber: &number,
			Position:      position,
			Subject:       seedSubjects[i%len(seedSubjects)],
		}
		// Wali Kelas carries the managed class name in the subject
		// field instead of a taught subject.
		if position == models.PositionWaliKelas {
			teacher.Subject = seedClassNames[(i/len(positions))%len(seedClassNames)]
		}

		created, err := s.createUser(ctx, &teacher, &summary.Teachers)
		if err != nil {
			return nil, err
		}
		if created {
			teachers = append(teachers, teacher)
		}
	}

	return teachers, nil
}

func (s *seedService) seedClasses(ctx context.Context, teachers []models.User, summary *dto.SeedSummary) error {
	homerooms := make([]models.User, 0, len(teachers))
	for _, t := range teachers {
		if t.Position == models.PositionWaliKelas {
			homerooms = append(homerooms, t)
		}
	}

	for i, name := range seedClassNames {
		class := models.Class{
			Name:       name,
			GradeLevel: gradeLevelOf(name),
			Capacity:   defaultClassCapacity,
		}
		if len(homerooms) > 0 {
			id := homerooms[i%len(homerooms)].ID
			class.HomeroomTeacherID = &id
		}

		if err := s.classes.Create(ctx, &class); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return fmt.Errorf("failed to seed class %s: %w", name, err)
		}
		summary.Classes++
	}

	return nil
}

func (s *seedService) seedStudents(ctx context.Context, password string, summary *dto.SeedSummary) ([]models.User, error) {
	students := make([]models.User, 0, 50)

	for i := 0; i < 50; i++ {
		nisn := fmt.Sprintf("00%08d", 10000000+i)
		code, err := s.credentials.Issue(ctx)
		if err != nil {
			return nil, err
		}

		student := models.User{
			Name:     fmt.Sprintf("Siswa %02d", i+1),
			Email:    fmt.Sprintf("siswa%02d@hadir.sch.id", i+1),
			Password: password,
			Role:     models.RoleStudent,
			NISN:     &nisn,
			Class:    seedClassNames[i%len(seedClassNames)],
			QRCode:   &code,
		}

		created, err := s.createUser(ctx, &student, &summary.Students)
		if err != nil {
			return nil, err
		}
		if created {
			students = append(students, student)
		}
	}

	return students, nil
}

// seedAttendances fills the last 30 days, skipping weekends. Each
// school day covers roughly 80% of the student body with statuses
// weighted towards present and a 60/40 split between scan and manual
// recording.
func (s *seedService) seedAttendances(ctx context.Context, teachers, students []models.User, summary *dto.SeedSummary) error {
	if len(teachers) == 0 || len(students) == 0 {
		return nil
	}

	today := models.DateOnly(s.now())

	for offset := 29; offset >= 0; offset-- {
		day := today.AddDate(0, 0, -offset)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		for _, student := range students {
			if s.rng.Intn(100) >= 80 {
				continue
			}

			teacher := teachers[s.rng.Intn(len(teachers))]
			checkIn := day.Add(7*time.Hour + time.Duration(s.rng.Intn(90))*time.Minute)

			record := models.Attendance{
				StudentID:      student.ID,
				TeacherID:      teacher.ID,
				AttendanceDate: day,
				Status:         s.weightedStatus(),
				Method:         s.randomMethod(),
				CheckInTime:    &checkIn,
			}

			if err := s.ledger.Create(ctx, &record); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					continue
				}
				return fmt.Errorf("failed to seed attendance: %w", err)
			}
			summary.Attendances++
		}
	}

	return nil
}

// createUser inserts the user, treating an already-seeded identity as
// a no-op. The bool reports whether a row was actually created.
func (s *seedService) createUser(ctx context.Context, user *models.User, counter *int) (bool, error) {
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, fmt.Errorf("failed to seed user %s: %w", user.Email, err)
	}

	*counter++
	return true, nil
}

// weightedStatus draws present 70%, absent 15%, late 10%, excused 5%.
func (s *seedService) weightedStatus() string {
	n := s.rng.Intn(100)
	switch {
	case n < 70:
		return models.StatusPresent
	case n < 85:
		return models.StatusAbsent
	case n < 95:
		return models.StatusLate
	default:
		return models.StatusExcused
	}
}

func (s *seedService) randomMethod() string {
	if s.rng.Intn(100) < 60 {
		return models.MethodQRScan
	}
	return models.MethodManualCheck
}

func gradeLevelOf(className string) string {
	for i, r := range className {
		if r == '-' || r == ' ' {
			return className[:i]
		}
	}
	return className
}
