package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hadir-app/hadir-api/internal/dto"
	"github.com/hadir-app/hadir-api/internal/models"
	"github.com/hadir-app/hadir-api/internal/repository"
)

const (
	studentPageSize = 20

	// Accounts created without a password get this one, matching the
	// behavior administrators expect from the original system.
	defaultPassword = "password123"
)

// StudentService manages student identities, including their QR
// credentials.
type StudentService interface {
	List(ctx context.Context, req dto.StudentListRequest) (dto.StudentListResponse, error)
	Get(ctx context.Context, id uint) (dto.StudentResponse, error)
	Create(ctx context.Context, req dto.StudentCreateRequest) (dto.StudentResponse, error)
	Update(ctx context.Context, id uint, req dto.StudentUpdateRequest) (dto.StudentResponse, error)
	Delete(ctx context.Context, id uint) error
	Classes(ctx context.Context) ([]string, error)
}

type studentService struct {
	users       repository.UserRepository
	ledger      repository.AttendanceRepository
	credentials CredentialService
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewStudentService constructs a StudentService instance.
func NewStudentService(users repository.UserRepository, ledger repository.AttendanceRepository, credentials CredentialService, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		users:       users,
		ledger:      ledger,
		credentials: credentials,
		validator:   validate,
		logger:      logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) List(ctx context.Context, req dto.StudentListRequest) (dto.StudentListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentListResponse{}, err
	}

	students, total, err := s.users.List(ctx, repository.UserFilter{
		Role:     models.RoleStudent,
		Search:   req.Search,
		Class:    req.Class,
		Page:     req.Page,
		PageSize: studentPageSize,
	})
	if err != nil {
		return dto.StudentListResponse{}, err
	}

	classes, err := s.users.DistinctClasses(ctx)
	if err != nil {
		return dto.StudentListResponse{}, err
	}

	return dto.StudentListResponse{
		Items:      dto.NewStudentResponseSlice(students),
		Classes:    classes,
		Pagination: dto.NewPaginationMeta(req.Page, studentPageSize, total),
	}, nil
}

func (s *studentService) Get(ctx context.Context, id uint) (dto.StudentResponse, error) {
	student, err := s.getStudent(ctx, id)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	recent, err := s.ledger.ListForStudent(ctx, student.ID, nil, 10)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	response := dto.NewStudentResponse(student)
	response.RecentAttendances = dto.NewAttendanceResponseSlice(recent)

	return response, nil
}

func (s *studentService) Create(ctx context.Context, req dto.StudentCreateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	if err := s.checkUnique(ctx, req.Email, req.NISN, 0); err != nil {
		return dto.StudentResponse{}, err
	}

	password := req.Password
	if password == "" {
		password = defaultPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return dto.StudentResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := s.credentials.Issue(ctx)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	nisn := req.NISN
	student := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
		Role:     models.RoleStudent,
		NISN:     &nisn,
		Class:    req.Class,
		QRCode:   &code,
	}

	if err := s.users.Create(ctx, &student); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.StudentResponse{}, &UniquenessError{Field: "email or nisn"}
		}
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Str("class", student.Class).Msg("student created")

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Update(ctx context.Context, id uint, req dto.StudentUpdateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.getStudent(ctx, id)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	if err := s.checkUnique(ctx, req.Email, req.NISN, student.ID); err != nil {
		return dto.StudentResponse{}, err
	}

	nisn := req.NISN
	student.Name = req.Name
	student.Email = req.Email
	student.NISN = &nisn
	student.Class = req.Class

	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return dto.StudentResponse{}, fmt.Errorf("failed to hash password: %w", err)
		}
		student.Password = string(hash)
	}

	if req.RegenerateQR {
		regenerated, err := s.credentials.Regenerate(ctx, student.ID)
		if err != nil {
			return dto.StudentResponse{}, err
		}
		student.QRCode = regenerated.QRCode
	}

	if err := s.users.Update(ctx, &student); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.StudentResponse{}, &UniquenessError{Field: "email or nisn"}
		}
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Bool("regenerated_qr", req.RegenerateQR).Msg("student updated")

	return dto.NewStudentResponse(student), nil
}

// Delete removes the student; the ledger foreign keys cascade, so the
// student's attendance rows disappear with the row.
func (s *studentService) Delete(ctx context.Context, id uint) error {
	student, err := s.getStudent(ctx, id)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, student.ID); err != nil {
		return err
	}

	s.logger.Info().Uint("student_id", id).Msg("student deleted")

	return nil
}

func (s *studentService) Classes(ctx context.Context) ([]string, error) {
	return s.users.DistinctClasses(ctx)
}

func (s *studentService) getStudent(ctx context.Context, id uint) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrStudentNotFound
		}
		return models.User{}, err
	}

	if !user.IsStudent() {
		return models.User{}, ErrStudentNotFound
	}

	return user, nil
}

func (s *studentService) checkUnique(ctx context.Context, email, nisn string, excludeID uint) error {
	taken, err := s.users.FieldTaken(ctx, "email", email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return &UniquenessError{Field: "email"}
	}

	taken, err = s.users.FieldTaken(ctx, "nisn", nisn, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return &UniquenessError{Field: "nisn"}
	}

	return nil
}
