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

const teacherPageSize = 20

// TeacherService manages teacher identities.
type TeacherService interface {
	List(ctx context.Context, req dto.TeacherListRequest) (dto.TeacherListResponse, error)
	Get(ctx context.Context, id uint) (dto.TeacherResponse, error)
	Create(ctx context.Context, req dto.TeacherCreateRequest) (dto.TeacherResponse, error)
	Update(ctx context.Context, id uint, req dto.TeacherUpdateRequest) (dto.TeacherResponse, error)
	Delete(ctx context.Context, id uint) error
}

type teacherService struct {
	users     repository.UserRepository
	ledger    repository.AttendanceRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewTeacherService constructs a TeacherService instance.
func NewTeacherService(users repository.UserRepository, ledger repository.AttendanceRepository, validate *validator.Validate, logger zerolog.Logger) TeacherService {
	return &teacherService{
		users:     users,
		ledger:    ledger,
		validator: validate,
		logger:    logger.With().Str("component", "teacher_service").Logger(),
	}
}

func (s *teacherService) List(ctx context.Context, req dto.TeacherListRequest) (dto.TeacherListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TeacherListResponse{}, err
	}

	teachers, total, err := s.users.List(ctx, repository.UserFilter{
		Role:     models.RoleTeacher,
		Search:   req.Search,
		Position: req.Position,
		Page:     req.Page,
		PageSize: teacherPageSize,
	})
	if err != nil {
		return dto.TeacherListResponse{}, err
	}

	return dto.TeacherListResponse{
		Items:      dto.NewTeacherResponseSlice(teachers),
		Pagination: dto.NewPaginationMeta(req.Page, teacherPageSize, total),
	}, nil
}

func (s *teacherService) Get(ctx context.Context, id uint) (dto.TeacherResponse, error) {
	teacher, err := s.getTeacher(ctx, id)
	if err != nil {
		return dto.TeacherResponse{}, err
	}

	teacherID := teacher.ID
	recent, err := s.ledger.Recent(ctx, &teacherID, 10)
	if err != nil {
		return dto.TeacherResponse{}, err
	}

	response := dto.NewTeacherResponse(teacher)
	response.RecentAttendances = dto.NewAttendanceResponseSlice(recent)

	return response, nil
}

func (s *teacherService) Create(ctx context.Context, req dto.TeacherCreateRequest) (dto.TeacherResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TeacherResponse{}, err
	}

	if err := s.checkUnique(ctx, req.Email, req.TeacherNumber, 0); err != nil {
		return dto.TeacherResponse{}, err
	}

	password := req.Password
	if password == "" {
		password = defaultPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return dto.TeacherResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	number := req.TeacherNumber
	teacher := models.User{
		Name:          req.Name,
		Email:         req.Email,
		Password:      string(hash),
		Role:          models.RoleTeacher,
		TeacherNumber: &number,
		Position:      req.Position,
		Subject:       req.Subject,
	}

	if err := s.users.Create(ctx, &teacher); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.TeacherResponse{}, &UniquenessError{Field: "email or teacher number"}
		}
		return dto.TeacherResponse{}, err
	}

	s.logger.Info().Uint("teacher_id", teacher.ID).Str("position", teacher.Position).Msg("teacher created")

	return dto.NewTeacherResponse(teacher), nil
}

func (s *teacherService) Update(ctx context.Context, id uint, req dto.TeacherUpdateRequest) (dto.TeacherResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TeacherResponse{}, err
	}

	teacher, err := s.getTeacher(ctx, id)
	if err != nil {
		return dto.TeacherResponse{}, err
	}

	if err := s.checkUnique(ctx, req.Email, req.TeacherNumber, teacher.ID); err != nil {
		return dto.TeacherResponse{}, err
	}

	number := req.TeacherNumber
	teacher.Name = req.Name
	teacher.Email = req.Email
	teacher.TeacherNumber = &number
	teacher.Position = req.Position
	teacher.Subject = req.Subject

	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return dto.TeacherResponse{}, fmt.Errorf("failed to hash password: %w", err)
		}
		teacher.Password = string(hash)
	}

	if err := s.users.Update(ctx, &teacher); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.TeacherResponse{}, &UniquenessError{Field: "email or teacher number"}
		}
		return dto.TeacherResponse{}, err
	}

	s.logger.Info().Uint("teacher_id", teacher.ID).Msg("teacher updated")

	return dto.NewTeacherResponse(teacher), nil
}

// Delete removes the teacher; ledger rows they recorded cascade away
// with the row.
func (s *teacherService) Delete(ctx context.Context, id uint) error {
	teacher, err := s.getTeacher(ctx, id)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, teacher.ID); err != nil {
		return err
	}

	s.logger.Info().Uint("teacher_id", id).Msg("teacher deleted")

	return nil
}

func (s *teacherService) getTeacher(ctx context.Context, id uint) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrTeacherNotFound
		}
		return models.User{}, err
	}

	if !user.IsTeacher() {
		return models.User{}, ErrTeacherNotFound
	}

	return user, nil
}

func (s *teacherService) checkUnique(ctx context.Context, email, teacherNumber string, excludeID uint) error {
	taken, err := s.users.FieldTaken(ctx, "email", email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return &UniquenessError{Field: "email"}
	}

	taken, err = s.users.FieldTaken(ctx, "teacher_number", teacherNumber, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return &UniquenessError{Field: "teacher number"}
	}

	return nil
}
