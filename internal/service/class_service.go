package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/hadir-app/hadir-api/internal/dto"
	"github.com/hadir-app/hadir-api/internal/models"
	"github.com/hadir-app/hadir-api/internal/repository"
)

const defaultClassCapacity = 30

// ClassService manages the class registry. Class membership stays a
// loose name match against User.Class; registry edits never touch
// student rows.
type ClassService interface {
	List(ctx context.Context, gradeLevel string) ([]dto.ClassResponse, error)
	Get(ctx context.Context, id uint) (dto.ClassResponse, error)
	Create(ctx context.Context, req dto.ClassCreateRequest) (dto.ClassResponse, error)
	Update(ctx context.Context, id uint, req dto.ClassUpdateRequest) (dto.ClassResponse, error)
	Delete(ctx context.Context, id uint) error
}

type classService struct {
	classes   repository.ClassRepository
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewClassService constructs a ClassService instance.
func NewClassService(classes repository.ClassRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) ClassService {
	return &classService{
		classes:   classes,
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "class_service").Logger(),
	}
}

func (s *classService) List(ctx context.Context, gradeLevel string) ([]dto.ClassResponse, error) {
	classes, err := s.classes.List(ctx, gradeLevel)
	if err != nil {
		return nil, err
	}

	return dto.NewClassResponseSlice(classes), nil
}

func (s *classService) Get(ctx context.Context, id uint) (dto.ClassResponse, error) {
	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	return dto.NewClassResponse(class), nil
}

func (s *classService) Create(ctx context.Context, req dto.ClassCreateRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ClassResponse{}, err
	}

	if err := s.checkHomeroomTeacher(ctx, req.HomeroomTeacherID); err != nil {
		return dto.ClassResponse{}, err
	}

	capacity := req.Capacity
	if capacity == 0 {
		capacity = defaultClassCapacity
	}

	class := models.Class{
		Name:              req.Name,
		GradeLevel:        req.GradeLevel,
		Program:           req.Program,
		HomeroomTeacherID: req.HomeroomTeacherID,
		Capacity:          capacity,
		Description:       req.Description,
	}

	if err := s.classes.Create(ctx, &class); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ClassResponse{}, &UniquenessError{Field: "class name"}
		}
		return dto.ClassResponse{}, err
	}

	s.logger.Info().Uint("class_id", class.ID).Str("name", class.Name).Msg("class created")

	return dto.NewClassResponse(class), nil
}

func (s *classService) Update(ctx context.Context, id uint, req dto.ClassUpdateRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ClassResponse{}, err
	}

	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	if err := s.checkHomeroomTeacher(ctx, req.HomeroomTeacherID); err != nil {
		return dto.ClassResponse{}, err
	}

	capacity := req.Capacity
	if capacity == 0 {
		capacity = defaultClassCapacity
	}

	class.Name = req.Name
	class.GradeLevel = req.GradeLevel
	class.Program = req.Program
	class.HomeroomTeacherID = req.HomeroomTeacherID
	class.Capacity = capacity
	class.Description = req.Description
	class.HomeroomTeacher = nil

	if err := s.classes.Update(ctx, &class); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ClassResponse{}, &UniquenessError{Field: "class name"}
		}
		return dto.ClassResponse{}, err
	}

	s.logger.Info().Uint("class_id", class.ID).Msg("class updated")

	return dto.NewClassResponse(class), nil
}

func (s *classService) Delete(ctx context.Context, id uint) error {
	if err := s.classes.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}

	s.logger.Info().Uint("class_id", id).Msg("class deleted")

	return nil
}

func (s *classService) checkHomeroomTeacher(ctx context.Context, teacherID *uint) error {
	if teacherID == nil {
		return nil
	}

	user, err := s.users.GetByID(ctx, *teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeacherNotFound
		}
		return err
	}

	if !user.IsTeacher() {
		return ErrTeacherNotFound
	}

	return nil
}
