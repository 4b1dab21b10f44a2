package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/hadir-app/hadir-api/internal/models"
)

// UserFilter narrows user listings. Search matches the name plus the
// identifier column belonging to the role (NISN for students, teacher
// number for teachers).
type UserFilter struct {
	Role     string
	Search   string
	Class    string
	Position string
	Page     int
	PageSize int
}

// UserRepository provides access to user records.
type UserRepository interface {
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	ListStudents(ctx context.Context, class string) ([]models.User, error)
	GetByID(ctx context.Context, id uint) (models.User, error)
	GetByQRCode(ctx context.Context, code string) (models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	CountByRole(ctx context.Context, role string) (int64, error)
	DistinctClasses(ctx context.Context) ([]string, error)
	FieldTaken(ctx context.Context, column, value string, excludeID uint) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a GORM-backed user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		switch filter.Role {
		case models.RoleStudent:
			query = query.Where("LOWER(name) LIKE ? OR LOWER(nisn) LIKE ?", pattern, pattern)
		case models.RoleTeacher:
			query = query.Where("LOWER(name) LIKE ? OR LOWER(teacher_number) LIKE ?", pattern, pattern)
		default:
			query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
		}
	}

	if filter.Class != "" {
		query = query.Where("class = ?", filter.Class)
	}

	if filter.Position != "" {
		query = query.Where("position = ?", filter.Position)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("name ASC")

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) ListStudents(ctx context.Context, class string) ([]models.User, error) {
	query := r.db.WithContext(ctx).
		Where("role = ?", models.RoleStudent).
		Order("name ASC")

	if class != "" {
		query = query.Where("class = ?", class)
	}

	var students []models.User
	if err := query.Find(&students).Error; err != nil {
		return nil, err
	}

	return students, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) GetByQRCode(ctx context.Context, code string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("qr_code = ?", code).First(&user).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

func (r *userRepository) DistinctClasses(ctx context.Context) ([]string, error) {
	var classes []string
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ? AND class <> ''", models.RoleStudent).
		Distinct("class").
		Order("class ASC").
		Pluck("class", &classes).Error
	if err != nil {
		return nil, err
	}

	return classes, nil
}

// FieldTaken reports whether another user already holds the given
// value in the named unique column. Only the known unique columns are
// accepted; anything else is rejected to keep the column name out of
// caller control.
func (r *userRepository) FieldTaken(ctx context.Context, column, value string, excludeID uint) (bool, error) {
	switch column {
	case "email", "nisn", "teacher_number", "qr_code":
	default:
		return false, gorm.ErrInvalidField
	}

	query := r.db.WithContext(ctx).Model(&models.User{}).Where(column+" = ?", value)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}
