package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/hadir-app/hadir-api/internal/models"
)

// AttendanceFilter describes composable AND filters over the ledger.
// StartDate/EndDate bound the date inclusively; Date matches a single
// day. Callers resolve the precedence between the two before building
// the filter.
type AttendanceFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Date      *time.Time
	StudentID *uint
	TeacherID *uint
	Class     string
	Status    string
	Page      int
	PageSize  int
}

// AttendanceRepository defines persistence operations for the ledger.
type AttendanceRepository interface {
	List(ctx context.Context, filter AttendanceFilter) ([]models.Attendance, int64, error)
	Count(ctx context.Context, filter AttendanceFilter) (int64, error)
	GetByID(ctx context.Context, id uint) (models.Attendance, error)
	FindByTriple(ctx context.Context, studentID, teacherID uint, date time.Time) (models.Attendance, error)
	Create(ctx context.Context, attendance *models.Attendance) error
	Update(ctx context.Context, attendance *models.Attendance) error
	Delete(ctx context.Context, id uint) error
	Recent(ctx context.Context, teacherID *uint, limit int) ([]models.Attendance, error)
	ListForStudent(ctx context.Context, studentID uint, since *time.Time, limit int) ([]models.Attendance, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository instantiates a GORM-backed ledger repository.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Attendance{}).
		Preload("Student").
		Preload("Teacher")
}

func (r *attendanceRepository) applyFilter(ctx context.Context, query *gorm.DB, filter AttendanceFilter) *gorm.DB {
	if filter.StartDate != nil && filter.EndDate != nil {
		query = query.Where("attendance_date BETWEEN ? AND ?", models.DateOnly(*filter.StartDate), models.DateOnly(*filter.EndDate))
	} else if filter.StartDate != nil {
		query = query.Where("attendance_date >= ?", models.DateOnly(*filter.StartDate))
	} else if filter.EndDate != nil {
		query = query.Where("attendance_date <= ?", models.DateOnly(*filter.EndDate))
	} else if filter.Date != nil {
		query = query.Where("attendance_date = ?", models.DateOnly(*filter.Date))
	}

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filter.TeacherID)
	}

	if filter.Class != "" {
		subquery := r.db.WithContext(ctx).Model(&models.User{}).Select("id").Where("class = ?", filter.Class)
		query = query.Where("student_id IN (?)", subquery)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	return query
}

func (r *attendanceRepository) List(ctx context.Context, filter AttendanceFilter) ([]models.Attendance, int64, error) {
	query := r.applyFilter(ctx, r.baseQuery(ctx), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("attendance_date DESC").Order("created_at DESC")

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var records []models.Attendance
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *attendanceRepository) Count(ctx context.Context, filter AttendanceFilter) (int64, error) {
	query := r.applyFilter(ctx, r.db.WithContext(ctx).Model(&models.Attendance{}), filter)

	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *attendanceRepository) GetByID(ctx context.Context, id uint) (models.Attendance, error) {
	var record models.Attendance
	if err := r.baseQuery(ctx).First(&record, id).Error; err != nil {
		return models.Attendance{}, err
	}

	return record, nil
}

func (r *attendanceRepository) FindByTriple(ctx context.Context, studentID, teacherID uint, date time.Time) (models.Attendance, error) {
	var record models.Attendance
	err := r.baseQuery(ctx).
		Where("student_id = ?", studentID).
		Where("teacher_id = ?", teacherID).
		Where("attendance_date = ?", models.DateOnly(date)).
		First(&record).Error
	if err != nil {
		return models.Attendance{}, err
	}

	return record, nil
}

func (r *attendanceRepository) Create(ctx context.Context, attendance *models.Attendance) error {
	return r.db.WithContext(ctx).Create(attendance).Error
}

func (r *attendanceRepository) Update(ctx context.Context, attendance *models.Attendance) error {
	return r.db.WithContext(ctx).Save(attendance).Error
}

func (r *attendanceRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Attendance{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *attendanceRepository) Recent(ctx context.Context, teacherID *uint, limit int) ([]models.Attendance, error) {
	query := r.baseQuery(ctx).Order("created_at DESC").Limit(limit)
	if teacherID != nil {
		query = query.Where("teacher_id = ?", *teacherID)
	}

	var records []models.Attendance
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *attendanceRepository) ListForStudent(ctx context.Context, studentID uint, since *time.Time, limit int) ([]models.Attendance, error) {
	query := r.baseQuery(ctx).
		Where("student_id = ?", studentID).
		Order("attendance_date DESC").
		Order("created_at DESC")

	if since != nil {
		query = query.Where("attendance_date >= ?", models.DateOnly(*since))
	}

	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []models.Attendance
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}
