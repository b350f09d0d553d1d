package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/nptel-tracker-api/internal/models"
)

// StudentFilter narrows student list queries. Empty fields are ignored.
type StudentFilter struct {
	Branch   string
	Year     string
	CourseID string
	Search   string
}

// StudentRepository provides access to student records and their embedded
// enrollments and weekly results.
type StudentRepository interface {
	// Snapshot reads the full student collection with enrollments and
	// results preloaded. Reports take exactly one snapshot per request.
	Snapshot(ctx context.Context) ([]models.Student, error)
	List(ctx context.Context, filter StudentFilter) ([]models.Student, error)
	GetByRollNumber(ctx context.Context, rollNumber string) (models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	AppendEnrollment(ctx context.Context, studentID uint, enrollment *models.CourseEnrollment) error
	GetEnrollment(ctx context.Context, studentID uint, courseID string) (models.CourseEnrollment, error)
	UpsertWeeklyResult(ctx context.Context, enrollmentID uint, result models.WeeklyResult) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Student{}).
		Preload("Courses").
		Preload("Courses.Results")
}

func (r *studentRepository) Snapshot(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if err := r.baseQuery(ctx).Order("roll_number ASC").Find(&students).Error; err != nil {
		return nil, err
	}

	return students, nil
}

func (r *studentRepository) List(ctx context.Context, filter StudentFilter) ([]models.Student, error) {
	query := r.baseQuery(ctx)

	if filter.Branch != "" {
		query = query.Where("branch = ?", filter.Branch)
	}

	if filter.Year != "" {
		query = query.Where("year = ?", filter.Year)
	}

	if filter.CourseID != "" {
		query = query.Where(
			"EXISTS (SELECT 1 FROM course_enrollments ce WHERE ce.student_id = students.id AND ce.course_id = ?)",
			strings.ToLower(filter.CourseID),
		)
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(roll_number) LIKE ? OR LOWER(email) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var students []models.Student
	if err := query.Order("roll_number ASC").Find(&students).Error; err != nil {
		return nil, err
	}

	return students, nil
}

func (r *studentRepository) GetByRollNumber(ctx context.Context, rollNumber string) (models.Student, error) {
	var student models.Student
	if err := r.baseQuery(ctx).Where("roll_number = ?", rollNumber).First(&student).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

func (r *studentRepository) AppendEnrollment(ctx context.Context, studentID uint, enrollment *models.CourseEnrollment) error {
	enrollment.StudentID = studentID
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *studentRepository) GetEnrollment(ctx context.Context, studentID uint, courseID string) (models.CourseEnrollment, error) {
	var enrollment models.CourseEnrollment
	err := r.db.WithContext(ctx).
		Preload("Results").
		Where("student_id = ?", studentID).
		Where("course_id = ?", strings.ToLower(courseID)).
		First(&enrollment).Error
	if err != nil {
		return models.CourseEnrollment{}, err
	}

	return enrollment, nil
}

// UpsertWeeklyResult applies last-write-wins semantics per (enrollment, week
// label) so a course never accumulates duplicate rows for the same week.
func (r *studentRepository) UpsertWeeklyResult(ctx context.Context, enrollmentID uint, result models.WeeklyResult) error {
	var existing models.WeeklyResult
	err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Where("week = ?", result.Week).
		First(&existing).Error

	switch {
	case err == nil:
		existing.Score = result.Score
		existing.Ordinal = result.Ordinal
		return r.db.WithContext(ctx).Save(&existing).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		result.EnrollmentID = enrollmentID
		return r.db.WithContext(ctx).Create(&result).Error
	default:
		return err
	}
}
