package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/nptel-tracker-api/internal/dto"
	"github.com/noah-isme/nptel-tracker-api/internal/models"
	"github.com/noah-isme/nptel-tracker-api/internal/repository"
)

// ErrStudentNotFound indicates no student matches the requested roll number.
var ErrStudentNotFound = errors.New("student not found")

// StudentService exposes read access to the student roster.
type StudentService interface {
	List(ctx context.Context, req dto.StudentListRequest) ([]models.Student, error)
	GetByRollNumber(ctx context.Context, rollNumber string) (models.Student, error)
	Unsubmitted(ctx context.Context, filter dto.ReportFilter) ([]dto.UnsubmittedStudent, error)
}

type studentService struct {
	repo   repository.StudentRepository
	logger zerolog.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo repository.StudentRepository, logger zerolog.Logger) StudentService {
	return &studentService{
		repo:   repo,
		logger: logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) List(ctx context.Context, req dto.StudentListRequest) ([]models.Student, error) {
	filter := repository.StudentFilter{
		Branch:   strings.TrimSpace(req.Branch),
		Year:     strings.TrimSpace(req.Year),
		CourseID: strings.ToLower(strings.TrimSpace(req.CourseID)),
		Search:   strings.TrimSpace(req.Search),
	}

	return s.repo.List(ctx, filter)
}

func (s *studentService) GetByRollNumber(ctx context.Context, rollNumber string) (models.Student, error) {
	rollNumber = strings.TrimSpace(rollNumber)
	if rollNumber == "" {
		return models.Student{}, ErrStudentNotFound
	}

	student, err := s.repo.GetByRollNumber(ctx, rollNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}

	return student, nil
}

// Unsubmitted projects the snapshot down to the students missing a counted
// submission for the requested week.
func (s *studentService) Unsubmitted(ctx context.Context, filter dto.ReportFilter) ([]dto.UnsubmittedStudent, error) {
	filter = normalizeFilter(filter)

	students, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return ComputeUnsubmitted(students, filter), nil
}
