package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/nptel-tracker-api/internal/dto"
	"github.com/noah-isme/nptel-tracker-api/internal/models"
	"github.com/noah-isme/nptel-tracker-api/internal/observability"
	"github.com/noah-isme/nptel-tracker-api/internal/repository"
)

var (
	// ErrImportTooLarge indicates the upload exceeded the configured limit.
	ErrImportTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrImportTypeNotAllowed indicates the upload is not a CSV file.
	ErrImportTypeNotAllowed = errors.New("file type not allowed")
	// ErrImportEmpty indicates the upload carried no data rows.
	ErrImportEmpty = errors.New("file contains no rows")
	// ErrImportBadFileName indicates the week-score file name does not encode
	// a course.
	ErrImportBadFileName = errors.New("file name does not identify a course")
)

// ImportService ingests student rosters and weekly score sheets from
// uploaded CSV files.
type ImportService interface {
	ImportStudents(ctx context.Context, file *multipart.FileHeader) (dto.ImportSummaryResponse, error)
	ImportWeekScores(ctx context.Context, file *multipart.FileHeader) (dto.ImportSummaryResponse, error)
	RecentImports(ctx context.Context, limit int) ([]models.ImportJob, error)
}

type importService struct {
	students   repository.StudentRepository
	jobs       repository.ImportJobRepository
	events     ImportEventPublisher
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
	tracer     trace.Tracer
	maxSize    int64
	typePrefix string
}

// NewImportService constructs the import service. typePrefix names the
// course type assumed by week-score file names (e.g. "noc25" turns
// "cs52.csv" into course "noc25-cs52").
func NewImportService(students repository.StudentRepository, jobs repository.ImportJobRepository, events ImportEventPublisher, validate *validator.Validate, maxSizeMB int, typePrefix string, logger zerolog.Logger) ImportService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	if typePrefix == "" {
		typePrefix = "noc25"
	}

	return &importService{
		students:   students,
		jobs:       jobs,
		events:     events,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "import_service").Logger(),
		tracer:     otel.Tracer("github.com/noah-isme/nptel-tracker-api/internal/service/import"),
		maxSize:    int64(maxSizeMB) * 1024 * 1024,
		typePrefix: strings.ToLower(typePrefix),
	}
}

type studentRow struct {
	RollNumber    string `validate:"required"`
	Name          string `validate:"required"`
	Email         string `validate:"omitempty,email"`
	Branch        string
	Year          string
	CourseID      string
	CourseName    string
	SubjectMentor string
}

type weekScoreRow struct {
	RollNumber string `validate:"required"`
	Week       string `validate:"required"`
	Score      float64
}

func (s *importService) ImportStudents(ctx context.Context, file *multipart.FileHeader) (dto.ImportSummaryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "import.students",
		trace.WithAttributes(attribute.String("import.file", file.Filename)))
	defer span.End()

	records, err := s.readCSV(file)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read_failed")
		return dto.ImportSummaryResponse{}, err
	}

	header, rows := records[0], records[1:]
	columns := columnIndex(header)

	summary := dto.ImportSummaryResponse{}
	for i, record := range rows {
		row := studentRow{
			RollNumber:    field(record, columns, "rollnumber"),
			Name:          s.sanitize(field(record, columns, "name")),
			Email:         field(record, columns, "email"),
			Branch:        strings.ToUpper(field(record, columns, "branch")),
			Year:          field(record, columns, "year"),
			CourseID:      strings.ToLower(field(record, columns, "courseid")),
			CourseName:    s.sanitize(field(record, columns, "coursename")),
			SubjectMentor: s.sanitize(field(record, columns, "subjectmentor")),
		}

		if err := s.upsertStudentRow(ctx, row); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, dto.ImportRowError{Row: i + 2, Reason: err.Error()})
			continue
		}
		summary.Successful++
	}

	s.finishJob(ctx, models.ImportKindStudents, file.Filename, "", summary)
	span.SetAttributes(
		attribute.Int("import.successful", summary.Successful),
		attribute.Int("import.failed", summary.Failed),
	)

	return summary, nil
}

func (s *importService) ImportWeekScores(ctx context.Context, file *multipart.FileHeader) (dto.ImportSummaryResponse, error) {
	courseID, err := s.courseIDFromFileName(file.Filename)
	if err != nil {
		return dto.ImportSummaryResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "import.week_scores",
		trace.WithAttributes(
			attribute.String("import.file", file.Filename),
			attribute.String("import.course_id", courseID),
		))
	defer span.End()

	records, err := s.readCSV(file)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read_failed")
		return dto.ImportSummaryResponse{}, err
	}

	header, rows := records[0], records[1:]
	columns := columnIndex(header)

	summary := dto.ImportSummaryResponse{CourseID: courseID}
	for i, record := range rows {
		row := weekScoreRow{
			RollNumber: field(record, columns, "rollnumber"),
			Week:       field(record, columns, "week"),
		}
		if raw := field(record, columns, "score"); raw != "" {
			score, parseErr := strconv.ParseFloat(raw, 64)
			if parseErr != nil {
				summary.Failed++
				summary.Errors = append(summary.Errors, dto.ImportRowError{Row: i + 2, Reason: "invalid score"})
				continue
			}
			row.Score = score
		}

		if err := s.applyWeekScoreRow(ctx, courseID, row); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, dto.ImportRowError{Row: i + 2, Reason: err.Error()})
			continue
		}
		summary.Successful++
	}

	s.finishJob(ctx, models.ImportKindWeekScores, file.Filename, courseID, summary)
	span.SetAttributes(
		attribute.Int("import.successful", summary.Successful),
		attribute.Int("import.failed", summary.Failed),
	)

	return summary, nil
}

// RecentImports returns the audit trail of finished ingestion runs, newest
// first.
func (s *importService) RecentImports(ctx context.Context, limit int) ([]models.ImportJob, error) {
	return s.jobs.ListRecent(ctx, limit)
}

func (s *importService) upsertStudentRow(ctx context.Context, row studentRow) error {
	if err := s.validator.Struct(row); err != nil {
		return fmt.Errorf("invalid row: %w", err)
	}

	student, err := s.students.GetByRollNumber(ctx, row.RollNumber)
	switch {
	case err == nil:
		student.Name = row.Name
		if row.Email != "" {
			student.Email = row.Email
		}
		if row.Branch != "" {
			student.Branch = row.Branch
		}
		if row.Year != "" {
			student.Year = row.Year
		}
		if err := s.students.Update(ctx, &student); err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		student = models.Student{
			RollNumber: row.RollNumber,
			Name:       row.Name,
			Email:      row.Email,
			Branch:     row.Branch,
			Year:       row.Year,
		}
		if err := s.students.Create(ctx, &student); err != nil {
			return err
		}
	default:
		return err
	}

	if row.CourseID == "" {
		return nil
	}

	if _, err := s.students.GetEnrollment(ctx, student.ID, row.CourseID); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	enrollment := models.CourseEnrollment{
		CourseID:      row.CourseID,
		CourseName:    row.CourseName,
		SubjectMentor: row.SubjectMentor,
	}

	return s.students.AppendEnrollment(ctx, student.ID, &enrollment)
}

func (s *importService) applyWeekScoreRow(ctx context.Context, courseID string, row weekScoreRow) error {
	if err := s.validator.Struct(row); err != nil {
		return fmt.Errorf("invalid row: %w", err)
	}

	student, err := s.students.GetByRollNumber(ctx, row.RollNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("unknown roll number %s", row.RollNumber)
		}
		return err
	}

	enrollment, err := s.students.GetEnrollment(ctx, student.ID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%s is not enrolled in %s", row.RollNumber, courseID)
		}
		return err
	}

	result := models.WeeklyResult{
		Week:    row.Week,
		Ordinal: models.WeekOrdinal(row.Week),
		Score:   row.Score,
	}

	return s.students.UpsertWeeklyResult(ctx, enrollment.ID, result)
}

// courseIDFromFileName maps a week-score sheet name such as "cs52.csv" to
// the canonical course identifier under the configured type prefix.
func (s *importService) courseIDFromFileName(name string) (string, error) {
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	if base == "" {
		return "", ErrImportBadFileName
	}

	courseID := fmt.Sprintf("%s-%s", s.typePrefix, base)
	if models.ParseCourseID(courseID).Unclassified() {
		return "", ErrImportBadFileName
	}

	return courseID, nil
}

func (s *importService) readCSV(file *multipart.FileHeader) ([][]string, error) {
	if file.Size > s.maxSize {
		return nil, ErrImportTooLarge
	}

	source, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer source.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(source, s.maxSize+1)); err != nil {
		return nil, err
	}
	if int64(buf.Len()) > s.maxSize {
		return nil, ErrImportTooLarge
	}

	mime := mimetype.Detect(buf.Bytes())
	if !mime.Is("text/csv") && !mime.Is("text/plain") {
		return nil, fmt.Errorf("%w: %s", ErrImportTypeNotAllowed, mime.String())
	}

	reader := csv.NewReader(&buf)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	if len(records) < 2 {
		return nil, ErrImportEmpty
	}

	return records, nil
}

func (s *importService) finishJob(ctx context.Context, kind, fileName, courseID string, summary dto.ImportSummaryResponse) {
	details := datatypes.JSONMap{}
	if len(summary.Errors) > 0 {
		reasons := make([]interface{}, 0, len(summary.Errors))
		for _, rowErr := range summary.Errors {
			reasons = append(reasons, map[string]interface{}{
				"row":    rowErr.Row,
				"reason": rowErr.Reason,
			})
		}
		details["errors"] = reasons
	}

	job := models.ImportJob{
		Kind:       kind,
		FileName:   fileName,
		CourseID:   courseID,
		Successful: summary.Successful,
		Failed:     summary.Failed,
		Details:    details,
	}
	if err := s.jobs.Create(ctx, &job); err != nil {
		s.logger.Warn().Err(err).Str("kind", kind).Msg("failed to record import job")
	}

	observability.ImportRows().WithLabelValues(kind, "ok").Add(float64(summary.Successful))
	observability.ImportRows().WithLabelValues(kind, "failed").Add(float64(summary.Failed))

	if s.events != nil {
		event := ImportEvent{
			Kind:       kind,
			FileName:   fileName,
			CourseID:   courseID,
			Successful: summary.Successful,
			Failed:     summary.Failed,
			OccurredAt: job.CreatedAt,
		}
		if err := s.events.PublishImportCompleted(ctx, event); err != nil {
			s.logger.Warn().Err(err).Str("kind", kind).Msg("failed to publish import event")
		}
	}
}

func (s *importService) sanitize(value string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(value))
}

// columnIndex maps normalised header names to their positions. Headers are
// matched case-insensitively with spaces and underscores ignored.
func columnIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		normalized := strings.ToLower(strings.TrimSpace(name))
		normalized = strings.ReplaceAll(normalized, " ", "")
		normalized = strings.ReplaceAll(normalized, "_", "")
		index[normalized] = i
	}
	return index
}

func field(record []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
