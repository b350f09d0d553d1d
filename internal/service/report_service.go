package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/nptel-tracker-api/internal/dto"
	"github.com/noah-isme/nptel-tracker-api/internal/models"
	"github.com/noah-isme/nptel-tracker-api/internal/repository"
)

// ReportService produces the course statistics reports.
type ReportService interface {
	CourseStats(ctx context.Context) (dto.CourseStatsResponse, error)
	CourseDetail(ctx context.Context, courseID string) (dto.CourseDetailResponse, error)
}

type reportService struct {
	students repository.StudentRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewReportService constructs the report service. The cache is optional: a
// nil client or a non-positive TTL disables response caching, which is the
// default because reports are recomputed from a fresh snapshot per request.
func NewReportService(students repository.StudentRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ReportService {
	return &reportService{
		students: students,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "report_service").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/nptel-tracker-api/internal/service/report"),
	}
}

func (s *reportService) CourseStats(ctx context.Context) (dto.CourseStatsResponse, error) {
	const cacheKey = "report:courses"

	ctx, span := s.tracer.Start(ctx, "report.course_stats")
	defer span.End()

	var cached dto.CourseStatsResponse
	if s.readCache(ctx, cacheKey, &cached) {
		span.SetAttributes(attribute.Bool("report.cache_hit", true))
		return cached, nil
	}

	students, err := s.students.Snapshot(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot_failed")
		return dto.CourseStatsResponse{}, err
	}

	rollup := ComputeCourseRollup(students)
	response := dto.CourseStatsResponse{
		TotalCourses:  len(rollup.Courses),
		Courses:       rollup.Courses,
		CoursesByType: rollup.CoursesByType,
	}

	span.SetAttributes(
		attribute.Int("report.students", len(students)),
		attribute.Int("report.courses", response.TotalCourses),
	)
	s.writeCache(ctx, cacheKey, response)

	return response, nil
}

func (s *reportService) CourseDetail(ctx context.Context, courseID string) (dto.CourseDetailResponse, error) {
	courseID = strings.ToLower(strings.TrimSpace(courseID))
	cacheKey := fmt.Sprintf("report:course:%s", courseID)

	ctx, span := s.tracer.Start(ctx, "report.course_detail",
		trace.WithAttributes(attribute.String("report.course_id", courseID)))
	defer span.End()

	var cached dto.CourseDetailResponse
	if s.readCache(ctx, cacheKey, &cached) {
		span.SetAttributes(attribute.Bool("report.cache_hit", true))
		return cached, nil
	}

	students, err := s.students.Snapshot(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot_failed")
		return dto.CourseDetailResponse{}, err
	}

	response := buildCourseDetail(students, courseID)
	span.SetAttributes(attribute.Int("report.total_students", response.TotalStudents))
	s.writeCache(ctx, cacheKey, response)

	return response, nil
}

// buildCourseDetail assembles the per-course report. An unknown course yields
// a zero-valued report rather than an error.
func buildCourseDetail(students []models.Student, courseID string) dto.CourseDetailResponse {
	totalStudents := 0
	courseName := ""
	for _, student := range students {
		for _, course := range student.Courses {
			if !strings.EqualFold(course.CourseID, courseID) {
				continue
			}
			totalStudents++
			if courseName == "" {
				courseName = course.CourseName
			}
			break
		}
	}

	weekly := ComputeWeeklyStats(students, dto.ReportFilter{CourseID: courseID})

	overall := dto.CourseOverallStats{}
	for _, week := range weekly {
		overall.TotalSubmissions += week.Submitted
		overall.AverageSubmissionRate += week.SubmissionRate
	}
	if len(weekly) > 0 {
		// Simple arithmetic mean over week rows, not submission-weighted.
		overall.AverageSubmissionRate /= float64(len(weekly))
	}

	if courseName == "" {
		courseName = courseDisplayName("", models.ParseCourseID(courseID))
	}

	return dto.CourseDetailResponse{
		CourseID:      courseID,
		CourseName:    courseName,
		TotalStudents: totalStudents,
		WeeklyStats:   weekly,
		OverallStats:  overall,
	}
}

func (s *reportService) readCache(ctx context.Context, key string, target any) bool {
	if s.cache == nil || s.cacheTTL <= 0 {
		return false
	}

	payload, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read report cache")
		}
		return false
	}

	return json.Unmarshal([]byte(payload), target) == nil
}

func (s *reportService) writeCache(ctx context.Context, key string, value any) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store report cache")
	}
}
