package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
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

// DashboardService assembles the composite dashboard report.
type DashboardService interface {
	Dashboard(ctx context.Context, filter dto.ReportFilter) (dto.DashboardResponse, error)
}

type dashboardService struct {
	students repository.StudentRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewDashboardService constructs the dashboard aggregator. Caching follows
// the same opt-in rules as the report service.
func NewDashboardService(students repository.StudentRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		students: students,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/nptel-tracker-api/internal/service/dashboard"),
		now:      time.Now,
	}
}

func (s *dashboardService) Dashboard(ctx context.Context, filter dto.ReportFilter) (dto.DashboardResponse, error) {
	filter = normalizeFilter(filter)
	cacheKey := dashboardCacheKey(filter)

	ctx, span := s.tracer.Start(ctx, "dashboard.aggregate",
		trace.WithAttributes(attribute.String("dashboard.cache_key", cacheKey)))
	defer span.End()

	if s.cache != nil && s.cacheTTL > 0 {
		if payload, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(payload), &response); unmarshalErr == nil {
				span.SetAttributes(attribute.Bool("dashboard.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
			span.RecordError(err)
		}
	}

	students, err := s.students.Snapshot(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot_failed")
		return dto.DashboardResponse{}, err
	}

	response := s.buildDashboard(students, filter)
	span.SetAttributes(
		attribute.Int("dashboard.students", response.TotalStudents),
		attribute.Int("dashboard.weeks", len(response.WeeklyStats)),
	)

	if s.cache != nil && s.cacheTTL > 0 {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *dashboardService) buildDashboard(students []models.Student, filter dto.ReportFilter) dto.DashboardResponse {
	scoped := make([]models.Student, 0, len(students))
	for _, student := range students {
		if matchesStudent(student, filter) {
			scoped = append(scoped, student)
		}
	}

	rollup := ComputeCourseRollup(scoped)
	weekly := ComputeWeeklyStats(students, filter)

	if filter.Week != "" {
		narrowed := make([]dto.WeeklyStat, 0, 1)
		for _, stat := range weekly {
			if stat.Week == filter.Week {
				narrowed = append(narrowed, stat)
			}
		}
		weekly = narrowed
	}

	totalSubmissions := 0
	for _, stat := range weekly {
		totalSubmissions += stat.Submitted
	}

	return dto.DashboardResponse{
		TotalStudents:    len(scoped),
		TotalCourses:     len(rollup.Courses),
		TotalSubmissions: totalSubmissions,
		BranchStats:      rollup.BranchStats,
		WeeklyStats:      weekly,
		GeneratedAt:      s.now().UTC(),
	}
}

func normalizeFilter(filter dto.ReportFilter) dto.ReportFilter {
	filter.CourseID = strings.ToLower(strings.TrimSpace(filter.CourseID))
	filter.FacultyName = strings.TrimSpace(filter.FacultyName)
	filter.Branch = strings.TrimSpace(filter.Branch)
	filter.Year = strings.TrimSpace(filter.Year)
	filter.Week = strings.TrimSpace(filter.Week)
	return filter
}

func dashboardCacheKey(filter dto.ReportFilter) string {
	raw := fmt.Sprintf("%s|%s|%s|%s|%s",
		filter.CourseID, filter.FacultyName, filter.Branch, filter.Year, filter.Week)
	sum := sha256.Sum256([]byte(raw))
	return "dashboard:" + hex.EncodeToString(sum[:8])
}
