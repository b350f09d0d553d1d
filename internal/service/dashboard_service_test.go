package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/nptel-tracker-api/internal/dto"
	"github.com/noah-isme/nptel-tracker-api/internal/models"
	"github.com/noah-isme/nptel-tracker-api/internal/repository"
)

func seedDashboardStudents(t *testing.T, db *gorm.DB) {
	t.Helper()

	seedReportStudents(t, db)

	extra := models.Student{
		RollNumber: "21EE005", Name: "Devi", Branch: "EE", Year: "2",
		Courses: []models.CourseEnrollment{
			{
				CourseID: "noc25-ee61", CourseName: "Power Systems", SubjectMentor: "Dr. Sen",
				Results: []models.WeeklyResult{
					{Week: "Week 1", Ordinal: 1, Score: 50},
				},
			},
		},
	}
	require.NoError(t, db.Create(&extra).Error)
}

func newDashboardService(t *testing.T, db *gorm.DB, cache *redis.Client, ttl time.Duration) *dashboardService {
	t.Helper()

	svc, ok := NewDashboardService(repository.NewStudentRepository(db), cache, ttl, zerolog.Nop()).(*dashboardService)
	require.True(t, ok)
	return svc
}

func TestDashboardServiceUnfiltered(t *testing.T) {
	db := openTestDB(t)
	seedDashboardStudents(t, db)

	generated := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	svc := newDashboardService(t, db, nil, 0)
	svc.now = func() time.Time { return generated }

	response, err := svc.Dashboard(context.Background(), dto.ReportFilter{})
	require.NoError(t, err)

	require.Equal(t, 3, response.TotalStudents)
	require.Equal(t, 3, response.TotalCourses)
	require.Equal(t, 3, response.TotalSubmissions)
	require.Equal(t, generated, response.GeneratedAt)

	require.Equal(t, dto.BranchStat{TotalEnrollments: 3, UniqueStudents: 2}, response.BranchStats["CS"])
	require.Equal(t, dto.BranchStat{TotalEnrollments: 1, UniqueStudents: 1}, response.BranchStats["EE"])

	require.Len(t, response.WeeklyStats, 2)
	require.Equal(t, "Week 1", response.WeeklyStats[0].Week)
	require.Equal(t, 3, response.WeeklyStats[0].Submitted)
	require.Equal(t, 1, response.WeeklyStats[0].Unsubmitted)
}

func TestDashboardServiceBranchFilter(t *testing.T) {
	db := openTestDB(t)
	seedDashboardStudents(t, db)

	svc := newDashboardService(t, db, nil, 0)

	response, err := svc.Dashboard(context.Background(), dto.ReportFilter{Branch: "EE"})
	require.NoError(t, err)

	require.Equal(t, 1, response.TotalStudents)
	require.Equal(t, 1, response.TotalCourses)
	require.Equal(t, 1, response.TotalSubmissions)
	require.Len(t, response.BranchStats, 1)
	require.Equal(t, dto.BranchStat{TotalEnrollments: 1, UniqueStudents: 1}, response.BranchStats["EE"])

	require.Len(t, response.WeeklyStats, 1)
	require.Equal(t, "Week 1", response.WeeklyStats[0].Week)
	require.Equal(t, 1, response.WeeklyStats[0].Total)
}

func TestDashboardServiceCourseFilterDoesNotScopeStudents(t *testing.T) {
	db := openTestDB(t)
	seedDashboardStudents(t, db)

	svc := newDashboardService(t, db, nil, 0)

	response, err := svc.Dashboard(context.Background(), dto.ReportFilter{CourseID: "NOC25-CS60"})
	require.NoError(t, err)

	// Course filters narrow the weekly counts but not the population totals.
	require.Equal(t, 3, response.TotalStudents)
	require.Equal(t, 0, response.TotalSubmissions)

	require.Len(t, response.WeeklyStats, 2)
	require.Equal(t, "Week 1", response.WeeklyStats[0].Week)
	require.Equal(t, 1, response.WeeklyStats[0].Total)
	require.Equal(t, 1, response.WeeklyStats[0].Unsubmitted)
	require.Equal(t, 0, response.WeeklyStats[1].Total)
}

func TestDashboardServiceWeekFilter(t *testing.T) {
	db := openTestDB(t)
	seedDashboardStudents(t, db)

	svc := newDashboardService(t, db, nil, 0)

	response, err := svc.Dashboard(context.Background(), dto.ReportFilter{Week: "Week 2"})
	require.NoError(t, err)

	require.Len(t, response.WeeklyStats, 1)
	require.Equal(t, "Week 2", response.WeeklyStats[0].Week)
	require.Equal(t, 0, response.TotalSubmissions)
}

func TestDashboardServiceCacheKeyVariesByFilter(t *testing.T) {
	plain := dashboardCacheKey(dto.ReportFilter{})
	byBranch := dashboardCacheKey(dto.ReportFilter{Branch: "CS"})
	byYear := dashboardCacheKey(dto.ReportFilter{Year: "CS"})

	require.NotEqual(t, plain, byBranch)
	require.NotEqual(t, byBranch, byYear)
}

func TestDashboardServiceCacheOptIn(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	db := openTestDB(t)
	seedDashboardStudents(t, db)

	svc := newDashboardService(t, db, redisClient, time.Minute)

	ctx := context.Background()
	first, err := svc.Dashboard(ctx, dto.ReportFilter{Branch: "CS"})
	require.NoError(t, err)

	require.NoError(t, db.Exec("DELETE FROM weekly_results").Error)

	second, err := svc.Dashboard(ctx, dto.ReportFilter{Branch: "CS"})
	require.NoError(t, err)
	require.Equal(t, first.TotalSubmissions, second.TotalSubmissions)
	require.Equal(t, first.WeeklyStats, second.WeeklyStats)
}
