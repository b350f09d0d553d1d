package service

import (
	"sort"
	"strings"

	"github.com/noah-isme/nptel-tracker-api/internal/dto"
	"github.com/noah-isme/nptel-tracker-api/internal/models"
)

type weeklyCounter struct {
	submitted   int
	unsubmitted int
	total       int
}

// ComputeWeeklyStats rolls per-student weekly results up into one row per
// week label. It is a pure function of the snapshot and the filter.
//
// The computation is two-pass on purpose: the first pass seeds every week
// label that appears anywhere in the branch/year-matched population, so that
// stricter course/faculty filters still yield a complete, stable set of week
// rows (with zero totals) instead of only the weeks present in the filtered
// subset.
func ComputeWeeklyStats(students []models.Student, filter dto.ReportFilter) []dto.WeeklyStat {
	counters := map[string]*weeklyCounter{}

	matched := make([]models.Student, 0, len(students))
	for _, student := range students {
		if !matchesStudent(student, filter) {
			continue
		}
		matched = append(matched, student)

		for _, course := range student.Courses {
			for _, result := range course.Results {
				if _, ok := counters[result.Week]; !ok {
					counters[result.Week] = &weeklyCounter{}
				}
			}
		}
	}

	for _, student := range matched {
		for _, course := range student.Courses {
			if !matchesCourse(course, filter) {
				continue
			}

			for _, result := range course.Results {
				counter, ok := counters[result.Week]
				if !ok {
					counter = &weeklyCounter{}
					counters[result.Week] = counter
				}

				counter.total++
				if result.Submitted() {
					counter.submitted++
				} else {
					counter.unsubmitted++
				}
			}
		}
	}

	stats := make([]dto.WeeklyStat, 0, len(counters))
	for week, counter := range counters {
		rate := 0.0
		if counter.total > 0 {
			rate = float64(counter.submitted) / float64(counter.total) * 100
		}

		stats = append(stats, dto.WeeklyStat{
			Week:           week,
			Submitted:      counter.submitted,
			Unsubmitted:    counter.unsubmitted,
			Total:          counter.total,
			SubmissionRate: rate,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		a, b := models.WeekOrdinal(stats[i].Week), models.WeekOrdinal(stats[j].Week)
		if a != b {
			return a < b
		}
		return stats[i].Week < stats[j].Week
	})

	return stats
}

func matchesStudent(student models.Student, filter dto.ReportFilter) bool {
	if filter.Branch != "" && student.Branch != filter.Branch {
		return false
	}
	if filter.Year != "" && student.Year != filter.Year {
		return false
	}
	return true
}

func matchesCourse(course models.CourseEnrollment, filter dto.ReportFilter) bool {
	if filter.CourseID != "" && !strings.EqualFold(course.CourseID, filter.CourseID) {
		return false
	}
	if filter.FacultyName != "" && course.SubjectMentor != filter.FacultyName {
		return false
	}
	return true
}
