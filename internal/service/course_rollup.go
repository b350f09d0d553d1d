package service

import (
	"sort"
	"strings"

	"github.com/noah-isme/nptel-tracker-api/internal/dto"
	"github.com/noah-isme/nptel-tracker-api/internal/models"
)

// CourseRollup aggregates the whole student collection by course, course
// type and branch.
type CourseRollup struct {
	Courses       []dto.CourseStat
	CoursesByType map[string]dto.TypeGroup
	BranchStats   map[string]dto.BranchStat
}

// ComputeCourseRollup unwinds every (student, enrollment) pair and groups by
// course identifier. Enrollment counts are record-based; branch statistics
// additionally track distinct students, keyed by roll number, so a student
// with two CS courses counts two enrollments but one student for CS.
// Courses whose identifier yields no branch stay in the global course list
// but are left out of the branch statistics.
func ComputeCourseRollup(students []models.Student) CourseRollup {
	type courseGroup struct {
		name        string
		enrollments int
	}

	groups := map[string]*courseGroup{}
	order := make([]string, 0)

	branchEnrollments := map[string]int{}
	branchStudents := map[string]map[string]struct{}{}

	for _, student := range students {
		for _, course := range student.Courses {
			courseID := strings.ToLower(course.CourseID)

			group, ok := groups[courseID]
			if !ok {
				group = &courseGroup{}
				groups[courseID] = group
				order = append(order, courseID)
			}

			group.enrollments++
			if group.name == "" {
				group.name = course.CourseName
			}

			parsed := models.ParseCourseID(courseID)
			if parsed.Unclassified() {
				continue
			}

			branchEnrollments[parsed.Branch]++
			if branchStudents[parsed.Branch] == nil {
				branchStudents[parsed.Branch] = map[string]struct{}{}
			}
			branchStudents[parsed.Branch][student.RollNumber] = struct{}{}
		}
	}

	sort.Strings(order)

	courses := make([]dto.CourseStat, 0, len(order))
	coursesByType := map[string]dto.TypeGroup{}

	for _, courseID := range order {
		group := groups[courseID]
		parsed := models.ParseCourseID(courseID)

		stat := dto.CourseStat{
			CourseID:         courseID,
			CourseName:       courseDisplayName(group.name, parsed),
			Branch:           parsed.Branch,
			Type:             parsed.Type,
			TotalEnrollments: group.enrollments,
		}
		courses = append(courses, stat)

		bucket, ok := coursesByType[parsed.Type]
		if !ok {
			bucket = dto.TypeGroup{CoursesByBranch: map[string][]dto.CourseStat{}}
		}
		bucket.TotalCourses++
		bucket.TotalEnrollments += group.enrollments
		bucket.CoursesByBranch[parsed.Branch] = append(bucket.CoursesByBranch[parsed.Branch], stat)
		coursesByType[parsed.Type] = bucket
	}

	branchStats := map[string]dto.BranchStat{}
	for branch, enrollments := range branchEnrollments {
		branchStats[branch] = dto.BranchStat{
			TotalEnrollments: enrollments,
			UniqueStudents:   len(branchStudents[branch]),
		}
	}

	return CourseRollup{
		Courses:       courses,
		CoursesByType: coursesByType,
		BranchStats:   branchStats,
	}
}

// courseDisplayName falls back to a synthetic name when no enrollment of the
// course carried one.
func courseDisplayName(name string, parsed models.ParsedCourseID) string {
	if name != "" {
		return name
	}

	parts := make([]string, 0, 3)
	if parsed.Type != "" {
		parts = append(parts, parsed.Type)
	}
	if parsed.Branch != "" {
		parts = append(parts, parsed.Branch)
	}
	parts = append(parts, "Course")

	return strings.Join(parts, " ")
}
