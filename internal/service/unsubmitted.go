package service

import (
	"github.com/noah-isme/nptel-tracker-api/internal/dto"
	"github.com/noah-isme/nptel-tracker-api/internal/models"
)

// ComputeUnsubmitted lists the students who have no counted submission for
// the requested week. A student qualifies when at least one course/faculty-
// matched enrollment lacks a result with a positive score under the exact
// week label; a missing result row and a zero score are the same thing in
// the source data. Each student appears at most once.
func ComputeUnsubmitted(students []models.Student, filter dto.ReportFilter) []dto.UnsubmittedStudent {
	unsubmitted := make([]dto.UnsubmittedStudent, 0)

	for _, student := range students {
		if !matchesStudent(student, filter) {
			continue
		}

		for _, course := range student.Courses {
			if !matchesCourse(course, filter) {
				continue
			}
			if hasSubmissionForWeek(course, filter.Week) {
				continue
			}

			unsubmitted = append(unsubmitted, dto.UnsubmittedStudent{
				RollNumber: student.RollNumber,
				Name:       student.Name,
				Branch:     student.Branch,
				Year:       student.Year,
				Email:      student.Email,
			})
			break
		}
	}

	return unsubmitted
}

func hasSubmissionForWeek(course models.CourseEnrollment, week string) bool {
	for _, result := range course.Results {
		if result.Week == week && result.Submitted() {
			return true
		}
	}
	return false
}
