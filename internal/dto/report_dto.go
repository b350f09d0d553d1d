package dto

import "time"

// ReportFilter narrows report computations. Every field is optional; an
// empty value means no constraint. Matching is exact after trimming.
type ReportFilter struct {
	CourseID    string `query:"courseId"`
	FacultyName string `query:"facultyName"`
	Branch      string `query:"branch"`
	Year        string `query:"year"`
	Week        string `query:"week"`
}

// WeeklyStat is one per-week row of a submission report.
type WeeklyStat struct {
	Week           string  `json:"week"`
	Submitted      int     `json:"submitted"`
	Unsubmitted    int     `json:"unsubmitted"`
	Total          int     `json:"total"`
	SubmissionRate float64 `json:"submissionRate"`
}

// CourseStat summarises one course across the whole student collection.
type CourseStat struct {
	CourseID         string `json:"courseId"`
	CourseName       string `json:"courseName"`
	Branch           string `json:"branch"`
	Type             string `json:"type"`
	TotalEnrollments int    `json:"totalEnrollments"`
}

// TypeGroup buckets the courses of one course type by branch.
type TypeGroup struct {
	TotalCourses     int                     `json:"totalCourses"`
	TotalEnrollments int                     `json:"totalEnrollments"`
	CoursesByBranch  map[string][]CourseStat `json:"coursesByBranch"`
}

// BranchStat reports enrollment pressure for one branch. TotalEnrollments
// counts enrollment records; UniqueStudents counts distinct students, so the
// two differ when a student takes several courses of the same branch.
type BranchStat struct {
	TotalEnrollments int `json:"totalEnrollments"`
	UniqueStudents   int `json:"uniqueStudents"`
}

// CourseStatsResponse is the payload of GET /api/students/courses/stats.
type CourseStatsResponse struct {
	TotalCourses  int                  `json:"totalCourses"`
	Courses       []CourseStat         `json:"courses"`
	CoursesByType map[string]TypeGroup `json:"coursesByType"`
}

// UnsubmittedStudent is one row of the per-week unsubmitted listing; the
// dashboard renders and CSV-exports exactly these columns.
type UnsubmittedStudent struct {
	RollNumber string `json:"rollNumber"`
	Name       string `json:"name"`
	Branch     string `json:"branch"`
	Year       string `json:"year,omitempty"`
	Email      string `json:"email,omitempty"`
}

// CourseOverallStats aggregates the week rows of one course report.
type CourseOverallStats struct {
	TotalSubmissions      int     `json:"totalSubmissions"`
	AverageSubmissionRate float64 `json:"averageSubmissionRate"`
}

// CourseDetailResponse is the payload of
// GET /api/students/courses/:courseId/stats.
type CourseDetailResponse struct {
	CourseID      string             `json:"courseId"`
	CourseName    string             `json:"courseName"`
	TotalStudents int                `json:"totalStudents"`
	WeeklyStats   []WeeklyStat       `json:"weeklyStats"`
	OverallStats  CourseOverallStats `json:"overallStats"`
}

// DashboardResponse is the composite payload of GET /api/dashboard.
type DashboardResponse struct {
	TotalStudents    int                   `json:"totalStudents"`
	TotalCourses     int                   `json:"totalCourses"`
	TotalSubmissions int                   `json:"totalSubmissions"`
	BranchStats      map[string]BranchStat `json:"branchStats"`
	WeeklyStats      []WeeklyStat          `json:"weeklyStats"`
	GeneratedAt      time.Time             `json:"generatedAt"`
}
