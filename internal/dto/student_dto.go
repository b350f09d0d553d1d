package dto

// StudentListRequest carries the list filters accepted by GET /api/students.
type StudentListRequest struct {
	Branch   string `query:"branch"`
	Year     string `query:"year"`
	CourseID string `query:"courseId"`
	Search   string `query:"search"`
}

// ImportRowError describes one rejected row of a CSV import.
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportSummaryResponse reports the outcome of a CSV import run.
type ImportSummaryResponse struct {
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	CourseID   string           `json:"courseId,omitempty"`
	Errors     []ImportRowError `json:"errors,omitempty"`
}
