package models

import "time"

// Student represents a tracked learner together with every course the
// student is enrolled in. RollNumber is the business key used by bulk
// imports; ID stays internal to the store.
type Student struct {
	ID         uint               `gorm:"primaryKey" json:"id"`
	RollNumber string             `gorm:"size:32;uniqueIndex;not null" json:"rollNumber"`
	Name       string             `gorm:"size:255;not null" json:"name"`
	Email      string             `gorm:"size:255" json:"email"`
	Branch     string             `gorm:"size:16;index" json:"branch"`
	Year       string             `gorm:"size:8;index" json:"year"`
	Courses    []CourseEnrollment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"courses"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// CourseEnrollment binds one student to one course and carries the weekly
// submission results recorded for that membership. CourseID is stored in its
// lowercase canonical form.
type CourseEnrollment struct {
	ID            uint           `gorm:"primaryKey" json:"-"`
	StudentID     uint           `gorm:"index;not null" json:"-"`
	CourseID      string         `gorm:"size:64;index;not null" json:"courseId"`
	CourseName    string         `gorm:"size:255" json:"courseName,omitempty"`
	SubjectMentor string         `gorm:"size:255" json:"subjectMentor,omitempty"`
	Results       []WeeklyResult `gorm:"foreignKey:EnrollmentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"results"`
}

// WeeklyResult records the score a student obtained for one week of a
// course. Week keeps the free-text label found in the source sheets;
// Ordinal is derived from it at ingestion so sorting new data never needs a
// regex, while legacy labels still sort via WeekOrdinal.
type WeeklyResult struct {
	ID           uint    `gorm:"primaryKey" json:"-"`
	EnrollmentID uint    `gorm:"index;not null" json:"-"`
	Week         string  `gorm:"size:64;not null" json:"week"`
	Ordinal      int     `gorm:"index" json:"-"`
	Score        float64 `json:"score"`
}

// Submitted reports whether the result counts as a submission. A zero score
// is indistinguishable from no submission in the source data.
func (r WeeklyResult) Submitted() bool {
	return r.Score > 0
}

// Parsed returns the derived classification of the enrollment's course.
func (e CourseEnrollment) Parsed() ParsedCourseID {
	return ParseCourseID(e.CourseID)
}
