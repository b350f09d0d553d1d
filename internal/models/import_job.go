package models

import (
	"time"

	"gorm.io/datatypes"
)

// ImportJob captures the outcome of one CSV ingestion run for auditing.
type ImportJob struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	Kind       string            `gorm:"size:32;not null" json:"kind"`
	FileName   string            `gorm:"size:255;not null" json:"fileName"`
	CourseID   string            `gorm:"size:64" json:"courseId,omitempty"`
	Successful int               `gorm:"not null" json:"successful"`
	Failed     int               `gorm:"not null" json:"failed"`
	Details    datatypes.JSONMap `gorm:"type:json" json:"details"`
	CreatedAt  time.Time         `json:"createdAt"`
}

const (
	// ImportKindStudents marks a bulk student roster import.
	ImportKindStudents = "students"
	// ImportKindWeekScores marks a weekly score sheet import.
	ImportKindWeekScores = "weekscores"
)
