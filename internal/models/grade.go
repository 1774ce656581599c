package models

import (
	"strings"
	"time"
)

// Grade stores the grade a grader gave to one user for an assignment.
type Grade struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssignmentID uint       `gorm:"not null;uniqueIndex:idx_grade_assignment_user" json:"assignment_id"`
	UserID       uint       `gorm:"not null;uniqueIndex:idx_grade_assignment_user" json:"user_id"`
	GraderID     *uint      `json:"grader_id"`
	Grade        *float64   `json:"grade"`
	Hidden       bool       `gorm:"not null;default:false" json:"hidden"`
	Locked       bool       `gorm:"not null;default:false" json:"locked"`
	GradedAt     *time.Time `json:"graded_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsGraded reports whether a grade value has been recorded.
func (g Grade) IsGraded() bool {
	return g.Grade != nil && *g.Grade >= 0
}

// Scale is a named list of grade labels; the first item has value 1.
type Scale struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Items     string    `gorm:"type:text;not null" json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Options returns the scale labels keyed by their 1-based value.
func (s Scale) Options() map[int]string {
	options := map[int]string{}
	index := 1
	for _, item := range strings.Split(s.Items, ",") {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		options[index] = trimmed
		index++
	}
	return options
}
