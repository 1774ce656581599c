package models

import "time"

// Assignment is one instance of the assignment activity inside a course.
type Assignment struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	CourseID              uint       `gorm:"index;not null" json:"course_id"`
	Name                  string     `gorm:"size:255;not null" json:"name"`
	Intro                 string     `gorm:"type:text" json:"intro"`
	AlwaysShowDescription bool       `gorm:"not null;default:true" json:"always_show_description"`
	AllowSubmissionsFrom  *time.Time `json:"allow_submissions_from"`
	DueDate               *time.Time `json:"due_date"`
	// Grade is the maximum numeric grade when positive, or the negated scale id when negative.
	Grade            int       `gorm:"not null;default:100" json:"grade"`
	SubmissionDrafts bool      `gorm:"not null;default:false" json:"submission_drafts"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Course           Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// HasDueDate reports whether a due date has been configured.
func (a Assignment) HasDueDate() bool {
	return a.DueDate != nil && !a.DueDate.IsZero()
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return a.HasDueDate() && !reference.Before(*a.DueDate)
}

// UsesScale reports whether grades are picked from a scale instead of a number.
func (a Assignment) UsesScale() bool {
	return a.Grade < 0
}

// ScaleID returns the scale backing the grade when UsesScale is true.
func (a Assignment) ScaleID() uint {
	if a.Grade >= 0 {
		return 0
	}
	return uint(-a.Grade)
}

// SubmissionsOpen reports whether students may already submit.
func (a Assignment) SubmissionsOpen(reference time.Time) bool {
	if a.AllowSubmissionsFrom == nil || a.AllowSubmissionsFrom.IsZero() {
		return true
	}
	return reference.After(*a.AllowSubmissionsFrom)
}
