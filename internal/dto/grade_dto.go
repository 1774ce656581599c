package dto

import (
	"time"

	"github.com/noah-isme/gema-assign/internal/models"
)

// GradeRequest sets the grade and feedback comment of one user.
type GradeRequest struct {
	Grade         *float64 `json:"grade"`
	Comment       *string  `json:"comment"`
	CommentFormat string   `json:"comment_format" validate:"omitempty,oneof=html markdown plain"`
	Hidden        *bool    `json:"hidden"`
	Locked        *bool    `json:"locked"`
}

// GradeResponse is a stored grade.
type GradeResponse struct {
	ID           uint       `json:"id"`
	AssignmentID uint       `json:"assignment_id"`
	UserID       uint       `json:"user_id"`
	GraderID     *uint      `json:"grader_id"`
	Grade        *float64   `json:"grade"`
	DisplayGrade string     `json:"display_grade"`
	Comment      string     `json:"comment,omitempty"`
	Hidden       bool       `json:"hidden"`
	Locked       bool       `json:"locked"`
	GradedAt     *time.Time `json:"graded_at"`
}

// NewGradeResponse converts a grade.
func NewGradeResponse(grade models.Grade, display, comment string) GradeResponse {
	return GradeResponse{
		ID:           grade.ID,
		AssignmentID: grade.AssignmentID,
		UserID:       grade.UserID,
		GraderID:     grade.GraderID,
		Grade:        grade.Grade,
		DisplayGrade: display,
		Comment:      comment,
		Hidden:       grade.Hidden,
		Locked:       grade.Locked,
		GradedAt:     grade.GradedAt,
	}
}
