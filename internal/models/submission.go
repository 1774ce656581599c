package models

import "time"

// Submission is one student's submission for an assignment. Rows are never deleted;
// only the status changes.
type Submission struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssignmentID uint       `gorm:"not null;uniqueIndex:idx_submission_assignment_user" json:"assignment_id"`
	UserID       uint       `gorm:"not null;uniqueIndex:idx_submission_assignment_user" json:"user_id"`
	Status       string     `gorm:"size:32;not null" json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Assignment   Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	User         User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

const (
	// SubmissionStatusDraft marks a submission that can still be edited by the student.
	SubmissionStatusDraft = "draft"
	// SubmissionStatusSubmitted marks a submission that was handed in for grading.
	SubmissionStatusSubmitted = "submitted"
)

// IsSubmitted reports whether the submission has been handed in for grading.
func (s Submission) IsSubmitted() bool {
	return s.Status == SubmissionStatusSubmitted
}

// TimeModified is the last time the student changed the submission.
func (s Submission) TimeModified() time.Time {
	return s.UpdatedAt
}
