package models

import "time"

// Online text formats understood by the onlinetext submission plugin.
const (
	TextFormatHTML     = "html"
	TextFormatMarkdown = "markdown"
	TextFormatPlain    = "plain"
)

// OnlineTextSubmission is the data stored by the onlinetext submission plugin.
type OnlineTextSubmission struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AssignmentID uint      `gorm:"index;not null" json:"assignment_id"`
	SubmissionID uint      `gorm:"uniqueIndex;not null" json:"submission_id"`
	OnlineText   string    `gorm:"type:text" json:"online_text"`
	OnlineFormat string    `gorm:"size:16;not null;default:html" json:"online_format"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FeedbackComment is the data stored by the comments feedback plugin.
type FeedbackComment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AssignmentID  uint      `gorm:"index;not null" json:"assignment_id"`
	GradeID       uint      `gorm:"uniqueIndex;not null" json:"grade_id"`
	CommentText   string    `gorm:"type:text" json:"comment_text"`
	CommentFormat string    `gorm:"size:16;not null;default:html" json:"comment_format"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
