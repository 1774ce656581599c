package models

import (
	"path"
	"strings"
	"time"
)

// File components and areas used by the assignment module.
const (
	ComponentSubmissionFile       = "assignsubmission_file"
	ComponentSubmissionOnlineText = "assignsubmission_onlinetext"
	ComponentFeedbackFile         = "assignfeedback_file"

	FileAreaSubmissionFiles = "submission_files"
	FileAreaOnlineText      = "submissions_onlinetext"
	FileAreaFeedbackFiles   = "feedback_files"
	FileAreaFeedbackBatch   = "feedback_files_batch"
)

// StoredFile indexes one uploaded file by (context, component, area, item).
// A path and name appear at most once per area.
type StoredFile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ContextID uint      `gorm:"uniqueIndex:idx_file_entry,priority:1;not null" json:"context_id"`
	Component string    `gorm:"size:64;uniqueIndex:idx_file_entry,priority:2;not null" json:"component"`
	FileArea  string    `gorm:"size:64;uniqueIndex:idx_file_entry,priority:3;not null" json:"file_area"`
	ItemID    uint      `gorm:"uniqueIndex:idx_file_entry,priority:4;not null" json:"item_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	FilePath  string    `gorm:"size:512;not null;default:/;uniqueIndex:idx_file_entry,priority:5" json:"file_path"`
	FileName  string    `gorm:"size:255;not null;uniqueIndex:idx_file_entry,priority:6" json:"file_name"`
	URL       string    `gorm:"size:1024" json:"url"`
	MimeType  string    `gorm:"size:128" json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	Checksum  string    `gorm:"size:64" json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeFilePath cleans a directory path into the "/a/b/" form.
func NormalizeFilePath(dir string) string {
	cleaned := path.Clean("/" + strings.TrimSpace(dir))
	if cleaned == "/" {
		return "/"
	}
	return cleaned + "/"
}
