package dto

import (
	"time"

	"github.com/noah-isme/gema-assign/internal/models"
)

// OnlineTextRequest saves the online text of the caller's submission.
type OnlineTextRequest struct {
	Text   string `json:"text" validate:"required"`
	Format string `json:"format" validate:"omitempty,oneof=html markdown plain"`
}

// StoredFileResponse describes one stored file.
type StoredFileResponse struct {
	ID        uint   `json:"id"`
	FilePath  string `json:"file_path"`
	FileName  string `json:"file_name"`
	URL       string `json:"url"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// NewStoredFileResponse converts a stored file.
func NewStoredFileResponse(file models.StoredFile) StoredFileResponse {
	return StoredFileResponse{
		ID:        file.ID,
		FilePath:  file.FilePath,
		FileName:  file.FileName,
		URL:       file.URL,
		MimeType:  file.MimeType,
		SizeBytes: file.SizeBytes,
		Checksum:  file.Checksum,
	}
}

// NewStoredFileResponseSlice converts stored files.
func NewStoredFileResponseSlice(files []models.StoredFile) []StoredFileResponse {
	out := make([]StoredFileResponse, 0, len(files))
	for _, file := range files {
		out = append(out, NewStoredFileResponse(file))
	}
	return out
}

// SubmissionResponse is a submission as returned to its owner or a grader.
type SubmissionResponse struct {
	ID           uint                 `json:"id"`
	AssignmentID uint                 `json:"assignment_id"`
	UserID       uint                 `json:"user_id"`
	Status       string               `json:"status"`
	OnlineText   string               `json:"online_text,omitempty"`
	OnlineFormat string               `json:"online_format,omitempty"`
	Files        []StoredFileResponse `json:"files"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// NewSubmissionResponse converts a submission and its plugin data.
func NewSubmissionResponse(submission models.Submission, text *models.OnlineTextSubmission, files []models.StoredFile) SubmissionResponse {
	response := SubmissionResponse{
		ID:           submission.ID,
		AssignmentID: submission.AssignmentID,
		UserID:       submission.UserID,
		Status:       submission.Status,
		Files:        NewStoredFileResponseSlice(files),
		CreatedAt:    submission.CreatedAt,
		UpdatedAt:    submission.UpdatedAt,
	}
	if text != nil {
		response.OnlineText = text.OnlineText
		response.OnlineFormat = text.OnlineFormat
	}
	return response
}

// PluginSummaryResponse is the summary of one plugin in a status response.
type PluginSummaryResponse struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Summary  string `json:"summary"`
	ViewLink string `json:"view_link,omitempty"`
}

// FeedbackResponse is the grade and feedback the user may see.
type FeedbackResponse struct {
	Grade    string                  `json:"grade"`
	GradedAt *time.Time              `json:"graded_at"`
	GradedBy string                  `json:"graded_by,omitempty"`
	Plugins  []PluginSummaryResponse `json:"plugins"`
}

// SubmissionStatusResponse mirrors the submission status page as data.
type SubmissionStatusResponse struct {
	AssignmentID     uint                    `json:"assignment_id"`
	UserID           uint                    `json:"user_id"`
	SubmissionStatus string                  `json:"submission_status"`
	StatusText       string                  `json:"status_text"`
	Locked           bool                    `json:"locked"`
	Graded           bool                    `json:"graded"`
	DueDate          *time.Time              `json:"due_date"`
	TimeRemaining    string                  `json:"time_remaining"`
	TimeRemainingTag string                  `json:"time_remaining_tag"`
	LastModified     *time.Time              `json:"last_modified"`
	CanEdit          bool                    `json:"can_edit"`
	CanSubmit        bool                    `json:"can_submit"`
	Plugins          []PluginSummaryResponse `json:"plugins"`
	Feedback         *FeedbackResponse       `json:"feedback"`
}
