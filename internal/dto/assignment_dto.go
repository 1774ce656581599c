package dto

import (
	"time"

	"github.com/noah-isme/gema-assign/internal/models"
)

const isoLayout = time.RFC3339

// PluginSettingRequest turns one sub-plugin on or off for an assignment.
type PluginSettingRequest struct {
	Subtype  string         `json:"subtype" validate:"required,oneof=assignsubmission assignfeedback"`
	Plugin   string         `json:"plugin" validate:"required,min=2,max=64"`
	Enabled  bool           `json:"enabled"`
	Settings map[string]any `json:"settings,omitempty"`
}

// AssignmentCreateRequest describes the payload for creating a new assignment.
type AssignmentCreateRequest struct {
	CourseID              uint                   `json:"course_id" validate:"required"`
	Name                  string                 `json:"name" validate:"required,min=3,max=255"`
	Intro                 string                 `json:"intro"`
	AlwaysShowDescription *bool                  `json:"always_show_description"`
	AllowSubmissionsFrom  string                 `json:"allow_submissions_from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	DueDate               string                 `json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Grade                 *int                   `json:"grade" validate:"omitempty,ne=0"`
	SubmissionDrafts      bool                   `json:"submission_drafts"`
	Plugins               []PluginSettingRequest `json:"plugins" validate:"omitempty,dive"`
}

// AssignmentUpdateRequest describes the payload for updating an assignment.
type AssignmentUpdateRequest struct {
	Name                  *string                `json:"name" validate:"omitempty,min=3,max=255"`
	Intro                 *string                `json:"intro"`
	AlwaysShowDescription *bool                  `json:"always_show_description"`
	AllowSubmissionsFrom  *string                `json:"allow_submissions_from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	DueDate               *string                `json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Grade                 *int                   `json:"grade" validate:"omitempty,ne=0"`
	SubmissionDrafts      *bool                  `json:"submission_drafts"`
	Plugins               []PluginSettingRequest `json:"plugins" validate:"omitempty,dive"`
}

// AssignmentListQuery carries list filters.
type AssignmentListQuery struct {
	CourseID *uint
	Search   string
	Sort     string
	Page     int
	PageSize int
}

// PluginConfigResponse is the per-assignment state of one sub-plugin.
type PluginConfigResponse struct {
	Subtype  string         `json:"subtype"`
	Plugin   string         `json:"plugin"`
	Enabled  bool           `json:"enabled"`
	Settings map[string]any `json:"settings,omitempty"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID                    uint                   `json:"id"`
	CourseID              uint                   `json:"course_id"`
	Name                  string                 `json:"name"`
	Intro                 string                 `json:"intro"`
	AlwaysShowDescription bool                   `json:"always_show_description"`
	AllowSubmissionsFrom  *time.Time             `json:"allow_submissions_from"`
	DueDate               *time.Time             `json:"due_date"`
	Grade                 int                    `json:"grade"`
	SubmissionDrafts      bool                   `json:"submission_drafts"`
	Plugins               []PluginConfigResponse `json:"plugins,omitempty"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
}

// AssignmentListResponse is a page of assignments.
type AssignmentListResponse struct {
	Items      []AssignmentResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
}

// PaginationMeta describes the current page.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment, configs []models.AssignmentPluginConfig) AssignmentResponse {
	response := AssignmentResponse{
		ID:                    model.ID,
		CourseID:              model.CourseID,
		Name:                  model.Name,
		Intro:                 model.Intro,
		AlwaysShowDescription: model.AlwaysShowDescription,
		AllowSubmissionsFrom:  model.AllowSubmissionsFrom,
		DueDate:               model.DueDate,
		Grade:                 model.Grade,
		SubmissionDrafts:      model.SubmissionDrafts,
		CreatedAt:             model.CreatedAt,
		UpdatedAt:             model.UpdatedAt,
	}
	for _, cfg := range configs {
		response.Plugins = append(response.Plugins, PluginConfigResponse{
			Subtype:  cfg.Subtype,
			Plugin:   cfg.Plugin,
			Enabled:  cfg.Enabled,
			Settings: cfg.Settings,
		})
	}
	return response
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment, nil))
	}

	return responses
}

// ParseTimestamp parses an RFC3339 timestamp; the empty string yields nil.
func ParseTimestamp(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(isoLayout, value)
	if err != nil {
		return nil, err
	}
	utc := parsed.UTC()
	return &utc, nil
}
