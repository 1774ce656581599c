package dto

import "github.com/noah-isme/gema-assign/internal/models"

// PluginActionRequest runs one admin action on a plugin.
type PluginActionRequest struct {
	Action string `json:"action" validate:"omitempty,oneof=view hide show moveup movedown"`
	Plugin string `json:"plugin" validate:"required_unless=Action view"`
}

// PluginResponse is one installed plugin in the admin listing.
type PluginResponse struct {
	Subtype     string `json:"subtype"`
	Plugin      string `json:"plugin"`
	Name        string `json:"name"`
	Enabled     bool   `json:"enabled"`
	SortOrder   int    `json:"sort_order"`
	CanMoveUp   bool   `json:"can_move_up"`
	CanMoveDown bool   `json:"can_move_down"`
}

// NewPluginResponseSlice converts the ordered descriptors of one subtype.
func NewPluginResponseSlice(descriptors []models.PluginDescriptor) []PluginResponse {
	out := make([]PluginResponse, 0, len(descriptors))
	for i, d := range descriptors {
		out = append(out, PluginResponse{
			Subtype:     d.Subtype,
			Plugin:      d.Plugin,
			Name:        d.Name,
			Enabled:     !d.Hidden,
			SortOrder:   d.SortOrder,
			CanMoveUp:   i > 0,
			CanMoveDown: i < len(descriptors)-1,
		})
	}
	return out
}
