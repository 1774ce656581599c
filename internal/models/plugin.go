package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

const (
	// PluginSubtypeSubmission groups plugins that collect student work.
	PluginSubtypeSubmission = "assignsubmission"
	// PluginSubtypeFeedback groups plugins that give graders a feedback channel.
	PluginSubtypeFeedback = "assignfeedback"
)

// PluginDescriptor is the site-wide registry entry for an installed sub-plugin.
type PluginDescriptor struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Subtype   string    `gorm:"size:32;not null;uniqueIndex:idx_plugin_subtype_name" json:"subtype"`
	Plugin    string    `gorm:"size:64;not null;uniqueIndex:idx_plugin_subtype_name" json:"plugin"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Hidden    bool      `gorm:"not null;default:false" json:"hidden"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AssignmentPluginConfig carries the per-assignment settings of one sub-plugin.
type AssignmentPluginConfig struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	AssignmentID uint              `gorm:"not null;uniqueIndex:idx_plugin_config" json:"assignment_id"`
	Subtype      string            `gorm:"size:32;not null;uniqueIndex:idx_plugin_config" json:"subtype"`
	Plugin       string            `gorm:"size:64;not null;uniqueIndex:idx_plugin_config" json:"plugin"`
	Enabled      bool              `gorm:"not null;default:false" json:"enabled"`
	Settings     datatypes.JSONMap `gorm:"type:json" json:"settings"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// IntSetting reads a numeric setting, falling back when it is missing or malformed.
func (c AssignmentPluginConfig) IntSetting(key string, fallback int) int {
	if c.Settings == nil {
		return fallback
	}
	switch v := c.Settings[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
		if f, err := v.Float64(); err == nil {
			return int(f)
		}
		return fallback
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return fallback
	}
}
