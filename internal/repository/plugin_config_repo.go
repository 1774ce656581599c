package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-assign/internal/models"
)

// PluginConfigRepository stores per-assignment sub-plugin settings.
type PluginConfigRepository interface {
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.AssignmentPluginConfig, error)
	Get(ctx context.Context, assignmentID uint, subtype, plugin string) (models.AssignmentPluginConfig, error)
	Upsert(ctx context.Context, config *models.AssignmentPluginConfig) error
}

type pluginConfigRepository struct {
	db *gorm.DB
}

// NewPluginConfigRepository instantiates the repository.
func NewPluginConfigRepository(db *gorm.DB) PluginConfigRepository {
	return &pluginConfigRepository{db: db}
}

func (r *pluginConfigRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.AssignmentPluginConfig, error) {
	var configs []models.AssignmentPluginConfig
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("id ASC").
		Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

func (r *pluginConfigRepository) Get(ctx context.Context, assignmentID uint, subtype, plugin string) (models.AssignmentPluginConfig, error) {
	var config models.AssignmentPluginConfig
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND subtype = ? AND plugin = ?", assignmentID, subtype, plugin).
		First(&config).Error; err != nil {
		return models.AssignmentPluginConfig{}, err
	}
	return config, nil
}

func (r *pluginConfigRepository) Upsert(ctx context.Context, config *models.AssignmentPluginConfig) error {
	existing, err := r.Get(ctx, config.AssignmentID, config.Subtype, config.Plugin)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.db.WithContext(ctx).Create(config).Error
	case err != nil:
		return err
	}

	config.ID = existing.ID
	config.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(config).Error
}
