package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-assign/internal/models"
)

// PluginDescriptorRepository stores the site-wide sub-plugin registry.
type PluginDescriptorRepository interface {
	ListBySubtype(ctx context.Context, subtype string) ([]models.PluginDescriptor, error)
	Get(ctx context.Context, subtype, plugin string) (models.PluginDescriptor, error)
	Create(ctx context.Context, descriptor *models.PluginDescriptor) error
	Update(ctx context.Context, descriptor *models.PluginDescriptor) error
	SwapOrder(ctx context.Context, first, second *models.PluginDescriptor) error
}

type pluginDescriptorRepository struct {
	db *gorm.DB
}

// NewPluginDescriptorRepository instantiates the repository.
func NewPluginDescriptorRepository(db *gorm.DB) PluginDescriptorRepository {
	return &pluginDescriptorRepository{db: db}
}

func (r *pluginDescriptorRepository) ListBySubtype(ctx context.Context, subtype string) ([]models.PluginDescriptor, error) {
	var descriptors []models.PluginDescriptor
	if err := r.db.WithContext(ctx).
		Where("subtype = ?", subtype).
		Order("sort_order ASC, id ASC").
		Find(&descriptors).Error; err != nil {
		return nil, err
	}
	return descriptors, nil
}

func (r *pluginDescriptorRepository) Get(ctx context.Context, subtype, plugin string) (models.PluginDescriptor, error) {
	var descriptor models.PluginDescriptor
	if err := r.db.WithContext(ctx).
		Where("subtype = ? AND plugin = ?", subtype, plugin).
		First(&descriptor).Error; err != nil {
		return models.PluginDescriptor{}, err
	}
	return descriptor, nil
}

func (r *pluginDescriptorRepository) Create(ctx context.Context, descriptor *models.PluginDescriptor) error {
	return r.db.WithContext(ctx).Create(descriptor).Error
}

func (r *pluginDescriptorRepository) Update(ctx context.Context, descriptor *models.PluginDescriptor) error {
	return r.db.WithContext(ctx).Save(descriptor).Error
}

// SwapOrder exchanges the sort order of two descriptors atomically.
func (r *pluginDescriptorRepository) SwapOrder(ctx context.Context, first, second *models.PluginDescriptor) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		first.SortOrder, second.SortOrder = second.SortOrder, first.SortOrder
		if err := tx.Model(first).Update("sort_order", first.SortOrder).Error; err != nil {
			return err
		}
		return tx.Model(second).Update("sort_order", second.SortOrder).Error
	})
}
