package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-assign/internal/models"
)

// FileArea identifies a group of stored files.
type FileArea struct {
	ContextID uint
	Component string
	FileArea  string
	ItemID    uint
}

// FileRepository indexes stored files by area.
type FileRepository interface {
	ListArea(ctx context.Context, area FileArea) ([]models.StoredFile, error)
	CountArea(ctx context.Context, area FileArea) (int64, error)
	ListByContext(ctx context.Context, contextID uint) ([]models.StoredFile, error)
	// Create indexes file, replacing the entry with the same path and name.
	Create(ctx context.Context, file *models.StoredFile) error
	DeleteArea(ctx context.Context, area FileArea) error
	Exists(ctx context.Context, area FileArea, dir, name string) (bool, error)
}

type fileRepository struct {
	db *gorm.DB
}

// NewFileRepository constructs a repository for stored files.
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) areaQuery(ctx context.Context, area FileArea) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.StoredFile{}).
		Where("context_id = ? AND component = ? AND file_area = ? AND item_id = ?",
			area.ContextID, area.Component, area.FileArea, area.ItemID)
}

func (r *fileRepository) ListArea(ctx context.Context, area FileArea) ([]models.StoredFile, error) {
	var files []models.StoredFile
	if err := r.areaQuery(ctx, area).Order("file_path ASC, file_name ASC").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (r *fileRepository) CountArea(ctx context.Context, area FileArea) (int64, error) {
	var count int64
	err := r.areaQuery(ctx, area).Count(&count).Error
	return count, err
}

func (r *fileRepository) ListByContext(ctx context.Context, contextID uint) ([]models.StoredFile, error) {
	var files []models.StoredFile
	if err := r.db.WithContext(ctx).
		Where("context_id = ?", contextID).
		Order("id ASC").
		Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (r *fileRepository) Create(ctx context.Context, file *models.StoredFile) error {
	if file.FilePath == "" {
		file.FilePath = "/"
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "context_id"}, {Name: "component"}, {Name: "file_area"},
			{Name: "item_id"}, {Name: "file_path"}, {Name: "file_name"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "url", "mime_type", "size_bytes", "checksum", "updated_at"}),
	}).Create(file).Error
}

// Exists reports whether the area already holds dir/name.
func (r *fileRepository) Exists(ctx context.Context, area FileArea, dir, name string) (bool, error) {
	var count int64
	err := r.areaQuery(ctx, area).
		Where("file_path = ? AND file_name = ?", models.NormalizeFilePath(dir), name).
		Count(&count).Error
	return count > 0, err
}

func (r *fileRepository) DeleteArea(ctx context.Context, area FileArea) error {
	return r.db.WithContext(ctx).
		Where("context_id = ? AND component = ? AND file_area = ? AND item_id = ?",
			area.ContextID, area.Component, area.FileArea, area.ItemID).
		Delete(&models.StoredFile{}).Error
}
