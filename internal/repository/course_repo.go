package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-assign/internal/models"
)

// CourseRepository reads courses and their grading scales.
type CourseRepository interface {
	GetByID(ctx context.Context, id uint) (models.Course, error)
	GetScale(ctx context.Context, id uint) (models.Scale, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates the repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) GetScale(ctx context.Context, id uint) (models.Scale, error) {
	var scale models.Scale
	if err := r.db.WithContext(ctx).First(&scale, id).Error; err != nil {
		return models.Scale{}, err
	}
	return scale, nil
}
