package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-assign/internal/models"
)

// GradeRepository persists grades given by graders.
type GradeRepository interface {
	GetByID(ctx context.Context, id uint) (models.Grade, error)
	GetByAssignmentAndUser(ctx context.Context, assignmentID, userID uint) (models.Grade, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Grade, error)
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
}

type gradeRepository struct {
	db *gorm.DB
}

// NewGradeRepository instantiates the repository.
func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) GetByID(ctx context.Context, id uint) (models.Grade, error) {
	var grade models.Grade
	if err := r.db.WithContext(ctx).First(&grade, id).Error; err != nil {
		return models.Grade{}, err
	}
	return grade, nil
}

func (r *gradeRepository) GetByAssignmentAndUser(ctx context.Context, assignmentID, userID uint) (models.Grade, error) {
	var grade models.Grade
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND user_id = ?", assignmentID, userID).
		First(&grade).Error; err != nil {
		return models.Grade{}, err
	}
	return grade, nil
}

func (r *gradeRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Grade, error) {
	var grades []models.Grade
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("id ASC").
		Find(&grades).Error; err != nil {
		return nil, err
	}
	return grades, nil
}

func (r *gradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	return r.db.WithContext(ctx).Create(grade).Error
}

func (r *gradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	return r.db.WithContext(ctx).Save(grade).Error
}
