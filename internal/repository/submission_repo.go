package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-assign/internal/models"
)

// SubmissionFilter allows narrowing submission queries.
type SubmissionFilter struct {
	AssignmentID *uint
	UserID       *uint
	Status       *string
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetByAssignmentAndUser(ctx context.Context, assignmentID, userID uint) (models.Submission, error)
	CountByStatus(ctx context.Context, assignmentID uint, status string) (int64, error)
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.db.WithContext(ctx).Model(&models.Submission{})

	if filter.AssignmentID != nil {
		query = query.Where("assignment_id = ?", *filter.AssignmentID)
	}

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var submissions []models.Submission
	if err := query.Order("id ASC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetByAssignmentAndUser(ctx context.Context, assignmentID, userID uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Where("user_id = ?", userID).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) CountByStatus(ctx context.Context, assignmentID uint, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("assignment_id = ? AND status = ?", assignmentID, status).
		Count(&count).Error
	return count, err
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Omit("Assignment", "User").Create(submission).Error
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Omit("Assignment", "User").Save(submission).Error
}
