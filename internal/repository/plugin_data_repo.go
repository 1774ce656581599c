package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-assign/internal/models"
)

// OnlineTextRepository persists onlinetext submission plugin data.
type OnlineTextRepository interface {
	GetBySubmission(ctx context.Context, submissionID uint) (models.OnlineTextSubmission, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.OnlineTextSubmission, error)
	Create(ctx context.Context, text *models.OnlineTextSubmission) error
	Save(ctx context.Context, text *models.OnlineTextSubmission) error
}

type onlineTextRepository struct {
	db *gorm.DB
}

// NewOnlineTextRepository instantiates the repository.
func NewOnlineTextRepository(db *gorm.DB) OnlineTextRepository {
	return &onlineTextRepository{db: db}
}

func (r *onlineTextRepository) GetBySubmission(ctx context.Context, submissionID uint) (models.OnlineTextSubmission, error) {
	var text models.OnlineTextSubmission
	if err := r.db.WithContext(ctx).Where("submission_id = ?", submissionID).First(&text).Error; err != nil {
		return models.OnlineTextSubmission{}, err
	}
	return text, nil
}

func (r *onlineTextRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.OnlineTextSubmission, error) {
	var texts []models.OnlineTextSubmission
	if err := r.db.WithContext(ctx).Where("assignment_id = ?", assignmentID).Order("id ASC").Find(&texts).Error; err != nil {
		return nil, err
	}
	return texts, nil
}

func (r *onlineTextRepository) Create(ctx context.Context, text *models.OnlineTextSubmission) error {
	return r.db.WithContext(ctx).Create(text).Error
}

// Save creates the row for the submission or updates the existing one.
func (r *onlineTextRepository) Save(ctx context.Context, text *models.OnlineTextSubmission) error {
	existing, err := r.GetBySubmission(ctx, text.SubmissionID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.Create(ctx, text)
	case err != nil:
		return err
	}
	text.ID = existing.ID
	text.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(text).Error
}

// FeedbackCommentRepository persists comments feedback plugin data.
type FeedbackCommentRepository interface {
	GetByGrade(ctx context.Context, gradeID uint) (models.FeedbackComment, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.FeedbackComment, error)
	Create(ctx context.Context, comment *models.FeedbackComment) error
	Save(ctx context.Context, comment *models.FeedbackComment) error
}

type feedbackCommentRepository struct {
	db *gorm.DB
}

// NewFeedbackCommentRepository instantiates the repository.
func NewFeedbackCommentRepository(db *gorm.DB) FeedbackCommentRepository {
	return &feedbackCommentRepository{db: db}
}

func (r *feedbackCommentRepository) GetByGrade(ctx context.Context, gradeID uint) (models.FeedbackComment, error) {
	var comment models.FeedbackComment
	if err := r.db.WithContext(ctx).Where("grade_id = ?", gradeID).First(&comment).Error; err != nil {
		return models.FeedbackComment{}, err
	}
	return comment, nil
}

func (r *feedbackCommentRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.FeedbackComment, error) {
	var comments []models.FeedbackComment
	if err := r.db.WithContext(ctx).Where("assignment_id = ?", assignmentID).Order("id ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *feedbackCommentRepository) Create(ctx context.Context, comment *models.FeedbackComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *feedbackCommentRepository) Save(ctx context.Context, comment *models.FeedbackComment) error {
	existing, err := r.GetByGrade(ctx, comment.GradeID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.Create(ctx, comment)
	case err != nil:
		return err
	}
	comment.ID = existing.ID
	comment.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(comment).Error
}
