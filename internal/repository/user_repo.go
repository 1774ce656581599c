package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-assign/internal/models"
)

// UserRepository reads user accounts and course enrolments.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	ListEnrolled(ctx context.Context, courseID uint, role string) ([]models.User, error)
	CountEnrolled(ctx context.Context, courseID uint, role string) (int64, error)
	IsEnrolled(ctx context.Context, courseID, userID uint) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository instantiates the repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("last_name ASC, first_name ASC, id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) enrolledQuery(ctx context.Context, courseID uint, role string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN enrolments ON enrolments.user_id = users.id").
		Where("enrolments.course_id = ? AND enrolments.role = ?", courseID, role)
}

func (r *userRepository) ListEnrolled(ctx context.Context, courseID uint, role string) ([]models.User, error) {
	var users []models.User
	if err := r.enrolledQuery(ctx, courseID, role).
		Order("users.last_name ASC, users.first_name ASC, users.id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) CountEnrolled(ctx context.Context, courseID uint, role string) (int64, error) {
	var count int64
	err := r.enrolledQuery(ctx, courseID, role).Count(&count).Error
	return count, err
}

func (r *userRepository) IsEnrolled(ctx context.Context, courseID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrolment{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&count).Error
	return count > 0, err
}
