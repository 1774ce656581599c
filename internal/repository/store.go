package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories that share one database handle.
type Store struct {
	db               *gorm.DB
	Assignments      AssignmentRepository
	Submissions      SubmissionRepository
	Grades           GradeRepository
	Plugins          PluginDescriptorRepository
	PluginConfigs    PluginConfigRepository
	OnlineTexts      OnlineTextRepository
	FeedbackComments FeedbackCommentRepository
	Files            FileRepository
	Users            UserRepository
	Courses          CourseRepository
	Activity         ActivityLogRepository
}

// NewStore builds every repository on top of db.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:               db,
		Assignments:      NewAssignmentRepository(db),
		Submissions:      NewSubmissionRepository(db),
		Grades:           NewGradeRepository(db),
		Plugins:          NewPluginDescriptorRepository(db),
		PluginConfigs:    NewPluginConfigRepository(db),
		OnlineTexts:      NewOnlineTextRepository(db),
		FeedbackComments: NewFeedbackCommentRepository(db),
		Files:            NewFileRepository(db),
		Users:            NewUserRepository(db),
		Courses:          NewCourseRepository(db),
		Activity:         NewActivityLogRepository(db),
	}
}

// WithTx runs fn against a store bound to a single transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
