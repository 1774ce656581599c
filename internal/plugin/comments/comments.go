// Package comments is the feedback plugin that stores a grader's written comment.
package comments

import (
	"context"
	"errors"
	"html/template"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-assign/internal/lang"
	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/plugin"
	"github.com/noah-isme/gema-assign/internal/repository"
	"github.com/noah-isme/gema-assign/internal/textformat"
)

// Type is the plugin key.
const Type = "comments"

// Component is the string component of the plugin.
const Component = models.PluginSubtypeFeedback + "_" + Type

// SummaryLength is the number of characters shown in the feedback summary.
const SummaryLength = 140

// Kind returns the catalog entry of the plugin.
func Kind(comments repository.FeedbackCommentRepository, strings *lang.Strings) plugin.Kind[models.Grade] {
	return plugin.Kind[models.Grade]{
		Type: Type,
		Name: strings.Component(Component, "pluginname"),
		Bind: func(binding plugin.Binding) plugin.Plugin[models.Grade] {
			return &feedbackComments{Binding: binding, comments: comments}
		},
	}
}

type feedbackComments struct {
	plugin.Binding
	comments repository.FeedbackCommentRepository
}

func (p *feedbackComments) load(ctx context.Context, grade models.Grade) (models.FeedbackComment, bool) {
	if grade.ID == 0 {
		return models.FeedbackComment{}, false
	}
	comment, err := p.comments.GetByGrade(ctx, grade.ID)
	if err != nil {
		return models.FeedbackComment{}, false
	}
	return comment, comment.CommentText != ""
}

func (p *feedbackComments) ViewSummary(ctx context.Context, grade models.Grade) (template.HTML, error) {
	if grade.ID == 0 {
		return "", nil
	}
	comment, err := p.comments.GetByGrade(ctx, grade.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	short, _ := textformat.Shorten(textformat.PlainText(comment.CommentText, comment.CommentFormat), SummaryLength)
	return template.HTML(template.HTMLEscapeString(short)), nil
}

func (p *feedbackComments) View(ctx context.Context, grade models.Grade) (template.HTML, error) {
	comment, ok := p.load(ctx, grade)
	if !ok {
		return "", nil
	}
	return template.HTML(textformat.ToHTML(comment.CommentText, comment.CommentFormat)), nil
}

func (p *feedbackComments) ShowViewLink(ctx context.Context, grade models.Grade) bool {
	comment, ok := p.load(ctx, grade)
	if !ok {
		return false
	}
	_, cut := textformat.Shorten(textformat.PlainText(comment.CommentText, comment.CommentFormat), SummaryLength)
	return cut
}
