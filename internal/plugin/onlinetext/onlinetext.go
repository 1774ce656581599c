// Package onlinetext is the submission plugin that lets students type their
// submission directly into the assignment.
package onlinetext

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
const Type = "onlinetext"

// SummaryLength is the number of characters shown in the submission summary.
const SummaryLength = 140

// Kind returns the catalog entry of the plugin.
func Kind(texts repository.OnlineTextRepository, strings *lang.Strings) plugin.Kind[models.Submission] {
	return plugin.Kind[models.Submission]{
		Type: Type,
		Name: strings.Component(models.ComponentSubmissionOnlineText, "pluginname"),
		Bind: func(binding plugin.Binding) plugin.Plugin[models.Submission] {
			return &onlineText{Binding: binding, texts: texts}
		},
	}
}

type onlineText struct {
	plugin.Binding
	texts repository.OnlineTextRepository
}

func (p *onlineText) load(ctx context.Context, submission models.Submission) (models.OnlineTextSubmission, bool, error) {
	if submission.ID == 0 {
		return models.OnlineTextSubmission{}, false, nil
	}
	text, err := p.texts.GetBySubmission(ctx, submission.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.OnlineTextSubmission{}, false, nil
		}
		return models.OnlineTextSubmission{}, false, err
	}
	return text, true, nil
}

func (p *onlineText) ViewSummary(ctx context.Context, submission models.Submission) (template.HTML, error) {
	text, ok, err := p.load(ctx, submission)
	if err != nil || !ok {
		return "", err
	}
	short, _ := textformat.Shorten(textformat.PlainText(text.OnlineText, text.OnlineFormat), SummaryLength)
	return template.HTML(template.HTMLEscapeString(short)), nil
}

func (p *onlineText) View(ctx context.Context, submission models.Submission) (template.HTML, error) {
	text, ok, err := p.load(ctx, submission)
	if err != nil || !ok {
		return "", err
	}
	return template.HTML(textformat.ToHTML(text.OnlineText, text.OnlineFormat)), nil
}

func (p *onlineText) ShowViewLink(ctx context.Context, submission models.Submission) bool {
	text, ok, err := p.load(ctx, submission)
	if err != nil || !ok {
		return false
	}
	_, cut := textformat.Shorten(textformat.PlainText(text.OnlineText, text.OnlineFormat), SummaryLength)
	return cut
}
