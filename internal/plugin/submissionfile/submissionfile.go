// Package submissionfile is the submission plugin for uploaded files.
package submissionfile

import (
	"context"
	"html/template"

	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/plugin"
	"github.com/noah-isme/gema-assign/internal/repository"
)

// Type is the plugin key.
const Type = "file"

// Kind returns the catalog entry of the plugin.
func Kind(view plugin.FileAreaView) plugin.Kind[models.Submission] {
	return plugin.Kind[models.Submission]{
		Type: Type,
		Name: view.Strings.Component(models.ComponentSubmissionFile, "pluginname"),
		Bind: func(binding plugin.Binding) plugin.Plugin[models.Submission] {
			return &submissionFiles{Binding: binding, view: view}
		},
	}
}

// Area is the file area holding the files of one submission.
func Area(assignmentID, submissionID uint) repository.FileArea {
	return repository.FileArea{
		ContextID: assignmentID,
		Component: models.ComponentSubmissionFile,
		FileArea:  models.FileAreaSubmissionFiles,
		ItemID:    submissionID,
	}
}

type submissionFiles struct {
	plugin.Binding
	view plugin.FileAreaView
}

func (p *submissionFiles) ViewSummary(ctx context.Context, submission models.Submission) (template.HTML, error) {
	if submission.ID == 0 {
		return "", nil
	}
	return p.view.Summary(ctx, Area(p.Assignment.ID, submission.ID))
}

func (p *submissionFiles) View(ctx context.Context, submission models.Submission) (template.HTML, error) {
	if submission.ID == 0 {
		return "", nil
	}
	return p.view.Full(ctx, Area(p.Assignment.ID, submission.ID))
}

func (p *submissionFiles) ShowViewLink(ctx context.Context, submission models.Submission) bool {
	if submission.ID == 0 {
		return false
	}
	return p.view.Collapsed(ctx, Area(p.Assignment.ID, submission.ID))
}
