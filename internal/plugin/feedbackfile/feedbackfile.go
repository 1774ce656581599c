// Package feedbackfile is the feedback plugin that attaches files to a grade.
package feedbackfile

import (
	"context"
	"html/template"

	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/plugin"
	"github.com/noah-isme/gema-assign/internal/repository"
)

// Type is the plugin key.
const Type = "file"

// Kind returns the catalog entry of the plugin. Installing it moves it below the
// feedback plugin registered before it.
func Kind(view plugin.FileAreaView) plugin.Kind[models.Grade] {
	return plugin.Kind[models.Grade]{
		Type:    Type,
		Name:    view.Strings.Component(models.ComponentFeedbackFile, "pluginname"),
		Install: Install,
		Bind: func(binding plugin.Binding) plugin.Plugin[models.Grade] {
			return &feedbackFiles{Binding: binding, view: view}
		},
	}
}

// Install moves the plugin down one place in the feedback order.
func Install(ctx context.Context, registry *plugin.Registry) error {
	_, err := registry.Move(ctx, models.PluginSubtypeFeedback, Type, plugin.DirectionDown)
	return err
}

// Area is the file area holding the feedback files of one grade.
func Area(assignmentID, gradeID uint) repository.FileArea {
	return repository.FileArea{
		ContextID: assignmentID,
		Component: models.ComponentFeedbackFile,
		FileArea:  models.FileAreaFeedbackFiles,
		ItemID:    gradeID,
	}
}

// BatchArea is the staging area a grader uploads batch feedback files into.
func BatchArea(assignmentID, graderID uint) repository.FileArea {
	return repository.FileArea{
		ContextID: assignmentID,
		Component: models.ComponentFeedbackFile,
		FileArea:  models.FileAreaFeedbackBatch,
		ItemID:    graderID,
	}
}

type feedbackFiles struct {
	plugin.Binding
	view plugin.FileAreaView
}

func (p *feedbackFiles) ViewSummary(ctx context.Context, grade models.Grade) (template.HTML, error) {
	if grade.ID == 0 {
		return "", nil
	}
	return p.view.Summary(ctx, Area(p.Assignment.ID, grade.ID))
}

func (p *feedbackFiles) View(ctx context.Context, grade models.Grade) (template.HTML, error) {
	if grade.ID == 0 {
		return "", nil
	}
	return p.view.Full(ctx, Area(p.Assignment.ID, grade.ID))
}

func (p *feedbackFiles) ShowViewLink(ctx context.Context, grade models.Grade) bool {
	if grade.ID == 0 {
		return false
	}
	return p.view.Collapsed(ctx, Area(p.Assignment.ID, grade.ID))
}
