// Package builtin assembles the catalog of plugins shipped with the service.
package builtin

import (
	"github.com/noah-isme/gema-assign/internal/filetree"
	"github.com/noah-isme/gema-assign/internal/lang"
	"github.com/noah-isme/gema-assign/internal/plugin"
	"github.com/noah-isme/gema-assign/internal/plugin/comments"
	"github.com/noah-isme/gema-assign/internal/plugin/feedbackfile"
	"github.com/noah-isme/gema-assign/internal/plugin/onlinetext"
	"github.com/noah-isme/gema-assign/internal/plugin/submissionfile"
	"github.com/noah-isme/gema-assign/internal/repository"
)

// Options tunes how the built-in plugins render.
type Options struct {
	SummaryMaxFiles int
	Tree            filetree.Options
}

// Catalog returns the built-in plugins. Feedback file is registered before
// comments; its install hook then moves it below comments.
func Catalog(store *repository.Store, strings *lang.Strings, opts Options) *plugin.Catalog {
	files := plugin.FileAreaView{
		Files:    store.Files,
		Strings:  strings,
		Tree:     opts.Tree,
		MaxFiles: opts.SummaryMaxFiles,
	}

	return plugin.NewCatalog().
		AddSubmission(onlinetext.Kind(store.OnlineTexts, strings)).
		AddSubmission(submissionfile.Kind(files)).
		AddFeedback(feedbackfile.Kind(files)).
		AddFeedback(comments.Kind(store.FeedbackComments, strings))
}
