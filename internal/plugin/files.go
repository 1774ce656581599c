package plugin

import (
	"context"
	"html/template"
	"strconv"

	"github.com/noah-isme/gema-assign/internal/filetree"
	"github.com/noah-isme/gema-assign/internal/lang"
	"github.com/noah-isme/gema-assign/internal/repository"
)

// DefaultSummaryMaxFiles is how many files a summary lists before it collapses to a count.
const DefaultSummaryMaxFiles = 5

// FileAreaView renders the file area of a file-based plugin.
type FileAreaView struct {
	Files    repository.FileRepository
	Strings  *lang.Strings
	Tree     filetree.Options
	MaxFiles int
}

func (v FileAreaView) maxFiles() int {
	if v.MaxFiles <= 0 {
		return DefaultSummaryMaxFiles
	}
	return v.MaxFiles
}

// Full renders every file of area as a tree.
func (v FileAreaView) Full(ctx context.Context, area repository.FileArea) (template.HTML, error) {
	files, err := v.Files.ListArea(ctx, area)
	if err != nil {
		return "", err
	}
	rendered, err := filetree.Render(filetree.Build(files), v.Tree)
	if err != nil {
		return "", err
	}
	return template.HTML(rendered), nil
}

// Summary renders the tree while the area holds at most MaxFiles files, and the
// localized file count otherwise.
func (v FileAreaView) Summary(ctx context.Context, area repository.FileArea) (template.HTML, error) {
	count, err := v.Files.CountArea(ctx, area)
	if err != nil {
		return "", err
	}
	if count > int64(v.maxFiles()) {
		text := v.Strings.Component(area.Component, "countfiles", strconv.FormatInt(count, 10))
		return template.HTML(template.HTMLEscapeString(text)), nil
	}
	return v.Full(ctx, area)
}

// Collapsed reports whether the summary of area shows a count instead of the files.
func (v FileAreaView) Collapsed(ctx context.Context, area repository.FileArea) bool {
	count, err := v.Files.CountArea(ctx, area)
	if err != nil {
		return false
	}
	return count > int64(v.maxFiles())
}
