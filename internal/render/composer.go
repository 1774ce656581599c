// Package render composes the HTML fragments of the assignment pages.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/gema-assign/internal/filetree"
	"github.com/noah-isme/gema-assign/internal/lang"
	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/repository"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Options configures a Composer.
type Options struct {
	Links Links
	// PreviewIcon is the image shown on "view full plugin" links.
	PreviewIcon string
	Tree        filetree.Options
	Files       repository.FileRepository
}

// Composer renders assignment status tables, plugin views and file trees.
type Composer struct {
	strings *lang.Strings
	opts    Options
	now     func() time.Time
}

// NewComposer builds a composer that reads labels from strings.
func NewComposer(strings *lang.Strings, opts Options) *Composer {
	if opts.PreviewIcon == "" {
		opts.PreviewIcon = "/pix/t/preview.png"
	}
	return &Composer{strings: strings, opts: opts, now: time.Now}
}

// WithClock replaces the clock used for due-date computations.
func (c *Composer) WithClock(now func() time.Time) *Composer {
	clone := *c
	clone.now = now
	return &clone
}

// Links returns the link builder of the composer.
func (c *Composer) Links() Links {
	return c.opts.Links
}

type row struct {
	Label string
	Value template.HTML
	Class string
}

type button struct {
	URL   string
	Label string
}

func textRow(label, value string) row {
	return row{Label: label, Value: template.HTML(template.HTMLEscapeString(value))}
}

func (c *Composer) execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// FormatGrade renders a grade for display: "round / max" for numeric grades, the
// scale item for scale grades, and "-" when there is nothing to show.
func (c *Composer) FormatGrade(grade *float64, assignment models.Assignment, scale *models.Scale) string {
	if !assignment.UsesScale() {
		if grade == nil || *grade == -1 {
			return "-"
		}
		return strconv.FormatFloat(math.Round(*grade), 'f', 0, 64) + " / " + strconv.Itoa(assignment.Grade)
	}

	if grade == nil || scale == nil {
		return "-"
	}
	if item, ok := scale.Options()[int(math.Round(*grade))]; ok {
		return item
	}
	return "-"
}

// AssignFiles renders the files of an area as a tree wrapped in a uniquely
// identified div.
func (c *Composer) AssignFiles(ctx context.Context, area repository.FileArea) (template.HTML, error) {
	if c.opts.Files == nil {
		return "", fmt.Errorf("render assign files: no file repository configured")
	}
	files, err := c.opts.Files.ListArea(ctx, area)
	if err != nil {
		return "", err
	}
	tree, err := filetree.Render(filetree.Build(files), c.opts.Tree)
	if err != nil {
		return "", err
	}
	return c.execute("assign_files", struct {
		ID   string
		Tree template.HTML
	}{
		ID:   "assign_files_tree_" + uuid.NewString(),
		Tree: template.HTML(tree),
	})
}
