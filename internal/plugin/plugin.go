// Package plugin implements the registry of assignment sub-plugins and the
// capability interface every submission or feedback plugin exposes.
package plugin

import (
	"context"
	"html/template"

	"github.com/noah-isme/gema-assign/internal/models"
)

// Plugin is the capability set of a sub-plugin bound to one assignment. T is the
// record the plugin renders: a submission for submission plugins, a grade for
// feedback plugins.
type Plugin[T any] interface {
	Type() string
	Subtype() string
	Name() string
	IsEnabled() bool
	IsVisible() bool
	ViewSummary(ctx context.Context, target T) (template.HTML, error)
	View(ctx context.Context, target T) (template.HTML, error)
	ShowViewLink(ctx context.Context, target T) bool
}

// SubmissionPlugin renders a student's submission.
type SubmissionPlugin = Plugin[models.Submission]

// FeedbackPlugin renders the feedback attached to a grade.
type FeedbackPlugin = Plugin[models.Grade]

// Binding is what a plugin knows about the assignment it is attached to. Plugin
// implementations embed it to get the identity and state methods.
type Binding struct {
	Assignment models.Assignment
	Descriptor models.PluginDescriptor
	Config     models.AssignmentPluginConfig
}

// Type is the plugin key, e.g. "file".
func (b Binding) Type() string { return b.Descriptor.Plugin }

// Subtype is assignsubmission or assignfeedback.
func (b Binding) Subtype() string { return b.Descriptor.Subtype }

// Name is the display name.
func (b Binding) Name() string { return b.Descriptor.Name }

// IsVisible reports whether the plugin is enabled site-wide.
func (b Binding) IsVisible() bool { return !b.Descriptor.Hidden }

// IsEnabled reports whether the assignment turned the plugin on.
func (b Binding) IsEnabled() bool { return b.Config.Enabled && b.IsVisible() }

// Component is the file/string component of the plugin, e.g. assignsubmission_file.
func (b Binding) Component() string { return b.Descriptor.Subtype + "_" + b.Descriptor.Plugin }

// InstallHook runs once, right after a plugin is first registered.
type InstallHook func(ctx context.Context, registry *Registry) error

// Kind describes an installable plugin implementation.
type Kind[T any] struct {
	Type    string
	Name    string
	Install InstallHook
	Bind    func(binding Binding) Plugin[T]
}

// Catalog lists the plugin implementations compiled into the service, in install order.
type Catalog struct {
	submission []Kind[models.Submission]
	feedback   []Kind[models.Grade]
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// AddSubmission registers a submission plugin implementation.
func (c *Catalog) AddSubmission(kind Kind[models.Submission]) *Catalog {
	c.submission = append(c.submission, kind)
	return c
}

// AddFeedback registers a feedback plugin implementation.
func (c *Catalog) AddFeedback(kind Kind[models.Grade]) *Catalog {
	c.feedback = append(c.feedback, kind)
	return c
}

type kindInfo struct {
	typ     string
	name    string
	install InstallHook
}

func (c *Catalog) kinds(subtype string) []kindInfo {
	var infos []kindInfo
	switch subtype {
	case models.PluginSubtypeSubmission:
		for _, k := range c.submission {
			infos = append(infos, kindInfo{typ: k.Type, name: k.Name, install: k.Install})
		}
	case models.PluginSubtypeFeedback:
		for _, k := range c.feedback {
			infos = append(infos, kindInfo{typ: k.Type, name: k.Name, install: k.Install})
		}
	}
	return infos
}

// Subtypes lists the plugin subtypes in display order.
func Subtypes() []string {
	return []string{models.PluginSubtypeSubmission, models.PluginSubtypeFeedback}
}

// ValidSubtype reports whether subtype names a known plugin group.
func ValidSubtype(subtype string) bool {
	return subtype == models.PluginSubtypeSubmission || subtype == models.PluginSubtypeFeedback
}
