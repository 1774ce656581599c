package render

import (
	"context"
	"html/template"

	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/plugin"
	"github.com/noah-isme/gema-assign/internal/textformat"
)

// Header is the page header of an assignment.
type Header struct {
	Assignment models.Assignment
	SubPage    string
	ShowIntro  bool
}

// UserSummary identifies the user a grader is looking at.
type UserSummary struct {
	User     *models.User
	CourseID uint
}

// GradingRow is one participant in the grading table.
type GradingRow struct {
	User       models.User
	Submission *models.Submission
	Grade      *models.Grade
}

// GradingTable lists every participant with their submission and feedback.
type GradingTable struct {
	Assignment        models.Assignment
	ContextName       string
	Rows              []GradingRow
	SubmissionPlugins []plugin.SubmissionPlugin
	FeedbackPlugins   []plugin.FeedbackPlugin
	Scale             *models.Scale
	ShowGradebook     bool
}

// Header renders the assignment name and, when allowed, its description.
func (c *Composer) Header(header Header) (template.HTML, error) {
	assignment := header.Assignment
	data := struct {
		Name    string
		SubPage string
		Intro   template.HTML
	}{Name: assignment.Name, SubPage: header.SubPage}

	if header.ShowIntro && (assignment.AlwaysShowDescription || assignment.SubmissionsOpen(c.now())) {
		data.Intro = template.HTML(textformat.ToHTML(assignment.Intro, models.TextFormatHTML))
	}
	return c.execute("header", data)
}

// UserSummary renders a link to the user's profile, or nothing without a user.
func (c *Composer) UserSummary(summary UserSummary) (template.HTML, error) {
	if summary.User == nil {
		return "", nil
	}
	return c.execute("user_summary", struct {
		URL  string
		Name string
	}{
		URL:  c.opts.Links.User(summary.User.ID, summary.CourseID),
		Name: summary.User.FullName(),
	})
}

func escaped(s string) template.HTML {
	return template.HTML(template.HTMLEscapeString(s))
}

// GradingTable renders the participant table followed by the navigation links.
func (c *Composer) GradingTable(ctx context.Context, table GradingTable) (template.HTML, error) {
	assignment := table.Assignment

	columns := []string{
		c.strings.Get("assign:participant"),
		c.strings.Get("assign:status"),
		c.strings.Get("assign:grade"),
		c.strings.Get("assign:lastmodified"),
	}
	var submissionPlugins []plugin.SubmissionPlugin
	for _, p := range table.SubmissionPlugins {
		if p.IsEnabled() && p.IsVisible() {
			submissionPlugins = append(submissionPlugins, p)
			columns = append(columns, p.Name())
		}
	}
	var feedbackPlugins []plugin.FeedbackPlugin
	for _, p := range table.FeedbackPlugins {
		if p.IsEnabled() && p.IsVisible() {
			feedbackPlugins = append(feedbackPlugins, p)
			columns = append(columns, p.Name())
		}
	}

	rows := make([][]template.HTML, 0, len(table.Rows))
	for _, r := range table.Rows {
		status := c.strings.Get("assign:submissionstatus_")
		modified := "-"
		if r.Submission != nil {
			status = c.strings.Get("assign:submissionstatus_" + r.Submission.Status)
			modified = c.userDate(r.Submission.TimeModified())
		}

		var gradeValue *float64
		if r.Grade != nil {
			gradeValue = r.Grade.Grade
		}

		name, err := c.UserSummary(UserSummary{User: &r.User, CourseID: assignment.CourseID})
		if err != nil {
			return "", err
		}
		cells := []template.HTML{
			name,
			escaped(status),
			escaped(c.FormatGrade(gradeValue, assignment, table.Scale)),
			escaped(modified),
		}

		for _, p := range submissionPlugins {
			if r.Submission == nil {
				cells = append(cells, "")
				continue
			}
			body, err := c.SubmissionPluginView(ctx, assignment, p, *r.Submission, Summary, "grading")
			if err != nil {
				return "", err
			}
			cells = append(cells, body)
		}
		for _, p := range feedbackPlugins {
			if r.Grade == nil {
				cells = append(cells, "")
				continue
			}
			body, err := c.FeedbackPluginView(ctx, assignment, p, *r.Grade, Summary, "grading")
			if err != nil {
				return "", err
			}
			cells = append(cells, body)
		}
		rows = append(rows, cells)
	}

	contextName := table.ContextName
	if contextName == "" {
		contextName = assignment.Name
	}

	data := struct {
		Columns     []string
		Rows        [][]template.HTML
		Back        button
		Gradebook   *button
		DownloadAll *button
	}{
		Columns: columns,
		Rows:    rows,
		Back:    button{URL: c.opts.Links.Assignment(assignment.ID, nil), Label: c.strings.Get("assign:backto", contextName)},
	}
	if table.ShowGradebook {
		data.Gradebook = &button{URL: c.opts.Links.Grades(assignment.ID), Label: c.strings.Get("assign:viewgradebook")}
	}
	if len(submissionPlugins) > 0 {
		data.DownloadAll = &button{URL: c.opts.Links.Action(assignment.ID, "downloadall"), Label: c.strings.Get("assign:downloadall")}
	}

	return c.execute("grading_table", data)
}

// BackLink renders a link back to one action of the assignment page. An empty
// action links to the main page.
func (c *Composer) BackLink(assignment models.Assignment, action string) (template.HTML, error) {
	link := c.opts.Links.Assignment(assignment.ID, nil)
	if action != "" && action != "view" {
		link = c.opts.Links.Action(assignment.ID, action)
	}
	return c.execute("back_link", button{URL: link, Label: c.strings.Get("assign:backto", assignment.Name)})
}

// Page joins rendered fragments into one page body, skipping empty ones.
func (c *Composer) Page(fragments ...template.HTML) (template.HTML, error) {
	parts := make([]template.HTML, 0, len(fragments))
	for _, f := range fragments {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return c.execute("page", parts)
}
