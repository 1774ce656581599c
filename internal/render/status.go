package render

import (
	"context"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/plugin"
)

// View selects who the submission status is rendered for.
type View int

const (
	StudentView View = iota
	GraderView
)

// Mode selects between the summary and full rendering of a plugin.
type Mode int

const (
	Summary Mode = iota
	Full
)

// SubmissionStatus is everything needed to render one user's submission status.
type SubmissionStatus struct {
	Assignment models.Assignment
	// Submission is nil when the user has not started one.
	Submission *models.Submission
	Plugins    []plugin.SubmissionPlugin
	View       View
	Locked     bool
	Graded     bool
	CanEdit    bool
	// ReturnAction is the page plugin view links return to.
	ReturnAction string
}

// FeedbackStatus is the grade and feedback of one user.
type FeedbackStatus struct {
	Assignment models.Assignment
	// Grade is nil when the user has not been graded.
	Grade   *models.Grade
	Grader  *models.User
	Scale   *models.Scale
	Plugins []plugin.FeedbackPlugin
}

// GradingSummary holds the counters shown to graders.
type GradingSummary struct {
	Assignment   models.Assignment
	Participants int64
	Drafts       int64
	Submitted    int64
}

// AnyEnabled reports whether at least one plugin is enabled and visible.
func AnyEnabled[T any](plugins []plugin.Plugin[T]) bool {
	for _, p := range plugins {
		if p.IsEnabled() && p.IsVisible() {
			return true
		}
	}
	return false
}

// TimeRemaining describes how the current time relates to the due date. It
// returns the text and a row class, and an empty text when there is no due date.
func (c *Composer) TimeRemaining(assignment models.Assignment, submission *models.Submission) (string, string) {
	if !assignment.HasDueDate() {
		return "", ""
	}
	due := *assignment.DueDate
	remaining := due.Sub(c.now())

	switch {
	case remaining > 0:
		return c.strings.FormatDuration(remaining), ""
	case submission == nil || !submission.IsSubmitted():
		return c.strings.Get("assign:overdue", c.strings.FormatDuration(remaining)), "overdue"
	case submission.TimeModified().After(due):
		return c.strings.Get("assign:submittedlate", c.strings.FormatDuration(submission.TimeModified().Sub(due))), "latesubmission"
	default:
		return c.strings.Get("assign:submittedearly", c.strings.FormatDuration(submission.TimeModified().Sub(due))), "submittedearly"
	}
}

// SubmissionStatus renders the submission status table.
func (c *Composer) SubmissionStatus(ctx context.Context, status SubmissionStatus) (template.HTML, error) {
	assignment := status.Assignment
	now := c.now()

	data := struct {
		Heading              string
		NoSubmissionRequired string
		AllowedFrom          string
		Rows                 []row
		Edit                 *button
		Submit               *button
		SubmitHelp           string
	}{Heading: c.strings.Get("assign:submissionstatusheading")}

	if status.View == StudentView && !AnyEnabled(status.Plugins) {
		data.NoSubmissionRequired = c.strings.Get("assign:noonlinesubmissions")
	}
	if from := assignment.AllowSubmissionsFrom; from != nil && !from.IsZero() && !now.After(*from) {
		data.AllowedFrom = c.strings.Get("assign:allowsubmissionsfromdatesummary", c.strings.UserDate(*from))
	}

	if status.Submission != nil {
		data.Rows = append(data.Rows, textRow(c.strings.Get("assign:submissionstatus"), c.strings.Get("assign:submissionstatus_"+status.Submission.Status)))
	} else {
		data.Rows = append(data.Rows, row{
			Label: c.strings.Get("assign:submissionstatus"),
			Value: template.HTML(template.HTMLEscapeString(c.strings.Get("assign:nosubmission"))),
			Class: "nosubmission",
		})
	}

	if status.Locked {
		data.Rows = append(data.Rows, textRow("", c.strings.Get("assign:submissionslocked")))
	}

	gradingStatus := c.strings.Get("assign:notgraded")
	if status.Graded {
		gradingStatus = c.strings.Get("assign:graded")
	}
	data.Rows = append(data.Rows, textRow(c.strings.Get("assign:gradingstatus"), gradingStatus))

	if assignment.HasDueDate() {
		data.Rows = append(data.Rows, textRow(c.strings.Get("assign:duedate"), c.strings.UserDate(*assignment.DueDate)))
		remaining, class := c.TimeRemaining(assignment, status.Submission)
		r := textRow(c.strings.Get("assign:timeremaining"), remaining)
		r.Class = class
		data.Rows = append(data.Rows, r)
	}

	if status.Submission != nil {
		data.Rows = append(data.Rows, textRow(c.strings.Get("assign:timemodified"), c.strings.UserDate(status.Submission.TimeModified())))

		for _, p := range status.Plugins {
			if !p.IsEnabled() || !p.IsVisible() {
				continue
			}
			body, err := c.SubmissionPluginView(ctx, assignment, p, *status.Submission, Summary, status.ReturnAction)
			if err != nil {
				return "", err
			}
			data.Rows = append(data.Rows, row{Label: p.Name(), Value: body})
		}
	}

	if status.CanEdit {
		data.Edit = &button{URL: c.opts.Links.Action(assignment.ID, "editsubmission"), Label: c.strings.Get("assign:editsubmission")}
	}
	if status.Submission != nil && status.Submission.Status == models.SubmissionStatusDraft {
		data.Submit = &button{URL: c.opts.Links.Action(assignment.ID, "submit"), Label: c.strings.Get("assign:submitassignment")}
		data.SubmitHelp = c.strings.Get("assign:submitassignment_help")
	}

	return c.execute("submission_status", data)
}

// FeedbackStatus renders the grade and feedback table. It returns the empty string
// when there is nothing the user may see yet.
func (c *Composer) FeedbackStatus(ctx context.Context, status FeedbackStatus) (template.HTML, error) {
	grade := status.Grade
	if grade == nil || grade.Hidden {
		return "", nil
	}

	var (
		pluginRows  []row
		hasFeedback bool
	)
	for _, p := range status.Plugins {
		if !p.IsEnabled() || !p.IsVisible() {
			continue
		}
		body, err := c.FeedbackPluginView(ctx, status.Assignment, p, *grade, Summary, "")
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(string(body)) != "" {
			hasFeedback = true
		}
		pluginRows = append(pluginRows, row{Label: p.Name(), Value: body})
	}

	if !grade.IsGraded() && !hasFeedback {
		return "", nil
	}

	gradedOn := grade.UpdatedAt
	if grade.GradedAt != nil {
		gradedOn = *grade.GradedAt
	}

	rows := []row{
		textRow(c.strings.Get("assign:grade"), c.FormatGrade(grade.Grade, status.Assignment, status.Scale)),
		textRow(c.strings.Get("assign:gradedon"), c.strings.UserDate(gradedOn)),
	}
	if status.Grader != nil {
		rows = append(rows, textRow(c.strings.Get("assign:gradedby"), status.Grader.FullName()))
	}
	rows = append(rows, pluginRows...)

	return c.execute("feedback_status", struct {
		Heading string
		Rows    []row
	}{Heading: c.strings.Get("assign:feedback"), Rows: rows})
}

// GradingSummary renders the grader overview of an assignment.
func (c *Composer) GradingSummary(_ context.Context, summary GradingSummary) (template.HTML, error) {
	assignment := summary.Assignment
	rows := []row{textRow(c.strings.Get("assign:numberofparticipants"), strconv.FormatInt(summary.Participants, 10))}
	if assignment.SubmissionDrafts {
		rows = append(rows, textRow(c.strings.Get("assign:numberofdraftsubmissions"), strconv.FormatInt(summary.Drafts, 10)))
	}
	rows = append(rows, textRow(c.strings.Get("assign:numberofsubmittedassignments"), strconv.FormatInt(summary.Submitted, 10)))

	if assignment.HasDueDate() {
		due := *assignment.DueDate
		rows = append(rows, textRow(c.strings.Get("assign:duedate"), c.strings.UserDate(due)))

		remaining := c.strings.Get("assign:assignmentisdue")
		if left := due.Sub(c.now()); left > 0 {
			remaining = c.strings.FormatDuration(left)
		}
		rows = append(rows, textRow(c.strings.Get("assign:timeremaining"), remaining))
	}

	return c.execute("grading_summary", struct {
		Heading string
		Rows    []row
		Grading button
	}{
		Heading: c.strings.Get("assign:gradingsummary"),
		Rows:    rows,
		Grading: button{URL: c.opts.Links.Action(assignment.ID, "grading"), Label: c.strings.Get("assign:viewgrading")},
	})
}

// SubmissionPluginView renders a submission plugin in summary or full mode.
func (c *Composer) SubmissionPluginView(ctx context.Context, assignment models.Assignment, p plugin.SubmissionPlugin, submission models.Submission, mode Mode, returnAction string) (template.HTML, error) {
	return pluginView(ctx, c, assignment, p, submission, submission.ID, "submissionfull", mode, returnAction)
}

// FeedbackPluginView renders a feedback plugin in summary or full mode.
func (c *Composer) FeedbackPluginView(ctx context.Context, assignment models.Assignment, p plugin.FeedbackPlugin, grade models.Grade, mode Mode, returnAction string) (template.HTML, error) {
	return pluginView(ctx, c, assignment, p, grade, grade.ID, "feedbackfull", mode, returnAction)
}

func pluginView[T any](ctx context.Context, c *Composer, assignment models.Assignment, p plugin.Plugin[T], target T, targetID uint, fullClass string, mode Mode, returnAction string) (template.HTML, error) {
	if mode == Full {
		body, err := p.View(ctx, target)
		if err != nil {
			return "", err
		}
		return c.execute("plugin_full", struct {
			Class string
			Body  template.HTML
		}{Class: fullClass, Body: body})
	}

	body, err := p.ViewSummary(ctx, target)
	if err != nil {
		return "", err
	}

	data := struct {
		Link      string
		LinkLabel string
		Icon      string
		Body      template.HTML
	}{Body: body, Icon: c.opts.PreviewIcon}

	if p.ShowViewLink(ctx, target) {
		data.Link = c.opts.Links.Plugin(assignment.ID, p.Subtype(), p.Type(), targetID, returnAction)
		data.LinkLabel = c.strings.Get("assign:view" + strings.TrimPrefix(p.Subtype(), "assign"))
	}

	return c.execute("plugin_summary", data)
}

func (c *Composer) userDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return c.strings.UserDate(t)
}
