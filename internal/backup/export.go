package backup

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/repository"
)

// Exporter writes the backup document of one assignment.
type Exporter struct {
	store *repository.Store
}

// NewExporter builds an exporter reading from store.
func NewExporter(store *repository.Store) *Exporter {
	return &Exporter{store: store}
}

// Export writes the activity document of assignmentID to w.
func (e *Exporter) Export(ctx context.Context, assignmentID uint, w io.Writer) error {
	doc, err := e.document(ctx, assignmentID)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return enc.Flush()
}

func (e *Exporter) document(ctx context.Context, assignmentID uint) (activityDoc, error) {
	assignment, err := e.store.Assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return activityDoc{}, err
	}

	assign := assignDoc{
		ID:                    assignment.ID,
		Name:                  assignment.Name,
		Intro:                 assignment.Intro,
		AlwaysShowDescription: boolInt(assignment.AlwaysShowDescription),
		AllowSubmissionsFrom:  unixPtr(assignment.AllowSubmissionsFrom),
		DueDate:               unixPtr(assignment.DueDate),
		Grade:                 assignment.Grade,
		SubmissionDrafts:      boolInt(assignment.SubmissionDrafts),
		TimeModified:          assignment.UpdatedAt.Unix(),
	}

	configs, err := e.store.PluginConfigs.ListByAssignment(ctx, assignment.ID)
	if err != nil {
		return activityDoc{}, err
	}
	for _, cfg := range configs {
		assign.PluginConfigs = append(assign.PluginConfigs, configRows(cfg)...)
	}

	if assign.Submissions, err = e.submissions(ctx, assignment.ID); err != nil {
		return activityDoc{}, err
	}
	if assign.Grades, err = e.grades(ctx, assignment.ID); err != nil {
		return activityDoc{}, err
	}

	files, err := e.store.Files.ListByContext(ctx, assignment.ID)
	if err != nil {
		return activityDoc{}, err
	}
	fileDocs := make([]fileDoc, 0, len(files))
	for _, f := range files {
		fileDocs = append(fileDocs, fileDoc{
			ID:          f.ID,
			ContextID:   f.ContextID,
			Component:   f.Component,
			FileArea:    f.FileArea,
			ItemID:      f.ItemID,
			UserID:      f.UserID,
			FilePath:    f.FilePath,
			FileName:    f.FileName,
			URL:         f.URL,
			MimeType:    f.MimeType,
			FileSize:    f.SizeBytes,
			ContentHash: f.Checksum,
			TimeCreated: f.CreatedAt.Unix(),
		})
	}

	return activityDoc{
		ID:         assignment.ID,
		ModuleName: ModuleName,
		ContextID:  assignment.ID,
		Assign:     assign,
		Files:      fileDocs,
	}, nil
}

func (e *Exporter) submissions(ctx context.Context, assignmentID uint) ([]submissionDoc, error) {
	submissions, err := e.store.Submissions.List(ctx, repository.SubmissionFilter{AssignmentID: &assignmentID})
	if err != nil {
		return nil, err
	}
	texts, err := e.store.OnlineTexts.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	bySubmission := make(map[uint]models.OnlineTextSubmission, len(texts))
	for _, t := range texts {
		bySubmission[t.SubmissionID] = t
	}

	out := make([]submissionDoc, 0, len(submissions))
	for _, s := range submissions {
		doc := submissionDoc{
			ID:           s.ID,
			UserID:       s.UserID,
			Status:       s.Status,
			TimeCreated:  s.CreatedAt.Unix(),
			TimeModified: s.UpdatedAt.Unix(),
		}
		if t, ok := bySubmission[s.ID]; ok {
			doc.OnlineText = &onlineTextDoc{
				ID:           t.ID,
				Assignment:   assignmentID,
				Submission:   s.ID,
				OnlineText:   t.OnlineText,
				OnlineFormat: t.OnlineFormat,
			}
		}
		out = append(out, doc)
	}
	return out, nil
}

func (e *Exporter) grades(ctx context.Context, assignmentID uint) ([]gradeDoc, error) {
	grades, err := e.store.Grades.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	comments, err := e.store.FeedbackComments.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	byGrade := make(map[uint]models.FeedbackComment, len(comments))
	for _, c := range comments {
		byGrade[c.GradeID] = c
	}

	out := make([]gradeDoc, 0, len(grades))
	for _, g := range grades {
		doc := gradeDoc{
			ID:           g.ID,
			UserID:       g.UserID,
			Grader:       g.GraderID,
			Grade:        g.Grade,
			Hidden:       boolInt(g.Hidden),
			Locked:       boolInt(g.Locked),
			TimeGraded:   unixPtr(g.GradedAt),
			TimeCreated:  g.CreatedAt.Unix(),
			TimeModified: g.UpdatedAt.Unix(),
		}
		if c, ok := byGrade[g.ID]; ok {
			doc.Comments = &commentsDoc{
				ID:            c.ID,
				Assignment:    assignmentID,
				Grade:         g.ID,
				CommentText:   c.CommentText,
				CommentFormat: c.CommentFormat,
			}
		}
		out = append(out, doc)
	}
	return out, nil
}

// configRows flattens a plugin config into name/value rows, "enabled" first.
func configRows(cfg models.AssignmentPluginConfig) []pluginConfigDoc {
	rows := []pluginConfigDoc{{
		ID:      cfg.ID,
		Plugin:  cfg.Plugin,
		Subtype: cfg.Subtype,
		Name:    "enabled",
		Value:   strconv.Itoa(boolInt(cfg.Enabled)),
	}}

	keys := make([]string, 0, len(cfg.Settings))
	for k := range cfg.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rows = append(rows, pluginConfigDoc{
			ID:      cfg.ID,
			Plugin:  cfg.Plugin,
			Subtype: cfg.Subtype,
			Name:    k,
			Value:   fmt.Sprint(cfg.Settings[k]),
		})
	}
	return rows
}

func unixPtr(t *time.Time) *int64 {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Unix()
	return &v
}
