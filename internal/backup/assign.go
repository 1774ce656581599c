package backup

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/repository"
)

func registerAssign(r *Restorer) {
	r.OnElement(PathActivity, restoreActivity)
	r.OnElement(PathAssign, restoreAssign)
	r.OnElement(PathPluginConfig, restorePluginConfig)
	r.OnElement(PathSubmission, restoreSubmission)
	r.OnElement(PathGrade, restoreGrade)
	r.OnElement(PathFile, collectFile)
	r.After(restoreFiles)
}

func restoreActivity(_ context.Context, run *Run, el Element) error {
	if name := el.String("modulename"); name != "" && name != ModuleName {
		return fmt.Errorf("%w: module %q", ErrInvalidBackup, name)
	}
	run.oldContextID = el.Uint("contextid")
	return nil
}

func restoreAssign(ctx context.Context, run *Run, el Element) error {
	if run.NewParentID() != 0 {
		return fmt.Errorf("%w: more than one assign element", ErrInvalidBackup)
	}
	store := run.Store()
	if _, err := store.Courses.GetByID(ctx, run.CourseID()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: course %d", ErrUnmappedReference, run.CourseID())
		}
		return err
	}

	assignment := models.Assignment{
		CourseID:              run.CourseID(),
		Name:                  el.String("name"),
		Intro:                 el.String("intro"),
		AlwaysShowDescription: el.Bool("alwaysshowdescription"),
		AllowSubmissionsFrom:  el.Time("allowsubmissionsfromdate"),
		DueDate:               el.Time("duedate"),
		Grade:                 el.Int("grade"),
		SubmissionDrafts:      el.Bool("submissiondrafts"),
	}
	if strings.TrimSpace(assignment.Name) == "" {
		return fmt.Errorf("%w: assignment without a name", ErrInvalidBackup)
	}
	if err := store.Assignments.Create(ctx, &assignment); err != nil {
		return err
	}

	run.parentID = assignment.ID
	run.SetMapping(MapAssign, el.ID(), assignment.ID)
	if run.oldContextID != 0 {
		run.SetMapping(MapContext, run.oldContextID, assignment.ID)
	}
	return nil
}

func restorePluginConfig(ctx context.Context, run *Run, el Element) error {
	store := run.Store()
	subtype := el.String("subtype")
	name := el.String("plugin")

	cfg, err := store.PluginConfigs.Get(ctx, run.NewParentID(), subtype, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	cfg.AssignmentID = run.NewParentID()
	cfg.Subtype = subtype
	cfg.Plugin = name

	if key := el.String("name"); key == "enabled" {
		cfg.Enabled = el.Bool("value")
	} else {
		if cfg.Settings == nil {
			cfg.Settings = datatypes.JSONMap{}
		}
		cfg.Settings[key] = settingValue(el.String("value"))
	}
	return store.PluginConfigs.Upsert(ctx, &cfg)
}

func settingValue(raw string) any {
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	return raw
}

func restoreSubmission(ctx context.Context, run *Run, el Element) error {
	submission := models.Submission{
		AssignmentID: run.NewParentID(),
		UserID:       el.Uint("userid"),
		Status:       el.String("status"),
	}
	if t := el.Time("timecreated"); t != nil {
		submission.CreatedAt = *t
	}
	if t := el.Time("timemodified"); t != nil {
		submission.UpdatedAt = *t
	}
	if err := checkUser(ctx, run.Store(), submission.UserID); err != nil {
		return err
	}
	if err := run.Store().Submissions.Create(ctx, &submission); err != nil {
		return err
	}

	run.SetMapping(MapSubmission, el.ID(), submission.ID)
	run.AddRelatedFiles(models.ComponentSubmissionFile, models.FileAreaSubmissionFiles, MapSubmission)
	return nil
}

func restoreGrade(ctx context.Context, run *Run, el Element) error {
	grade := models.Grade{
		AssignmentID: run.NewParentID(),
		UserID:       el.Uint("userid"),
		Grade:        el.Float("grade"),
		Hidden:       el.Bool("hidden"),
		Locked:       el.Bool("locked"),
		GradedAt:     el.Time("timegraded"),
	}
	if el.Has("grader") {
		grader := el.Uint("grader")
		grade.GraderID = &grader
	}
	if t := el.Time("timecreated"); t != nil {
		grade.CreatedAt = *t
	}
	if t := el.Time("timemodified"); t != nil {
		grade.UpdatedAt = *t
	}
	if err := checkUser(ctx, run.Store(), grade.UserID); err != nil {
		return err
	}
	if err := run.Store().Grades.Create(ctx, &grade); err != nil {
		return err
	}

	run.SetMapping(MapGrade, el.ID(), grade.ID)
	run.AddRelatedFiles(models.ComponentFeedbackFile, models.FileAreaFeedbackFiles, MapGrade)
	return nil
}

func collectFile(_ context.Context, run *Run, el Element) error {
	run.files = append(run.files, el)
	return nil
}

// restoreFiles recreates the files of every registered component and area, moving
// them to the new context and item ids. Files of other areas are skipped.
func restoreFiles(ctx context.Context, run *Run) error {
	restored := 0
	for _, el := range run.files {
		rel, ok := run.relatedFor(el.String("component"), el.String("filearea"))
		if !ok {
			continue
		}
		contextID, err := run.Mapping(MapContext, el.Uint("contextid"))
		if err != nil {
			return err
		}
		itemID, err := run.Mapping(rel.mapping, el.Uint("itemid"))
		if err != nil {
			return err
		}

		file := models.StoredFile{
			ContextID: contextID,
			Component: rel.component,
			FileArea:  rel.area,
			ItemID:    itemID,
			UserID:    el.Uint("userid"),
			FilePath:  el.String("filepath"),
			FileName:  el.String("filename"),
			URL:       el.String("url"),
			MimeType:  el.String("mimetype"),
			Checksum:  el.String("contenthash"),
		}
		if size, err := strconv.ParseInt(el.String("filesize"), 10, 64); err == nil {
			file.SizeBytes = size
		}
		if err := run.Store().Files.Create(ctx, &file); err != nil {
			return err
		}
		run.SetMapping(MapFile, el.ID(), file.ID)
		restored++
	}

	if skipped := len(run.files) - restored; skipped > 0 {
		run.logger.Debug().Int("skipped", skipped).Msg("backup files without a restore area skipped")
	}
	return nil
}

func (r *Run) relatedFor(component, area string) (relatedFiles, bool) {
	for _, rel := range r.related {
		if rel.component == component && rel.area == area {
			return rel, true
		}
	}
	return relatedFiles{}, false
}

// checkUser requires the referenced user to exist; user ids are site-wide and are
// not remapped.
func checkUser(ctx context.Context, store *repository.Store, userID uint) error {
	if _, err := store.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d", ErrUnmappedReference, userID)
		}
		return err
	}
	return nil
}
