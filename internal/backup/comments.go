package backup

import (
	"context"

	"github.com/noah-isme/gema-assign/internal/models"
)

func registerComments(r *Restorer) {
	r.OnElement(PathComments, restoreComments)
}

func restoreComments(ctx context.Context, run *Run, el Element) error {
	gradeID, err := run.Mapping(MapGrade, el.Uint("grade"))
	if err != nil {
		return err
	}

	comment := models.FeedbackComment{
		AssignmentID:  run.NewParentID(),
		GradeID:       gradeID,
		CommentText:   el.String("commenttext"),
		CommentFormat: el.String("commentformat"),
	}
	if comment.CommentFormat == "" {
		comment.CommentFormat = models.TextFormatHTML
	}
	if err := run.Store().FeedbackComments.Create(ctx, &comment); err != nil {
		return err
	}
	run.SetMapping(MapComments, el.ID(), comment.ID)
	return nil
}
