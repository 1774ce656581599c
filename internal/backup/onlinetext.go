package backup

import (
	"context"

	"github.com/noah-isme/gema-assign/internal/models"
)

func registerOnlineText(r *Restorer) {
	r.OnElement(PathOnlineText, restoreOnlineText)
}

// restoreOnlineText points the row at the new assignment and submission, then
// registers the embedded files of the text for restore.
func restoreOnlineText(ctx context.Context, run *Run, el Element) error {
	submissionID, err := run.Mapping(MapSubmission, el.Uint("submission"))
	if err != nil {
		return err
	}

	text := models.OnlineTextSubmission{
		AssignmentID: run.NewParentID(),
		SubmissionID: submissionID,
		OnlineText:   el.String("onlinetext"),
		OnlineFormat: el.String("onlineformat"),
	}
	if text.OnlineFormat == "" {
		text.OnlineFormat = models.TextFormatHTML
	}
	if err := run.Store().OnlineTexts.Create(ctx, &text); err != nil {
		return err
	}

	run.SetMapping(MapOnlineText, el.ID(), text.ID)
	run.AddRelatedFiles(models.ComponentSubmissionOnlineText, models.FileAreaOnlineText, MapSubmission)
	return nil
}
