// Package backup exports an assignment as an XML activity document and restores
// such documents into a course, remapping every id through a mapping table.
package backup

import "encoding/xml"

// Component names and file areas of the backup document.
const (
	ModuleName = "assign"

	PathActivity     = "/activity"
	PathAssign       = "/activity/assign"
	PathPluginConfig = "/activity/assign/plugin_configs/plugin_config"
	PathSubmission   = "/activity/assign/submissions/submission"
	PathOnlineText   = PathSubmission + "/subplugin_assignsubmission_onlinetext_submission/submission_onlinetext"
	PathGrade        = "/activity/assign/grades/grade"
	PathComments     = PathGrade + "/subplugin_assignfeedback_comments_grade/feedback_comments"
	PathFile         = "/activity/files/file"
)

// Mapping names used in the restore mapping table.
const (
	MapAssign     = "assign"
	MapContext    = "context"
	MapSubmission = "submission"
	MapGrade      = "grade"
	MapOnlineText = "submission_onlinetext"
	MapComments   = "feedback_comments"
	MapFile       = "file"
)

type activityDoc struct {
	XMLName    xml.Name  `xml:"activity"`
	ID         uint      `xml:"id,attr"`
	ModuleName string    `xml:"modulename,attr"`
	ContextID  uint      `xml:"contextid,attr"`
	Assign     assignDoc `xml:"assign"`
	Files      []fileDoc `xml:"files>file"`
}

type assignDoc struct {
	ID                    uint              `xml:"id,attr"`
	Name                  string            `xml:"name"`
	Intro                 string            `xml:"intro"`
	AlwaysShowDescription int               `xml:"alwaysshowdescription"`
	AllowSubmissionsFrom  *int64            `xml:"allowsubmissionsfromdate,omitempty"`
	DueDate               *int64            `xml:"duedate,omitempty"`
	Grade                 int               `xml:"grade"`
	SubmissionDrafts      int               `xml:"submissiondrafts"`
	TimeModified          int64             `xml:"timemodified"`
	PluginConfigs         []pluginConfigDoc `xml:"plugin_configs>plugin_config"`
	Submissions           []submissionDoc   `xml:"submissions>submission"`
	Grades                []gradeDoc        `xml:"grades>grade"`
}

type pluginConfigDoc struct {
	ID      uint   `xml:"id,attr"`
	Plugin  string `xml:"plugin"`
	Subtype string `xml:"subtype"`
	Name    string `xml:"name"`
	Value   string `xml:"value"`
}

type submissionDoc struct {
	ID           uint           `xml:"id,attr"`
	UserID       uint           `xml:"userid"`
	Status       string         `xml:"status"`
	TimeCreated  int64          `xml:"timecreated"`
	TimeModified int64          `xml:"timemodified"`
	OnlineText   *onlineTextDoc `xml:"subplugin_assignsubmission_onlinetext_submission>submission_onlinetext,omitempty"`
}

type onlineTextDoc struct {
	ID           uint   `xml:"id,attr"`
	Assignment   uint   `xml:"assignment"`
	Submission   uint   `xml:"submission"`
	OnlineText   string `xml:"onlinetext"`
	OnlineFormat string `xml:"onlineformat"`
}

type gradeDoc struct {
	ID           uint         `xml:"id,attr"`
	UserID       uint         `xml:"userid"`
	Grader       *uint        `xml:"grader,omitempty"`
	Grade        *float64     `xml:"grade,omitempty"`
	Hidden       int          `xml:"hidden"`
	Locked       int          `xml:"locked"`
	TimeGraded   *int64       `xml:"timegraded,omitempty"`
	TimeCreated  int64        `xml:"timecreated"`
	TimeModified int64        `xml:"timemodified"`
	Comments     *commentsDoc `xml:"subplugin_assignfeedback_comments_grade>feedback_comments,omitempty"`
}

type commentsDoc struct {
	ID            uint   `xml:"id,attr"`
	Assignment    uint   `xml:"assignment"`
	Grade         uint   `xml:"grade"`
	CommentText   string `xml:"commenttext"`
	CommentFormat string `xml:"commentformat"`
}

type fileDoc struct {
	ID          uint   `xml:"id,attr"`
	ContextID   uint   `xml:"contextid"`
	Component   string `xml:"component"`
	FileArea    string `xml:"filearea"`
	ItemID      uint   `xml:"itemid"`
	UserID      uint   `xml:"userid"`
	FilePath    string `xml:"filepath"`
	FileName    string `xml:"filename"`
	URL         string `xml:"url"`
	MimeType    string `xml:"mimetype"`
	FileSize    int64  `xml:"filesize"`
	ContentHash string `xml:"contenthash"`
	TimeCreated int64  `xml:"timecreated"`
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
