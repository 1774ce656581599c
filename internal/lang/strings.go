package lang

var english = map[string]string{
	// assign
	"assign:pluginname":                      "Assignment",
	"assign:allowsubmissionsfromdatesummary": "This assignment will accept submissions from {0}",
	"assign:assignmentisdue":                 "Assignment is due",
	"assign:backto":                          "Back to {0}",
	"assign:batchuploadfilesforusers":        "Batch upload files for {0} user(s)",
	"assign:downloadall":                     "Download all submissions",
	"assign:duedate":                         "Due date",
	"assign:editsubmission":                  "Edit my submission",
	"assign:feedback":                        "Feedback",
	"assign:grade":                           "Grade",
	"assign:graded":                          "Graded",
	"assign:gradedby":                        "Graded by",
	"assign:gradedon":                        "Graded on",
	"assign:gradingstatus":                   "Grading status",
	"assign:gradingsummary":                  "Grading summary",
	"assign:lastmodified":                    "Last modified",
	"assign:nosubmission":                    "Nothing has been submitted for this assignment",
	"assign:noonlinesubmissions":             "This assignment does not require you to submit anything online",
	"assign:notgraded":                       "Not graded",
	"assign:numberofdraftsubmissions":        "Drafts",
	"assign:numberofparticipants":            "Participants",
	"assign:numberofsubmittedassignments":    "Submitted",
	"assign:overdue":                         "Assignment is overdue by: {0}",
	"assign:selectedusers":                   "Selected users",
	"assign:submission":                      "Submission",
	"assign:submissionslocked":               "This assignment is not accepting submissions",
	"assign:submissionstatus":                "Submission status",
	"assign:submissionstatus_":               "No attempt",
	"assign:submissionstatus_draft":          "Draft (not submitted)",
	"assign:submissionstatus_submitted":      "Submitted for grading",
	"assign:submissionstatusheading":         "Submission status",
	"assign:submittedearly":                  "Assignment was submitted {0} early",
	"assign:submittedlate":                   "Assignment was submitted {0} late",
	"assign:submitassignment":                "Submit assignment",
	"assign:submitassignment_help":           "Once this assignment is submitted you will not be able to make any more changes",
	"assign:timemodified":                    "Last modified",
	"assign:timeremaining":                   "Time remaining",
	"assign:uploadfiles":                     "Upload files",
	"assign:viewfeedback":                    "View feedback",
	"assign:viewgradebook":                   "View gradebook",
	"assign:viewgrading":                     "View/grade all submissions",
	"assign:viewsubmission":                  "View submission",
	"assign:participant":                     "Participant",
	"assign:status":                          "Status",

	// assignsubmission_file
	"assignsubmission_file:allowfilesubmissions":  "Enabled",
	"assignsubmission_file:configmaxbytes":        "Maximum file size",
	"assignsubmission_file:file":                  "File submissions",
	"assignsubmission_file:maxbytes":              "Maximum file size",
	"assignsubmission_file:maxfilessubmission":    "Maximum number of uploaded files",
	"assignsubmission_file:maximumsubmissionsize": "Maximum submission size",
	"assignsubmission_file:pluginname":            "File submissions",
	"assignsubmission_file:submissionfilearea":    "Uploaded submission files",
	"assignsubmission_file:countfiles":            "{0} files",

	// assignsubmission_onlinetext
	"assignsubmission_onlinetext:pluginname":   "Online text",
	"assignsubmission_onlinetext:nosubmission": "No online text",

	// assignfeedback_comments
	"assignfeedback_comments:pluginname": "Feedback comments",

	// assignfeedback_file
	"assignfeedback_file:pluginname":               "File feedback",
	"assignfeedback_file:batchuploadfilesforusers": "Batch upload feedback files for {0} user(s)",
	"assignfeedback_file:selectedusers":            "Selected users",
	"assignfeedback_file:uploadfiles":              "Upload feedback files",
	"assignfeedback_file:countfiles":               "{0} files",

	// durations
	"time:year":  "year",
	"time:years": "years",
	"time:day":   "day",
	"time:days":  "days",
	"time:hour":  "hour",
	"time:hours": "hours",
	"time:min":   "min",
	"time:mins":  "mins",
	"time:sec":   "sec",
	"time:secs":  "secs",
	"time:now":   "now",
}
