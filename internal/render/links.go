package render

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/noah-isme/gema-assign/internal/models"
)

// Links builds the URLs the rendered pages point to.
type Links struct {
	Base string
}

func (l Links) base() string {
	return strings.TrimRight(l.Base, "/")
}

// Assignment links to the assignment page; params become the query string.
func (l Links) Assignment(assignmentID uint, params url.Values) string {
	link := fmt.Sprintf("%s/assignments/%d/view", l.base(), assignmentID)
	if encoded := params.Encode(); encoded != "" {
		link += "?" + encoded
	}
	return link
}

// Action links to one action of the assignment page.
func (l Links) Action(assignmentID uint, action string) string {
	return l.Assignment(assignmentID, url.Values{"action": {action}})
}

// Grades links to the grade list of an assignment.
func (l Links) Grades(assignmentID uint) string {
	return fmt.Sprintf("%s/assignments/%d/grades", l.base(), assignmentID)
}

// User links to a user's profile inside a course.
func (l Links) User(userID, courseID uint) string {
	return fmt.Sprintf("%s/courses/%d/users/%d", l.base(), courseID, userID)
}

// Files links to the file tree of one user's area.
func (l Links) Files(assignmentID, userID uint, area string) string {
	return fmt.Sprintf("%s/assignments/%d/files/%d/%s", l.base(), assignmentID, userID, url.PathEscape(area))
}

// Plugin links to the full view of one plugin. Submission plugins are keyed by
// submission id (sid), feedback plugins by grade id (gid).
func (l Links) Plugin(assignmentID uint, subtype, plugin string, targetID uint, returnAction string) string {
	idParam := "sid"
	if subtype == models.PluginSubtypeFeedback {
		idParam = "gid"
	}
	params := url.Values{
		idParam:  {strconv.FormatUint(uint64(targetID), 10)},
		"plugin": {plugin},
		"action": {"viewplugin" + subtype},
	}
	if returnAction != "" {
		params.Set("returnaction", returnAction)
	}
	return l.Assignment(assignmentID, params)
}
