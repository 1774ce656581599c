package service

import (
	"strings"

	"github.com/noah-isme/gema-assign/internal/models"
)

// Viewer is the authenticated caller of a use case.
type Viewer struct {
	UserID uint
	Role   string
}

// IsGrader reports whether the viewer may grade and see every participant.
func (v Viewer) IsGrader() bool {
	switch strings.ToLower(v.Role) {
	case models.RoleTeacher, models.RoleAdmin:
		return true
	default:
		return false
	}
}

// IsAdmin reports whether the viewer administers the site.
func (v Viewer) IsAdmin() bool {
	return strings.EqualFold(v.Role, models.RoleAdmin)
}

// CanSee reports whether the viewer may look at userID's work.
func (v Viewer) CanSee(userID uint) bool {
	return v.IsGrader() || v.UserID == userID
}
