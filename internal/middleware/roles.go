package middleware

import (
	"fmt"
	"strings"

	"github.com/noah-isme/gema-assign/internal/models"
)

// archetypes maps course role archetypes carried by upstream identity
// providers onto the three roles the assignment API distinguishes.
var archetypes = map[string]string{
	"student":        models.RoleStudent,
	"teacher":        models.RoleTeacher,
	"editingteacher": models.RoleTeacher,
	"grader":         models.RoleTeacher,
	"manager":        models.RoleAdmin,
	"coursecreator":  models.RoleAdmin,
	"admin":          models.RoleAdmin,
}

var roleRank = map[string]int{
	models.RoleStudent: 1,
	models.RoleTeacher: 2,
	models.RoleAdmin:   3,
}

func canonicalRole(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if role, ok := archetypes[value]; ok {
		return role
	}
	return value
}

// highestRole picks the most privileged known role from a claim list.
func highestRole(values []string) string {
	best := ""
	for _, value := range values {
		role := canonicalRole(value)
		if role == "" {
			continue
		}
		if best == "" || roleRank[role] > roleRank[best] {
			best = role
		}
	}
	return best
}

// roleAllowed reports whether current satisfies want. The grader alias
// accepts teachers and admins.
func roleAllowed(current, want string) bool {
	if current == "" {
		return false
	}
	if want == AuthRoleGrader {
		return current == models.RoleTeacher || current == models.RoleAdmin
	}
	return current == canonicalRole(want)
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return canonicalRole(v)
	case fmt.Stringer:
		return canonicalRole(v.String())
	default:
		return canonicalRole(fmt.Sprintf("%v", value))
	}
}
