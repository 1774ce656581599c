package models

import (
	"strings"
	"time"
)

// User represents a grader or student account known to the assignment module.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FirstName string    `gorm:"size:100;not null" json:"first_name"`
	LastName  string    `gorm:"size:100;not null" json:"last_name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:32;not null;default:student" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins the first and last name of the user.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
