package models

import "time"

// Course owns assignments and carries the course-wide upload limit.
type Course struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FullName  string    `gorm:"size:255;not null" json:"full_name"`
	ShortName string    `gorm:"size:100;not null" json:"short_name"`
	MaxBytes  int64     `gorm:"not null;default:0" json:"max_bytes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Enrolment links a user to a course with the role they hold there.
type Enrolment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_enrolment_course_user" json:"course_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_enrolment_course_user" json:"user_id"`
	Role      string    `gorm:"size:32;not null;default:student" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// Course roles.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)
