// Package testsupport holds database fixtures shared by package tests.
package testsupport

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/gema-assign/internal/models"
)

// NewDB opens an isolated in-memory sqlite database with every model migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// Fixture is a course with one teacher, two students and an assignment.
type Fixture struct {
	Course     models.Course
	Teacher    models.User
	Students   []models.User
	Assignment models.Assignment
}

// Seed creates a Fixture. The assignment is due one week after now.
func Seed(t *testing.T, db *gorm.DB, now time.Time) Fixture {
	t.Helper()

	course := models.Course{FullName: "Physics 101", ShortName: "PHY101", MaxBytes: 10 << 20}
	require.NoError(t, db.Create(&course).Error)

	teacher := models.User{FirstName: "Grace", LastName: "Hopper", Email: uuid.NewString() + "@example.com", Role: models.RoleTeacher}
	require.NoError(t, db.Create(&teacher).Error)
	require.NoError(t, db.Create(&models.Enrolment{CourseID: course.ID, UserID: teacher.ID, Role: models.RoleTeacher}).Error)

	students := []models.User{
		{FirstName: "Ada", LastName: "Lovelace", Email: uuid.NewString() + "@example.com", Role: models.RoleStudent},
		{FirstName: "Alan", LastName: "Turing", Email: uuid.NewString() + "@example.com", Role: models.RoleStudent},
	}
	for i := range students {
		require.NoError(t, db.Create(&students[i]).Error)
		require.NoError(t, db.Create(&models.Enrolment{CourseID: course.ID, UserID: students[i].ID, Role: models.RoleStudent}).Error)
	}

	due := now.Add(7 * 24 * time.Hour)
	assignment := models.Assignment{
		CourseID:              course.ID,
		Name:                  "Lab report",
		Intro:                 "Describe the pendulum experiment.",
		AlwaysShowDescription: true,
		DueDate:               &due,
		Grade:                 100,
		SubmissionDrafts:      true,
	}
	require.NoError(t, db.Create(&assignment).Error)

	return Fixture{Course: course, Teacher: teacher, Students: students, Assignment: assignment}
}

// EnablePlugins turns the given plugins of subtype on for the assignment.
func EnablePlugins(t *testing.T, db *gorm.DB, assignmentID uint, subtype string, plugins ...string) {
	t.Helper()
	for _, name := range plugins {
		cfg := models.AssignmentPluginConfig{AssignmentID: assignmentID, Subtype: subtype, Plugin: name, Enabled: true}
		require.NoError(t, db.Create(&cfg).Error)
	}
}
