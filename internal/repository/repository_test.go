package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/gema-assign/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func TestPluginDescriptorRepositorySwapOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPluginDescriptorRepository(db)
	ctx := context.Background()

	first := models.PluginDescriptor{Subtype: models.PluginSubtypeFeedback, Plugin: "file", Name: "File feedback", SortOrder: 0}
	second := models.PluginDescriptor{Subtype: models.PluginSubtypeFeedback, Plugin: "comments", Name: "Feedback comments", SortOrder: 1}
	require.NoError(t, repo.Create(ctx, &first))
	require.NoError(t, repo.Create(ctx, &second))

	require.NoError(t, repo.SwapOrder(ctx, &first, &second))

	listed, err := repo.ListBySubtype(ctx, models.PluginSubtypeFeedback)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, "comments", listed[0].Plugin)
	require.Equal(t, "file", listed[1].Plugin)
}

func TestSubmissionRepositoryCountByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	course := models.Course{FullName: "Physics", ShortName: "PHY"}
	require.NoError(t, db.Create(&course).Error)
	assignment := models.Assignment{CourseID: course.ID, Name: "Lab 1"}
	require.NoError(t, NewAssignmentRepository(db).Create(ctx, &assignment))

	for i, status := range []string{models.SubmissionStatusDraft, models.SubmissionStatusSubmitted, models.SubmissionStatusSubmitted} {
		user := models.User{FirstName: "Student", LastName: string(rune('A' + i)), Email: uuid.NewString() + "@example.com"}
		require.NoError(t, db.Create(&user).Error)
		require.NoError(t, repo.Create(ctx, &models.Submission{AssignmentID: assignment.ID, UserID: user.ID, Status: status}))
	}

	submitted, err := repo.CountByStatus(ctx, assignment.ID, models.SubmissionStatusSubmitted)
	require.NoError(t, err)
	require.Equal(t, int64(2), submitted)

	drafts, err := repo.CountByStatus(ctx, assignment.ID, models.SubmissionStatusDraft)
	require.NoError(t, err)
	require.Equal(t, int64(1), drafts)
}

func TestFileRepositoryAreaIsolation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepository(db)
	ctx := context.Background()

	area := FileArea{ContextID: 3, Component: models.ComponentFeedbackFile, FileArea: models.FileAreaFeedbackFiles, ItemID: 7}
	other := FileArea{ContextID: 3, Component: models.ComponentFeedbackFile, FileArea: models.FileAreaFeedbackFiles, ItemID: 8}

	require.NoError(t, repo.Create(ctx, &models.StoredFile{ContextID: 3, Component: area.Component, FileArea: area.FileArea, ItemID: 7, FileName: "b.pdf"}))
	require.NoError(t, repo.Create(ctx, &models.StoredFile{ContextID: 3, Component: area.Component, FileArea: area.FileArea, ItemID: 7, FilePath: "/notes/", FileName: "a.txt"}))
	require.NoError(t, repo.Create(ctx, &models.StoredFile{ContextID: 3, Component: other.Component, FileArea: other.FileArea, ItemID: 8, FileName: "c.pdf"}))

	files, err := repo.ListArea(ctx, area)
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.Equal(t, "/", files[0].FilePath)

	require.NoError(t, repo.DeleteArea(ctx, area))
	count, err := repo.CountArea(ctx, area)
	require.NoError(t, err)
	require.Zero(t, count)

	count, err = repo.CountArea(ctx, other)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestStoreWithTxRollsBack(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	course := models.Course{FullName: "History", ShortName: "HIS"}
	require.NoError(t, db.Create(&course).Error)

	err := store.WithTx(ctx, func(tx *Store) error {
		due := time.Now().Add(time.Hour)
		if err := tx.Assignments.Create(ctx, &models.Assignment{CourseID: course.ID, Name: "Essay", DueDate: &due}); err != nil {
			return err
		}
		return gorm.ErrInvalidData
	})
	require.ErrorIs(t, err, gorm.ErrInvalidData)

	_, total, err := store.Assignments.List(ctx, AssignmentFilter{})
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestFileRepositoryCreateReplacesSameName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFileRepository(db)
	ctx := context.Background()

	area := FileArea{ContextID: 4, Component: models.ComponentSubmissionFile, FileArea: models.FileAreaSubmissionFiles, ItemID: 2}
	for _, url := range []string{"https://cdn.test/v1/report.png", "https://cdn.test/v2/report.png"} {
		require.NoError(t, repo.Create(ctx, &models.StoredFile{
			ContextID: area.ContextID, Component: area.Component, FileArea: area.FileArea, ItemID: area.ItemID,
			FileName: "report.png", URL: url,
		}))
	}

	files, err := repo.ListArea(ctx, area)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "https://cdn.test/v2/report.png", files[0].URL)

	exists, err := repo.Exists(ctx, area, "", "report.png")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.Exists(ctx, area, "/drafts", "report.png")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestPluginConfigSettingsSurviveRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPluginConfigRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.AssignmentPluginConfig{
		AssignmentID: 9,
		Subtype:      models.PluginSubtypeSubmission,
		Plugin:       "file",
		Enabled:      true,
		Settings:     map[string]interface{}{"maxfiles": 3, "maxbytes": 1048576},
	}))

	stored, err := repo.Get(ctx, 9, models.PluginSubtypeSubmission, "file")
	require.NoError(t, err)
	require.Equal(t, 3, stored.IntSetting("maxfiles", 20))
	require.Equal(t, 1048576, stored.IntSetting("maxbytes", 0))
	require.Equal(t, 7, stored.IntSetting("missing", 7))
}
