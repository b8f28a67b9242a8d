package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"scholarmate-backend/internal/database"
)

func createDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.GetMigrator(db).Migrate())
	return db
}

func createAnalysis(t *testing.T, db *gorm.DB) uuid.UUID {
	id := uuid.New()
	require.NoError(t, db.Create(&database.Analysis{
		Id:           id,
		FileName:     "paper.pdf",
		Status:       database.AnalysisQueued,
		CreationTime: time.Now().UTC(),
	}).Error)
	return id
}

func TestUpdateAnalysisStatus(t *testing.T) {
	db := createDB(t)
	id := createAnalysis(t, db)
	ctx := context.Background()

	require.NoError(t, database.UpdateAnalysisStatus(ctx, db, id, database.AnalysisRunning))

	var analysis database.Analysis
	require.NoError(t, db.First(&analysis, "id = ?", id).Error)
	assert.Equal(t, database.AnalysisRunning, analysis.Status)
	assert.False(t, analysis.CompletionTime.Valid)

	require.NoError(t, database.UpdateAnalysisStatus(ctx, db, id, database.AnalysisCompleted))
	require.NoError(t, db.First(&analysis, "id = ?", id).Error)
	assert.True(t, analysis.CompletionTime.Valid)
}

func TestSaveAnalysisResults(t *testing.T) {
	db := createDB(t)
	id := createAnalysis(t, db)

	require.NoError(t, database.SaveAnalysisResults(context.Background(), db, id, []byte(`{"summary":"s"}`)))

	var analysis database.Analysis
	require.NoError(t, db.First(&analysis, "id = ?", id).Error)
	assert.Equal(t, database.AnalysisCompleted, analysis.Status)
	assert.JSONEq(t, `{"summary":"s"}`, string(analysis.Results))
	assert.True(t, analysis.CompletionTime.Valid)
}

func TestSaveAnalysisError(t *testing.T) {
	db := createDB(t)
	id := createAnalysis(t, db)

	require.NoError(t, database.SaveAnalysisError(context.Background(), db, id, "something broke"))

	var analysis database.Analysis
	require.NoError(t, db.First(&analysis, "id = ?", id).Error)
	assert.Equal(t, database.AnalysisFailed, analysis.Status)
	require.True(t, analysis.ErrorMessage.Valid)
	assert.Equal(t, "something broke", analysis.ErrorMessage.String)
}
