package database

import (
	"context"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func UpdateAnalysisStatus(ctx context.Context, txn *gorm.DB, analysisId uuid.UUID, status string) error {
	updates := map[string]any{"status": status}
	if status == AnalysisCompleted || status == AnalysisFailed {
		updates["completion_time"] = time.Now().UTC()
	}

	if err := txn.WithContext(ctx).Model(&Analysis{Id: analysisId}).Updates(updates).Error; err != nil {
		slog.Error("error updating analysis status", "analysis_id", analysisId, "status", status, "error", err)
		return err
	}
	return nil
}

func SaveAnalysisResults(ctx context.Context, txn *gorm.DB, analysisId uuid.UUID, results []byte) error {
	updates := map[string]any{
		"status":          AnalysisCompleted,
		"results":         datatypes.JSON(results),
		"completion_time": time.Now().UTC(),
	}

	if err := txn.WithContext(ctx).Model(&Analysis{Id: analysisId}).Updates(updates).Error; err != nil {
		slog.Error("error saving analysis results", "analysis_id", analysisId, "error", err)
		return err
	}
	return nil
}

func SaveAnalysisError(ctx context.Context, txn *gorm.DB, analysisId uuid.UUID, message string) error {
	updates := map[string]any{
		"status":          AnalysisFailed,
		"error_message":   message,
		"completion_time": time.Now().UTC(),
	}

	if err := txn.WithContext(ctx).Model(&Analysis{Id: analysisId}).Updates(updates).Error; err != nil {
		slog.Error("error saving analysis error", "analysis_id", analysisId, "error", err)
		return err
	}
	return nil
}
