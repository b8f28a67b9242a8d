package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"gorm.io/gorm"

	"scholarmate-backend/internal/artifacts"
	"scholarmate-backend/internal/database"
	"scholarmate-backend/internal/pipeline"
	"scholarmate-backend/internal/storage"
	"scholarmate-backend/pkg/models"
)

// Worker consumes queued analysis tasks and runs the same orchestrator the
// streaming endpoint uses, keeping only the terminal event. Progress events
// are logged rather than surfaced.
type Worker struct {
	DB       *gorm.DB
	Store    storage.ObjectStore
	Pipeline *pipeline.Pipeline
}

// Run processes tasks until the context is cancelled or the channel closes.
func (w *Worker) Run(ctx context.Context, tasks <-chan Task) {
	for {
		select {
		case <-ctx.Done():
			slog.Info("worker shutting down")
			return
		case task, ok := <-tasks:
			if !ok {
				return
			}
			w.handleTask(ctx, task)
		}
	}
}

func (w *Worker) handleTask(ctx context.Context, task Task) {
	if task.Type() != AnalysisQueue {
		slog.Error("received task from unexpected queue", "queue", task.Type())
		if err := task.Reject(); err != nil {
			slog.Error("error rejecting task", "error", err)
		}
		return
	}

	var payload models.AnalysisTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		slog.Error("error unmarshalling analysis task payload", "error", err)
		if err := task.Reject(); err != nil {
			slog.Error("error rejecting task", "error", err)
		}
		return
	}

	if err := w.processAnalysis(ctx, payload); err != nil {
		slog.Error("error processing analysis task", "analysis_id", payload.AnalysisId, "error", err)
		if err := task.Nack(); err != nil {
			slog.Error("error nacking task", "error", err)
		}
		return
	}

	if err := task.Ack(); err != nil {
		slog.Error("error acking task", "error", err)
	}
}

func (w *Worker) processAnalysis(ctx context.Context, payload models.AnalysisTaskPayload) error {
	slog.Info("processing analysis", "analysis_id", payload.AnalysisId)

	var analysis database.Analysis
	if err := w.DB.WithContext(ctx).First(&analysis, "id = ?", payload.AnalysisId).Error; err != nil {
		return fmt.Errorf("error loading analysis record: %w", err)
	}

	if err := database.UpdateAnalysisStatus(ctx, w.DB, analysis.Id, database.AnalysisRunning); err != nil {
		return err
	}

	document, err := w.loadDocument(ctx, analysis)
	if err != nil {
		database.SaveAnalysisError(ctx, w.DB, analysis.Id, "could not load uploaded document") //nolint:errcheck
		return err
	}

	var terminal pipeline.Event
	for event := range w.Pipeline.Run(ctx, document) {
		switch event.Status {
		case pipeline.StatusProcessing:
			slog.Info("analysis progress", "analysis_id", analysis.Id, "message", event.Message)
		default:
			terminal = event
		}
	}

	switch terminal.Status {
	case pipeline.StatusComplete:
		raw, err := json.Marshal(terminal.Data)
		if err != nil {
			return fmt.Errorf("error marshalling results: %w", err)
		}
		if err := database.SaveAnalysisResults(ctx, w.DB, analysis.Id, raw); err != nil {
			return err
		}
		if err := artifacts.Save(ctx, w.Store, analysis.Id, terminal.Data); err != nil {
			slog.Error("error saving analysis artifacts", "analysis_id", analysis.Id, "error", err)
		}
		slog.Info("analysis completed", "analysis_id", analysis.Id)
		return nil

	case pipeline.StatusError:
		// Pipeline failures are recorded, not retried: the retry budget
		// already ran inside the executor.
		database.SaveAnalysisError(ctx, w.DB, analysis.Id, terminal.Message) //nolint:errcheck
		slog.Warn("analysis failed", "analysis_id", analysis.Id, "message", terminal.Message)
		return nil

	default:
		database.SaveAnalysisError(ctx, w.DB, analysis.Id, "analysis interrupted") //nolint:errcheck
		return fmt.Errorf("pipeline ended without terminal event")
	}
}

func (w *Worker) loadDocument(ctx context.Context, analysis database.Analysis) ([]byte, error) {
	reader, err := w.Store.GetObject(ctx, artifacts.UploadKey(analysis.Id))
	if err != nil {
		return nil, fmt.Errorf("error fetching uploaded document: %w", err)
	}
	defer reader.Close()

	document, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading uploaded document: %w", err)
	}
	return document, nil
}
