package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"scholarmate-backend/internal/artifacts"
	"scholarmate-backend/internal/codeexec"
	"scholarmate-backend/internal/database"
	"scholarmate-backend/internal/document_parsing"
	"scholarmate-backend/internal/messaging"
	"scholarmate-backend/internal/pipeline"
	"scholarmate-backend/internal/storage"
	pkgapi "scholarmate-backend/pkg/api"
	"scholarmate-backend/pkg/models"
)

const maxUploadBytes = 50 << 20 // 50MB

// AnalysisService exposes the paper analysis pipeline over HTTP: a streaming
// analyze endpoint, an async submit/poll surface backed by the task queue,
// and artifact download/execution endpoints.
type AnalysisService struct {
	db        *gorm.DB
	store     storage.ObjectStore
	publisher messaging.Publisher
	pipeline  *pipeline.Pipeline
	runner    *codeexec.Runner
}

func NewAnalysisService(db *gorm.DB, store storage.ObjectStore, publisher messaging.Publisher, pipe *pipeline.Pipeline) *AnalysisService {
	return &AnalysisService{
		db:        db,
		store:     store,
		publisher: publisher,
		pipeline:  pipe,
		runner:    codeexec.NewRunner(),
	}
}

func (s *AnalysisService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))
	r.Post("/analyze", EventStreamHandler(s.Analyze))
	r.Route("/analyses", func(r chi.Router) {
		r.Post("/", RestHandler(s.SubmitAnalysis))
		r.Get("/", RestHandler(s.ListAnalyses))
		r.Get("/{analysis_id}", RestHandler(s.GetAnalysis))
		r.Post("/{analysis_id}/execute", RestHandler(s.ExecuteCode))
	})
	r.Get("/download/{kind}/{analysis_id}", s.DownloadArtifact)
}

func readUpload(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, "", CodedErrorf(http.StatusBadRequest, "unable to parse multipart form")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", CodedErrorf(http.StatusBadRequest, "no file uploaded")
	}
	defer file.Close()

	contents, err := io.ReadAll(file)
	if err != nil {
		return nil, "", CodedErrorf(http.StatusInternalServerError, "error reading uploaded file")
	}

	if err := document_parsing.ValidateUpload(contents); err != nil {
		return nil, "", CodedError(http.StatusBadRequest, err)
	}

	return contents, header.Filename, nil
}

// Analyze runs the pipeline synchronously and streams its events to the
// client as they happen. The completed run is also recorded so its artifacts
// stay downloadable afterwards.
func (s *AnalysisService) Analyze(r *http.Request) (pipeline.EventStream, error) {
	slog.Info("received analysis request")

	document, filename, err := readUpload(r)
	if err != nil {
		return nil, err
	}

	ctx := r.Context()

	analysis := &database.Analysis{
		Id:           uuid.New(),
		FileName:     filename,
		Status:       database.AnalysisRunning,
		CreationTime: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(analysis).Error; err != nil {
		slog.Error("error creating analysis record", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to create analysis record")
	}

	inner := s.pipeline.Run(ctx, document)

	// Outcomes are recorded even if the client goes away mid-stream.
	recordCtx := context.WithoutCancel(ctx)

	return func(yield func(pipeline.Event) bool) {
		for event := range inner {
			switch event.Status {
			case pipeline.StatusComplete:
				s.recordCompletion(recordCtx, analysis.Id, event.Data)
			case pipeline.StatusError:
				_ = database.SaveAnalysisError(recordCtx, s.db, analysis.Id, event.Message)
			}
			if !yield(event) {
				return
			}
		}
	}, nil
}

func (s *AnalysisService) recordCompletion(ctx context.Context, id uuid.UUID, results *pipeline.ResultSet) {
	raw, err := json.Marshal(results)
	if err != nil {
		slog.Error("error marshalling analysis results", "analysis_id", id, "error", err)
		return
	}
	if err := database.SaveAnalysisResults(ctx, s.db, id, raw); err != nil {
		return
	}
	if err := artifacts.Save(ctx, s.store, id, results); err != nil {
		slog.Error("error saving analysis artifacts", "analysis_id", id, "error", err)
	}
}

// SubmitAnalysis stores the upload and queues it for a worker instead of
// streaming the run back.
func (s *AnalysisService) SubmitAnalysis(r *http.Request) (any, error) {
	document, filename, err := readUpload(r)
	if err != nil {
		return nil, err
	}

	ctx := r.Context()
	id := uuid.New()

	if err := s.store.PutObject(ctx, artifacts.UploadKey(id), bytes.NewReader(document)); err != nil {
		slog.Error("error storing uploaded document", "analysis_id", id, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to store uploaded document")
	}

	analysis := &database.Analysis{
		Id:           id,
		FileName:     filename,
		Status:       database.AnalysisQueued,
		CreationTime: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(analysis).Error; err != nil {
		slog.Error("error creating analysis record", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to create analysis record")
	}

	if err := s.publisher.PublishAnalysisTask(ctx, models.AnalysisTaskPayload{AnalysisId: id}); err != nil {
		slog.Error("error publishing analysis task", "analysis_id", id, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to queue analysis task")
	}

	slog.Info("submitted analysis", "analysis_id", id, "file_name", filename)
	return pkgapi.SubmitAnalysisResponse{AnalysisId: id, Message: "Analysis submitted"}, nil
}

func (s *AnalysisService) ListAnalyses(r *http.Request) (any, error) {
	params, err := ParseRequestQueryParams[pkgapi.ListAnalysesQuery](r)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(r.Context()).Order("creation_time DESC")
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Limit > 0 {
		query = query.Limit(params.Limit)
	}
	if params.Offset > 0 {
		query = query.Offset(params.Offset)
	}

	var records []database.Analysis
	if err := query.Find(&records).Error; err != nil {
		slog.Error("error listing analyses", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "error listing analyses")
	}

	resp := pkgapi.ListAnalysesResponse{Analyses: make([]pkgapi.AnalysisMetadata, 0, len(records))}
	for _, record := range records {
		resp.Analyses = append(resp.Analyses, toAnalysisMetadata(record))
	}
	return resp, nil
}

func (s *AnalysisService) GetAnalysis(r *http.Request) (any, error) {
	id, err := URLParamUUID(r, "analysis_id")
	if err != nil {
		return nil, err
	}

	var record database.Analysis
	if err := s.db.WithContext(r.Context()).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "analysis not found")
		}
		slog.Error("error getting analysis", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "error retrieving analysis record")
	}

	return toAnalysisMetadata(record), nil
}

// ExecuteCode runs the stored experiment script for a completed analysis and
// returns its captured output.
func (s *AnalysisService) ExecuteCode(r *http.Request) (any, error) {
	id, err := URLParamUUID(r, "analysis_id")
	if err != nil {
		return nil, err
	}

	ctx := r.Context()

	reader, err := s.store.GetObject(ctx, artifacts.CodeKey(id))
	if err != nil {
		return nil, CodedErrorf(http.StatusNotFound, "no generated code found for analysis %s", id)
	}
	defer reader.Close()

	dir, err := os.MkdirTemp("", "scholarmate-code-")
	if err != nil {
		return nil, CodedErrorf(http.StatusInternalServerError, "error creating scratch directory")
	}
	defer os.RemoveAll(dir)

	scriptPath := filepath.Join(dir, "experiment.py")
	script, err := os.Create(scriptPath)
	if err != nil {
		return nil, CodedErrorf(http.StatusInternalServerError, "error writing script")
	}
	if _, err := io.Copy(script, reader); err != nil {
		script.Close()
		return nil, CodedErrorf(http.StatusInternalServerError, "error writing script")
	}
	script.Close()

	output, err := s.runner.Run(ctx, scriptPath)
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	return pkgapi.ExecuteCodeResponse{Output: output}, nil
}

// DownloadArtifact serves a stored artifact as an attachment. Kinds: "code"
// (the experiment script), "slides" (deck JSON), "deck" (deck markdown).
func (s *AnalysisService) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	id, err := URLParamUUID(r, "analysis_id")
	if err != nil {
		writeError(w, err)
		return
	}

	var key, filename, contentType string
	switch chi.URLParam(r, "kind") {
	case "code":
		key, filename, contentType = artifacts.CodeKey(id), "experiment.py", "text/x-python"
	case "slides":
		key, filename, contentType = artifacts.SlidesJSONKey(id), "slides.json", "application/json"
	case "deck":
		key, filename, contentType = artifacts.SlidesMarkdownKey(id), "slides.md", "text/markdown"
	default:
		writeError(w, CodedErrorf(http.StatusBadRequest, "unknown artifact kind"))
		return
	}

	reader, err := s.store.GetObject(r.Context(), key)
	if err != nil {
		writeError(w, CodedErrorf(http.StatusNotFound, "artifact not found"))
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := io.Copy(w, reader); err != nil {
		slog.Error("error writing artifact response", "error", err)
	}
}

func toAnalysisMetadata(record database.Analysis) pkgapi.AnalysisMetadata {
	meta := pkgapi.AnalysisMetadata{
		Id:           record.Id,
		FileName:     record.FileName,
		Status:       record.Status,
		Results:      json.RawMessage(record.Results),
		CreationTime: record.CreationTime,
	}
	if record.ErrorMessage.Valid {
		meta.ErrorMessage = record.ErrorMessage.String
	}
	if record.CompletionTime.Valid {
		t := record.CompletionTime.Time
		meta.CompletionTime = &t
	}
	return meta
}
