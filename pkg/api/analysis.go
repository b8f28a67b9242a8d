package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AnalysisEvent is one line of the newline-delimited JSON stream returned by
// the analyze endpoint: status is "processing" (with message), "error" (with
// message), or "complete" (with data).
type AnalysisEvent struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type SubmitAnalysisResponse struct {
	AnalysisId uuid.UUID `json:"analysis_id"`
	Message    string    `json:"message"`
}

type AnalysisMetadata struct {
	Id             uuid.UUID       `json:"id"`
	FileName       string          `json:"file_name"`
	Status         string          `json:"status"`
	Results        json.RawMessage `json:"results,omitempty"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	CreationTime   time.Time       `json:"creation_time"`
	CompletionTime *time.Time      `json:"completion_time,omitempty"`
}

type ListAnalysesQuery struct {
	Status string `schema:"status"`
	Limit  int    `schema:"limit"`
	Offset int    `schema:"offset"`
}

type ListAnalysesResponse struct {
	Analyses []AnalysisMetadata `json:"analyses"`
}

type ExecuteCodeResponse struct {
	Output string `json:"output"`
}
