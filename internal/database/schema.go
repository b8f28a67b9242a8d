package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	AnalysisQueued    string = "QUEUED"
	AnalysisRunning   string = "RUNNING"
	AnalysisCompleted string = "COMPLETED"
	AnalysisFailed    string = "FAILED"
)

// Analysis records one pipeline run: the uploaded document, its lifecycle
// status, and (once complete) the full result payload and artifact keys. The
// pipeline itself is stateless; this is post-run bookkeeping that backs the
// async mode and the download endpoints.
type Analysis struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	FileName string `gorm:"not null" json:"file_name"`
	Status   string `gorm:"size:20;not null" json:"status"`

	Results      datatypes.JSON `json:"results,omitempty"`
	ErrorMessage sql.NullString `json:"error_message,omitempty"`

	CreationTime   time.Time    `json:"creation_time"`
	CompletionTime sql.NullTime `json:"completion_time,omitempty"`
}
