package models

import "github.com/google/uuid"

// AnalysisTaskPayload is published when an analysis is submitted for
// asynchronous processing. The uploaded PDF itself lives in the object store
// under the analysis id.
type AnalysisTaskPayload struct {
	AnalysisId uuid.UUID
}
