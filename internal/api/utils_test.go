package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarmate-backend/internal/api"
	"scholarmate-backend/internal/pipeline"
	pkgapi "scholarmate-backend/pkg/api"
)

func TestEventStreamHandler(t *testing.T) {
	router := chi.NewRouter()
	router.Post("/stream", api.EventStreamHandler(func(r *http.Request) (pipeline.EventStream, error) {
		return func(yield func(pipeline.Event) bool) {
			if !yield(pipeline.Processing("step one")) {
				return
			}
			results := pipeline.NewResultSet()
			results.Set("summary", "s")
			yield(pipeline.Complete(results))
		}, nil
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stream", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)

	var first pkgapi.AnalysisEvent
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "processing", first.Status)
	assert.Equal(t, "step one", first.Message)
	assert.Nil(t, first.Data)

	var second pkgapi.AnalysisEvent
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "complete", second.Status)
	assert.JSONEq(t, `{"summary":"s"}`, string(second.Data))
}

func TestEventStreamHandlerRequestError(t *testing.T) {
	router := chi.NewRouter()
	router.Post("/stream", api.EventStreamHandler(func(r *http.Request) (pipeline.EventStream, error) {
		return nil, api.CodedErrorf(http.StatusBadRequest, "no file uploaded")
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stream", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no file uploaded")
}

func TestParseRequestQueryParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/analyses?status=QUEUED&limit=5&unknown=x", nil)

	params, err := api.ParseRequestQueryParams[pkgapi.ListAnalysesQuery](req)
	require.NoError(t, err)
	assert.Equal(t, "QUEUED", params.Status)
	assert.Equal(t, 5, params.Limit)
	assert.Equal(t, 0, params.Offset)
}
