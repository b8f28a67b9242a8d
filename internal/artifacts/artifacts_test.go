package artifacts_test

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarmate-backend/internal/artifacts"
	"scholarmate-backend/internal/pipeline"
	"scholarmate-backend/internal/storage"
)

func readObject(t *testing.T, store storage.ObjectStore, key string) string {
	t.Helper()
	reader, err := store.GetObject(context.Background(), key)
	require.NoError(t, err)
	defer reader.Close()
	contents, err := io.ReadAll(reader)
	require.NoError(t, err)
	return string(contents)
}

func TestSave(t *testing.T) {
	store, err := storage.NewLocalObjectStore(t.TempDir())
	require.NoError(t, err)

	id := uuid.New()

	results := pipeline.NewResultSet()
	results.Set("summary", "the summary")
	results.Set("python_code", "print('hi')")
	results.Set("slides", []pipeline.Slide{{Title: "Intro", Bullets: []string{"a"}}})

	require.NoError(t, artifacts.Save(context.Background(), store, id, results))

	assert.Equal(t, "print('hi')", readObject(t, store, artifacts.CodeKey(id)))
	assert.JSONEq(t, `[{"title":"Intro","bullets":["a"]}]`, readObject(t, store, artifacts.SlidesJSONKey(id)))
	assert.Contains(t, readObject(t, store, artifacts.SlidesMarkdownKey(id)), "## Intro")
}

func TestSaveWithoutOptionalResults(t *testing.T) {
	store, err := storage.NewLocalObjectStore(t.TempDir())
	require.NoError(t, err)

	id := uuid.New()

	results := pipeline.NewResultSet()
	results.Set("summary", "only text")

	require.NoError(t, artifacts.Save(context.Background(), store, id, results))

	_, err = store.GetObject(context.Background(), artifacts.CodeKey(id))
	assert.Error(t, err)
}
