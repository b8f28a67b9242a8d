package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultSetPreservesInsertionOrder(t *testing.T) {
	results := NewResultSet()
	results.Set("summary", "s")
	results.Set("critique", "c")
	results.Set("slides", []Slide{{Title: "T", Bullets: []string{"b"}}})

	assert.Equal(t, []string{"summary", "critique", "slides"}, results.Keys())

	raw, err := json.Marshal(results)
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"s","critique":"c","slides":[{"title":"T","bullets":["b"]}]}`, string(raw))
}

func TestResultSetOverwriteKeepsPosition(t *testing.T) {
	results := NewResultSet()
	results.Set("a", 1)
	results.Set("b", 2)
	results.Set("a", 3)

	assert.Equal(t, []string{"a", "b"}, results.Keys())
	v, ok := results.Get("a")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestEventMarshalling(t *testing.T) {
	raw, err := json.Marshal(Processing("working"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"processing","message":"working"}`, string(raw))

	results := NewResultSet()
	results.Set("summary", "s")
	raw, err = json.Marshal(Complete(results))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"complete","data":{"summary":"s"}}`, string(raw))
}
