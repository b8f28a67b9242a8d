package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectModelSkipsUnavailableCandidates(t *testing.T) {
	client := &fakeClient{responses: []response{
		{err: &ProviderError{Kind: ErrKindRateLimited, Model: "fast", Err: errors.New("429")}},
		{err: &ProviderError{Kind: ErrKindModelNotFound, Model: "retired", Err: errors.New("404")}},
		{text: "ok"},
	}}

	model, err := SelectModel(context.Background(), client, []string{"fast", "retired", "stable"})
	require.NoError(t, err)
	assert.Equal(t, "stable", model)

	assert.Equal(t, []string{"fast", "retired", "stable"}, client.models)
}

func TestSelectModelProbeIsMinimal(t *testing.T) {
	client := &fakeClient{responses: []response{{text: "ok"}}}

	_, err := SelectModel(context.Background(), client, []string{"only"})
	require.NoError(t, err)

	require.Len(t, client.requests, 1)
	assert.Equal(t, probeInstruction, client.requests[0].Instruction)
	assert.Equal(t, probeMaxTokens, client.requests[0].MaxOutputTokens)
}

func TestSelectModelSkipsUnclassifiedErrors(t *testing.T) {
	client := &fakeClient{responses: []response{
		{err: errors.New("tls handshake failure")},
		{text: "ok"},
	}}

	model, err := SelectModel(context.Background(), client, []string{"flaky", "stable"})
	require.NoError(t, err)
	assert.Equal(t, "stable", model)
}

func TestSelectModelAllCandidatesFail(t *testing.T) {
	client := &fakeClient{responses: []response{
		{err: &ProviderError{Kind: ErrKindRateLimited, Model: "a", Err: errors.New("429")}},
	}}

	_, err := SelectModel(context.Background(), client, []string{"a", "b", "c"})
	require.ErrorIs(t, err, ErrNoModelAvailable)
	assert.Equal(t, 3, client.calls)
}
