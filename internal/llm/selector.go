package llm

import (
	"context"
	"errors"
	"log/slog"
)

const (
	probeInstruction = "Test"
	probeMaxTokens   = 5
)

// SelectModel probes candidate models in priority order with a minimal
// request and returns the first one that responds. Candidates failing with
// not-found or rate-limit errors are skipped. Other probe errors also skip to
// the next candidate, but are logged with their classification since they may
// indicate a misconfigured request rather than an unavailable model.
func SelectModel(ctx context.Context, client Client, candidates []string) (string, error) {
	slog.Info("selecting best available model", "candidates", len(candidates))

	for _, model := range candidates {
		_, err := client.Generate(ctx, model, Request{
			Instruction:     probeInstruction,
			MaxOutputTokens: probeMaxTokens,
		})
		if err == nil {
			slog.Info("model selected", "model", model)
			return model, nil
		}

		var perr *ProviderError
		if errors.As(err, &perr) && (perr.Kind == ErrKindRateLimited || perr.Kind == ErrKindModelNotFound) {
			slog.Info("skipping model candidate", "model", model, "kind", perr.Kind.String())
			continue
		}

		slog.Warn("skipping model candidate after unclassified probe error", "model", model, "error", err)
	}

	return "", ErrNoModelAvailable
}
