// Package artifacts maps completed analysis results to their stored files:
// the uploaded PDF, the generated experiment script, and the slide deck in
// JSON and markdown form.
package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"scholarmate-backend/internal/pipeline"
	"scholarmate-backend/internal/storage"
)

func UploadKey(id uuid.UUID) string {
	return "uploads/" + id.String() + ".pdf"
}

func CodeKey(id uuid.UUID) string {
	return "code/" + id.String() + ".py"
}

func SlidesJSONKey(id uuid.UUID) string {
	return "slides/" + id.String() + ".json"
}

func SlidesMarkdownKey(id uuid.UUID) string {
	return "slides/" + id.String() + ".md"
}

// Save persists the downloadable artifacts of a completed run.
func Save(ctx context.Context, store storage.ObjectStore, id uuid.UUID, results *pipeline.ResultSet) error {
	if code, ok := results.Get("python_code"); ok {
		if text, ok := code.(string); ok {
			if err := store.PutObject(ctx, CodeKey(id), strings.NewReader(text)); err != nil {
				return fmt.Errorf("error storing code artifact: %w", err)
			}
		}
	}

	slides, ok := results.Get("slides")
	if !ok {
		return nil
	}
	deck, ok := slides.([]pipeline.Slide)
	if !ok {
		return nil
	}

	raw, err := json.Marshal(deck)
	if err != nil {
		return fmt.Errorf("error marshalling slides artifact: %w", err)
	}
	if err := store.PutObject(ctx, SlidesJSONKey(id), strings.NewReader(string(raw))); err != nil {
		return fmt.Errorf("error storing slides artifact: %w", err)
	}
	if err := store.PutObject(ctx, SlidesMarkdownKey(id), strings.NewReader(pipeline.RenderSlidesMarkdown(deck))); err != nil {
		return fmt.Errorf("error storing slides markdown artifact: %w", err)
	}
	return nil
}
