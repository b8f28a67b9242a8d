package pipeline

import (
	"context"

	"scholarmate-backend/internal/llm"
)

// stepRunner executes one pipeline stage against the selected model: it
// builds the two-part request (context block + instruction block), delegates
// to the backoff-aware executor, relays progress notifications unchanged, and
// returns the fence-cleaned final text.
type stepRunner struct {
	executor *llm.Executor
	model    string
	system   string
}

func (s *stepRunner) run(ctx context.Context, stage Stage, contextText string, onProgress func(string)) (string, error) {
	req := llm.Request{
		Context:     contextText,
		Instruction: stage.instruction,
		System:      s.system,
		JSONOutput:  stage.Output == OutputJSON,
	}

	text, err := s.executor.Generate(ctx, s.model, stage.Label, req, onProgress)
	if err != nil {
		return "", err
	}
	return CleanText(text), nil
}
