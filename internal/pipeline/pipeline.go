package pipeline

import (
	"context"
	"log/slog"
	"time"

	"scholarmate-backend/internal/llm"
)

const (
	// DefaultMaxContextChars bounds extracted paper text to a safe token
	// budget before it is used as shared stage context.
	DefaultMaxContextChars = 70000

	// DefaultStagePause is the politeness pause between major stages to
	// avoid bursting the generation API.
	DefaultStagePause = time.Second

	experimentInterpretation = "The experiment results above are generated synthetically based on the paper's methodology. They demonstrate the expected trends if the hypothesis holds true."
)

// Extractor is the document text extraction collaborator. Failures do not
// cross this boundary; implementations degrade to empty text.
type Extractor interface {
	ExtractText(contents []byte) string
}

type Options struct {
	// Models is the prioritized candidate list; the first probe success is
	// used for the entire run.
	Models          []string
	MaxContextChars int
	StagePause      time.Duration
}

// Pipeline sequences the analysis stages for one document and emits a unified
// progress/result stream. A single Pipeline is safe for concurrent runs: it
// holds only read-only configuration.
type Pipeline struct {
	client    llm.Client
	executor  *llm.Executor
	extractor Extractor
	registry  *Registry

	models          []string
	maxContextChars int
	stagePause      time.Duration

	sleep func(ctx context.Context, d time.Duration)
}

func New(client llm.Client, extractor Extractor, registry *Registry, opts Options) *Pipeline {
	p := &Pipeline{
		client:          client,
		executor:        llm.NewExecutor(client),
		extractor:       extractor,
		registry:        registry,
		models:          opts.Models,
		maxContextChars: opts.MaxContextChars,
		stagePause:      opts.StagePause,
		sleep:           pause,
	}
	if p.maxContextChars <= 0 {
		p.maxContextChars = DefaultMaxContextChars
	}
	if p.stagePause <= 0 {
		p.stagePause = DefaultStagePause
	}
	return p
}

func pause(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// Run analyzes one document. The returned stream yields zero or more
// processing events followed by exactly one terminal event: either a complete
// event carrying the full ResultSet, or an error event with no partial
// results. Stages execute strictly in manifest order, none skipped, none
// parallelized.
func (p *Pipeline) Run(ctx context.Context, document []byte) EventStream {
	return func(yield func(Event) bool) {
		if !yield(Processing("Initializing analysis...")) {
			return
		}

		if !yield(Processing("Connecting to best available AI model...")) {
			return
		}
		model, err := llm.SelectModel(ctx, p.client, p.models)
		if err != nil {
			yield(ErrorEvent(err.Error()))
			return
		}

		if !yield(Processing("Extracting text from PDF...")) {
			return
		}
		text := p.extractor.ExtractText(document)
		if text == "" {
			yield(ErrorEvent("Could not extract text from PDF."))
			return
		}
		if len(text) > p.maxContextChars {
			text = truncateToRuneBoundary(text, p.maxContextChars)
		}

		step := &stepRunner{executor: p.executor, model: model, system: p.registry.System()}
		results := NewResultSet()
		values := map[string]any{"document": text}

		// Progress relayed from inside a stage cannot unwind the generator
		// directly, so a stopped consumer is noted and checked after the
		// stage returns.
		stopped := false
		onProgress := func(message string) {
			if !stopped && !yield(Processing(message)) {
				stopped = true
			}
		}

		for i, stage := range p.registry.Stages() {
			if i > 0 {
				p.sleep(ctx, p.stagePause)
			}

			if !yield(Processing(stage.Message)) {
				return
			}

			contextText, err := stage.RenderContext(values)
			if err != nil {
				slog.Error("error rendering stage context", "stage", stage.Name, "error", err)
				yield(ErrorEvent(err.Error()))
				return
			}

			raw, err := step.run(ctx, stage, contextText, onProgress)
			if stopped {
				return
			}
			if err != nil {
				yield(ErrorEvent(err.Error()))
				return
			}

			var result any
			switch stage.Output {
			case OutputCode:
				result = ExtractCodeBlock(raw)
			case OutputJSON:
				result = ParseSlides(raw)
			default:
				result = raw
			}
			results.Set(stage.Name, result)
			values[stage.Name] = result
		}

		results.Set("experimentInterpretation", experimentInterpretation)
		yield(Complete(results))
	}
}
