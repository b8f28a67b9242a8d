package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"scholarmate-backend/cmd"
	"scholarmate-backend/internal/artifacts"
	"scholarmate-backend/internal/document_parsing"
	"scholarmate-backend/internal/llm"
	"scholarmate-backend/internal/pipeline"
	"scholarmate-backend/internal/storage"
)

// Analyze a single PDF from the command line, without the server: streams the
// pipeline with a progress bar and writes the artifacts to a local directory.
func main() {
	var (
		file string
		out  string
	)
	flag.StringVar(&file, "file", "", "path to the PDF to analyze")
	flag.StringVar(&out, "out", "./analysis", "directory to write results to")

	cmd.LoadEnvFile()

	if file == "" {
		log.Fatalf("-file is required")
	}

	var cfg struct {
		LLM cmd.LLMConfig
	}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	document, err := os.ReadFile(file)
	if err != nil {
		log.Fatalf("error reading %s: %v", file, err)
	}
	if err := document_parsing.ValidateUpload(document); err != nil {
		log.Fatalf("invalid input: %v", err)
	}

	client, err := llm.NewClient(cfg.LLM.Provider, cfg.LLM.APIKey())
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}
	registry, err := pipeline.LoadRegistry()
	if err != nil {
		log.Fatalf("Failed to load stage registry: %v", err)
	}

	pipe := pipeline.New(client, document_parsing.TextExtractor{}, registry, pipeline.Options{
		Models: cfg.LLM.ModelList(),
	})

	store, err := storage.NewLocalObjectStore(out)
	if err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	stageMessages := make(map[string]bool)
	for _, stage := range registry.Stages() {
		stageMessages[stage.Message] = true
	}

	bar := progressbar.NewOptions(len(registry.Stages()),
		progressbar.OptionSetDescription("⏳ analyzing"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	id := uuid.New()

	for event := range pipe.Run(ctx, document) {
		switch event.Status {
		case pipeline.StatusProcessing:
			bar.Describe(event.Message)
			if stageMessages[event.Message] {
				_ = bar.Add(1)
			}
		case pipeline.StatusError:
			log.Fatalf("analysis failed: %s", event.Message)
		case pipeline.StatusComplete:
			_ = bar.Finish()

			raw, err := json.MarshalIndent(event.Data, "", "  ")
			if err != nil {
				log.Fatalf("error encoding results: %v", err)
			}
			if err := os.WriteFile(filepath.Join(out, "results.json"), raw, 0644); err != nil {
				log.Fatalf("error writing results: %v", err)
			}
			if err := artifacts.Save(ctx, store, id, event.Data); err != nil {
				log.Fatalf("error writing artifacts: %v", err)
			}

			log.Printf("analysis complete, results written to %s", out)
			log.Printf("generated code: %s", filepath.Join(out, artifacts.CodeKey(id)))
			log.Printf("slide deck: %s", filepath.Join(out, artifacts.SlidesMarkdownKey(id)))
		}
	}
}
