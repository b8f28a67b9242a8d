package pipeline

import (
	"embed"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"
	"gopkg.in/yaml.v2"
)

//go:embed prompts/*.txt prompts/stages.yaml
var promptFS embed.FS

type OutputKind string

const (
	OutputText OutputKind = "text"
	OutputCode OutputKind = "code"
	OutputJSON OutputKind = "json"
)

// Stage is one declarative entry of the pipeline's stage table. Stages run
// strictly in manifest order; Inputs names the variables its context template
// draws on ("document" or the names of earlier stages).
type Stage struct {
	Name    string
	Label   string
	Message string
	Inputs  []string
	Output  OutputKind

	instruction     string
	contextTemplate prompts.PromptTemplate
}

// RenderContext formats the stage's context block from the document text and
// earlier results.
func (s *Stage) RenderContext(values map[string]any) (string, error) {
	text, err := s.contextTemplate.Format(values)
	if err != nil {
		return "", fmt.Errorf("error rendering context for stage %s: %w", s.Name, err)
	}
	return text, nil
}

// Registry holds the prompt texts and the stage table. It is loaded once at
// startup and read-only thereafter.
type Registry struct {
	system string
	stages []Stage
}

type stageManifest struct {
	Stages []struct {
		Name    string   `yaml:"name"`
		Label   string   `yaml:"label"`
		Prompt  string   `yaml:"prompt"`
		Message string   `yaml:"message"`
		Context string   `yaml:"context"`
		Inputs  []string `yaml:"inputs"`
		Output  string   `yaml:"output"`
	} `yaml:"stages"`
}

func LoadRegistry() (*Registry, error) {
	system, err := loadPrompt("system")
	if err != nil {
		return nil, err
	}

	raw, err := promptFS.ReadFile("prompts/stages.yaml")
	if err != nil {
		return nil, fmt.Errorf("error reading stage manifest: %w", err)
	}

	var manifest stageManifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("error parsing stage manifest: %w", err)
	}
	if len(manifest.Stages) == 0 {
		return nil, fmt.Errorf("stage manifest contains no stages")
	}

	registry := &Registry{system: system}
	for _, entry := range manifest.Stages {
		instruction, err := loadPrompt(entry.Prompt)
		if err != nil {
			return nil, err
		}

		output := OutputKind(entry.Output)
		switch output {
		case OutputText, OutputCode, OutputJSON:
		default:
			return nil, fmt.Errorf("stage %s has unknown output kind %q", entry.Name, entry.Output)
		}

		// The manifest uses {name} placeholders; NewPromptTemplate defaults
		// to Go templates, which would pass them through as literal text.
		contextTemplate := prompts.NewPromptTemplate(entry.Context, entry.Inputs)
		contextTemplate.TemplateFormat = prompts.TemplateFormatFString

		registry.stages = append(registry.stages, Stage{
			Name:            entry.Name,
			Label:           entry.Label,
			Message:         entry.Message,
			Inputs:          entry.Inputs,
			Output:          output,
			instruction:     instruction,
			contextTemplate: contextTemplate,
		})
	}

	return registry, nil
}

func loadPrompt(name string) (string, error) {
	raw, err := promptFS.ReadFile("prompts/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("error reading prompt %s: %w", name, err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func (r *Registry) System() string {
	return r.system
}

func (r *Registry) Stages() []Stage {
	return r.stages
}
