package cmd

import (
	"flag"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"scholarmate-backend/internal/document_parsing"
	"scholarmate-backend/internal/llm"
	"scholarmate-backend/internal/pipeline"
	"scholarmate-backend/internal/storage"
)

func LoadEnvFile() {
	var configPath string

	flag.StringVar(&configPath, "env", "", "path to load env from")
	flag.Parse()

	if configPath == "" {
		log.Printf("no env file specified, using os.Environ only")
		return
	}

	log.Printf("loading env from file %s", configPath)
	err := godotenv.Load(configPath)
	if err != nil {
		log.Fatalf("error loading .env file '%s': %v", configPath, err)
	}
}

// DefaultModels is the fallback order tried when MODELS is not configured,
// fastest candidates first.
var DefaultModels = []string{
	"gemini-2.0-flash",
	"gemini-2.0-flash-exp",
	"gemini-1.5-flash",
	"gemini-1.5-flash-latest",
	"gemini-1.5-flash-002",
	"gemini-1.5-flash-001",
}

type LLMConfig struct {
	Provider     string `env:"LLM_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	Models       string `env:"MODELS"`
}

func (c LLMConfig) APIKey() string {
	if c.Provider == llm.ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

func (c LLMConfig) ModelList() []string {
	var models []string
	for _, model := range strings.Split(c.Models, ",") {
		if model = strings.TrimSpace(model); model != "" {
			models = append(models, model)
		}
	}
	if len(models) == 0 {
		return DefaultModels
	}
	return models
}

func CreatePipeline(cfg LLMConfig) *pipeline.Pipeline {
	client, err := llm.NewClient(cfg.Provider, cfg.APIKey())
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	registry, err := pipeline.LoadRegistry()
	if err != nil {
		log.Fatalf("Failed to load stage registry: %v", err)
	}

	return pipeline.New(client, document_parsing.TextExtractor{}, registry, pipeline.Options{
		Models: cfg.ModelList(),
	})
}

type StorageConfig struct {
	S3EndpointURL     string `env:"S3_ENDPOINT_URL"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
	Bucket            string `env:"ARTIFACT_BUCKET_NAME"`
	LocalDir          string `env:"STORAGE_DIR" envDefault:"./scholarmate/storage"`
}

// CreateObjectStore returns an S3-backed store when a bucket is configured,
// otherwise a local directory store.
func CreateObjectStore(cfg StorageConfig) storage.ObjectStore {
	if cfg.Bucket != "" {
		store, err := storage.NewS3ObjectStore(storage.S3ClientConfig{
			Endpoint:        cfg.S3EndpointURL,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		}, cfg.Bucket)
		if err != nil {
			log.Fatalf("Failed to create S3 storage client: %v", err)
		}
		return store
	}

	store, err := storage.NewLocalObjectStore(cfg.LocalDir)
	if err != nil {
		log.Fatalf("Failed to create local storage client: %v", err)
	}
	return store
}
