package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"scholarmate-backend/cmd"
	"scholarmate-backend/internal/api"
	"scholarmate-backend/internal/database"
	"scholarmate-backend/internal/messaging"
	"scholarmate-backend/pkg/models"
)

// Single-process mode: API server, queue, and worker all run in one binary
// with sqlite and directory storage under Root. No external services needed
// beyond the generation API.
type Config struct {
	Root string `env:"ROOT" envDefault:"./scholarmate"`
	Port int    `env:"PORT" envDefault:"5000"`

	LLM cmd.LLMConfig
}

func createDatabase(root string) *gorm.DB {
	path := filepath.Join(root, "db", "scholarmate.db")
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.GetMigrator(db).Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

// createQueue re-enqueues analyses that were still queued when the previous
// process exited, since the in-memory queue does not survive restarts.
func createQueue(db *gorm.DB) *messaging.InMemoryQueue {
	var pending []database.Analysis
	if err := db.Where("status = ?", database.AnalysisQueued).Find(&pending).Error; err != nil {
		log.Fatalf("Failed to fetch queued analyses from database: %v", err)
	}

	queue := messaging.NewInMemoryQueue()

	for _, analysis := range pending {
		if err := queue.PublishAnalysisTask(context.Background(), models.AnalysisTaskPayload{
			AnalysisId: analysis.Id,
		}); err != nil {
			log.Fatalf("Failed to re-enqueue analysis %s: %v", analysis.Id, err)
		}
	}

	return queue
}

func createServer(handler *api.AnalysisService, port int) *http.Server {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		handler.AddRoutes(r)
	})

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}
}

func main() {
	cmd.LoadEnvFile()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := os.MkdirAll(cfg.Root, os.ModePerm); err != nil {
		log.Fatalf("error creating root directory: %v", err)
	}

	f, err := os.OpenFile(filepath.Join(cfg.Root, "backend.log"), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer f.Close()

	log.SetOutput(io.MultiWriter(f, os.Stderr))

	slog.Info("starting backend", "root", cfg.Root, "port", cfg.Port)

	db := createDatabase(cfg.Root)

	store := cmd.CreateObjectStore(cmd.StorageConfig{LocalDir: filepath.Join(cfg.Root, "storage")})

	queue := createQueue(db)

	pipe := cmd.CreatePipeline(cfg.LLM)

	worker := messaging.Worker{DB: db, Store: store, Pipeline: pipe}

	workerCtx, stopWorker := context.WithCancel(context.Background())

	slog.Info("starting worker")
	go worker.Run(workerCtx, queue.Tasks())

	server := createServer(api.NewAnalysisService(db, store, queue, pipe), cfg.Port)

	// Goroutine for graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		slog.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}

		slog.Info("shutting down worker")
		stopWorker()
		queue.Close()
	}()

	slog.Info("server started", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %d: %v\n", cfg.Port, err)
	}

	slog.Info("server stopped")
}
