package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finsight/internal/agents"
	"finsight/internal/analytics"
	"finsight/internal/archive"
	"finsight/internal/audit"
	"finsight/internal/config"
	"finsight/internal/middleware"
	"finsight/internal/miner"
	"finsight/internal/runstore"
	"finsight/internal/server"
	"finsight/internal/textgen"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	metrics := analytics.New(cfg.Analytics.BaseURL, cfg.Analytics.CacheSize)
	gen, model := buildGenerator(cfg)
	text := textgen.NewSoftClient(textgen.WithLogging(gen, nil))

	auditLog := audit.NewLog()
	runs := buildRunStore(cfg)
	trailArchive := buildArchive(cfg)

	orch := &agents.Orchestrator{
		Metrics: metrics,
		Text:    text,
		Audit:   auditLog,
		Runs:    runs,
		Archive: trailArchive,
	}
	engine := &miner.Engine{Metrics: metrics, Text: text}

	s := &apiServer{
		model:    model,
		metrics:  metrics,
		text:     text,
		auditLog: auditLog,
		runs:     runs,
		orch:     orch,
		engine:   engine,
	}

	srv := server.New(cfg.Port, middleware.CORS(buildMux(s)))

	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

// buildGenerator selects the configured text backend. An unusable Gemini
// configuration falls back to Ollama so the process still starts.
func buildGenerator(cfg *config.Config) (textgen.Generator, string) {
	if cfg.TextGen.Provider == "gemini" {
		g, err := textgen.NewGeminiClient(context.Background(), cfg.TextGen.GeminiModel)
		if err == nil {
			return g, g.Name()
		}
		log.Printf("gemini unavailable, falling back to ollama: %v", err)
	}
	o := textgen.NewOllamaClient(cfg.TextGen.OllamaURL, cfg.TextGen.OllamaModel)
	return o, o.Name()
}

func buildRunStore(cfg *config.Config) *runstore.Store {
	if cfg.RunStore.PostgresDSN == "" {
		return runstore.New()
	}
	s, err := runstore.NewPostgres(cfg.RunStore.PostgresDSN)
	if err != nil {
		log.Printf("runstore: postgres unavailable, using memory: %v", err)
		return runstore.New()
	}
	return s
}

// buildArchive returns nil when archiving is not configured; the
// orchestrator treats a nil archiver as "skip".
func buildArchive(cfg *config.Config) agents.TrailArchiver {
	if !cfg.Archive.Enabled {
		return nil
	}
	a, err := archive.New(archive.Config{
		Endpoint:  cfg.Archive.Endpoint,
		Region:    cfg.Archive.Region,
		AccessKey: cfg.Archive.AccessKey,
		SecretKey: cfg.Archive.SecretKey,
		Bucket:    cfg.Archive.Bucket,
		UseSSL:    cfg.Archive.UseSSL,
	})
	if err != nil {
		log.Printf("audit archive disabled: %v", err)
		return nil
	}
	return a
}
