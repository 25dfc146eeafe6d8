package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	Env       string
	Analytics AnalyticsConfig
	TextGen   TextGenConfig
	RunStore  RunStoreConfig
	Archive   ArchiveConfig
}

type AnalyticsConfig struct {
	BaseURL   string
	CacheSize int
}

type TextGenConfig struct {
	Provider    string // "ollama" or "gemini"
	OllamaURL   string
	OllamaModel string
	GeminiModel string
}

type RunStoreConfig struct {
	PostgresDSN string
}

// ArchiveConfig controls the optional S3/MinIO audit-trail archiver.
type ArchiveConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":6000", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port: *port,
		Env:  env,
		Analytics: AnalyticsConfig{
			BaseURL:   firstNonEmpty(strings.TrimSpace(os.Getenv("ANALYTICS_URL")), "http://localhost:5000"),
			CacheSize: envInt("ANALYTICS_CACHE_SIZE", 256),
		},
		TextGen: TextGenConfig{
			Provider:    strings.ToLower(firstNonEmpty(strings.TrimSpace(os.Getenv("TEXTGEN_PROVIDER")), "ollama")),
			OllamaURL:   firstNonEmpty(strings.TrimSpace(os.Getenv("OLLAMA_URL")), "http://localhost:11434"),
			OllamaModel: firstNonEmpty(strings.TrimSpace(os.Getenv("OLLAMA_MODEL")), "llama2"),
			GeminiModel: firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_MODEL")), "gemini-2.5-flash"),
		},
		RunStore: RunStoreConfig{
			PostgresDSN: strings.TrimSpace(os.Getenv("RUN_STORE_PG_DSN")),
		},
		Archive: loadArchiveConfig(),
	}, nil
}

func loadArchiveConfig() ArchiveConfig {
	endpoint := strings.TrimSpace(os.Getenv("AUDIT_S3_ENDPOINT"))
	return ArchiveConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("AUDIT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("AUDIT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("AUDIT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("AUDIT_S3_BUCKET")), "finsight-audit"),
		UseSSL:    envBool("AUDIT_S3_USE_SSL", false),
	}
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
