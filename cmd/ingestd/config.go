package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/lexfold/canondoc/internal/store/factory"
	"github.com/lexfold/canondoc/pkg/config/env"
)

func NewAppConfig() *AppConfig {
	return &AppConfig{
		ENV: os.Getenv("ENV"),
	}
}

type AppConfig struct {
	ENV string
}

type IngestdConfig struct {
	SourcesConfigPath string
	Concurrency       int

	PopulatorEndpoint string
	PopulatorTimeout  time.Duration

	factory.StorageConfig
}

func (as *AppConfig) Load() (*IngestdConfig, error) {
	err := env.LoadDotEnv(as.ENV, "cmd/ingestd/.env")
	if err != nil {
		slog.Info("Skipping .env environment variables...", "error", err)
	}

	storageCfg, err := factory.LoadEnv()
	if err != nil {
		slog.Error("Failed to load storage configuration from environment", "error", err)
		return nil, err
	}

	sourcesPath := os.Getenv("SOURCES_CONFIG_PATH")
	if sourcesPath == "" {
		slog.Error("SOURCES_CONFIG_PATH environment variable is not set")
		return nil, fmt.Errorf("SOURCES_CONFIG_PATH environment variable is not set")
	}

	concurrency := 0
	if raw := os.Getenv("INGEST_CONCURRENCY"); raw != "" {
		concurrency, err = strconv.Atoi(raw)
		if err != nil || concurrency < 1 {
			return nil, fmt.Errorf("INGEST_CONCURRENCY must be a positive number, got %q", raw)
		}
	}

	populatorTimeout := 30 * time.Second
	if raw := os.Getenv("POPULATOR_TIMEOUT"); raw != "" {
		populatorTimeout, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid POPULATOR_TIMEOUT: %w", err)
		}
	}

	return &IngestdConfig{
		SourcesConfigPath: sourcesPath,
		Concurrency:       concurrency,
		PopulatorEndpoint: os.Getenv("POPULATOR_ENDPOINT"),
		PopulatorTimeout:  populatorTimeout,
		StorageConfig:     *storageCfg,
	}, nil
}
