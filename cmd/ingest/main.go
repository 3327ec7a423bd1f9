package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"

	"github.com/lexfold/canondoc/internal/ingest"
	"github.com/lexfold/canondoc/internal/sourceconf"
	"github.com/lexfold/canondoc/internal/store/factory"
	"github.com/lexfold/canondoc/pkg/config/env"
)

func main() {
	cfg := parseFlags()

	if err := env.LoadDotEnv(os.Getenv("ENV"), "cmd/ingest/.env"); err != nil {
		slog.Info("Skipping .env ...", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	storageCfg, err := factory.LoadEnv()
	if err != nil {
		slog.Error("failed to load storage configuration", "error", err)
		os.Exit(1)
	}

	stores, err := factory.NewStores(ctx, storageCfg)
	if err != nil {
		slog.Error("failed to create stores", "error", err)
		os.Exit(1)
	}

	file, err := os.Open(cfg.SourcesConfigPath)
	if err != nil {
		slog.Error("failed to read source settings", "error", err, "path", cfg.SourcesConfigPath)
		os.Exit(1)
	}
	settings, err := sourceconf.NewLoader(file).Load(true)
	_ = file.Close()
	if err != nil {
		slog.Error("failed to load source settings", "error", err)
		os.Exit(1)
	}

	adapters := ingest.BuildAdapters(settings, stores.Documents)
	svc := ingest.NewService(stores.Documents, stores.Queries, adapters,
		ingest.WithConcurrency(settings.Concurrency))

	req, err := cfg.batchRequest()
	if err != nil {
		slog.Error("invalid batch request", "error", err)
		os.Exit(1)
	}

	res, err := svc.RunBatch(ctx, req)
	if err != nil {
		slog.Error("batch failed", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		slog.Error("failed to write batch result", "error", err)
		os.Exit(1)
	}

	if res.FailedCount > 0 {
		slog.Warn("batch completed with failures",
			"successful", res.SuccessfulCount,
			"failed", res.FailedCount)
	}
}
