package main

import (
	"log/slog"

	"github.com/lexfold/canondoc/internal/ingest"
	"github.com/lexfold/canondoc/internal/populator"
	"github.com/lexfold/canondoc/internal/sourceconf"
)

func serviceOptions(cfg *IngestdConfig, settings *sourceconf.Settings) []ingest.Option {
	var opts []ingest.Option

	switch {
	case cfg.Concurrency > 0:
		opts = append(opts, ingest.WithConcurrency(cfg.Concurrency))
	case settings.Concurrency > 0:
		opts = append(opts, ingest.WithConcurrency(settings.Concurrency))
	}

	if cfg.PopulatorEndpoint != "" {
		opts = append(opts, ingest.WithPopulator(
			populator.NewHTTPPopulator(cfg.PopulatorEndpoint, cfg.PopulatorTimeout)))
		slog.Info("Graph populator enabled", "endpoint", cfg.PopulatorEndpoint)
	} else {
		slog.Info("Graph populator disabled")
	}

	return opts
}
