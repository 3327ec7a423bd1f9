package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/lexfold/canondoc/internal/ingest"
	"github.com/lexfold/canondoc/internal/router"
	"github.com/lexfold/canondoc/internal/server"
	"github.com/lexfold/canondoc/internal/sourceconf"
	"github.com/lexfold/canondoc/internal/store/factory"
	pkgserver "github.com/lexfold/canondoc/pkg/server"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelInfo)

	sCfg, err := server.LoadConfig()
	if err != nil {
		slog.Error("Failed to load server config", "error", err)
		os.Exit(1)
	}

	appSettings := NewAppConfig()
	cfg, err := appSettings.Load()
	if err != nil {
		slog.Error("Failed to load app configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, err := factory.NewStores(ctx, &cfg.StorageConfig)
	if err != nil {
		slog.Error("Failed to create stores", "error", err)
		os.Exit(1)
	}

	settings, err := loadSourceSettings(cfg.SourcesConfigPath)
	if err != nil {
		slog.Error("Failed to load source settings", "error", err, "path", cfg.SourcesConfigPath)
		os.Exit(1)
	}

	adapters := ingest.BuildAdapters(settings, stores.Documents)
	if len(adapters) == 0 {
		slog.Error("No sources configured", "path", cfg.SourcesConfigPath)
		os.Exit(1)
	}

	opts := serviceOptions(cfg, settings)
	svc := ingest.NewService(stores.Documents, stores.Queries, adapters, opts...)

	s := server.NewServer(echo.New(), sCfg, pkgserver.NewOkHealthChecker())
	router.NewIngestRouter(s.Echo, svc, stores.Documents).Bind()

	slog.Info("Starting ingestion service",
		"port", sCfg.Port,
		"storage", cfg.StorageConfig.Type,
		"sources", len(adapters))

	if err := s.Start(); err != nil {
		s.Echo.Logger.Error("Failed to start server: ", err)
		os.Exit(1)
	}
}

func loadSourceSettings(path string) (*sourceconf.Settings, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return sourceconf.NewLoader(file).Load(true)
}
