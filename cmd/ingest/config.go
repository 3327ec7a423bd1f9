package main

import (
	"flag"
	"fmt"

	"github.com/google/uuid"

	"github.com/lexfold/canondoc/internal/domain"
	"github.com/lexfold/canondoc/internal/ingest"
	"github.com/lexfold/canondoc/pkg/stringsutil"
)

type cliConfig struct {
	SourcesConfigPath string
	Source            string
	Text              string
	Themes            string
	Area              string
	URLs              string
	Language          string
	MaxResults        int
	Concurrency       int
	WorkflowRunID     string
	StepID            string
	QueryID           string
}

func parseFlags() *cliConfig {
	cfg := &cliConfig{}

	flag.StringVar(&cfg.SourcesConfigPath, "sources", "configs/sources.yaml", "Path to source settings YAML")
	flag.StringVar(&cfg.Source, "source", "", "Source to ingest from: registry, websearch or scrape")
	flag.StringVar(&cfg.Text, "text", "", "Full-text search criteria")
	flag.StringVar(&cfg.Themes, "themes", "", "Theme filters, comma-separated")
	flag.StringVar(&cfg.Area, "area", "", "Jurisdiction or geometry reference")
	flag.StringVar(&cfg.URLs, "urls", "", "Seed page URLs for the scrape source, comma-separated")
	flag.StringVar(&cfg.Language, "language", "", "Language filter")
	flag.IntVar(&cfg.MaxResults, "max-results", 0, "Cap on discovered records, 0 for no cap")
	flag.IntVar(&cfg.Concurrency, "concurrency", 0, "Per-batch concurrency limit, 0 for the default")
	flag.StringVar(&cfg.WorkflowRunID, "run-id", "", "Workflow run identifier")
	flag.StringVar(&cfg.StepID, "step-id", "", "Workflow step identifier")
	flag.StringVar(&cfg.QueryID, "query-id", "", "Existing query id to link documents to")
	flag.Parse()

	return cfg
}

func (c *cliConfig) batchRequest() (ingest.BatchRequest, error) {
	req := ingest.BatchRequest{
		Criteria: domain.SearchCriteria{
			Source:   domain.Source(c.Source),
			Text:     c.Text,
			Area:     c.Area,
			Language: c.Language,
		},
		ConcurrencyLimit: c.Concurrency,
		MaxResults:       c.MaxResults,
		WorkflowRunID:    c.WorkflowRunID,
		StepID:           c.StepID,
	}

	if c.Themes != "" {
		req.Criteria.Themes = stringsutil.SplitCSV(c.Themes)
	}
	if c.URLs != "" {
		req.Criteria.URLs = stringsutil.SplitCSV(c.URLs)
	}
	if c.QueryID != "" {
		id, err := uuid.Parse(c.QueryID)
		if err != nil {
			return req, fmt.Errorf("invalid -query-id: %w", err)
		}
		req.QueryID = &id
	}

	return req, nil
}
