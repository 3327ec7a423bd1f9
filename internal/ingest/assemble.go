package ingest

import (
	"github.com/lexfold/canondoc/internal/adapter"
	"github.com/lexfold/canondoc/internal/adapter/registry"
	"github.com/lexfold/canondoc/internal/adapter/scrape"
	"github.com/lexfold/canondoc/internal/adapter/websearch"
	"github.com/lexfold/canondoc/internal/domain"
	"github.com/lexfold/canondoc/internal/fetch"
	"github.com/lexfold/canondoc/internal/sourceconf"
	"github.com/lexfold/canondoc/internal/store"
)

// BuildAdapters assembles one adapter per configured source. Sources absent
// from the settings are simply not served.
func BuildAdapters(settings *sourceconf.Settings, docs store.Store) []adapter.Adapter {
	persister := adapter.Persister{Store: docs}
	var adapters []adapter.Adapter

	for src, spec := range settings.Sources {
		fetcher := fetch.NewFetcher(spec.FetchConfig())

		switch src {
		case domain.SourceRegistry:
			client := registry.NewHTTPClient(spec.BaseURL, fetcher)
			adapters = append(adapters, registry.NewAdapter(client, persister,
				registry.WithMaxPages(spec.MaxSearchPages)))
		case domain.SourceWebSearch:
			client := websearch.NewHTTPSearchClient(spec.BaseURL, fetcher)
			adapters = append(adapters, websearch.NewAdapter(client, fetcher, persister,
				websearch.WithMaxHits(spec.MaxResults)))
		case domain.SourceScrape:
			adapters = append(adapters, scrape.NewAdapter(fetcher, persister))
		}
	}

	return adapters
}
