package sourceconf

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfold/canondoc/internal/domain"
)

const sampleSettings = `
kind: SourceSettings
version: v1
metadata:
  name: "staging sources"
concurrency: 6
sources:
  registry:
    baseUrl: "https://registry.example/api"
    timeout: 45s
    maxAttempts: 4
    ratePerSecond: 2.5
    maxSearchPages: 10
  websearch:
    baseUrl: "https://search.example"
    maxResults: 25
  scrape:
    timeout: 20s
`

func TestLoaderParsesSettings(t *testing.T) {
	loader := NewLoader(strings.NewReader(sampleSettings))

	cfg, err := loader.Load(true)

	require.NoError(t, err)
	assert.Equal(t, "SourceSettings", cfg.Kind)
	assert.Equal(t, "v1", cfg.Version)
	assert.Equal(t, "staging sources", cfg.Metadata.Name)
	assert.Equal(t, 6, cfg.Concurrency)

	reg := cfg.Spec(domain.SourceRegistry)
	assert.Equal(t, "https://registry.example/api", reg.BaseURL)
	assert.Equal(t, 45*time.Second, reg.Timeout.Std())
	assert.Equal(t, 4, reg.MaxAttempts)
	assert.InDelta(t, 2.5, reg.RatePerSecond, 0.001)
	assert.Equal(t, 10, reg.MaxSearchPages)

	assert.Equal(t, 25, cfg.Spec(domain.SourceWebSearch).MaxResults)
	assert.Equal(t, 20*time.Second, cfg.Spec(domain.SourceScrape).Timeout.Std())
}

func TestLoaderRejectsUnknownSource(t *testing.T) {
	loader := NewLoader(strings.NewReader(`
kind: SourceSettings
version: v1
sources:
  teletext:
    baseUrl: "https://nope.example"
`))

	_, err := loader.Load(true)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source")
}

func TestLoaderRequiresBaseURLForRemoteSources(t *testing.T) {
	loader := NewLoader(strings.NewReader(`
kind: SourceSettings
version: v1
sources:
  registry:
    timeout: 10s
`))

	_, err := loader.Load(true)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "baseUrl is required")
}

func TestLoaderSkipsValidationWhenDisabled(t *testing.T) {
	loader := NewLoader(strings.NewReader(`
kind: SourceSettings
sources: {}
`))

	cfg, err := loader.Load(false)

	require.NoError(t, err)
	assert.Empty(t, cfg.Sources)
}

func TestFetchConfigCarriesSpecKnobs(t *testing.T) {
	spec := SourceSpec{
		Timeout:       Duration(15 * time.Second),
		MaxAttempts:   2,
		RatePerSecond: 1.0,
		UserAgent:     "canondoc/1.0",
	}

	cfg := spec.FetchConfig()

	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, 2, cfg.MaxAttempts)
	assert.InDelta(t, 1.0, cfg.RatePerSecond, 0.001)
	assert.Equal(t, "canondoc/1.0", cfg.UserAgent)
}
