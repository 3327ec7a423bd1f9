package sourceconf

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lexfold/canondoc/internal/domain"
	"github.com/lexfold/canondoc/internal/fetch"
)

// Settings is the declarative per-source configuration document. One file
// configures every source the service ingests from.
type Settings struct {
	Kind     string   `yaml:"kind" json:"kind"`
	Version  string   `yaml:"version" json:"version"`
	Metadata Metadata `yaml:"metadata" json:"metadata"`

	Concurrency int                          `yaml:"concurrency" json:"concurrency"`
	Sources     map[domain.Source]SourceSpec `yaml:"sources" json:"sources"`
}

type Metadata struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// Duration decodes Go duration strings ("45s", "2m") from YAML scalars.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// SourceSpec tunes one source adapter: where it talks to and how hard it is
// allowed to push.
type SourceSpec struct {
	BaseURL        string   `yaml:"baseUrl" json:"baseUrl"`
	Timeout        Duration `yaml:"timeout" json:"timeout"`
	MaxAttempts    int      `yaml:"maxAttempts" json:"maxAttempts"`
	RatePerSecond  float64  `yaml:"ratePerSecond" json:"ratePerSecond"`
	UserAgent      string   `yaml:"userAgent" json:"userAgent"`
	MaxResults     int      `yaml:"maxResults" json:"maxResults"`
	MaxSearchPages int      `yaml:"maxSearchPages" json:"maxSearchPages"`
}

// FetchConfig translates a spec into the fetcher's knobs. Zero values fall
// through to the fetcher defaults.
func (s SourceSpec) FetchConfig() fetch.Config {
	return fetch.Config{
		Timeout:       s.Timeout.Std(),
		MaxAttempts:   s.MaxAttempts,
		RatePerSecond: s.RatePerSecond,
		UserAgent:     s.UserAgent,
	}
}

func (s *Settings) Validate() error {
	if s.Kind == "" {
		return fmt.Errorf("kind is required")
	}
	if s.Version == "" {
		return fmt.Errorf("version is required")
	}
	if len(s.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}
	for src, spec := range s.Sources {
		if !domain.SupportedSources[src] {
			return fmt.Errorf("sources.%s: unknown source", src)
		}
		if spec.MaxAttempts < 0 {
			return fmt.Errorf("sources.%s: maxAttempts must not be negative", src)
		}
		if spec.RatePerSecond < 0 {
			return fmt.Errorf("sources.%s: ratePerSecond must not be negative", src)
		}
		if src != domain.SourceScrape && spec.BaseURL == "" {
			return fmt.Errorf("sources.%s: baseUrl is required", src)
		}
	}
	return nil
}

// Spec returns the configuration for one source, zero-valued when the source
// is not configured.
func (s *Settings) Spec(src domain.Source) SourceSpec {
	return s.Sources[src]
}

type Loader struct {
	reader io.Reader
}

func NewLoader(reader io.Reader) *Loader {
	return &Loader{reader: reader}
}

func (l *Loader) Load(validate bool) (*Settings, error) {
	decoder := yaml.NewDecoder(l.reader)
	var settings Settings
	if err := decoder.Decode(&settings); err != nil {
		return nil, err
	}
	if validate {
		if err := settings.Validate(); err != nil {
			return nil, err
		}
	}
	return &settings, nil
}
