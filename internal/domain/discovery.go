package domain

import "time"

// RecordFormat tags the origin-native shape of a discovery record. The tag is
// resolved once at discovery time; later stages match on it instead of
// re-detecting the shape.
type RecordFormat string

const (
	FormatRegistryEntry RecordFormat = "registry_entry"
	FormatSearchHit     RecordFormat = "search_hit"
	FormatScrapedPage   RecordFormat = "scraped_page"
)

// DiscoveryRecord is the lightweight, source-native identification of a
// candidate document before its content is fetched. It is produced by the
// discovery stage, consumed by acquisition, and never persisted directly.
type DiscoveryRecord struct {
	Format       RecordFormat `json:"format"`
	ID           string       `json:"id"`
	URI          string       `json:"uri,omitempty"` // alternate, URI-form identifier
	Title        string       `json:"title"`
	DocumentType string       `json:"documentType,omitempty"`
	Authority    string       `json:"authority,omitempty"`
	PublishedAt  *time.Time   `json:"publishedAt,omitempty"`
	ValidFrom    *time.Time   `json:"validFrom,omitempty"`
	ValidTo      *time.Time   `json:"validTo,omitempty"`

	// DataURL points at further source data for the acquisition stage.
	DataURL string `json:"dataUrl,omitempty"`

	// Raw preserves the origin-native payload for the mapping stage.
	Raw map[string]any `json:"raw,omitempty"`
}

// SearchCriteria describes one discovery request against a source.
type SearchCriteria struct {
	Source   Source   `json:"source"`
	Text     string   `json:"text,omitempty"`
	Themes   []string `json:"themes,omitempty"`
	Area     string   `json:"area,omitempty"` // named jurisdiction or geometry reference
	URLs     []string `json:"urls,omitempty"` // seed pages for the scrape source
	Language string   `json:"language,omitempty"`
}
