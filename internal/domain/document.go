package domain

import (
	"net/url"
	"time"

	"github.com/google/uuid"
)

const DocumentDefaultLanguage = "english"

// Source identifies the external origin a canonical document was ingested from.
type Source string

const (
	SourceRegistry  Source = "registry"
	SourceWebSearch Source = "websearch"
	SourceScrape    Source = "scrape"
)

var SupportedSources = map[Source]bool{
	SourceRegistry:  true,
	SourceWebSearch: true,
	SourceScrape:    true,
}

// Dates groups the legally relevant dates of a document. Any of them may be
// unknown for a given source.
type Dates struct {
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	ValidFrom   *time.Time `json:"validFrom,omitempty"`
	ValidTo     *time.Time `json:"validTo,omitempty"`
}

// Enrichment carries the traceability fields linking a document back to the
// search session that produced it.
type Enrichment struct {
	QueryID             *uuid.UUID `json:"queryId,omitempty"`
	WorkflowRunID       string     `json:"workflowRunId"`
	StepID              string     `json:"stepId"`
	MetadataOnly        bool       `json:"isMetadataOnly"`
	NeedsEnrichment     bool       `json:"needsEnrichment"`
	AcquisitionFailedAt *time.Time `json:"acquisitionFailedAt,omitempty"`
}

// Draft is the unit about to be persisted: everything a canonical document
// carries except its generated identifier and persistence timestamps.
type Draft struct {
	Source             Source         `json:"source"`
	SourceID           string         `json:"sourceId"`
	CanonicalURL       string         `json:"canonicalUrl,omitempty"`
	Title              string         `json:"title"`
	PublisherAuthority string         `json:"publisherAuthority,omitempty"`
	DocumentFamily     string         `json:"documentFamily,omitempty"`
	DocumentType       string         `json:"documentType,omitempty"`
	Dates              Dates          `json:"dates"`
	FullText           string         `json:"fullText"`
	ContentFingerprint string         `json:"contentFingerprint"`
	Language           string         `json:"language,omitempty"`
	ArtifactRefs       []string       `json:"artifactRefs,omitempty"`
	SourceMetadata     map[string]any `json:"sourceMetadata,omitempty"`
	Enrichment         Enrichment     `json:"enrichment"`
}

// Document is a Draft plus a generated identifier and persistence timestamps.
// It is the only form ever returned to callers.
type Document struct {
	ID uuid.UUID `json:"id"`
	Draft
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ValidCanonicalURL reports whether raw is a well-formed absolute URL fit for
// the canonicalUrl field. Raw API-internal paths never qualify.
func ValidCanonicalURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Host != ""
}
