package pipeline

import (
	"strings"
	"time"

	"github.com/lexfold/canondoc/internal/apperr"
	"github.com/lexfold/canondoc/internal/domain"
)

// FallbackDraft builds a minimal metadata-only draft from a discovery record
// after a pipeline stage failed. FullText is synthesized from the title and
// identifier so the content fingerprint stays well-defined. NeedsEnrichment is
// cleared when the failure classification is permanent: re-enrichment of
// permanently unavailable content would never succeed.
func FallbackDraft(source domain.Source, rec domain.DiscoveryRecord, cause error) domain.Draft {
	now := time.Now()

	title := rec.Title
	if title == "" {
		title = rec.ID
	}

	var parts []string
	if rec.Title != "" {
		parts = append(parts, rec.Title)
	}
	parts = append(parts, rec.ID)
	if rec.URI != "" {
		parts = append(parts, rec.URI)
	}
	fullText := strings.Join(parts, "\n")

	draft := domain.Draft{
		Source:             source,
		SourceID:           rec.ID,
		Title:              title,
		PublisherAuthority: rec.Authority,
		DocumentType:       rec.DocumentType,
		Dates: domain.Dates{
			PublishedAt: rec.PublishedAt,
			ValidFrom:   rec.ValidFrom,
			ValidTo:     rec.ValidTo,
		},
		FullText:           fullText,
		ContentFingerprint: domain.Fingerprint(fullText),
		Enrichment: domain.Enrichment{
			MetadataOnly:        true,
			NeedsEnrichment:     !apperr.IsPermanentAcquisition(cause),
			AcquisitionFailedAt: &now,
		},
	}

	if rec.URI != "" {
		draft.SourceMetadata = map[string]any{"uri": rec.URI}
	}

	return draft
}
