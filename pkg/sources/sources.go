// Package sources defines the metadata source abstraction the enrichment
// pipeline consumes, plus the rate-limiting and caching wrappers every
// concrete client is mounted behind.
package sources

import (
	"context"
)

// Source is a remote bibliographic metadata API.
type Source interface {
	// Name identifies the source in logs, provenance, and errors.
	Name() string

	// LookupDOI fetches metadata for a DOI. A DOI unknown to the source
	// returns (nil, nil); errors are reserved for transport and decode
	// failures.
	LookupDOI(ctx context.Context, doi string) (*RawMetadata, error)

	// Search queries the source by free text, returning up to limit
	// results in the source's relevance order.
	Search(ctx context.Context, query string, limit int) ([]RawMetadata, error)
}

// RawMetadata is one source's view of a work, normalized to the common
// field vocabulary. Empty strings mean the source had nothing for the
// field; CitationCount is nil when the source does not report one.
type RawMetadata struct {
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Date     string `json:"date,omitempty" yaml:"date,omitempty"`
	Venue    string `json:"venue,omitempty" yaml:"venue,omitempty"`
	Volume   string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue    string `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages    string `json:"pages,omitempty" yaml:"pages,omitempty"`
	ISSN     string `json:"issn,omitempty" yaml:"issn,omitempty"`
	DOI      string `json:"doi,omitempty" yaml:"doi,omitempty"`

	CitationCount *int `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`

	// SourceID is the source's own identifier for the work (OpenAlex
	// work ID, Semantic Scholar paper ID).
	SourceID string `json:"source_id,omitempty" yaml:"source_id,omitempty"`

	// TLDR is Semantic Scholar's machine-generated summary.
	TLDR string `json:"tldr,omitempty" yaml:"tldr,omitempty"`
}

// Field returns the metadata value backing the named record field, or ""
// when the source offers nothing for it.
func (m *RawMetadata) Field(name string) string {
	switch name {
	case "title":
		return m.Title
	case "abstractNote":
		return m.Abstract
	case "date":
		return m.Date
	case "publicationTitle":
		return m.Venue
	case "volume":
		return m.Volume
	case "issue":
		return m.Issue
	case "pages":
		return m.Pages
	case "ISSN":
		return m.ISSN
	case "DOI":
		return m.DOI
	}
	return ""
}
