// Package semanticscholar implements the Semantic Scholar Graph API
// client. The keyless tier allows one request per second, so the client is
// always mounted behind a 1 rps limiter.
package semanticscholar

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bibtidy/bibtidy/pkg/errors"
	"github.com/bibtidy/bibtidy/pkg/normalize"
	"github.com/bibtidy/bibtidy/pkg/sources"

	"github.com/bibtidy/bibtidy/internal/transport"
)

const (
	sourceName     = "semanticscholar"
	defaultBaseURL = "https://api.semanticscholar.org/graph/v1"
)

// lookupFields is the explicit field list requested on DOI lookups; the
// API returns only paperId and title without one.
var lookupFields = []string{
	"title",
	"abstract",
	"venue",
	"publicationDate",
	"citationCount",
	"influentialCitationCount",
	"tldr",
	"externalIds",
}

// searchFields is the smaller field list used for relevance search.
var searchFields = []string{
	"title",
	"abstract",
	"venue",
	"publicationDate",
	"citationCount",
	"externalIds",
}

// Client talks to the Semantic Scholar Graph API.
type Client struct {
	transport *transport.Client
	baseURL   string
}

// New creates a Semantic Scholar client.
func New(tc *transport.Client) *Client {
	return NewWithBaseURL(tc, defaultBaseURL)
}

// NewWithBaseURL creates a client against a custom endpoint, for tests.
func NewWithBaseURL(tc *transport.Client, baseURL string) *Client {
	return &Client{transport: tc, baseURL: baseURL}
}

// Name returns the source name used in provenance and errors.
func (c *Client) Name() string { return sourceName }

// paper is the subset of a Semantic Scholar paper the engine consumes.
type paper struct {
	PaperID                  string         `json:"paperId"`
	Title                    string         `json:"title"`
	Abstract                 string         `json:"abstract"`
	Venue                    string         `json:"venue"`
	PublicationDate          string         `json:"publicationDate"`
	CitationCount            *int           `json:"citationCount"`
	InfluentialCitationCount *int           `json:"influentialCitationCount"`
	TLDR                     *tldr          `json:"tldr"`
	ExternalIDs              map[string]any `json:"externalIds"`
}

type tldr struct {
	Text string `json:"text"`
}

type searchResponse struct {
	Data []paper `json:"data"`
}

// LookupDOI fetches a paper by DOI. An unknown DOI returns (nil, nil).
func (c *Client) LookupDOI(ctx context.Context, doi string) (*sources.RawMetadata, error) {
	doi = normalize.CleanDOI(doi)
	if doi == "" {
		return nil, nil
	}

	params := url.Values{"fields": {strings.Join(lookupFields, ",")}}
	reqURL := fmt.Sprintf("%s/paper/DOI:%s?%s", c.baseURL, url.PathEscape(doi), params.Encode())

	var p paper
	if err := c.transport.GetJSON(ctx, sourceName, reqURL, &p); err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	meta := mapPaper(&p)
	return &meta, nil
}

// Search queries papers by relevance.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]sources.RawMetadata, error) {
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{
		"query":  {query},
		"limit":  {strconv.Itoa(limit)},
		"fields": {strings.Join(searchFields, ",")},
	}
	reqURL := c.baseURL + "/paper/search?" + params.Encode()

	var resp searchResponse
	if err := c.transport.GetJSON(ctx, sourceName, reqURL, &resp); err != nil {
		return nil, err
	}

	out := make([]sources.RawMetadata, 0, len(resp.Data))
	for i := range resp.Data {
		out = append(out, mapPaper(&resp.Data[i]))
	}
	return out, nil
}

func mapPaper(p *paper) sources.RawMetadata {
	meta := sources.RawMetadata{
		Title:         p.Title,
		Abstract:      p.Abstract,
		Venue:         p.Venue,
		Date:          p.PublicationDate,
		CitationCount: p.CitationCount,
		SourceID:      p.PaperID,
	}
	if p.TLDR != nil {
		meta.TLDR = p.TLDR.Text
	}
	if raw, ok := p.ExternalIDs["DOI"]; ok {
		if s, ok := raw.(string); ok {
			meta.DOI = normalize.CleanDOI(s)
		}
	}
	return meta
}

var _ sources.Source = (*Client)(nil)
