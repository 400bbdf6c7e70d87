// Package crossref implements the CrossRef works API client. CrossRef is
// free and keyless; sending a mailto in the User-Agent joins the polite
// pool for faster responses.
package crossref

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bibtidy/bibtidy/pkg/errors"
	"github.com/bibtidy/bibtidy/pkg/normalize"
	"github.com/bibtidy/bibtidy/pkg/sources"

	"github.com/bibtidy/bibtidy/internal/transport"
)

const (
	sourceName     = "crossref"
	defaultBaseURL = "https://api.crossref.org"
)

// Client talks to the CrossRef REST API.
type Client struct {
	transport *transport.Client
	baseURL   string
}

// New creates a CrossRef client.
func New(tc *transport.Client) *Client {
	return NewWithBaseURL(tc, defaultBaseURL)
}

// NewWithBaseURL creates a client against a custom endpoint, for tests.
func NewWithBaseURL(tc *transport.Client, baseURL string) *Client {
	return &Client{transport: tc, baseURL: baseURL}
}

// Name returns the source name used in provenance and errors.
func (c *Client) Name() string { return sourceName }

// work is the subset of a CrossRef work message the engine consumes.
type work struct {
	DOI                  string     `json:"DOI"`
	Title                []string   `json:"title"`
	Abstract             string     `json:"abstract"`
	ContainerTitle       []string   `json:"container-title"`
	ISSN                 []string   `json:"ISSN"`
	Volume               string     `json:"volume"`
	Issue                string     `json:"issue"`
	Page                 string     `json:"page"`
	IsReferencedByCount  *int       `json:"is-referenced-by-count"`
	Published            *dateParts `json:"published"`
	PublishedPrint       *dateParts `json:"published-print"`
	PublishedOnline      *dateParts `json:"published-online"`
}

type dateParts struct {
	DateParts [][]int `json:"date-parts"`
}

type workResponse struct {
	Message work `json:"message"`
}

type searchResponse struct {
	Message struct {
		Items []work `json:"items"`
	} `json:"message"`
}

// LookupDOI fetches a work by DOI. An unknown DOI returns (nil, nil).
func (c *Client) LookupDOI(ctx context.Context, doi string) (*sources.RawMetadata, error) {
	doi = normalize.CleanDOI(doi)
	if doi == "" {
		return nil, nil
	}

	reqURL := fmt.Sprintf("%s/works/%s", c.baseURL, url.PathEscape(doi))

	var resp workResponse
	if err := c.transport.GetJSON(ctx, sourceName, reqURL, &resp); err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	meta := mapWork(&resp.Message)
	return &meta, nil
}

// Search queries works by free text.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]sources.RawMetadata, error) {
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{
		"query": {query},
		"rows":  {strconv.Itoa(limit)},
	}
	reqURL := c.baseURL + "/works?" + params.Encode()

	var resp searchResponse
	if err := c.transport.GetJSON(ctx, sourceName, reqURL, &resp); err != nil {
		return nil, err
	}

	out := make([]sources.RawMetadata, 0, len(resp.Message.Items))
	for i := range resp.Message.Items {
		out = append(out, mapWork(&resp.Message.Items[i]))
	}
	return out, nil
}

func mapWork(w *work) sources.RawMetadata {
	meta := sources.RawMetadata{
		Abstract:      w.Abstract,
		Volume:        w.Volume,
		Issue:         w.Issue,
		Pages:         w.Page,
		DOI:           w.DOI,
		CitationCount: w.IsReferencedByCount,
	}
	if len(w.Title) > 0 {
		meta.Title = w.Title[0]
	}
	if len(w.ContainerTitle) > 0 {
		meta.Venue = w.ContainerTitle[0]
	}
	if len(w.ISSN) > 0 {
		meta.ISSN = w.ISSN[0]
	}
	meta.Date = formatDateParts(w.Published, w.PublishedPrint, w.PublishedOnline)
	return meta
}

// formatDateParts renders the first populated date-parts block as
// YYYY-MM-DD, defaulting the month and day to 1 when absent.
func formatDateParts(candidates ...*dateParts) string {
	for _, dp := range candidates {
		if dp == nil || len(dp.DateParts) == 0 || len(dp.DateParts[0]) == 0 {
			continue
		}
		parts := dp.DateParts[0]
		year := parts[0]
		month, day := 1, 1
		if len(parts) >= 2 {
			month = parts[1]
		}
		if len(parts) >= 3 {
			day = parts[2]
		}
		return fmt.Sprintf("%d-%02d-%02d", year, month, day)
	}
	return ""
}

var _ sources.Source = (*Client)(nil)
