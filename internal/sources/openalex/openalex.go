// Package openalex implements the OpenAlex works API client. OpenAlex
// serves abstracts as an inverted index, which the client reconstructs
// into plain text.
package openalex

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
	sourceName     = "openalex"
	defaultBaseURL = "https://api.openalex.org"
)

// Client talks to the OpenAlex REST API.
type Client struct {
	transport *transport.Client
	baseURL   string

	// email joins the polite pool via the mailto query parameter.
	email string
}

// New creates an OpenAlex client. An empty email skips the polite pool.
func New(tc *transport.Client, email string) *Client {
	return NewWithBaseURL(tc, email, defaultBaseURL)
}

// NewWithBaseURL creates a client against a custom endpoint, for tests.
func NewWithBaseURL(tc *transport.Client, email, baseURL string) *Client {
	return &Client{transport: tc, email: email, baseURL: baseURL}
}

// Name returns the source name used in provenance and errors.
func (c *Client) Name() string { return sourceName }

// work is the subset of an OpenAlex work the engine consumes.
type work struct {
	ID                    string           `json:"id"`
	DOI                   string           `json:"doi"`
	DisplayName           string           `json:"display_name"`
	PublicationDate       string           `json:"publication_date"`
	CitedByCount          *int             `json:"cited_by_count"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
	PrimaryLocation       *location        `json:"primary_location"`
	Biblio                biblio           `json:"biblio"`
}

type location struct {
	Source *venueSource `json:"source"`
}

type venueSource struct {
	DisplayName string   `json:"display_name"`
	ISSN        []string `json:"issn"`
}

type biblio struct {
	Volume    string `json:"volume"`
	Issue     string `json:"issue"`
	FirstPage string `json:"first_page"`
	LastPage  string `json:"last_page"`
}

type searchResponse struct {
	Results []work `json:"results"`
}

// LookupDOI fetches a work by DOI. An unknown DOI returns (nil, nil).
func (c *Client) LookupDOI(ctx context.Context, doi string) (*sources.RawMetadata, error) {
	doi = normalize.CleanDOI(doi)
	if doi == "" {
		return nil, nil
	}

	reqURL := fmt.Sprintf("%s/works/doi:%s%s", c.baseURL, url.PathEscape(doi), c.politeSuffix("?"))

	var w work
	if err := c.transport.GetJSON(ctx, sourceName, reqURL, &w); err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	meta := mapWork(&w)
	return &meta, nil
}

// Search queries works by free text.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]sources.RawMetadata, error) {
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{
		"search":   {query},
		"per-page": {strconv.Itoa(limit)},
	}
	if c.email != "" {
		params.Set("mailto", c.email)
	}
	reqURL := c.baseURL + "/works?" + params.Encode()

	var resp searchResponse
	if err := c.transport.GetJSON(ctx, sourceName, reqURL, &resp); err != nil {
		return nil, err
	}

	out := make([]sources.RawMetadata, 0, len(resp.Results))
	for i := range resp.Results {
		out = append(out, mapWork(&resp.Results[i]))
	}
	return out, nil
}

func (c *Client) politeSuffix(sep string) string {
	if c.email == "" {
		return ""
	}
	return sep + "mailto=" + url.QueryEscape(c.email)
}

func mapWork(w *work) sources.RawMetadata {
	meta := sources.RawMetadata{
		Title:         w.DisplayName,
		Date:          w.PublicationDate,
		Abstract:      ReconstructAbstract(w.AbstractInvertedIndex),
		DOI:           normalize.CleanDOI(w.DOI),
		CitationCount: w.CitedByCount,
		SourceID:      w.ID,
		Volume:        w.Biblio.Volume,
		Issue:         w.Biblio.Issue,
	}
	if w.PrimaryLocation != nil && w.PrimaryLocation.Source != nil {
		meta.Venue = w.PrimaryLocation.Source.DisplayName
		if len(w.PrimaryLocation.Source.ISSN) > 0 {
			meta.ISSN = w.PrimaryLocation.Source.ISSN[0]
		}
	}
	if w.Biblio.FirstPage != "" && w.Biblio.LastPage != "" {
		meta.Pages = w.Biblio.FirstPage + "-" + w.Biblio.LastPage
	}
	return meta
}

// ReconstructAbstract rebuilds plain text from OpenAlex's word-to-positions
// inverted index.
func ReconstructAbstract(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}

	maxPos := 0
	for _, positions := range index {
		for _, p := range positions {
			if p > maxPos {
				maxPos = p
			}
		}
	}

	words := make([]string, maxPos+1)
	for word, positions := range index {
		for _, p := range positions {
			if p >= 0 {
				words[p] = word
			}
		}
	}
	return strings.Join(words, " ")
}

var _ sources.Source = (*Client)(nil)
