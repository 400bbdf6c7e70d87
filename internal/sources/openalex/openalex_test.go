package openalex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibtidy/bibtidy/internal/transport"
)

const workBody = `{
	"id": "https://openalex.org/W2741809807",
	"doi": "https://doi.org/10.1234/example",
	"display_name": "A Study of Things",
	"publication_date": "2019-03-14",
	"cited_by_count": 42,
	"abstract_inverted_index": {"study": [1], "A": [0], "of": [2], "things": [3]},
	"primary_location": {"source": {"display_name": "Journal of Things", "issn": ["1111-2222"]}},
	"biblio": {"volume": "12", "issue": "3", "first_page": "100", "last_page": "120"}
}`

func TestLookupDOI(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(workBody))
	}))
	defer srv.Close()

	client := NewWithBaseURL(transport.New(), "lab@example.edu", srv.URL)
	meta, err := client.LookupDOI(context.Background(), "doi:10.1234/example")
	require.NoError(t, err)
	require.NotNil(t, meta)

	assert.Equal(t, "/works/doi:10.1234%2Fexample", gotPath)
	assert.Contains(t, gotQuery, "mailto=lab%40example.edu")

	assert.Equal(t, "A Study of Things", meta.Title)
	assert.Equal(t, "A study of things", meta.Abstract, "abstract rebuilt from inverted index")
	assert.Equal(t, "2019-03-14", meta.Date)
	assert.Equal(t, "Journal of Things", meta.Venue)
	assert.Equal(t, "1111-2222", meta.ISSN)
	assert.Equal(t, "12", meta.Volume)
	assert.Equal(t, "3", meta.Issue)
	assert.Equal(t, "100-120", meta.Pages)
	assert.Equal(t, "10.1234/example", meta.DOI)
	assert.Equal(t, "https://openalex.org/W2741809807", meta.SourceID)
	require.NotNil(t, meta.CitationCount)
	assert.Equal(t, 42, *meta.CitationCount)
}

func TestLookupDOINotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewWithBaseURL(transport.New(), "", srv.URL)
	meta, err := client.LookupDOI(context.Background(), "10.1/missing")
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "protein folding", r.URL.Query().Get("search"))
		assert.Equal(t, "3", r.URL.Query().Get("per-page"))
		_, _ = w.Write([]byte(`{"results": [{"display_name": "One"}, {"display_name": "Two"}]}`))
	}))
	defer srv.Close()

	client := NewWithBaseURL(transport.New(), "", srv.URL)
	results, err := client.Search(context.Background(), "protein folding", 3)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "One", results[0].Title)
}

func TestReconstructAbstract(t *testing.T) {
	tests := []struct {
		name  string
		index map[string][]int
		want  string
	}{
		{
			name:  "ordered words",
			index: map[string][]int{"world": {1}, "hello": {0}},
			want:  "hello world",
		},
		{
			name:  "repeated word",
			index: map[string][]int{"the": {0, 2}, "more": {1}, "merrier": {3}},
			want:  "the more the merrier",
		},
		{
			name:  "empty index",
			index: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReconstructAbstract(tt.index))
		})
	}
}
