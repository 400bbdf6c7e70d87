package bibtidy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibtidy/bibtidy/pkg/gateway"
	"github.com/bibtidy/bibtidy/pkg/gateway/memory"
	"github.com/bibtidy/bibtidy/pkg/records"
	"github.com/bibtidy/bibtidy/pkg/sources"
)

type stubSource struct {
	name  string
	byDOI map[string]*sources.RawMetadata
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) LookupDOI(_ context.Context, doi string) (*sources.RawMetadata, error) {
	return s.byDOI[doi], nil
}

func (s *stubSource) Search(_ context.Context, _ string, _ int) ([]sources.RawMetadata, error) {
	return nil, nil
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err, "gateway is required")

	lib := memory.New()
	_, err = New(lib, WithSimilarityThreshold(2))
	assert.Error(t, err)
	_, err = New(lib, WithSimilarityWeights(0.3, 0.7))
	assert.Error(t, err, "title weight must dominate")
	_, err = New(lib, WithEnrichFields([]string{"nope"}))
	assert.Error(t, err)
	_, err = New(lib, WithDateFormat("DD.MM.YYYY"))
	assert.Error(t, err)
	_, err = New(lib, WithAPITimeout(-time.Second))
	assert.Error(t, err)
	_, err = New(lib, WithMaxRetries(-1))
	assert.Error(t, err)

	_, err = New(lib)
	assert.NoError(t, err)

	_, err = New(lib, WithAPITimeout(5*time.Second), WithMaxRetries(0))
	assert.NoError(t, err, "zero retries disables the retry budget")
}

func TestFindDuplicatesAndMerge(t *testing.T) {
	lib := memory.NewWith(
		records.Record{Key: "A", ItemType: records.ItemTypeJournalArticle, Title: "Paper one", DOI: "10.1/x"},
		records.Record{Key: "B", ItemType: records.ItemTypeJournalArticle, Title: "Paper one!", DOI: "10.1/x", Date: "2020", Tags: []string{"ml"}},
		records.Record{Key: "C", ItemType: records.ItemTypeJournalArticle, Title: "Unrelated work"},
	)
	eng, err := New(lib, WithDryRun(false))
	require.NoError(t, err)
	ctx := context.Background()

	groups, err := eng.FindDuplicates(ctx, gateway.Filter{})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"A", "B"}, groups[0].Keys)

	strategy, err := eng.PlanMerge(ctx, groups[0].Keys)
	require.NoError(t, err)
	assert.Equal(t, "B", strategy.KeepKey, "more populated fields wins among DOI peers")

	merged, err := eng.ExecuteMerge(ctx, strategy, true)
	require.NoError(t, err)
	assert.Equal(t, "B", merged.Key)
	assert.Equal(t, 2, lib.Len(), "donor deleted")
}

func TestExecuteMergeHonorsDryRun(t *testing.T) {
	lib := memory.NewWith(
		records.Record{Key: "A", Title: "Paper one", DOI: "10.1/x"},
		records.Record{Key: "B", Title: "Paper one", DOI: "10.1/x", Date: "2020"},
	)
	eng, err := New(lib) // dry-run default
	require.NoError(t, err)
	ctx := context.Background()

	strategy, err := eng.PlanMerge(ctx, []string{"A", "B"})
	require.NoError(t, err)
	_, err = eng.ExecuteMerge(ctx, strategy, true)
	require.NoError(t, err)

	assert.Equal(t, memory.Counters{}, lib.Writes())
	assert.Equal(t, 2, lib.Len())
}

func TestEnrichThroughEngine(t *testing.T) {
	src := &stubSource{name: "crossref", byDOI: map[string]*sources.RawMetadata{
		"10.1/x": {Abstract: "An abstract."},
	}}
	lib := memory.NewWith(
		records.Record{Key: "A", ItemType: records.ItemTypeJournalArticle, Title: "t", DOI: "10.1/x"},
		records.Record{Key: "N", ItemType: "note", Title: "skip me", DOI: "10.1/x"},
	)
	eng, err := New(lib, WithSources(src), WithDryRun(false))
	require.NoError(t, err)

	stats, err := eng.Enrich(context.Background(), gateway.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total, "non-enrichable item types are filtered out")
	assert.Equal(t, 1, stats.Enriched)

	got, err := lib.Get(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "An abstract.", got.AbstractNote)
}

func TestNormalizeAuthors(t *testing.T) {
	lib := memory.NewWith(records.Record{
		Key: "A", Title: "t",
		Creators: []records.Creator{
			{CreatorType: "author", FirstName: "LUDWIG", LastName: "VAN BEETHOVEN"},
			{CreatorType: "author", FirstName: "Jane", LastName: "Goodall"},
		},
	})
	eng, err := New(lib, WithDryRun(false))
	require.NoError(t, err)

	stats, err := eng.NormalizeAuthors(context.Background(), gateway.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Changed)
	require.Len(t, stats.Changes, 1, "already-normalized creator produces no change entry")

	got, err := lib.Get(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "Van Beethoven", got.Creators[0].LastName)
	assert.Equal(t, "Ludwig", got.Creators[0].FirstName)
}

func TestNormalizeDates(t *testing.T) {
	lib := memory.NewWith(
		records.Record{Key: "A", Title: "t", Date: "March 5, 2021"},
		records.Record{Key: "B", Title: "t", Date: "2020-01-02"},
		records.Record{Key: "C", Title: "t", Date: "no date here"},
	)
	eng, err := New(lib, WithDryRun(false))
	require.NoError(t, err)

	stats, err := eng.NormalizeDates(context.Background(), gateway.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Changed, "canonical and unparseable dates are untouched")

	got, err := lib.Get(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "2021-03-05", got.Date)
}

func TestNormalizeDatesDryRunByDefault(t *testing.T) {
	lib := memory.NewWith(records.Record{Key: "A", Title: "t", Date: "March 5, 2021"})
	eng, err := New(lib)
	require.NoError(t, err)

	stats, err := eng.NormalizeDates(context.Background(), gateway.Filter{})
	require.NoError(t, err)
	assert.True(t, stats.DryRun)
	assert.Equal(t, 1, stats.Changed)
	assert.Equal(t, memory.Counters{}, lib.Writes())
}

func TestAutoTagThroughEngine(t *testing.T) {
	lib := memory.NewWith(records.Record{Key: "A", Title: "deep learning survey"})
	eng, err := New(lib, WithDryRun(false))
	require.NoError(t, err)

	stats, err := eng.AutoTag(context.Background(), gateway.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Tagged)

	got, err := lib.Get(context.Background(), "A")
	require.NoError(t, err)
	assert.True(t, got.HasTag("machine-learning"))
}

func TestAuditThroughEngine(t *testing.T) {
	lib := memory.NewWith(records.Record{Key: "A", ItemType: records.ItemTypeJournalArticle, Title: "t", DOI: "bad doi"})
	eng, err := New(lib)
	require.NoError(t, err)

	report, err := eng.Audit(context.Background(), gateway.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalItems)
	assert.Len(t, report.InvalidDOIs, 1)
	assert.Equal(t, memory.Counters{}, lib.Writes(), "audit is read-only")
}
