package organize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibtidy/bibtidy/pkg/gateway"
	"github.com/bibtidy/bibtidy/pkg/gateway/memory"
	"github.com/bibtidy/bibtidy/pkg/records"
)

func TestAutoTagSuggestsFromTitleAndAbstract(t *testing.T) {
	lib := memory.NewWith(
		records.Record{Key: "A", Title: "Deep learning for genomics", AbstractNote: "We study gene expression."},
		records.Record{Key: "B", Title: "Medieval trade routes"},
	)
	tagger := New(lib, WithDryRun(false))

	stats, err := tagger.AutoTag(context.Background(), mustAll(t, lib))
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Tagged)
	require.Len(t, stats.Suggestions, 1)
	assert.Equal(t, "A", stats.Suggestions[0].Key)
	assert.Equal(t, []string{"genetics", "machine-learning"}, stats.Suggestions[0].Tags)

	got, err := lib.Get(context.Background(), "A")
	require.NoError(t, err)
	assert.True(t, got.HasTag("machine-learning"))
	assert.True(t, got.HasTag("genetics"))
}

func TestAutoTagDryRun(t *testing.T) {
	lib := memory.NewWith(records.Record{Key: "A", Title: "neural network pruning"})
	tagger := New(lib)

	stats, err := tagger.AutoTag(context.Background(), mustAll(t, lib))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Tagged)
	require.Len(t, stats.Suggestions, 1)
	assert.Equal(t, memory.Counters{}, lib.Writes(), "dry run must not write")
}

func TestAutoTagIdempotent(t *testing.T) {
	lib := memory.NewWith(records.Record{
		Key: "A", Title: "Advances in machine learning", Tags: []string{"machine-learning"},
	})
	tagger := New(lib, WithDryRun(false))

	stats, err := tagger.AutoTag(context.Background(), mustAll(t, lib))
	require.NoError(t, err)
	assert.Zero(t, stats.Tagged, "existing tags are never re-suggested")
	assert.Empty(t, stats.Suggestions)
	assert.Equal(t, memory.Counters{}, lib.Writes())
}

func TestAutoTagCustomKeywordMap(t *testing.T) {
	lib := memory.NewWith(records.Record{Key: "A", Title: "On the taxonomy of beetles"})
	tagger := New(lib, WithKeywordMap(map[string][]string{
		"entomology": {"beetle", "insect"},
	}), WithDryRun(false))

	stats, err := tagger.AutoTag(context.Background(), mustAll(t, lib))
	require.NoError(t, err)
	require.Len(t, stats.Suggestions, 1)
	assert.Equal(t, []string{"entomology"}, stats.Suggestions[0].Tags)
}

func mustAll(t *testing.T, lib *memory.Library) []records.Record {
	t.Helper()
	recs, err := lib.List(context.Background(), gateway.Filter{})
	require.NoError(t, err)
	return recs
}
