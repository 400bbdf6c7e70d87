package dedupe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibtidy/bibtidy/pkg/gateway"
	"github.com/bibtidy/bibtidy/pkg/gateway/memory"
	"github.com/bibtidy/bibtidy/pkg/records"
)

func TestBuildStrategyKeepSelection(t *testing.T) {
	// The DOI-bearing record wins even when another member has more
	// populated fields.
	full := records.Record{
		Key: "AAA", Title: "t", Date: "2020", Volume: "1",
		Issue: "2", Pages: "3-4", PublicationTitle: "J",
	}
	withDOI := records.Record{Key: "ZZZ", Title: "t", DOI: "10.1/x"}

	strategy, err := BuildStrategy([]records.Record{full, withDOI})
	require.NoError(t, err)
	assert.Equal(t, "ZZZ", strategy.KeepKey)
	assert.Equal(t, []string{"AAA"}, strategy.DeleteKeys)

	// Empty fields on the keep record fill from the donor.
	assert.Equal(t, "2020", strategy.FieldValues[records.FieldDate])
	assert.Equal(t, "AAA", strategy.FieldSources[records.FieldDate])
	assert.Equal(t, "J", strategy.FieldValues[records.FieldPublicationTitle])

	// Populated keep fields are never overwritten.
	_, ok := strategy.FieldValues[records.FieldTitle]
	assert.False(t, ok)
}

func TestBuildStrategyTieBreaks(t *testing.T) {
	// No DOIs, equal field counts: smallest key wins.
	a := records.Record{Key: "B", Title: "t"}
	b := records.Record{Key: "A", Title: "t"}
	strategy, err := BuildStrategy([]records.Record{a, b})
	require.NoError(t, err)
	assert.Equal(t, "A", strategy.KeepKey)

	// More populated fields beats key order.
	rich := records.Record{Key: "Z", Title: "t", Date: "2020"}
	poor := records.Record{Key: "A", Title: "t"}
	strategy, err = BuildStrategy([]records.Record{poor, rich})
	require.NoError(t, err)
	assert.Equal(t, "Z", strategy.KeepKey)
}

func TestBuildStrategyTagsAndExtra(t *testing.T) {
	a := records.Record{Key: "A", Title: "t", DOI: "10.1/x", Tags: []string{"ml", "nlp"}, Extra: "Citation Count: 4"}
	b := records.Record{Key: "B", Title: "t", Tags: []string{"nlp", "stats"}, Extra: "OpenAlex ID: W123"}
	c := records.Record{Key: "C", Title: "t", Extra: "Citation Count: 4"}

	strategy, err := BuildStrategy([]records.Record{a, b, c})
	require.NoError(t, err)
	assert.Equal(t, []string{"ml", "nlp", "stats"}, strategy.MergedTags)
	assert.Equal(t, "Citation Count: 4\n---\nOpenAlex ID: W123", strategy.MergedExtra)
}

func TestBuildStrategyNeedsTwo(t *testing.T) {
	_, err := BuildStrategy([]records.Record{{Key: "A"}})
	assert.Error(t, err)
}

func TestBuildStrategyDeterministic(t *testing.T) {
	a := records.Record{Key: "A", Title: "t", Date: "2020"}
	b := records.Record{Key: "B", Title: "t", Volume: "7"}
	c := records.Record{Key: "C", Title: "t", DOI: "10.1/x"}

	first, err := BuildStrategy([]records.Record{a, b, c})
	require.NoError(t, err)
	second, err := BuildStrategy([]records.Record{c, b, a})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExecuteMergeDryRun(t *testing.T) {
	lib := memory.NewWith(
		records.Record{Key: "A", Title: "t", DOI: "10.1/x"},
		records.Record{Key: "B", Title: "t", Date: "2021", Tags: []string{"ml"}},
	)
	strategy, err := BuildStrategy(mustList(t, lib))
	require.NoError(t, err)

	preview, err := ExecuteMerge(context.Background(), lib, strategy, MergeOptions{DryRun: true, DeleteDonors: true})
	require.NoError(t, err)
	assert.Equal(t, "2021", preview.Date)
	assert.Equal(t, []string{"ml"}, preview.Tags)

	assert.Equal(t, memory.Counters{}, lib.Writes(), "dry run must not write")
	assert.Equal(t, 2, lib.Len())
}

func TestExecuteMergeUpdatesThenDeletes(t *testing.T) {
	lib := memory.NewWith(
		records.Record{Key: "A", Title: "t", DOI: "10.1/x"},
		records.Record{Key: "B", Title: "t", Date: "2021"},
	)
	strategy, err := BuildStrategy(mustList(t, lib))
	require.NoError(t, err)

	merged, err := ExecuteMerge(context.Background(), lib, strategy, MergeOptions{DeleteDonors: true})
	require.NoError(t, err)
	assert.Equal(t, "A", merged.Key)
	assert.Equal(t, "2021", merged.Date)
	assert.Equal(t, 2, merged.Version)

	writes := lib.Writes()
	assert.Equal(t, 1, writes.Updates)
	assert.Equal(t, 1, writes.Deletes)
	assert.Equal(t, 1, lib.Len())
}

func TestExecuteMergeKeepsDonorsWithoutDeleteFlag(t *testing.T) {
	lib := memory.NewWith(
		records.Record{Key: "A", Title: "t", DOI: "10.1/x"},
		records.Record{Key: "B", Title: "t", Date: "2021"},
	)
	strategy, err := BuildStrategy(mustList(t, lib))
	require.NoError(t, err)

	_, err = ExecuteMerge(context.Background(), lib, strategy, MergeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, lib.Len())
	assert.Zero(t, lib.Writes().Deletes)
}

func TestExecuteMergeUpdateFailureAbortsDeletes(t *testing.T) {
	lib := memory.NewWith(
		records.Record{Key: "A", Title: "t", DOI: "10.1/x"},
		records.Record{Key: "B", Title: "t", Date: "2021"},
	)
	strategy, err := BuildStrategy(mustList(t, lib))
	require.NoError(t, err)

	// Simulate a concurrent edit between Get and Update.
	conflicting := &conflictingLibrary{Library: lib}
	_, err = ExecuteMerge(context.Background(), conflicting, strategy, MergeOptions{DeleteDonors: true})
	require.Error(t, err)
	assert.Equal(t, 2, lib.Len(), "donors survive a failed update")
	assert.Zero(t, lib.Writes().Deletes)
}

// conflictingLibrary bumps the target's version after every Get so the
// following Update always conflicts.
type conflictingLibrary struct {
	*memory.Library
}

func (c *conflictingLibrary) Get(ctx context.Context, key string) (records.Record, error) {
	rec, err := c.Library.Get(ctx, key)
	if err == nil {
		c.Library.BumpVersion(key)
	}
	return rec, err
}

func mustList(t *testing.T, lib *memory.Library) []records.Record {
	t.Helper()
	recs, err := lib.List(context.Background(), gateway.Filter{})
	require.NoError(t, err)
	return recs
}
