package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibtidy/bibtidy/pkg/records"
)

func article(key, title, doi string, authors ...string) records.Record {
	r := records.Record{Key: key, ItemType: records.ItemTypeJournalArticle, Title: title, DOI: doi}
	for _, last := range authors {
		r.Creators = append(r.Creators, records.Creator{CreatorType: "author", LastName: last})
	}
	return r
}

func TestDetectGroupsByDOI(t *testing.T) {
	det, err := NewDetector(nil, DefaultThreshold)
	require.NoError(t, err)

	groups := det.Detect([]records.Record{
		article("B", "Completely different title", "10.1000/xyz"),
		article("A", "Another unrelated thing", "10.1000/XYZ"),
		article("C", "A third paper", "10.9999/other"),
	})

	require.Len(t, groups, 1)
	assert.Equal(t, []string{"A", "B"}, groups[0].Keys)
	require.NotEmpty(t, groups[0].Scores)
	assert.True(t, groups[0].Scores[0].DOIMatch)
}

func TestDetectTransitiveClosure(t *testing.T) {
	// A matches B and B matches C on title, so all three group together
	// even if A/C alone might sit on the edge.
	det, err := NewDetector(nil, DefaultThreshold)
	require.NoError(t, err)

	a := article("A", "Deep learning for protein folding", "", "smith", "jones")
	b := article("B", "Deep learning for protein folding.", "", "smith", "jones")
	c := article("C", "Deep learning for protein foldings", "", "smith", "jones")

	groups := det.Detect([]records.Record{a, b, c})
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"A", "B", "C"}, groups[0].Keys)
}

func TestDetectNoPairs(t *testing.T) {
	det, err := NewDetector(nil, DefaultThreshold)
	require.NoError(t, err)

	groups := det.Detect([]records.Record{
		article("A", "Graph neural networks in chemistry", ""),
		article("B", "Bayesian inference for epidemiology", ""),
	})
	assert.Empty(t, groups)

	assert.Empty(t, det.Detect([]records.Record{article("A", "one record only", "")}))
	assert.Empty(t, det.Detect(nil))
}

func TestDetectThresholdInclusive(t *testing.T) {
	// Identical titles with no authors score exactly 0.7 under default
	// weights; a threshold of 0.7 must still link them.
	det, err := NewDetector(nil, 0.7)
	require.NoError(t, err)

	groups := det.Detect([]records.Record{
		article("A", "Exact same title", ""),
		article("B", "Exact same title", ""),
	})
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"A", "B"}, groups[0].Keys)
}

func TestDetectGroupOrdering(t *testing.T) {
	det, err := NewDetector(nil, DefaultThreshold)
	require.NoError(t, err)

	groups := det.Detect([]records.Record{
		article("Z1", "Paper beta", "10.2/b"),
		article("Z2", "Paper beta copy", "10.2/b"),
		article("A1", "Paper alpha", "10.1/a"),
		article("A2", "Paper alpha copy", "10.1/a"),
	})
	require.Len(t, groups, 2)
	assert.Equal(t, "A1", groups[0].Keys[0])
	assert.Equal(t, "Z1", groups[1].Keys[0])
}

func TestNewDetectorValidation(t *testing.T) {
	_, err := NewDetector(nil, 0)
	assert.Error(t, err)
	_, err = NewDetector(nil, 1.5)
	assert.Error(t, err)
}
