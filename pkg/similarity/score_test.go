package similarity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibtidy/bibtidy/pkg/records"
	"github.com/bibtidy/bibtidy/pkg/similarity"
)

func paper(key, title, doi string, authors ...string) records.Record {
	r := records.Record{Key: key, ItemType: "journalArticle", Title: title, DOI: doi}
	for _, a := range authors {
		r.Creators = append(r.Creators, records.Creator{CreatorType: "author", LastName: a})
	}
	return r
}

func TestScoreIsSymmetric(t *testing.T) {
	scorer := similarity.Default()

	pairs := [][2]records.Record{
		{paper("A", "Deep Learning", "", "LeCun", "Bengio"), paper("B", "Deep learning", "", "Lecun")},
		{paper("A", "Foo", "10.1/X"), paper("B", "Bar", "10.1/X")},
		{paper("A", "Something Else", "", "Smith"), paper("B", "Entirely Different", "", "Jones")},
		{paper("A", "", ""), paper("B", "Has Title", "")},
	}

	for _, pair := range pairs {
		ab := scorer.Score(&pair[0], &pair[1])
		ba := scorer.Score(&pair[1], &pair[0])
		assert.Equal(t, ab.Composite, ba.Composite)
		assert.Equal(t, ab.Title, ba.Title)
		assert.Equal(t, ab.Authors, ba.Authors)
	}
}

func TestDOIEqualityIsAuthoritative(t *testing.T) {
	scorer := similarity.Default()

	a := paper("A", "Foo", "10.1/X")
	b := paper("B", "Completely Unrelated Title", "https://doi.org/10.1/X")

	score := scorer.Score(&a, &b)
	assert.True(t, score.DOIMatch)
	assert.Equal(t, 1.0, score.Composite)
	assert.Equal(t, "identical DOI", score.Reason)
}

func TestDifferentDOIsDoNotForceMatch(t *testing.T) {
	scorer := similarity.Default()

	a := paper("A", "Foo", "10.1/X")
	b := paper("B", "Foo", "10.1/Y")

	score := scorer.Score(&a, &b)
	assert.False(t, score.DOIMatch)
	assert.Less(t, score.Composite, 1.0)
}

func TestNearIdenticalTitles(t *testing.T) {
	scorer := similarity.Default()

	a := paper("A", "Attention Is All You Need", "", "Vaswani", "Shazeer")
	b := paper("B", "Attention is all you need.", "", "Vaswani", "Shazeer")

	score := scorer.Score(&a, &b)
	assert.Equal(t, 1.0, score.Title)
	assert.Equal(t, 1.0, score.Authors)
	assert.InDelta(t, 1.0, score.Composite, 1e-9)
}

func TestAuthorOverlapIsJaccard(t *testing.T) {
	scorer := similarity.Default()

	a := paper("A", "Same Title Here", "", "Smith", "Jones")
	b := paper("B", "Same Title Here", "", "Smith", "Brown")

	score := scorer.Score(&a, &b)
	// intersection {smith}=1, union {smith,jones,brown}=3
	assert.InDelta(t, 1.0/3.0, score.Authors, 1e-9)
	assert.Equal(t, 1.0, score.Title)
	assert.InDelta(t, 0.7+0.3/3.0, score.Composite, 1e-9)
}

func TestMissingTitleScoresZero(t *testing.T) {
	scorer := similarity.Default()

	a := paper("A", "", "", "Smith")
	b := paper("B", "Some Title", "", "Smith")

	score := scorer.Score(&a, &b)
	assert.Equal(t, 0.0, score.Composite)
	assert.Equal(t, "missing title", score.Reason)
}

func TestWeightValidation(t *testing.T) {
	_, err := similarity.New(0.3, 0.7)
	require.Error(t, err, "author weight may not exceed title weight")

	_, err = similarity.New(0.6, 0.3)
	require.Error(t, err, "weights must sum to 1")

	s, err := similarity.New(0.5, 0.5)
	require.NoError(t, err)
	require.NotNil(t, s)
}
