package records_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bibtidy/bibtidy/pkg/records"
)

func testRecord(key string) records.Record {
	return records.Record{
		Key:      key,
		Version:  1,
		ItemType: "journalArticle",
		Title:    "A Study of Things",
		DOI:      "10.1234/things.1",
		Creators: []records.Creator{
			{CreatorType: "author", FirstName: "Ada", LastName: "Lovelace"},
			{CreatorType: "author", FirstName: "Charles", LastName: "Babbage"},
			{CreatorType: "translator", LastName: "Ignored"},
		},
		Tags: []string{"computing"},
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := testRecord("K1")
	clone := orig.Clone()

	clone.Creators[0].LastName = "Changed"
	clone.Tags[0] = "changed"
	clone.Title = "Changed"

	assert.Equal(t, "Lovelace", orig.Creators[0].LastName)
	assert.Equal(t, "computing", orig.Tags[0])
	assert.Equal(t, "A Study of Things", orig.Title)
}

func TestFieldAccessByName(t *testing.T) {
	r := testRecord("K1")

	assert.Equal(t, "A Study of Things", r.Field(records.FieldTitle))
	assert.Equal(t, "10.1234/things.1", r.Field(records.FieldDOI))
	assert.Equal(t, "", r.Field("noSuchField"))

	assert.True(t, r.SetField(records.FieldVolume, "12"))
	assert.Equal(t, "12", r.Volume)
	assert.False(t, r.SetField("noSuchField", "x"))
}

func TestEmptyFields(t *testing.T) {
	r := testRecord("K1")
	r.AbstractNote = "  " // whitespace counts as empty

	empty := r.EmptyFields([]string{records.FieldTitle, records.FieldAbstractNote, records.FieldVolume})
	assert.Equal(t, []string{records.FieldAbstractNote, records.FieldVolume}, empty)
	assert.False(t, r.HasField(records.FieldAbstractNote))
}

func TestNonEmptyFieldCount(t *testing.T) {
	r := records.Record{Key: "K1", Title: "T", DOI: "10.1/x"}
	assert.Equal(t, 2, r.NonEmptyFieldCount())
}

func TestAuthorLastNames(t *testing.T) {
	r := testRecord("K1")
	assert.Equal(t, []string{"lovelace", "babbage"}, r.AuthorLastNames())
}

func TestAddTags(t *testing.T) {
	r := testRecord("K1")

	changed := r.AddTags("history", "computing")
	assert.True(t, changed)
	assert.Equal(t, []string{"computing", "history"}, r.Tags)

	assert.False(t, r.AddTags("computing"))
	assert.True(t, r.HasTag("history"))
}
