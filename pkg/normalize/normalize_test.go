package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bibtidy/bibtidy/pkg/normalize"
	"github.com/bibtidy/bibtidy/pkg/records"
)

func TestCleanDOI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10.1234/abc", "10.1234/abc"},
		{"https://doi.org/10.1234/abc", "10.1234/abc"},
		{"http://doi.org/10.1234/abc", "10.1234/abc"},
		{"doi:10.1234/abc", "10.1234/abc"},
		{"  10.1234/abc  ", "10.1234/abc"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalize.CleanDOI(tt.in))
	}
}

func TestValidDOI(t *testing.T) {
	assert.True(t, normalize.ValidDOI("10.1234/journal.2021.042"))
	assert.True(t, normalize.ValidDOI("https://doi.org/10.48550/arXiv.2101.00001"))
	assert.False(t, normalize.ValidDOI("10.12/too-short-registrant"))
	assert.False(t, normalize.ValidDOI("11.1234/wrong-prefix"))
	assert.False(t, normalize.ValidDOI("10.1234/"))
	assert.False(t, normalize.ValidDOI(""))
}

func TestExtractDOI(t *testing.T) {
	t.Run("from DOI field", func(t *testing.T) {
		got := normalize.ExtractDOI("doi:10.1/x", "", "")
		assert.Equal(t, "10.1/x", got)
	})

	t.Run("from extra field", func(t *testing.T) {
		got := normalize.ExtractDOI("", "Citation Count: 4\nDOI: 10.5555/deep", "")
		assert.Equal(t, "10.5555/deep", got)
	})

	t.Run("from url field", func(t *testing.T) {
		got := normalize.ExtractDOI("", "", "https://doi.org/10.9/via-url")
		assert.Equal(t, "10.9/via-url", got)
	})

	t.Run("absent", func(t *testing.T) {
		assert.Equal(t, "", normalize.ExtractDOI("", "no identifiers here", "https://example.com"))
	})
}

func TestValidURL(t *testing.T) {
	assert.True(t, normalize.ValidURL("https://example.com/paper"))
	assert.False(t, normalize.ValidURL("example.com/paper"))
	assert.False(t, normalize.ValidURL("not a url"))
}

func TestDateNormalization(t *testing.T) {
	tests := []struct {
		in     string
		target normalize.DateFormat
		want   string
	}{
		{"2021", normalize.DateFormatFull, "2021"},
		{"2021-03", normalize.DateFormatFull, "2021-03"},
		{"2021-03-09", normalize.DateFormatFull, "2021-03-09"},
		{"March 9, 2021", normalize.DateFormatFull, "2021-03-09"},
		{"March 2021", normalize.DateFormatFull, "2021-03"},
		{"Sep 2019", normalize.DateFormatFull, "2019-09"},
		{"03/09/2021", normalize.DateFormatFull, "2021-03"},
		{"2021-03-09", normalize.DateFormatMonth, "2021-03"},
		{"March 9, 2021", normalize.DateFormatYear, "2021"},
		{"no date here", normalize.DateFormatFull, ""},
	}

	for _, tt := range tests {
		t.Run(tt.in+"->"+string(tt.target), func(t *testing.T) {
			assert.Equal(t, tt.want, normalize.Date(tt.in, tt.target))
		})
	}
}

func TestDateNormalizationIsIdempotent(t *testing.T) {
	inputs := []string{"2021", "2021-03", "2021-03-09", "March 9, 2021", "Sep 2019"}
	for _, format := range []normalize.DateFormat{
		normalize.DateFormatFull, normalize.DateFormatMonth, normalize.DateFormatYear,
	} {
		for _, in := range inputs {
			once := normalize.Date(in, format)
			twice := normalize.Date(once, format)
			assert.Equal(t, once, twice, "normalize(normalize(%q)) under %s", in, format)
		}
	}
}

func TestRecognizedDate(t *testing.T) {
	assert.True(t, normalize.RecognizedDate("2021"))
	assert.True(t, normalize.RecognizedDate("2021-03-09"))
	assert.True(t, normalize.RecognizedDate("03/09/2021"))
	assert.True(t, normalize.RecognizedDate("March 9, 2021"))
	assert.False(t, normalize.RecognizedDate("9th of March"))
	assert.False(t, normalize.RecognizedDate("2021-3"))
}

func TestName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"john SMITH", "John Smith"},
		{"ludwig VAN beethoven", "Ludwig van Beethoven"},
		{"Van Helsing", "Van Helsing"}, // leading particle stays capitalized
		{"j. r. r. tolkien", "J. R. R. Tolkien"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalize.Name(tt.in))
	}
}

func TestCreators(t *testing.T) {
	in := []records.Creator{
		{CreatorType: "author", FirstName: "ada", LastName: "LOVELACE"},
		{CreatorType: "author", FirstName: "Charles", LastName: "Babbage"},
	}

	out, changed := normalize.Creators(in)
	assert.True(t, changed)
	assert.Equal(t, "Ada", out[0].FirstName)
	assert.Equal(t, "Lovelace", out[0].LastName)
	assert.Equal(t, in[1], out[1])

	again, changed := normalize.Creators(out)
	assert.False(t, changed)
	assert.Equal(t, out, again)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "foo", normalize.Title("Foo."))
	assert.Equal(t, "a study of things", normalize.Title("  A Study   of Things! "))
	assert.Equal(t, "uber alles", normalize.Title("Über Alles"))
	assert.Equal(t, normalize.Title("Foo"), normalize.Title("Foo."))
}
