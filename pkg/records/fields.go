package records

import "strings"

// Scalar field names understood by the engine. These mirror the remote
// library's field vocabulary, so enrichment targets and merge plans can be
// expressed as plain field-name strings.
const (
	FieldTitle            = "title"
	FieldDOI              = "DOI"
	FieldDate             = "date"
	FieldAbstractNote     = "abstractNote"
	FieldPublicationTitle = "publicationTitle"
	FieldVolume           = "volume"
	FieldIssue            = "issue"
	FieldPages            = "pages"
	FieldISSN             = "ISSN"
	FieldURL              = "url"
	FieldExtra            = "extra"
)

// Item types with special handling somewhere in the engine.
const (
	ItemTypeJournalArticle  = "journalArticle"
	ItemTypeConferencePaper = "conferencePaper"
	ItemTypeBook            = "book"
	ItemTypeBookSection     = "bookSection"
	ItemTypePreprint        = "preprint"
)

// ScalarFields lists every scalar field addressable by name.
var ScalarFields = []string{
	FieldTitle,
	FieldDOI,
	FieldDate,
	FieldAbstractNote,
	FieldPublicationTitle,
	FieldVolume,
	FieldIssue,
	FieldPages,
	FieldISSN,
	FieldURL,
	FieldExtra,
}

// DefaultEnrichFields are the fields the enrichment pipeline fills when the
// caller does not name a target set.
var DefaultEnrichFields = []string{
	FieldAbstractNote,
	FieldDate,
	FieldPublicationTitle,
	FieldVolume,
	FieldIssue,
	FieldPages,
	FieldISSN,
}

// RequiredFields maps item types to the fields a complete record of that
// type must carry. Creators are checked separately since they are not a
// scalar field.
var RequiredFields = map[string][]string{
	ItemTypeJournalArticle:  {FieldTitle, FieldDate, FieldPublicationTitle},
	ItemTypeConferencePaper: {FieldTitle, FieldDate, FieldPublicationTitle},
	ItemTypePreprint:        {FieldTitle, FieldDate},
	ItemTypeBook:            {FieldTitle, FieldDate},
}

// EnrichableItemTypes are the item types the enrichment pipeline and
// duplicate detector consider by default.
var EnrichableItemTypes = []string{
	ItemTypeJournalArticle,
	ItemTypeConferencePaper,
	ItemTypeBook,
	ItemTypeBookSection,
	ItemTypePreprint,
}

// Field returns the value of the named scalar field, or "" for an
// unknown name.
func (r *Record) Field(name string) string {
	switch name {
	case FieldTitle:
		return r.Title
	case FieldDOI:
		return r.DOI
	case FieldDate:
		return r.Date
	case FieldAbstractNote:
		return r.AbstractNote
	case FieldPublicationTitle:
		return r.PublicationTitle
	case FieldVolume:
		return r.Volume
	case FieldIssue:
		return r.Issue
	case FieldPages:
		return r.Pages
	case FieldISSN:
		return r.ISSN
	case FieldURL:
		return r.URL
	case FieldExtra:
		return r.Extra
	}
	return ""
}

// SetField assigns the named scalar field. Unknown names are ignored and
// reported as false.
func (r *Record) SetField(name, value string) bool {
	switch name {
	case FieldTitle:
		r.Title = value
	case FieldDOI:
		r.DOI = value
	case FieldDate:
		r.Date = value
	case FieldAbstractNote:
		r.AbstractNote = value
	case FieldPublicationTitle:
		r.PublicationTitle = value
	case FieldVolume:
		r.Volume = value
	case FieldIssue:
		r.Issue = value
	case FieldPages:
		r.Pages = value
	case FieldISSN:
		r.ISSN = value
	case FieldURL:
		r.URL = value
	case FieldExtra:
		r.Extra = value
	default:
		return false
	}
	return true
}

// HasField reports whether the named scalar field holds a non-empty value.
func (r *Record) HasField(name string) bool {
	return trimmed(r.Field(name)) != ""
}

// EmptyFields returns the subset of names whose field is empty on the record.
func (r *Record) EmptyFields(names []string) []string {
	var empty []string
	for _, name := range names {
		if !r.HasField(name) {
			empty = append(empty, name)
		}
	}
	return empty
}

// NonEmptyFieldCount counts scalar fields holding a value, used for
// completeness comparisons during keep-record selection.
func (r *Record) NonEmptyFieldCount() int {
	n := 0
	for _, name := range ScalarFields {
		if r.HasField(name) {
			n++
		}
	}
	return n
}

// IsItemType reports whether the record's type is one of the given types.
func (r *Record) IsItemType(types []string) bool {
	for _, t := range types {
		if r.ItemType == t {
			return true
		}
	}
	return false
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
