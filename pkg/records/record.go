// Package records defines the bibliographic record model shared by the
// duplicate detector, enrichment pipeline, and quality auditor. Records are
// read-only snapshots of library items; the engine computes patches against
// them and writes back through the library gateway.
package records

import (
	"sort"
	"strings"
)

// Creator is a single author, editor, or other contributor on a record.
// Personal names carry FirstName/LastName; institutional names use the
// single Name field.
type Creator struct {
	CreatorType string `json:"creatorType" yaml:"creator_type"`
	FirstName   string `json:"firstName,omitempty" yaml:"first_name,omitempty"`
	LastName    string `json:"lastName,omitempty" yaml:"last_name,omitempty"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Record is a bibliographic item as held by the remote library.
// Key is the library-assigned stable identifier; Version is the
// monotonic counter used for optimistic-concurrency writes.
type Record struct {
	Key      string `json:"key" yaml:"key"`
	Version  int    `json:"version" yaml:"version"`
	ItemType string `json:"itemType" yaml:"item_type"`

	Creators []Creator `json:"creators,omitempty" yaml:"creators,omitempty"`

	Title            string `json:"title,omitempty" yaml:"title,omitempty"`
	DOI              string `json:"DOI,omitempty" yaml:"doi,omitempty"`
	Date             string `json:"date,omitempty" yaml:"date,omitempty"`
	AbstractNote     string `json:"abstractNote,omitempty" yaml:"abstract_note,omitempty"`
	PublicationTitle string `json:"publicationTitle,omitempty" yaml:"publication_title,omitempty"`
	Volume           string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue            string `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages            string `json:"pages,omitempty" yaml:"pages,omitempty"`
	ISSN             string `json:"ISSN,omitempty" yaml:"issn,omitempty"`
	URL              string `json:"url,omitempty" yaml:"url,omitempty"`
	Extra            string `json:"extra,omitempty" yaml:"extra,omitempty"`

	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Collections []string `json:"collections,omitempty" yaml:"collections,omitempty"`
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() Record {
	out := *r
	if r.Creators != nil {
		out.Creators = make([]Creator, len(r.Creators))
		copy(out.Creators, r.Creators)
	}
	if r.Tags != nil {
		out.Tags = append([]string(nil), r.Tags...)
	}
	if r.Collections != nil {
		out.Collections = append([]string(nil), r.Collections...)
	}
	return out
}

// HasTag reports whether the record carries the given tag.
func (r *Record) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTags unions the given tags into the record's tag set, keeping the
// result sorted. Returns true if the tag set changed.
func (r *Record) AddTags(tags ...string) bool {
	seen := make(map[string]struct{}, len(r.Tags)+len(tags))
	for _, t := range r.Tags {
		seen[t] = struct{}{}
	}
	changed := false
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			changed = true
		}
	}
	if !changed {
		return false
	}
	merged := make([]string, 0, len(seen))
	for t := range seen {
		merged = append(merged, t)
	}
	sort.Strings(merged)
	r.Tags = merged
	return true
}

// AuthorLastNames returns the trimmed, lowercased last names of author and
// editor creators, in record order.
func (r *Record) AuthorLastNames() []string {
	var names []string
	for _, c := range r.Creators {
		if c.CreatorType != "author" && c.CreatorType != "editor" {
			continue
		}
		last := strings.ToLower(strings.TrimSpace(c.LastName))
		if last == "" && c.Name != "" {
			// Institutional or single-field names compare on the whole name.
			last = strings.ToLower(strings.TrimSpace(c.Name))
		}
		if last != "" {
			names = append(names, last)
		}
	}
	return names
}
