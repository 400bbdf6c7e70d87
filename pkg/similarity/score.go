// Package similarity computes composite similarity scores between
// bibliographic records from title text, author-set overlap, and identifier
// equality. Scoring is pure and symmetric: score(a, b) == score(b, a).
package similarity

import (
	"strings"

	"github.com/bibtidy/bibtidy/pkg/errors"
	"github.com/bibtidy/bibtidy/pkg/normalize"
	"github.com/bibtidy/bibtidy/pkg/records"
)

// Default component weights. Title similarity dominates author overlap.
const (
	DefaultTitleWeight  = 0.7
	DefaultAuthorWeight = 0.3
)

// Score is the comparison result for one unordered record pair.
type Score struct {
	KeyA string `json:"key_a" yaml:"key_a"`
	KeyB string `json:"key_b" yaml:"key_b"`

	// Composite is the weighted overall similarity in [0,1].
	Composite float64 `json:"composite" yaml:"composite"`

	// Component scores.
	Title    float64 `json:"title" yaml:"title"`
	Authors  float64 `json:"authors" yaml:"authors"`
	DOIMatch bool    `json:"doi_match" yaml:"doi_match"`

	// Reason is a human-readable explanation of the dominant signal.
	Reason string `json:"reason" yaml:"reason"`
}

// Scorer computes record similarity with configurable component weights.
// The zero value is not usable; construct with New.
type Scorer struct {
	titleWeight  float64
	authorWeight float64
}

// New creates a Scorer. Weights must be non-negative, sum to 1, and the
// title weight must be at least the author weight.
func New(titleWeight, authorWeight float64) (*Scorer, error) {
	if titleWeight < 0 || authorWeight < 0 {
		return nil, errors.NewConfigError("similarity", "weights must be non-negative", nil)
	}
	sum := titleWeight + authorWeight
	if sum < 0.999 || sum > 1.001 {
		return nil, errors.NewConfigError("similarity", "weights must sum to 1", nil)
	}
	if titleWeight < authorWeight {
		return nil, errors.NewConfigError("similarity", "title weight must be at least author weight", nil)
	}
	return &Scorer{titleWeight: titleWeight, authorWeight: authorWeight}, nil
}

// Default returns a Scorer with the standard weights.
func Default() *Scorer {
	s, _ := New(DefaultTitleWeight, DefaultAuthorWeight)
	return s
}

// Score compares two records. DOI equality is authoritative: when both
// records carry the same non-empty cleaned DOI the composite is 1.0
// regardless of the other components.
func (s *Scorer) Score(a, b *records.Record) Score {
	result := Score{KeyA: a.Key, KeyB: b.Key}

	doiA := strings.ToLower(normalize.CleanDOI(a.DOI))
	doiB := strings.ToLower(normalize.CleanDOI(b.DOI))
	if doiA != "" && doiB != "" && doiA == doiB {
		result.DOIMatch = true
		result.Composite = 1.0
		result.Title = 1.0
		result.Authors = 1.0
		result.Reason = "identical DOI"
		return result
	}

	titleA := normalize.Title(a.Title)
	titleB := normalize.Title(b.Title)
	if titleA == "" || titleB == "" {
		result.Reason = "missing title"
		return result
	}
	result.Title = ratio(titleA, titleB)

	result.Authors = jaccard(a.AuthorLastNames(), b.AuthorLastNames())

	result.Composite = s.titleWeight*result.Title + s.authorWeight*result.Authors
	switch {
	case result.Title > 0.95 && result.Authors > 0.7:
		result.Reason = "title and authors match"
	case result.Title > 0.85:
		result.Reason = "similar titles"
	default:
		result.Reason = "partial match"
	}

	return result
}

// jaccard computes set overlap over normalized last names.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, name := range a {
		setA[name] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, name := range b {
		setB[name] = struct{}{}
	}

	intersection := 0
	for name := range setA {
		if _, ok := setB[name]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
