// Package organize applies library hygiene that goes beyond single fields,
// currently keyword-based auto-tagging over titles and abstracts.
package organize

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bibtidy/bibtidy/pkg/gateway"
	"github.com/bibtidy/bibtidy/pkg/logging"
	"github.com/bibtidy/bibtidy/pkg/records"
)

// DefaultKeywordMap maps tags to the phrases that suggest them. Matching
// is case-insensitive over title plus abstract.
var DefaultKeywordMap = map[string][]string{
	"machine-learning": {"machine learning", "neural network", "deep learning", "artificial intelligence"},
	"climate-change":   {"climate change", "global warming", "carbon emissions", "greenhouse gas"},
	"public-health":    {"public health", "epidemiology", "disease prevention", "healthcare"},
	"education":        {"pedagogy", "teaching", "curriculum", "student"},
	"economics":        {"economic", "market", "gdp", "inflation", "monetary"},
	"neuroscience":     {"brain", "neural", "cognitive", "neuron", "fmri"},
	"genetics":         {"gene", "dna", "genome", "genetic", "mutation"},
}

// Suggestion is the proposed tag additions for one record.
type Suggestion struct {
	Key   string   `json:"key" yaml:"key"`
	Title string   `json:"title,omitempty" yaml:"title,omitempty"`
	Tags  []string `json:"tags" yaml:"tags"`
}

// TagStats summarizes an auto-tag run.
type TagStats struct {
	Total       int          `json:"total" yaml:"total"`
	Tagged      int          `json:"tagged" yaml:"tagged"`
	Errors      int          `json:"errors" yaml:"errors"`
	Suggestions []Suggestion `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// Tagger suggests and applies tags from a keyword map.
type Tagger struct {
	lib      gateway.Library
	keywords map[string][]string
	dryRun   bool
	logger   *zerolog.Logger
}

// Option configures a Tagger.
type Option func(*Tagger)

// WithKeywordMap overrides the default tag-to-keywords map.
func WithKeywordMap(m map[string][]string) Option {
	return func(t *Tagger) {
		if len(m) > 0 {
			t.keywords = m
		}
	}
}

// WithDryRun toggles preview mode.
func WithDryRun(dryRun bool) Option {
	return func(t *Tagger) { t.dryRun = dryRun }
}

// WithLogger sets the tagger logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(t *Tagger) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New creates a Tagger.
func New(lib gateway.Library, opts ...Option) *Tagger {
	t := &Tagger{
		lib:      lib,
		keywords: DefaultKeywordMap,
		dryRun:   true,
		logger:   logging.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AutoTag scans each record's title and abstract for keywords and unions
// the matching tags into the record. Tags already present are never
// suggested again, so the operation is idempotent.
func (t *Tagger) AutoTag(ctx context.Context, recs []records.Record) (*TagStats, error) {
	stats := &TagStats{Total: len(recs)}

	for i := range recs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := &recs[i]

		suggested := t.suggest(rec)
		if len(suggested) == 0 {
			continue
		}
		stats.Suggestions = append(stats.Suggestions, Suggestion{
			Key:   rec.Key,
			Title: rec.Title,
			Tags:  suggested,
		})

		updated := rec.Clone()
		updated.AddTags(suggested...)
		if _, written, err := gateway.Apply(ctx, t.lib, updated, rec.Version, t.dryRun); err != nil {
			stats.Errors++
			t.logger.Warn().Err(err).Str("key", rec.Key).Msg("tag update failed")
		} else if written || t.dryRun {
			stats.Tagged++
		}
	}

	t.logger.Info().
		Int("total", stats.Total).
		Int("tagged", stats.Tagged).
		Bool("dry_run", t.dryRun).
		Msg("auto-tag run complete")
	return stats, nil
}

// suggest returns the sorted tags whose keywords appear in the record's
// title or abstract and are not already on the record.
func (t *Tagger) suggest(rec *records.Record) []string {
	text := strings.ToLower(rec.Title + " " + rec.AbstractNote)

	var suggested []string
	for tag, keywords := range t.keywords {
		if rec.HasTag(tag) {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				suggested = append(suggested, tag)
				break
			}
		}
	}
	sort.Strings(suggested)
	return suggested
}
