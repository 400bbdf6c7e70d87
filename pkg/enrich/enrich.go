// Package enrich fills empty bibliographic fields from external metadata
// sources. Sources are consulted in a fixed priority order and only empty
// fields are ever written; existing values are authoritative.
package enrich

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bibtidy/bibtidy/pkg/errors"
	"github.com/bibtidy/bibtidy/pkg/gateway"
	"github.com/bibtidy/bibtidy/pkg/logging"
	"github.com/bibtidy/bibtidy/pkg/normalize"
	"github.com/bibtidy/bibtidy/pkg/records"
	"github.com/bibtidy/bibtidy/pkg/sources"
)

// Pipeline enriches records through a gateway from an ordered list of
// metadata sources.
type Pipeline struct {
	lib         gateway.Library
	sources     []sources.Source
	fields      []string
	dryRun      bool
	concurrency int
	logger      *zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFields restricts the enrichment target fields.
func WithFields(fields []string) Option {
	return func(p *Pipeline) {
		if len(fields) > 0 {
			p.fields = fields
		}
	}
}

// WithDryRun toggles preview mode. Enabled pipelines never write.
func WithDryRun(dryRun bool) Option {
	return func(p *Pipeline) { p.dryRun = dryRun }
}

// WithConcurrency enriches up to n records in parallel. Source rate
// limiters are shared, so per-source request spacing still holds.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Pipeline. Sources are consulted in the order given.
func New(lib gateway.Library, srcs []sources.Source, opts ...Option) (*Pipeline, error) {
	if lib == nil {
		return nil, errors.NewConfigError("enrich", "library gateway is required", nil)
	}
	if len(srcs) == 0 {
		return nil, errors.NewConfigError("enrich", "at least one source is required", nil)
	}

	p := &Pipeline{
		lib:         lib,
		sources:     srcs,
		fields:      records.DefaultEnrichFields,
		dryRun:      true,
		concurrency: 1,
		logger:      logging.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Enrich processes a batch of records. Per-record failures are recorded in
// the returned stats and never abort the batch; the error return is
// reserved for context cancellation.
func (p *Pipeline) Enrich(ctx context.Context, recs []records.Record) (*Stats, error) {
	started := utc.Now()
	results := make([]Result, len(recs))

	if p.concurrency > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.concurrency)
		var mu sync.Mutex
		for i := range recs {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				r := p.enrichOne(gctx, &recs[i])
				mu.Lock()
				results[i] = r
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range recs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = p.enrichOne(ctx, &recs[i])
		}
	}

	stats := &Stats{StartedAt: started}
	for _, r := range results {
		stats.add(r)
	}
	p.logger.Info().
		Int("total", stats.Total).
		Int("enriched", stats.Enriched).
		Int("skipped", stats.Skipped).
		Int("errors", stats.Errors).
		Bool("dry_run", p.dryRun).
		Msg("enrichment run complete")
	return stats, nil
}

func (p *Pipeline) enrichOne(ctx context.Context, rec *records.Record) Result {
	result := Result{Key: rec.Key, Title: rec.Title, DryRun: p.dryRun}

	doi := normalize.ExtractDOI(rec.DOI, rec.Extra, rec.URL)
	if doi == "" {
		result.Status = StatusSkipped
		result.Reason = "no DOI"
		return result
	}
	result.DOI = doi

	empty := rec.EmptyFields(p.fields)
	if len(empty) == 0 {
		result.Status = StatusSkipped
		result.Reason = "all target fields populated"
		return result
	}

	updated := rec.Clone()
	changes := make(map[string]FieldChange)
	extras := newExtraAdditions()
	var lookupErr error

	for _, src := range p.sources {
		if len(empty) == 0 {
			break
		}
		meta, err := src.LookupDOI(ctx, doi)
		if err != nil {
			p.logger.Warn().Err(err).
				Str("source", src.Name()).
				Str("key", rec.Key).
				Str("doi", doi).
				Msg("source lookup failed")
			if lookupErr == nil {
				lookupErr = err
			}
			continue
		}
		if meta == nil {
			continue
		}

		remaining := empty[:0]
		for _, field := range empty {
			value := strings.TrimSpace(meta.Field(field))
			if value == "" {
				remaining = append(remaining, field)
				continue
			}
			updated.SetField(field, value)
			changes[field] = FieldChange{New: value, Source: src.Name()}
		}
		empty = remaining

		extras.collect(src.Name(), meta)
	}

	if newExtra, contributors := extras.apply(rec.Extra); newExtra != rec.Extra {
		updated.Extra = newExtra
		changes[records.FieldExtra] = FieldChange{
			Old:    rec.Extra,
			New:    newExtra,
			Source: strings.Join(contributors, ","),
		}
	}

	if len(changes) == 0 {
		// A failed lookup is not the same as a source that answered
		// "unknown DOI": the record may well have metadata we could
		// not reach, so the item counts as an error, not a skip.
		if lookupErr != nil {
			result.Status = StatusError
			result.Error = lookupErr.Error()
			return result
		}
		result.Status = StatusSkipped
		result.Reason = "no metadata found"
		return result
	}
	result.Changes = changes

	if _, _, err := gateway.Apply(ctx, p.lib, updated, rec.Version, p.dryRun); err != nil {
		result.Status = StatusError
		result.Error = err.Error()
		return result
	}
	result.Status = StatusEnriched
	return result
}

// extraAdditions gathers extra-field contributions across sources so they
// apply once, in a stable order.
type extraAdditions struct {
	citation       *int
	citationSource string
	labeled        []labeledValue
	contributors   map[string]struct{}
}

type labeledValue struct {
	label, value, source string
}

func newExtraAdditions() *extraAdditions {
	return &extraAdditions{contributors: make(map[string]struct{})}
}

func (e *extraAdditions) collect(source string, meta *sources.RawMetadata) {
	if e.citation == nil && meta.CitationCount != nil {
		count := *meta.CitationCount
		e.citation = &count
		e.citationSource = source
	}
	if meta.SourceID != "" {
		if label := sourceIDLabel(source); label != "" {
			e.labeled = append(e.labeled, labeledValue{label: label, value: meta.SourceID, source: source})
		}
	}
	if meta.TLDR != "" {
		e.labeled = append(e.labeled, labeledValue{label: labelTLDR, value: meta.TLDR, source: source})
	}
}

// apply folds the collected additions into extra and returns it with the
// sorted list of contributing source names.
func (e *extraAdditions) apply(extra string) (string, []string) {
	out := extra
	if e.citation != nil {
		next := upsertCitationCount(out, *e.citation)
		if next != out {
			out = next
			e.contributors[e.citationSource] = struct{}{}
		}
	}
	for _, lv := range e.labeled {
		next := addExtraLabel(out, lv.label, lv.value)
		if next != out {
			out = next
			e.contributors[lv.source] = struct{}{}
		}
	}

	names := make([]string, 0, len(e.contributors))
	for name := range e.contributors {
		names = append(names, name)
	}
	sort.Strings(names)
	return out, names
}

// sourceIDLabel maps a source name to the extra-field label its work
// identifier is stored under.
func sourceIDLabel(source string) string {
	switch source {
	case "openalex":
		return labelOpenAlexID
	case "semanticscholar":
		return labelSemanticScholarID
	}
	return ""
}
