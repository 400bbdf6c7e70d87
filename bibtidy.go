// Package bibtidy reconciles, enriches, and audits bibliographic record
// libraries. It detects fuzzy duplicates, merges them deterministically,
// fills missing metadata from CrossRef, OpenAlex, and Semantic Scholar,
// and normalizes author names and dates. All mutating operations default
// to dry-run; writes go through a caller-supplied Library gateway under
// optimistic concurrency.
package bibtidy

import (
	"context"

	"github.com/bibtidy/bibtidy/internal/sources/crossref"
	"github.com/bibtidy/bibtidy/internal/sources/openalex"
	"github.com/bibtidy/bibtidy/internal/sources/semanticscholar"
	"github.com/bibtidy/bibtidy/internal/transport"
	"github.com/bibtidy/bibtidy/pkg/audit"
	"github.com/bibtidy/bibtidy/pkg/dedupe"
	"github.com/bibtidy/bibtidy/pkg/enrich"
	"github.com/bibtidy/bibtidy/pkg/errors"
	"github.com/bibtidy/bibtidy/pkg/gateway"
	"github.com/bibtidy/bibtidy/pkg/logging"
	"github.com/bibtidy/bibtidy/pkg/normalize"
	"github.com/bibtidy/bibtidy/pkg/organize"
	"github.com/bibtidy/bibtidy/pkg/records"
	"github.com/bibtidy/bibtidy/pkg/similarity"
	"github.com/bibtidy/bibtidy/pkg/sources"
)

// Engine is the library maintenance surface.
type Engine interface {
	// FindDuplicates scores all pairs in the filtered library and returns
	// transitive duplicate groups.
	FindDuplicates(ctx context.Context, filter gateway.Filter) ([]dedupe.Group, error)

	// PlanMerge builds a deterministic merge strategy for the given keys.
	PlanMerge(ctx context.Context, keys []string) (*dedupe.MergeStrategy, error)

	// ExecuteMerge applies a merge strategy. Donor deletion only happens
	// when requested and only after the keep record updated successfully.
	ExecuteMerge(ctx context.Context, strategy *dedupe.MergeStrategy, deleteDonors bool) (records.Record, error)

	// Enrich fills empty fields of the filtered records from the
	// configured sources.
	Enrich(ctx context.Context, filter gateway.Filter) (*enrich.Stats, error)

	// EnrichCitationCounts refreshes Citation Count extra lines.
	EnrichCitationCounts(ctx context.Context, filter gateway.Filter) (*enrich.Stats, error)

	// Audit reports quality problems without modifying anything.
	Audit(ctx context.Context, filter gateway.Filter) (*audit.Report, error)

	// NormalizeAuthors title-cases creator names, keeping particles like
	// "van" and "de" lowercase when not leading.
	NormalizeAuthors(ctx context.Context, filter gateway.Filter) (*NormalizeStats, error)

	// NormalizeDates rewrites dates into the configured target format.
	NormalizeDates(ctx context.Context, filter gateway.Filter) (*NormalizeStats, error)

	// AutoTag suggests and applies tags from keyword matches in titles
	// and abstracts.
	AutoTag(ctx context.Context, filter gateway.Filter) (*organize.TagStats, error)
}

// engine is the internal implementation of the Engine interface.
type engine struct {
	lib    gateway.Library
	cfg    *config
	scorer *similarity.Scorer

	detector *dedupe.Detector
	pipeline *enrich.Pipeline
	auditor  *audit.Auditor
	tagger   *organize.Tagger
}

// New creates an Engine over the given library gateway.
func New(lib gateway.Library, opts ...Option) (Engine, error) {
	if lib == nil {
		return nil, errors.NewConfigError("bibtidy", "library gateway is required", nil)
	}

	cfg := &config{
		similarityThreshold: dedupe.DefaultThreshold,
		titleWeight:         similarity.DefaultTitleWeight,
		authorWeight:        similarity.DefaultAuthorWeight,
		enrichFields:        records.DefaultEnrichFields,
		dateFormat:          normalize.DateFormatFull,
		dryRun:              true,
		concurrency:         1,
		maxRetries:          -1,
		logger:              logging.Default(),
		semanticScholarRate: 1,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	scorer, err := similarity.New(cfg.titleWeight, cfg.authorWeight)
	if err != nil {
		return nil, err
	}
	detector, err := dedupe.NewDetector(scorer, cfg.similarityThreshold)
	if err != nil {
		return nil, err
	}

	tc := newTransport(cfg)
	srcs := cfg.sources
	if len(srcs) == 0 {
		srcs = defaultSources(cfg, tc)
	}

	pipeline, err := enrich.New(lib, srcs,
		enrich.WithFields(cfg.enrichFields),
		enrich.WithDryRun(cfg.dryRun),
		enrich.WithConcurrency(cfg.concurrency),
		enrich.WithLogger(cfg.logger),
	)
	if err != nil {
		return nil, err
	}

	auditOpts := []audit.Option{audit.WithLogger(cfg.logger)}
	if cfg.requiredFields != nil {
		auditOpts = append(auditOpts, audit.WithRequiredFields(cfg.requiredFields))
	}
	if cfg.checkURLs {
		auditOpts = append(auditOpts, audit.WithURLProber(tc))
	}
	if cfg.checkDOIs {
		auditOpts = append(auditOpts, audit.WithDOIResolution(tc))
	}

	tagOpts := []organize.Option{
		organize.WithDryRun(cfg.dryRun),
		organize.WithLogger(cfg.logger),
	}
	if cfg.keywordMap != nil {
		tagOpts = append(tagOpts, organize.WithKeywordMap(cfg.keywordMap))
	}

	return &engine{
		lib:      lib,
		cfg:      cfg,
		scorer:   scorer,
		detector: detector,
		pipeline: pipeline,
		auditor:  audit.New(auditOpts...),
		tagger:   organize.New(lib, tagOpts...),
	}, nil
}

func newTransport(cfg *config) *transport.Client {
	ua := "bibtidy/1.0"
	if cfg.contactEmail != "" {
		ua += " (mailto:" + cfg.contactEmail + ")"
	}
	opts := []transport.Option{transport.WithUserAgent(ua)}
	if cfg.httpClient != nil {
		opts = append(opts, transport.WithHTTPClient(cfg.httpClient))
	} else if cfg.apiTimeout > 0 {
		opts = append(opts, transport.WithTimeout(cfg.apiTimeout))
	}
	if cfg.maxRetries >= 0 {
		opts = append(opts, transport.WithMaxRetries(uint64(cfg.maxRetries)))
	}
	return transport.New(opts...)
}

// defaultSources builds the standard client stack in enrichment priority
// order. Everything is cached per run; Semantic Scholar's keyless tier is
// limited to one request per second.
func defaultSources(cfg *config, tc *transport.Client) []sources.Source {
	return []sources.Source{
		sources.WithCache(sources.Limit(crossref.New(tc), cfg.crossrefRate)),
		sources.WithCache(sources.Limit(openalex.New(tc, cfg.contactEmail), cfg.openAlexRate)),
		sources.WithCache(sources.Limit(semanticscholar.New(tc), cfg.semanticScholarRate)),
	}
}

func (e *engine) FindDuplicates(ctx context.Context, filter gateway.Filter) ([]dedupe.Group, error) {
	recs, err := e.lib.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return e.detector.Detect(recs), nil
}

func (e *engine) PlanMerge(ctx context.Context, keys []string) (*dedupe.MergeStrategy, error) {
	group := make([]records.Record, 0, len(keys))
	for _, key := range keys {
		rec, err := e.lib.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		group = append(group, rec)
	}
	return dedupe.BuildStrategy(group)
}

func (e *engine) ExecuteMerge(ctx context.Context, strategy *dedupe.MergeStrategy, deleteDonors bool) (records.Record, error) {
	return dedupe.ExecuteMerge(ctx, e.lib, strategy, dedupe.MergeOptions{
		DryRun:       e.cfg.dryRun,
		DeleteDonors: deleteDonors,
	})
}

func (e *engine) Enrich(ctx context.Context, filter gateway.Filter) (*enrich.Stats, error) {
	recs, err := e.listEnrichable(ctx, filter)
	if err != nil {
		return nil, err
	}
	return e.pipeline.Enrich(ctx, recs)
}

func (e *engine) EnrichCitationCounts(ctx context.Context, filter gateway.Filter) (*enrich.Stats, error) {
	recs, err := e.listEnrichable(ctx, filter)
	if err != nil {
		return nil, err
	}
	return e.pipeline.EnrichCitationCounts(ctx, recs)
}

func (e *engine) Audit(ctx context.Context, filter gateway.Filter) (*audit.Report, error) {
	recs, err := e.lib.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return e.auditor.Audit(ctx, recs)
}

func (e *engine) AutoTag(ctx context.Context, filter gateway.Filter) (*organize.TagStats, error) {
	recs, err := e.lib.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return e.tagger.AutoTag(ctx, recs)
}

// listEnrichable narrows a filter to the item types enrichment handles
// when the caller does not name types explicitly.
func (e *engine) listEnrichable(ctx context.Context, filter gateway.Filter) ([]records.Record, error) {
	if len(filter.ItemTypes) == 0 {
		filter.ItemTypes = records.EnrichableItemTypes
	}
	return e.lib.List(ctx, filter)
}
