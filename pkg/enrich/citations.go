package enrich

import (
	"context"
	"strconv"

	"github.com/agentstation/utc"

	"github.com/bibtidy/bibtidy/pkg/gateway"
	"github.com/bibtidy/bibtidy/pkg/normalize"
	"github.com/bibtidy/bibtidy/pkg/records"
	"github.com/bibtidy/bibtidy/pkg/sources"
)

// citationSources is the consultation order for citation counts. OpenAlex
// updates its counts more frequently, so it is asked first.
var citationSources = []string{"openalex", "semanticscholar"}

// EnrichCitationCounts refreshes the Citation Count line in each record's
// extra field. Only the extra field is touched; other fields are left
// alone even when empty.
func (p *Pipeline) EnrichCitationCounts(ctx context.Context, recs []records.Record) (*Stats, error) {
	stats := &Stats{StartedAt: utc.Now()}

	for i := range recs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stats.add(p.enrichCitationCount(ctx, &recs[i]))
	}

	p.logger.Info().
		Int("total", stats.Total).
		Int("updated", stats.Enriched).
		Int("skipped", stats.Skipped).
		Int("errors", stats.Errors).
		Bool("dry_run", p.dryRun).
		Msg("citation count run complete")
	return stats, nil
}

func (p *Pipeline) enrichCitationCount(ctx context.Context, rec *records.Record) Result {
	result := Result{Key: rec.Key, Title: rec.Title, DryRun: p.dryRun}

	doi := normalize.ExtractDOI(rec.DOI, rec.Extra, rec.URL)
	if doi == "" {
		result.Status = StatusSkipped
		result.Reason = "no DOI"
		return result
	}
	result.DOI = doi

	var count *int
	var countSource string
	for _, name := range citationSources {
		src := p.sourceByName(name)
		if src == nil {
			continue
		}
		meta, err := src.LookupDOI(ctx, doi)
		if err != nil {
			p.logger.Warn().Err(err).
				Str("source", name).
				Str("key", rec.Key).
				Msg("citation lookup failed")
			continue
		}
		if meta != nil && meta.CitationCount != nil {
			count = meta.CitationCount
			countSource = name
			break
		}
	}
	if count == nil {
		result.Status = StatusSkipped
		result.Reason = "no citation count available"
		return result
	}

	newExtra := upsertCitationCount(rec.Extra, *count)
	if newExtra == rec.Extra {
		result.Status = StatusSkipped
		result.Reason = "citation count unchanged"
		return result
	}

	updated := rec.Clone()
	updated.Extra = newExtra
	result.Changes = map[string]FieldChange{
		records.FieldExtra: {Old: rec.Extra, New: newExtra, Source: countSource},
	}

	if _, _, err := gateway.Apply(ctx, p.lib, updated, rec.Version, p.dryRun); err != nil {
		result.Status = StatusError
		result.Error = err.Error()
		return result
	}
	result.Status = StatusEnriched
	result.Reason = "citation count " + strconv.Itoa(*count)
	return result
}

func (p *Pipeline) sourceByName(name string) sources.Source {
	for _, src := range p.sources {
		if src.Name() == name {
			return src
		}
	}
	return nil
}
