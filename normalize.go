package bibtidy

import (
	"context"

	"github.com/bibtidy/bibtidy/pkg/gateway"
	"github.com/bibtidy/bibtidy/pkg/normalize"
	"github.com/bibtidy/bibtidy/pkg/records"
)

// NormalizeChange records one field rewrite.
type NormalizeChange struct {
	Key   string `json:"key" yaml:"key"`
	Field string `json:"field" yaml:"field"`
	Old   string `json:"old" yaml:"old"`
	New   string `json:"new" yaml:"new"`
}

// NormalizeStats summarizes a normalization run.
type NormalizeStats struct {
	Total   int               `json:"total" yaml:"total"`
	Changed int               `json:"changed" yaml:"changed"`
	Errors  int               `json:"errors" yaml:"errors"`
	Changes []NormalizeChange `json:"changes,omitempty" yaml:"changes,omitempty"`
	DryRun  bool              `json:"dry_run" yaml:"dry_run"`
}

func (e *engine) NormalizeAuthors(ctx context.Context, filter gateway.Filter) (*NormalizeStats, error) {
	return e.normalizeRecords(ctx, filter, func(rec *records.Record) []NormalizeChange {
		normalized, changed := normalize.Creators(rec.Creators)
		if !changed {
			return nil
		}
		var changes []NormalizeChange
		for i := range rec.Creators {
			before := creatorDisplay(rec.Creators[i])
			after := creatorDisplay(normalized[i])
			if before != after {
				changes = append(changes, NormalizeChange{
					Key: rec.Key, Field: "creators", Old: before, New: after,
				})
			}
		}
		rec.Creators = normalized
		return changes
	})
}

func (e *engine) NormalizeDates(ctx context.Context, filter gateway.Filter) (*NormalizeStats, error) {
	target := e.cfg.dateFormat
	return e.normalizeRecords(ctx, filter, func(rec *records.Record) []NormalizeChange {
		if rec.Date == "" {
			return nil
		}
		normalized := normalize.Date(rec.Date, target)
		if normalized == "" || normalized == rec.Date {
			return nil
		}
		change := NormalizeChange{Key: rec.Key, Field: records.FieldDate, Old: rec.Date, New: normalized}
		rec.Date = normalized
		return []NormalizeChange{change}
	})
}

// normalizeRecords runs a pure rewrite over the filtered records and
// writes back the ones it changed, honoring dry-run.
func (e *engine) normalizeRecords(ctx context.Context, filter gateway.Filter, rewrite func(*records.Record) []NormalizeChange) (*NormalizeStats, error) {
	recs, err := e.lib.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	stats := &NormalizeStats{Total: len(recs), DryRun: e.cfg.dryRun}
	for i := range recs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		updated := recs[i].Clone()
		changes := rewrite(&updated)
		if len(changes) == 0 {
			continue
		}

		if _, _, err := gateway.Apply(ctx, e.lib, updated, recs[i].Version, e.cfg.dryRun); err != nil {
			stats.Errors++
			e.cfg.logger.Warn().Err(err).Str("key", recs[i].Key).Msg("normalize write failed")
			continue
		}
		stats.Changed++
		stats.Changes = append(stats.Changes, changes...)
	}

	e.cfg.logger.Info().
		Int("total", stats.Total).
		Int("changed", stats.Changed).
		Int("errors", stats.Errors).
		Bool("dry_run", stats.DryRun).
		Msg("normalization run complete")
	return stats, nil
}

func creatorDisplay(c records.Creator) string {
	if c.Name != "" {
		return c.Name
	}
	if c.FirstName == "" {
		return c.LastName
	}
	return c.FirstName + " " + c.LastName
}
