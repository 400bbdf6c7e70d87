package dedupe

import (
	"context"
	"sort"
	"strings"

	"github.com/bibtidy/bibtidy/pkg/errors"
	"github.com/bibtidy/bibtidy/pkg/gateway"
	"github.com/bibtidy/bibtidy/pkg/records"
)

// MergeStrategy is a deterministic plan for collapsing one duplicate group
// into a single record. Building a strategy never touches the library;
// ExecuteMerge applies it.
type MergeStrategy struct {
	// KeepKey is the record that survives the merge.
	KeepKey string `json:"keep_key" yaml:"keep_key"`

	// DeleteKeys are the donor records, sorted.
	DeleteKeys []string `json:"delete_keys" yaml:"delete_keys"`

	// FieldValues holds the values to fill into the keep record, and
	// FieldSources records which donor each value came from.
	FieldValues  map[string]string `json:"field_values" yaml:"field_values"`
	FieldSources map[string]string `json:"field_sources" yaml:"field_sources"`

	// MergedTags is the sorted union of every member's tags.
	MergedTags []string `json:"merged_tags" yaml:"merged_tags"`

	// MergedExtra joins the distinct extra blocks of all members.
	MergedExtra string `json:"merged_extra" yaml:"merged_extra"`

	// CreatorSource is the donor key whose creators fill an empty keep
	// record, or "" when the keep record already has creators.
	CreatorSource string `json:"creator_source,omitempty" yaml:"creator_source,omitempty"`
}

// extraSeparator joins distinct extra blocks from merged records.
const extraSeparator = "\n---\n"

// BuildStrategy plans the merge of a duplicate group. The keep record is
// the member with a DOI, then the one with the most populated fields, then
// the smallest key. Donors contribute values only to fields the keep record
// leaves empty, consulted in the same preference order.
func BuildStrategy(group []records.Record) (*MergeStrategy, error) {
	if len(group) < 2 {
		return nil, errors.NewValidationError("group", len(group), "merge needs at least two records")
	}

	ordered := make([]records.Record, len(group))
	copy(ordered, group)
	sort.Slice(ordered, func(i, j int) bool { return preferRecord(&ordered[i], &ordered[j]) })

	keep := ordered[0]
	donors := ordered[1:]

	strategy := &MergeStrategy{
		KeepKey:      keep.Key,
		FieldValues:  make(map[string]string),
		FieldSources: make(map[string]string),
	}

	for _, donor := range donors {
		strategy.DeleteKeys = append(strategy.DeleteKeys, donor.Key)
		for _, field := range records.ScalarFields {
			if field == records.FieldExtra {
				continue
			}
			if keep.HasField(field) || strategy.FieldValues[field] != "" {
				continue
			}
			if v := strings.TrimSpace(donor.Field(field)); v != "" {
				strategy.FieldValues[field] = v
				strategy.FieldSources[field] = donor.Key
			}
		}
		if len(keep.Creators) == 0 && strategy.CreatorSource == "" && len(donor.Creators) > 0 {
			strategy.CreatorSource = donor.Key
		}
	}
	sort.Strings(strategy.DeleteKeys)

	strategy.MergedTags = unionTags(ordered)
	strategy.MergedExtra = joinExtras(ordered)

	return strategy, nil
}

// preferRecord orders records by keep priority: DOI presence, then number
// of populated fields, then key.
func preferRecord(a, b *records.Record) bool {
	aDOI, bDOI := a.HasField(records.FieldDOI), b.HasField(records.FieldDOI)
	if aDOI != bDOI {
		return aDOI
	}
	aFields, bFields := a.NonEmptyFieldCount(), b.NonEmptyFieldCount()
	if aFields != bFields {
		return aFields > bFields
	}
	return a.Key < b.Key
}

func unionTags(recs []records.Record) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, r := range recs {
		for _, t := range r.Tags {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

func joinExtras(recs []records.Record) string {
	seen := make(map[string]struct{})
	var blocks []string
	for _, r := range recs {
		block := strings.TrimSpace(r.Extra)
		if block == "" {
			continue
		}
		if _, ok := seen[block]; !ok {
			seen[block] = struct{}{}
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, extraSeparator)
}

// MergeOptions controls ExecuteMerge.
type MergeOptions struct {
	// DryRun stops the merge from touching the library. The returned
	// record shows what the keep record would look like.
	DryRun bool

	// DeleteDonors removes donor records after the keep record has been
	// updated successfully. Donors are never deleted when the update
	// fails or under dry-run.
	DeleteDonors bool
}

// ExecuteMerge applies a strategy against the library. The keep record is
// fetched fresh, patched, and written back with its observed version so a
// concurrent edit surfaces as a version conflict instead of a lost update.
func ExecuteMerge(ctx context.Context, lib gateway.Library, strategy *MergeStrategy, opts MergeOptions) (records.Record, error) {
	keep, err := lib.Get(ctx, strategy.KeepKey)
	if err != nil {
		return records.Record{}, errors.WrapResource("merge", "record", strategy.KeepKey, err)
	}
	observedVersion := keep.Version

	for field, value := range strategy.FieldValues {
		if !keep.HasField(field) {
			keep.SetField(field, value)
		}
	}
	if len(keep.Creators) == 0 && strategy.CreatorSource != "" {
		donor, err := lib.Get(ctx, strategy.CreatorSource)
		if err == nil && len(donor.Creators) > 0 {
			keep.Creators = donor.Creators
		}
	}
	if len(strategy.MergedTags) > 0 {
		keep.Tags = append([]string(nil), strategy.MergedTags...)
	}
	if strategy.MergedExtra != "" {
		keep.Extra = strategy.MergedExtra
	}

	if opts.DryRun {
		return keep, nil
	}

	updated, err := lib.Update(ctx, keep, observedVersion)
	if err != nil {
		return records.Record{}, errors.NewMergeError(strategy.KeepKey, strategy.DeleteKeys, "updating keep record", err)
	}

	if opts.DeleteDonors {
		for _, key := range strategy.DeleteKeys {
			donor, err := lib.Get(ctx, key)
			if err != nil {
				return updated, errors.NewMergeError(strategy.KeepKey, strategy.DeleteKeys, "fetching donor for delete", err)
			}
			if err := lib.Delete(ctx, key, donor.Version); err != nil {
				return updated, errors.NewMergeError(strategy.KeepKey, strategy.DeleteKeys, "deleting donor", err)
			}
		}
	}

	return updated, nil
}
