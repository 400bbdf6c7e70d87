package gateway

import (
	"context"

	"github.com/bibtidy/bibtidy/pkg/records"
)

// Apply writes an updated record back to the library unless dryRun is set.
// It returns the record as it now stands (the library's version after a
// write, the caller's preview otherwise) and whether a write happened.
// Records identical to expected leave the library untouched; the caller
// decides that by not calling Apply at all, since only it knows which
// fields it meant to change.
func Apply(ctx context.Context, lib Library, updated records.Record, expectedVersion int, dryRun bool) (records.Record, bool, error) {
	if dryRun {
		return updated, false, nil
	}
	written, err := lib.Update(ctx, updated, expectedVersion)
	if err != nil {
		return records.Record{}, false, err
	}
	return written, true, nil
}
