// Package gateway defines the interface to the remote reference-management
// library. The engine consumes this capability; it does not implement the
// remote protocol. All writes carry the version observed at read time, and a
// stale version surfaces as *errors.VersionConflictError, never as a silent
// overwrite.
package gateway

import (
	"context"

	"github.com/bibtidy/bibtidy/pkg/records"
)

// Filter narrows a List call. Zero values match everything.
type Filter struct {
	// ItemTypes restricts results to the given item types.
	ItemTypes []string

	// Tag restricts results to records carrying the tag.
	Tag string

	// Collection restricts results to members of the collection.
	Collection string
}

// Library is the remote library's read/write surface.
type Library interface {
	// List returns the records matching the filter.
	List(ctx context.Context, filter Filter) ([]records.Record, error)

	// Get returns a single record by key.
	Get(ctx context.Context, key string) (records.Record, error)

	// Update writes a modified record. expectedVersion must be the version
	// observed at read time; a mismatch returns *errors.VersionConflictError.
	Update(ctx context.Context, rec records.Record, expectedVersion int) (records.Record, error)

	// Create adds new records and returns them with library-assigned keys
	// and versions.
	Create(ctx context.Context, recs []records.Record) ([]records.Record, error)

	// Delete removes a record. expectedVersion follows the same
	// optimistic-concurrency contract as Update.
	Delete(ctx context.Context, key string, expectedVersion int) error
}
