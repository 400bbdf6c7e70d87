// Package memory provides an in-memory Library implementation. It backs
// tests and examples, and its write counters serve as the oracle for the
// dry-run guarantee: operations invoked with dry-run enabled must leave
// every counter at zero.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bibtidy/bibtidy/pkg/errors"
	"github.com/bibtidy/bibtidy/pkg/gateway"
	"github.com/bibtidy/bibtidy/pkg/records"
)

// Library is an in-memory gateway.Library.
type Library struct {
	mu      sync.RWMutex
	items   map[string]records.Record
	nextKey int

	// Write counters, observable via Writes.
	updates int
	creates int
	deletes int
}

// Counters is a snapshot of the library's write activity.
type Counters struct {
	Updates int
	Creates int
	Deletes int
}

// New creates an empty in-memory library.
func New() *Library {
	return &Library{items: make(map[string]records.Record)}
}

// NewWith creates an in-memory library preloaded with the given records.
// Records without a version are assigned version 1.
func NewWith(recs ...records.Record) *Library {
	lib := New()
	for _, r := range recs {
		if r.Version == 0 {
			r.Version = 1
		}
		lib.items[r.Key] = r.Clone()
	}
	return lib
}

// List returns the records matching the filter, sorted by key.
func (l *Library) List(_ context.Context, filter gateway.Filter) ([]records.Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []records.Record
	for _, r := range l.items {
		if len(filter.ItemTypes) > 0 && !r.IsItemType(filter.ItemTypes) {
			continue
		}
		if filter.Tag != "" && !r.HasTag(filter.Tag) {
			continue
		}
		if filter.Collection != "" && !contains(r.Collections, filter.Collection) {
			continue
		}
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Get returns a single record by key.
func (l *Library) Get(_ context.Context, key string) (records.Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	r, ok := l.items[key]
	if !ok {
		return records.Record{}, errors.NewNotFoundError("record", key)
	}
	return r.Clone(), nil
}

// Update writes a modified record under optimistic concurrency.
func (l *Library) Update(_ context.Context, rec records.Record, expectedVersion int) (records.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.items[rec.Key]
	if !ok {
		return records.Record{}, errors.NewNotFoundError("record", rec.Key)
	}
	if current.Version != expectedVersion {
		return records.Record{}, errors.NewVersionConflictError(rec.Key, expectedVersion, current.Version)
	}

	updated := rec.Clone()
	updated.Version = current.Version + 1
	l.items[rec.Key] = updated
	l.updates++
	return updated.Clone(), nil
}

// Create adds new records, assigning keys where absent.
func (l *Library) Create(_ context.Context, recs []records.Record) ([]records.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]records.Record, 0, len(recs))
	for _, r := range recs {
		created := r.Clone()
		if created.Key == "" {
			l.nextKey++
			created.Key = fmt.Sprintf("MEM%06d", l.nextKey)
		}
		created.Version = 1
		l.items[created.Key] = created
		l.creates++
		out = append(out, created.Clone())
	}
	return out, nil
}

// Delete removes a record under optimistic concurrency.
func (l *Library) Delete(_ context.Context, key string, expectedVersion int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.items[key]
	if !ok {
		return errors.NewNotFoundError("record", key)
	}
	if current.Version != expectedVersion {
		return errors.NewVersionConflictError(key, expectedVersion, current.Version)
	}
	delete(l.items, key)
	l.deletes++
	return nil
}

// Writes returns a snapshot of the library's write counters.
func (l *Library) Writes() Counters {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Counters{Updates: l.updates, Creates: l.creates, Deletes: l.deletes}
}

// Len returns the number of records held.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// BumpVersion advances a record's version without going through Update,
// simulating a concurrent external write for conflict tests.
func (l *Library) BumpVersion(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.items[key]; ok {
		r.Version++
		l.items[key] = r
	}
}

func contains(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}

var _ gateway.Library = (*Library)(nil)
