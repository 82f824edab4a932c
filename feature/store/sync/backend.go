package sync

import (
	"context"

	"translation-manager/feature/store/diff"
	"translation-manager/feature/store/models"
)

// Backend abstracts the persistence layer the engine runs against.
// The gorm implementation lives in feature/store/repo; tests use an
// in-memory fake.
type Backend interface {
	// LoadUnits returns all units of a store as ordered snapshots
	// (by index, obsolete units included).
	LoadUnits(ctx context.Context, storeID uint64) ([]diff.DBUnit, error)

	// SaveStore persists store metadata (state, last-sync revision).
	SaveStore(ctx context.Context, store *models.Store) error

	// Transact runs fn inside a single transaction; all mutations made
	// through the Tx succeed or none do.
	Transact(ctx context.Context, fn func(Tx) error) error
}

// Tx is the mutation surface available inside one transaction.
type Tx interface {
	// ShiftIndexes moves every live unit of the store with index >= start
	// up by delta.
	ShiftIndexes(storeID uint64, start, delta int) error

	// CreateUnit inserts a new unit at the given index with the given
	// revision, returning its id.
	CreateUnit(storeID uint64, unit diff.FileUnit, index int, rev int64) (uint64, error)

	// ObsoleteUnits soft-deletes the given units, stamping them with rev.
	// Ids with no matching row are ignored; the count of affected rows is
	// returned.
	ObsoleteUnits(ids []uint64, rev int64) (int, error)

	// GetUnit loads one unit for content merging, nil when absent.
	GetUnit(id uint64) (*models.Unit, error)

	// SaveUnit persists a merged unit.
	SaveUnit(unit *models.Unit) error

	// BumpRevisions re-stamps live units whose revision lies in
	// (after, before) with rev, returning the count.
	BumpRevisions(storeID uint64, after, before, rev int64) (int, error)

	// RecordSubmission appends one audit record.
	RecordSubmission(sub *models.Submission) error

	// AddSuggestion preserves a conflicting incoming translation.
	AddSuggestion(sug *models.Suggestion) error

	// SaveStore persists store metadata within the transaction.
	SaveStore(store *models.Store) error
}
