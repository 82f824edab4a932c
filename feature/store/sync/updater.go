package sync

import (
	"context"
	"fmt"
	"sort"
	stdsync "sync"

	"go.uber.org/zap"

	"translation-manager/core/revision"
	"translation-manager/feature/store/diff"
	"translation-manager/feature/store/models"
)

// Updater merges incoming file snapshots into the database. Safe for
// concurrent use; updates to the same store are serialized.
type Updater struct {
	backend Backend
	counter revision.Counter
	logger  *zap.Logger

	locks stdsync.Map // storeID -> *stdsync.Mutex
}

// NewUpdater creates an Updater.
func NewUpdater(backend Backend, counter revision.Counter, logger *zap.Logger) *Updater {
	return &Updater{backend: backend, counter: counter, logger: logger}
}

func (u *Updater) lock(storeID uint64) func() {
	m, _ := u.locks.LoadOrStore(storeID, &stdsync.Mutex{})
	mu := m.(*stdsync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Update reconciles the store's units against the file snapshot and applies
// the resulting plan in one transaction. The returned result reports what
// changed and under which revision.
func (u *Updater) Update(ctx context.Context, store *models.Store, fileUnits []diff.FileUnit, opts UpdateOptions) (*UpdateResult, error) {
	defer u.lock(store.ID)()

	if store.State != models.StoreStateUnparsed &&
		store.State != models.StoreStateParsing &&
		store.State != models.StoreStateParsed {
		return nil, fmt.Errorf("update store %d in state %d: %w", store.ID, store.State, ErrInvalidStoreState)
	}

	dbUnits, err := u.backend.LoadUnits(ctx, store.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load units for store %d: %w", store.ID, err)
	}

	baseline := opts.Baseline
	if opts.Overwrite {
		// Treat the file as derived from the latest database content so
		// every common unit merges without conflict.
		baseline = 0
		for i := range dbUnits {
			if dbUnits[i].Revision > baseline {
				baseline = dbUnits[i].Revision
			}
		}
	}

	d := diff.Compute(dbUnits, fileUnits, baseline)
	if !d.HasChanges() {
		if !store.IsParsed() {
			store.State = models.StoreStateParsed
			if err := u.backend.SaveStore(ctx, store); err != nil {
				return nil, fmt.Errorf("failed to mark store %d parsed: %w", store.ID, err)
			}
		}
		return &UpdateResult{Changed: false}, nil
	}

	updateRevision, err := u.counter.Next()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate update revision: %w", err)
	}

	// Units edited after the previous sync point but untouched by this
	// update must stay ahead of the new sync point. Allocate their fresh
	// revision up front; the gap is harmless when nothing needs bumping.
	var bumpRevision int64
	if store.LastSyncRevision != nil {
		bumpRevision, err = u.counter.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to allocate bump revision: %w", err)
		}
	}

	incoming := make(map[string]*diff.FileUnit, len(fileUnits))
	for i := range fileUnits {
		f := &fileUnits[i]
		if _, dup := incoming[f.UnitID]; !dup {
			incoming[f.UnitID] = f
		}
	}

	result := &UpdateResult{Changed: true, Revision: updateRevision}

	// Units entering the live set in conservative mode (additions and
	// resurrections) take indices past every existing one.
	appended := 0

	err = u.backend.Transact(ctx, func(tx Tx) error {
		if !opts.Conservative {
			for _, shift := range d.IndexShifts {
				if err := tx.ShiftIndexes(store.ID, shift.Start, shift.Delta); err != nil {
					return fmt.Errorf("failed to shift indexes: %w", err)
				}
			}
		}

		for _, add := range d.Additions {
			index := add.Index
			if opts.Conservative {
				// Without shifting, append-only placement keeps indices
				// unique: new units go after everything already there.
				index = appendIndex(dbUnits, appended)
				appended++
			}
			if _, err := tx.CreateUnit(store.ID, add.Unit, index, updateRevision); err != nil {
				return fmt.Errorf("failed to create unit %q: %w", add.Unit.UnitID, err)
			}
			result.Added++
		}

		if len(d.Obsolete) > 0 {
			n, err := tx.ObsoleteUnits(d.Obsolete, updateRevision)
			if err != nil {
				return fmt.Errorf("failed to obsolete units: %w", err)
			}
			result.Obsoleted = n
		}

		for _, id := range sortedIDs(d.UpdateIDs) {
			unit, err := tx.GetUnit(id)
			if err != nil {
				return fmt.Errorf("failed to load unit %d: %w", id, err)
			}
			if unit == nil {
				continue
			}

			uu := newUnitUpdater(unit, incoming[unit.UnitID], d, opts)
			out := uu.resolve()

			if out.conflicted {
				result.Conflicts++
				if out.suggest != "" && opts.SuggestOnConflict {
					sug := &models.Suggestion{
						UnitID: unit.ID,
						Target: out.suggest,
						Actor:  opts.User,
					}
					if err := tx.AddSuggestion(sug); err != nil {
						return fmt.Errorf("failed to add suggestion for unit %d: %w", unit.ID, err)
					}
					result.Suggested++
				}
			}

			if !out.updated {
				continue
			}
			if out.resurrected && opts.Conservative {
				unit.Index = appendIndex(dbUnits, appended)
				appended++
			}
			unit.Revision = updateRevision
			if err := tx.SaveUnit(unit); err != nil {
				return fmt.Errorf("failed to save unit %d: %w", unit.ID, err)
			}
			if err := recordSubmissions(tx, uu, opts); err != nil {
				return err
			}
			result.Updated++
			if out.resurrected {
				result.Resurrected++
			}
		}

		if store.LastSyncRevision != nil {
			n, err := tx.BumpRevisions(store.ID, *store.LastSyncRevision, updateRevision, bumpRevision)
			if err != nil {
				return fmt.Errorf("failed to bump unsynced revisions: %w", err)
			}
			result.Unsynced = n
		}

		store.State = models.StoreStateParsed
		rev := updateRevision
		store.LastSyncRevision = &rev
		if err := tx.SaveStore(store); err != nil {
			return fmt.Errorf("failed to save store %d: %w", store.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("store updated",
		zap.Uint64("store_id", store.ID),
		zap.Int64("revision", updateRevision),
		zap.Int("added", result.Added),
		zap.Int("obsoleted", result.Obsoleted),
		zap.Int("updated", result.Updated),
		zap.Int("conflicts", result.Conflicts),
	)
	return result, nil
}

// appendIndex returns the next free index past every existing unit, offset
// by the number of units already appended in this update.
func appendIndex(dbUnits []diff.DBUnit, appended int) int {
	next := 0
	for i := range dbUnits {
		if dbUnits[i].Index >= next {
			next = dbUnits[i].Index + 1
		}
	}
	return next + appended
}

func sortedIDs(set map[uint64]struct{}) []uint64 {
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// recordSubmissions writes audit records for the fields the merge changed.
func recordSubmissions(tx Tx, uu *unitUpdater, opts UpdateOptions) error {
	unit := uu.unit
	if unit.Target != uu.original.target {
		sub := &models.Submission{
			UnitID:   unit.ID,
			Field:    models.SubmissionFieldTarget,
			OldValue: uu.original.target,
			NewValue: unit.Target,
			Actor:    opts.User,
			Type:     opts.SubmissionType,
		}
		if err := tx.RecordSubmission(sub); err != nil {
			return fmt.Errorf("failed to record target submission for unit %d: %w", unit.ID, err)
		}
	}
	if unit.State != uu.original.state {
		sub := &models.Submission{
			UnitID:   unit.ID,
			Field:    models.SubmissionFieldState,
			OldValue: fmt.Sprintf("%d", uu.original.state),
			NewValue: fmt.Sprintf("%d", unit.State),
			Actor:    opts.User,
			Type:     opts.SubmissionType,
		}
		if err := tx.RecordSubmission(sub); err != nil {
			return fmt.Errorf("failed to record state submission for unit %d: %w", unit.ID, err)
		}
	}
	return nil
}
