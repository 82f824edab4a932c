package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"translation-manager/feature/store/diff"
	"translation-manager/feature/store/models"
)

// Syncer serializes a store's database units back into file bytes.
type Syncer struct {
	backend Backend
	logger  *zap.Logger
}

// NewSyncer creates a Syncer.
func NewSyncer(backend Backend, logger *zap.Logger) *Syncer {
	return &Syncer{backend: backend, logger: logger}
}

// Sync captures the store's current units as serialized file content. It
// does not write the bytes anywhere; the caller uploads them and then calls
// Commit with the returned result.
func (s *Syncer) Sync(ctx context.Context, store *models.Store, opts SyncOptions) (*SyncResult, error) {
	if !store.IsParsed() {
		return nil, fmt.Errorf("sync store %d in state %d: %w", store.ID, store.State, ErrInvalidStoreState)
	}
	if store.ObjectName == "" {
		if opts.SkipMissing {
			return &SyncResult{Skipped: true}, nil
		}
		return nil, fmt.Errorf("sync store %d: %w", store.ID, ErrMissingFile)
	}

	units, err := s.backend.LoadUnits(ctx, store.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load units for store %d: %w", store.ID, err)
	}

	maxRev := int64(0)
	live := 0
	for i := range units {
		u := &units[i]
		if u.State == models.StateObsolete {
			continue
		}
		live++
		if u.Revision > maxRev {
			maxRev = u.Revision
		}
	}

	if opts.OnlyNewer && store.LastSyncRevision != nil && maxRev <= *store.LastSyncRevision {
		return &SyncResult{Skipped: true, Revision: *store.LastSyncRevision}, nil
	}

	out := make([]diff.DBUnit, 0, len(units))
	for i := range units {
		u := &units[i]
		if u.State == models.StateObsolete && !opts.IncludeObsolete {
			continue
		}
		out = append(out, *u)
	}

	f := poFromUnits(out, maxRev)
	result := &SyncResult{
		Bytes:    f.Serialize(),
		Revision: maxRev,
		Units:    live,
	}

	s.logger.Info("store serialized",
		zap.Uint64("store_id", store.ID),
		zap.Int64("revision", maxRev),
		zap.Int("units", live),
	)
	return result, nil
}

// Commit advances the store's sync point to the revision captured by Sync.
// Call it after the serialized bytes have been durably written.
func (s *Syncer) Commit(ctx context.Context, store *models.Store, result *SyncResult) error {
	if result.Skipped {
		return nil
	}
	rev := result.Revision
	store.LastSyncRevision = &rev
	if err := s.backend.SaveStore(ctx, store); err != nil {
		return fmt.Errorf("failed to advance sync revision for store %d: %w", store.ID, err)
	}
	return nil
}
