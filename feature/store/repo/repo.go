// Package repo is the gorm persistence layer for translation stores. It
// implements the sync.Backend transaction surface plus the lookup queries
// used by the HTTP handlers and CLI commands.
package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"translation-manager/feature/store/diff"
	"translation-manager/feature/store/models"
	storesync "translation-manager/feature/store/sync"
)

// Repository wraps a gorm connection for store and unit access.
type Repository struct {
	db *gorm.DB
}

// New creates a Repository.
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the store tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Store{},
		&models.Unit{},
		&models.Submission{},
		&models.Suggestion{},
	)
}

// CreateStore inserts a new store row.
func (r *Repository) CreateStore(ctx context.Context, store *models.Store) error {
	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		return fmt.Errorf("failed to create store %q: %w", store.Path, err)
	}
	return nil
}

// GetStore loads a store by id, nil when absent.
func (r *Repository) GetStore(ctx context.Context, id uint64) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).First(&store, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load store %d: %w", id, err)
	}
	return &store, nil
}

// GetStoreByPath loads a store by its unique path, nil when absent.
func (r *Repository) GetStoreByPath(ctx context.Context, path string) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).Where("path = ?", path).First(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load store %q: %w", path, err)
	}
	return &store, nil
}

// ListStores returns all stores ordered by path.
func (r *Repository) ListStores(ctx context.Context) ([]models.Store, error) {
	var stores []models.Store
	if err := r.db.WithContext(ctx).Order("path asc").Find(&stores).Error; err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	return stores, nil
}

// ListUnits returns a store's units ordered by index. Obsolete units are
// excluded unless includeObsolete is set.
func (r *Repository) ListUnits(ctx context.Context, storeID uint64, includeObsolete bool) ([]models.Unit, error) {
	q := r.db.WithContext(ctx).Where("store_id = ?", storeID)
	if !includeObsolete {
		q = q.Where("state <> ?", models.StateObsolete)
	}
	var units []models.Unit
	if err := q.Order("idx asc, id asc").Find(&units).Error; err != nil {
		return nil, fmt.Errorf("failed to list units for store %d: %w", storeID, err)
	}
	return units, nil
}

// LoadUnits returns all units of a store as ordered diff snapshots,
// obsolete units included.
func (r *Repository) LoadUnits(ctx context.Context, storeID uint64) ([]diff.DBUnit, error) {
	var units []models.Unit
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("idx asc, id asc").
		Find(&units).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load units for store %d: %w", storeID, err)
	}

	out := make([]diff.DBUnit, 0, len(units))
	for i := range units {
		out = append(out, snapshot(&units[i]))
	}
	return out, nil
}

// SaveStore persists store metadata.
func (r *Repository) SaveStore(ctx context.Context, store *models.Store) error {
	if err := r.db.WithContext(ctx).Save(store).Error; err != nil {
		return fmt.Errorf("failed to save store %d: %w", store.ID, err)
	}
	return nil
}

// Transact runs fn inside one database transaction.
func (r *Repository) Transact(ctx context.Context, fn func(storesync.Tx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{tx: tx})
	})
}

func snapshot(u *models.Unit) diff.DBUnit {
	return diff.DBUnit{
		ID:                u.ID,
		UnitID:            u.UnitID,
		Index:             u.Index,
		Revision:          u.Revision,
		State:             u.State,
		Source:            u.Source,
		SourcePlural:      u.SourcePlural,
		Target:            u.Target,
		Context:           u.Context,
		Locations:         u.Locations,
		DeveloperComment:  u.DeveloperComment,
		TranslatorComment: u.TranslatorComment,
	}
}

// gormTx is the in-transaction mutation surface.
type gormTx struct {
	tx *gorm.DB
}

// ShiftIndexes moves every live unit with index >= start up by delta.
func (t *gormTx) ShiftIndexes(storeID uint64, start, delta int) error {
	err := t.tx.Model(&models.Unit{}).
		Where("store_id = ? AND state <> ? AND idx >= ?", storeID, models.StateObsolete, start).
		Update("idx", gorm.Expr("idx + ?", delta)).Error
	if err != nil {
		return fmt.Errorf("failed to shift indexes for store %d: %w", storeID, err)
	}
	return nil
}

// CreateUnit inserts a new unit row.
func (t *gormTx) CreateUnit(storeID uint64, unit diff.FileUnit, index int, rev int64) (uint64, error) {
	row := models.Unit{
		StoreID:           storeID,
		UnitID:            unit.UnitID,
		Hash:              models.HashUnitID(unit.UnitID),
		Index:             index,
		State:             unit.State,
		Revision:          rev,
		Source:            unit.Source,
		SourcePlural:      unit.SourcePlural,
		Target:            unit.Target,
		Context:           unit.Context,
		Locations:         unit.Locations,
		DeveloperComment:  unit.DeveloperComment,
		TranslatorComment: unit.TranslatorComment,
	}
	if err := t.tx.Create(&row).Error; err != nil {
		return 0, fmt.Errorf("failed to create unit %q: %w", unit.UnitID, err)
	}
	return row.ID, nil
}

// ObsoleteUnits soft-deletes the given units.
func (t *gormTx) ObsoleteUnits(ids []uint64, rev int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := t.tx.Model(&models.Unit{}).
		Where("id IN ? AND state <> ?", ids, models.StateObsolete).
		Updates(map[string]interface{}{
			"state":    models.StateObsolete,
			"revision": rev,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to obsolete units: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

// GetUnit loads one unit, nil when absent.
func (t *gormTx) GetUnit(id uint64) (*models.Unit, error) {
	var unit models.Unit
	err := t.tx.First(&unit, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load unit %d: %w", id, err)
	}
	return &unit, nil
}

// SaveUnit persists a merged unit.
func (t *gormTx) SaveUnit(unit *models.Unit) error {
	if err := t.tx.Save(unit).Error; err != nil {
		return fmt.Errorf("failed to save unit %d: %w", unit.ID, err)
	}
	return nil
}

// BumpRevisions re-stamps live units whose revision lies in (after, before).
func (t *gormTx) BumpRevisions(storeID uint64, after, before, rev int64) (int, error) {
	res := t.tx.Model(&models.Unit{}).
		Where("store_id = ? AND state <> ? AND revision > ? AND revision < ?",
			storeID, models.StateObsolete, after, before).
		Update("revision", rev)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to bump revisions for store %d: %w", storeID, res.Error)
	}
	return int(res.RowsAffected), nil
}

// RecordSubmission appends one audit record.
func (t *gormTx) RecordSubmission(sub *models.Submission) error {
	if err := t.tx.Create(sub).Error; err != nil {
		return fmt.Errorf("failed to record submission for unit %d: %w", sub.UnitID, err)
	}
	return nil
}

// AddSuggestion preserves a conflicting incoming translation.
func (t *gormTx) AddSuggestion(sug *models.Suggestion) error {
	if err := t.tx.Create(sug).Error; err != nil {
		return fmt.Errorf("failed to add suggestion for unit %d: %w", sug.UnitID, err)
	}
	return nil
}

// SaveStore persists store metadata within the transaction.
func (t *gormTx) SaveStore(store *models.Store) error {
	if err := t.tx.Save(store).Error; err != nil {
		return fmt.Errorf("failed to save store %d: %w", store.ID, err)
	}
	return nil
}
