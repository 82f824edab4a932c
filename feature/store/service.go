package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"translation-manager/core/pofile"
	"translation-manager/core/revision"
	"translation-manager/core/storage"
	"translation-manager/feature/store/models"
	"translation-manager/feature/store/repo"
	storesync "translation-manager/feature/store/sync"
)

var (
	// ErrStoreExists is returned when creating a store whose path is taken.
	ErrStoreExists = errors.New("store path already exists")

	// ErrStoreNotFound is returned when the requested store does not exist.
	ErrStoreNotFound = errors.New("store not found")
)

// Service orchestrates store operations: parsing uploaded files, running
// updates against the database, and syncing database content back out to
// object storage.
type Service struct {
	repo    *repo.Repository
	client  storage.Client
	bucket  string
	updater *storesync.Updater
	syncer  *storesync.Syncer
	logger  *zap.Logger
}

// NewService creates a store service.
func NewService(r *repo.Repository, client storage.Client, bucket string, counter revision.Counter, logger *zap.Logger) *Service {
	return &Service{
		repo:    r,
		client:  client,
		bucket:  bucket,
		updater: storesync.NewUpdater(r, counter, logger),
		syncer:  storesync.NewSyncer(r, logger),
		logger:  logger,
	}
}

// CreateStore registers a new store under the given path. The backing
// object shares the path unless objectName overrides it.
func (s *Service) CreateStore(ctx context.Context, path, objectName string) (*models.Store, error) {
	existing, err := s.repo.GetStoreByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("create store %q: %w", path, ErrStoreExists)
	}

	if objectName == "" {
		objectName = path
	}
	store := &models.Store{
		Path:       path,
		ObjectName: objectName,
		State:      models.StoreStateUnparsed,
	}
	if err := s.repo.CreateStore(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

// ListStores returns all registered stores.
func (s *Service) ListStores(ctx context.Context) ([]models.Store, error) {
	return s.repo.ListStores(ctx)
}

// GetStore loads a store by id.
func (s *Service) GetStore(ctx context.Context, id uint64) (*models.Store, error) {
	store, err := s.repo.GetStore(ctx, id)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("store %d: %w", id, ErrStoreNotFound)
	}
	return store, nil
}

// GetStoreByPath loads a store by its registered path.
func (s *Service) GetStoreByPath(ctx context.Context, path string) (*models.Store, error) {
	store, err := s.repo.GetStoreByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("store %q: %w", path, ErrStoreNotFound)
	}
	return store, nil
}

// ListUnits returns a store's units in index order.
func (s *Service) ListUnits(ctx context.Context, storeID uint64, includeObsolete bool) ([]models.Unit, error) {
	if _, err := s.GetStore(ctx, storeID); err != nil {
		return nil, err
	}
	return s.repo.ListUnits(ctx, storeID, includeObsolete)
}

// UpdateFromBytes parses raw file content and merges it into the store.
// A file that fails to parse moves the store into the error state; no
// units are touched.
func (s *Service) UpdateFromBytes(ctx context.Context, store *models.Store, data []byte, opts storesync.UpdateOptions) (*storesync.UpdateResult, error) {
	f, err := pofile.Parse(data)
	if err != nil {
		store.State = models.StoreStateError
		if saveErr := s.repo.SaveStore(ctx, store); saveErr != nil {
			s.logger.Error("failed to record parse failure",
				zap.Uint64("store_id", store.ID), zap.Error(saveErr))
		}
		return nil, fmt.Errorf("parse store %d content: %w", store.ID, err)
	}
	// The store sits in the parsing state until the merge lands, so an
	// interrupted update is visible on the row. A successful parse also
	// recovers a store stuck in the error state.
	store.State = models.StoreStateParsing
	if err := s.repo.SaveStore(ctx, store); err != nil {
		return nil, err
	}

	if opts.Baseline < 0 {
		opts.Baseline = storesync.BaselineFromPO(f)
	}
	return s.updater.Update(ctx, store, storesync.FileUnitsFromPO(f), opts)
}

// UpdateFromStorage downloads the store's backing object and merges it.
func (s *Service) UpdateFromStorage(ctx context.Context, store *models.Store, opts storesync.UpdateOptions) (*storesync.UpdateResult, error) {
	if store.ObjectName == "" {
		return nil, fmt.Errorf("update store %d: %w", store.ID, storesync.ErrMissingFile)
	}

	reader, err := s.client.GetObject(ctx, s.bucket, store.ObjectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %q: %w", store.ObjectName, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %q: %w", store.ObjectName, err)
	}
	return s.UpdateFromBytes(ctx, store, data, opts)
}

// SyncToStorage serializes the store and uploads the result to its backing
// object. The sync point only advances after a successful upload.
func (s *Service) SyncToStorage(ctx context.Context, store *models.Store, opts storesync.SyncOptions) (*storesync.SyncResult, error) {
	res, err := s.syncer.Sync(ctx, store, opts)
	if err != nil {
		return nil, err
	}
	if res.Skipped {
		return res, nil
	}

	_, err = s.client.PutObject(ctx, s.bucket, store.ObjectName,
		bytes.NewReader(res.Bytes), int64(len(res.Bytes)), minio.PutObjectOptions{
			ContentType: "text/x-gettext-translation",
		})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object %q: %w", store.ObjectName, err)
	}

	if err := s.syncer.Commit(ctx, store, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Serialize returns the store's current content as file bytes without
// touching storage or the sync point.
func (s *Service) Serialize(ctx context.Context, store *models.Store, includeObsolete bool) (*storesync.SyncResult, error) {
	opts := storesync.SyncOptions{
		OnlyNewer:       false,
		IncludeObsolete: includeObsolete,
	}
	return s.syncer.Sync(ctx, store, opts)
}
