package integrity

import (
	"context"

	"translation-manager/core/storage"
	"translation-manager/feature/integrity/checks"
	"translation-manager/feature/store/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks.
type Service struct {
	client storage.Client
	bucket string
	logger *zap.Logger
	db     *gorm.DB
}

// NewService creates a new integrity service.
func NewService(client storage.Client, bucket string, logger *zap.Logger, db *gorm.DB) *Service {
	return &Service{
		client: client,
		bucket: bucket,
		logger: logger,
		db:     db,
	}
}

// CheckStorage compares registered stores against the bucket contents.
func (s *Service) CheckStorage(ctx context.Context) (*checks.ObjectsReport, error) {
	var stores []models.Store
	if s.db == nil {
		return nil, gorm.ErrInvalidDB
	}
	if err := s.db.Order("path asc").Find(&stores).Error; err != nil {
		return nil, err
	}
	return checks.CheckObjects(ctx, s.client, s.bucket, stores)
}

// CheckSchema validates the database schema against the persisted models.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db)
}

// CheckStores scans for error-state and never-synced stores.
func (s *Service) CheckStores() (*checks.StoresReport, error) {
	return checks.CheckStores(s.db)
}
