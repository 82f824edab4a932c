package checks

import (
	"fmt"

	"translation-manager/feature/store/models"

	"gorm.io/gorm"
)

// StoresReport lists stores in states that need operator attention.
type StoresReport struct {
	// ErrorStores are stores whose last file update failed to parse.
	ErrorStores []string `json:"error_stores"`
	// NeverSynced are parsed stores that have never reached storage.
	NeverSynced []string `json:"never_synced"`
	Status      string   `json:"status"` // "ok", "error"
}

// CheckStores scans the store table for error-state and never-synced stores.
func CheckStores(db *gorm.DB) (*StoresReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var stores []models.Store
	if err := db.Order("path asc").Find(&stores).Error; err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}

	report := &StoresReport{
		ErrorStores: []string{},
		NeverSynced: []string{},
		Status:      "ok",
	}

	for _, store := range stores {
		if store.State == models.StoreStateError {
			report.ErrorStores = append(report.ErrorStores, store.Path)
		}
		if store.IsParsed() && store.LastSyncRevision == nil {
			report.NeverSynced = append(report.NeverSynced, store.Path)
		}
	}

	if len(report.ErrorStores) > 0 {
		report.Status = "error"
	}
	return report, nil
}
