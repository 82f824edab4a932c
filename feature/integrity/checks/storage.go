package checks

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"translation-manager/core/storage"
	"translation-manager/feature/store/models"

	"github.com/minio/minio-go/v7"
)

// ObjectsReport lists discrepancies between registered stores and the
// objects actually present in the bucket.
type ObjectsReport struct {
	// Missing are store paths whose backing object is absent from storage.
	Missing []string `json:"missing"`
	// Orphans are translation objects with no registered store.
	Orphans []string `json:"orphans"`
	Status  string   `json:"status"` // "ok", "error"
}

// CheckObjects compares the registered stores against the bucket contents.
func CheckObjects(ctx context.Context, client storage.Client, bucket string, stores []models.Store) (*ObjectsReport, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	found := make(map[string]bool)
	opts := minio.ListObjectsOptions{Recursive: true}
	for obj := range client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		found[obj.Key] = true
	}

	registered := make(map[string]bool)
	report := &ObjectsReport{
		Missing: []string{},
		Orphans: []string{},
		Status:  "ok",
	}

	for _, store := range stores {
		if store.ObjectName == "" {
			continue // DB-only store, nothing to back it
		}
		registered[store.ObjectName] = true
		if !found[store.ObjectName] {
			report.Missing = append(report.Missing, store.Path)
		}
	}

	for key := range found {
		if strings.HasSuffix(key, ".po") && !registered[key] {
			report.Orphans = append(report.Orphans, key)
		}
	}

	sort.Strings(report.Orphans)
	if len(report.Missing) > 0 || len(report.Orphans) > 0 {
		report.Status = "error"
	}
	return report, nil
}
