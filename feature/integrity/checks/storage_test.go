package checks

import (
	"context"
	"testing"

	"translation-manager/core/storage/mocks"
	"translation-manager/feature/store/models"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func objectChannel(keys ...string) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		ch <- minio.ObjectInfo{Key: key}
	}
	close(ch)
	return ch
}

func TestCheckObjects_BucketMissing(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "translations").Return(false, nil)

	_, err := CheckObjects(context.Background(), mockClient, "translations", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestCheckObjects_AllBacked(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "translations").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "translations", mock.Anything).
		Return(objectChannel("de/app.po", "fr/app.po"))

	stores := []models.Store{
		{Path: "de/app.po", ObjectName: "de/app.po"},
		{Path: "fr/app.po", ObjectName: "fr/app.po"},
	}

	report, err := CheckObjects(context.Background(), mockClient, "translations", stores)
	assert.NoError(t, err)
	assert.Equal(t, "ok", report.Status)
	assert.Empty(t, report.Missing)
	assert.Empty(t, report.Orphans)
}

func TestCheckObjects_MissingBackingObject(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "translations").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "translations", mock.Anything).
		Return(objectChannel("de/app.po"))

	stores := []models.Store{
		{Path: "de/app.po", ObjectName: "de/app.po"},
		{Path: "fr/app.po", ObjectName: "fr/app.po"},
	}

	report, err := CheckObjects(context.Background(), mockClient, "translations", stores)
	assert.NoError(t, err)
	assert.Equal(t, "error", report.Status)
	assert.Equal(t, []string{"fr/app.po"}, report.Missing)
}

func TestCheckObjects_OrphanObject(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "translations").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "translations", mock.Anything).
		Return(objectChannel("de/app.po", "it/app.po", "README.md"))

	stores := []models.Store{
		{Path: "de/app.po", ObjectName: "de/app.po"},
	}

	report, err := CheckObjects(context.Background(), mockClient, "translations", stores)
	assert.NoError(t, err)
	assert.Equal(t, "error", report.Status)
	// Only translation files count as orphans.
	assert.Equal(t, []string{"it/app.po"}, report.Orphans)
}

func TestCheckObjects_SkipsDBOnlyStores(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "translations").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "translations", mock.Anything).
		Return(objectChannel())

	stores := []models.Store{
		{Path: "virtual/app.po", ObjectName: ""},
	}

	report, err := CheckObjects(context.Background(), mockClient, "translations", stores)
	assert.NoError(t, err)
	assert.Equal(t, "ok", report.Status)
	assert.Empty(t, report.Missing)
}
