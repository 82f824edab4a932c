package integrity

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"translation-manager/core/storage/mocks"
	"translation-manager/feature/store/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, dbmock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, dbmock
}

func setupTestApp(t *testing.T) (*fiber.App, *mocks.Client, sqlmock.Sqlmock) {
	app := fiber.New()
	mockClient := new(mocks.Client)
	db, dbmock := setupMockDB(t)
	logger := zap.NewNop()
	svc := NewService(mockClient, "test-bucket", logger, db)
	handler := NewHandler(svc)
	handler.RegisterRoutes(app)
	return app, mockClient, dbmock
}

func storeRows(stores ...models.Store) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "path", "object_name", "state", "last_sync_revision"})
	for i, s := range stores {
		rows.AddRow(uint64(i+1), s.Path, s.ObjectName, s.State, s.LastSyncRevision)
	}
	return rows
}

func TestHandleStorageCheck(t *testing.T) {
	app, mockClient, dbmock := setupTestApp(t)

	dbmock.ExpectQuery("SELECT \\* FROM `stores`").
		WillReturnRows(storeRows(models.Store{Path: "de/app.po", ObjectName: "de/app.po"}))

	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
	ch := make(chan minio.ObjectInfo)
	close(ch)
	mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

	req := httptest.NewRequest("GET", "/integrity/storage", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, "error", body["status"])
	assert.Contains(t, body["missing"], "de/app.po")
}

func TestHandleStorageCheckBucketFailure(t *testing.T) {
	app, mockClient, dbmock := setupTestApp(t)

	dbmock.ExpectQuery("SELECT \\* FROM `stores`").WillReturnRows(storeRows())
	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, assert.AnError)

	req := httptest.NewRequest("GET", "/integrity/storage", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}

func TestHandleSchemaCheck(t *testing.T) {
	app, _, dbmock := setupTestApp(t)

	// Fail all table inspections; the check degrades to a report with errors.
	dbmock.ExpectQuery(".*").WillReturnError(assert.AnError)
	dbmock.ExpectQuery(".*").WillReturnError(assert.AnError)
	dbmock.ExpectQuery(".*").WillReturnError(assert.AnError)
	dbmock.ExpectQuery(".*").WillReturnError(assert.AnError)

	req := httptest.NewRequest("GET", "/integrity/schema", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, false, body["matched"])
}

func TestHandleStoresCheck(t *testing.T) {
	app, _, dbmock := setupTestApp(t)

	dbmock.ExpectQuery("SELECT \\* FROM `stores`").
		WillReturnRows(storeRows(models.Store{Path: "de/app.po", State: models.StoreStateError}))

	req := httptest.NewRequest("GET", "/integrity/stores", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, "error", body["status"])
	assert.Contains(t, body["error_stores"], "de/app.po")
}

func TestHandleIntegrityCheck(t *testing.T) {
	app, mockClient, dbmock := setupTestApp(t)

	// Fail everything fast; the combined report still renders with 200.
	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, assert.AnError)
	for i := 0; i < 6; i++ {
		dbmock.ExpectQuery(".*").WillReturnError(assert.AnError)
	}

	req := httptest.NewRequest("GET", "/integrity", nil)
	resp, err := app.Test(req, 2000)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Contains(t, body, "storage")
	assert.Contains(t, body, "schema")
	assert.Contains(t, body, "stores")
}
