package checks

import (
	"testing"
	"time"

	"translation-manager/feature/store/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func storeRows(stores ...models.Store) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "path", "object_name", "state", "last_sync_revision", "created_at", "updated_at"})
	for i, s := range stores {
		rows.AddRow(uint64(i+1), s.Path, s.ObjectName, s.State, s.LastSyncRevision, time.Now(), time.Now())
	}
	return rows
}

func TestCheckStores_NilDB(t *testing.T) {
	report, err := CheckStores(nil)
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestCheckStores_AllHealthy(t *testing.T) {
	db, mock := setupMockDB(t)

	rev := int64(4)
	mock.ExpectQuery("SELECT \\* FROM `stores` ORDER BY path asc").
		WillReturnRows(storeRows(
			models.Store{Path: "de/app.po", State: models.StoreStateParsed, LastSyncRevision: &rev},
		))

	report, err := CheckStores(db)
	assert.NoError(t, err)
	assert.Equal(t, "ok", report.Status)
	assert.Empty(t, report.ErrorStores)
	assert.Empty(t, report.NeverSynced)
}

func TestCheckStores_ReportsErrorState(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `stores` ORDER BY path asc").
		WillReturnRows(storeRows(
			models.Store{Path: "de/app.po", State: models.StoreStateError},
			models.Store{Path: "fr/app.po", State: models.StoreStateUnparsed},
		))

	report, err := CheckStores(db)
	assert.NoError(t, err)
	assert.Equal(t, "error", report.Status)
	assert.Equal(t, []string{"de/app.po"}, report.ErrorStores)
}

func TestCheckStores_ReportsNeverSynced(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `stores` ORDER BY path asc").
		WillReturnRows(storeRows(
			models.Store{Path: "de/app.po", State: models.StoreStateParsed},
		))

	report, err := CheckStores(db)
	assert.NoError(t, err)
	// Never-synced stores are informational, not failures.
	assert.Equal(t, "ok", report.Status)
	assert.Equal(t, []string{"de/app.po"}, report.NeverSynced)
}
