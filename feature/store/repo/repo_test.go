package repo

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"translation-manager/feature/store/diff"
	"translation-manager/feature/store/models"
	storesync "translation-manager/feature/store/sync"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
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

	return gormDB, mock
}

func TestGetStoreByPath(t *testing.T) {
	db, mock := setupMockDB(t)
	r := New(db)

	rows := sqlmock.NewRows([]string{"id", "path", "object_name", "state", "last_sync_revision"}).
		AddRow(1, "de/app.po", "de/app.po", models.StoreStateParsed, 7)
	mock.ExpectQuery("SELECT \\* FROM `stores` WHERE path = \\?").
		WithArgs("de/app.po", 1).
		WillReturnRows(rows)

	store, err := r.GetStoreByPath(context.Background(), "de/app.po")
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, uint64(1), store.ID)
	assert.Equal(t, models.StoreStateParsed, store.State)
	require.NotNil(t, store.LastSyncRevision)
	assert.Equal(t, int64(7), *store.LastSyncRevision)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStoreByPathNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	r := New(db)

	mock.ExpectQuery("SELECT \\* FROM `stores` WHERE path = \\?").
		WithArgs("missing.po", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	store, err := r.GetStoreByPath(context.Background(), "missing.po")
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestLoadUnitsOrderedSnapshots(t *testing.T) {
	db, mock := setupMockDB(t)
	r := New(db)

	rows := sqlmock.NewRows([]string{"id", "store_id", "unitid", "idx", "state", "revision", "source", "target"}).
		AddRow(1, 1, "hello", 0, models.StateTranslated, 5, "hello", "hallo").
		AddRow(2, 1, "world", 1, models.StateObsolete, 6, "world", "welt")
	mock.ExpectQuery("SELECT \\* FROM `units` WHERE store_id = \\?").
		WithArgs(1).
		WillReturnRows(rows)

	units, err := r.LoadUnits(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "hello", units[0].UnitID)
	assert.Equal(t, models.StateObsolete, units[1].State)
	assert.Equal(t, int64(6), units[1].Revision)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUnitsExcludesObsolete(t *testing.T) {
	db, mock := setupMockDB(t)
	r := New(db)

	rows := sqlmock.NewRows([]string{"id", "store_id", "unitid", "idx", "state", "revision"}).
		AddRow(1, 1, "hello", 0, models.StateTranslated, 5)
	mock.ExpectQuery("SELECT \\* FROM `units` WHERE store_id = \\? AND state <> \\?").
		WithArgs(1, models.StateObsolete).
		WillReturnRows(rows)

	units, err := r.ListUnits(context.Background(), 1, false)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "hello", units[0].UnitID)
}

func TestTransactAppliesMutations(t *testing.T) {
	db, mock := setupMockDB(t)
	r := New(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `units` SET `idx`=idx \\+ \\?").
		WithArgs(1, 1, models.StateObsolete, 2).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("UPDATE `units` SET").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := r.Transact(context.Background(), func(tx storesync.Tx) error {
		if err := tx.ShiftIndexes(1, 2, 1); err != nil {
			return err
		}
		n, err := tx.ObsoleteUnits([]uint64{4, 5}, 9)
		if err != nil {
			return err
		}
		assert.Equal(t, 2, n)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactRollsBackOnError(t *testing.T) {
	db, mock := setupMockDB(t)
	r := New(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := r.Transact(context.Background(), func(tx storesync.Tx) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestObsoleteUnitsEmptyIsNoop(t *testing.T) {
	db, mock := setupMockDB(t)
	r := New(db)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := r.Transact(context.Background(), func(tx storesync.Tx) error {
		n, err := tx.ObsoleteUnits(nil, 9)
		assert.Zero(t, n)
		return err
	})
	require.NoError(t, err)
}

func TestCreateUnitComputesHash(t *testing.T) {
	db, mock := setupMockDB(t)
	r := New(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `units`").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	var id uint64
	err := r.Transact(context.Background(), func(tx storesync.Tx) error {
		var err error
		id, err = tx.CreateUnit(1, diff.FileUnit{
			UnitID: "hello",
			State:  models.StateTranslated,
			Source: "hello",
			Target: "hallo",
		}, 0, 9)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
}
