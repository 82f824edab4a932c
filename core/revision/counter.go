package revision

import (
	"fmt"
	"sync/atomic"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Counter issues globally unique, strictly increasing revision values.
type Counter interface {
	// Next returns a fresh revision value greater than all previously
	// issued values.
	Next() (int64, error)
}

// MemoryCounter is an in-process atomic Counter. Suitable for tests and
// single-process tooling; state is not persisted.
type MemoryCounter struct {
	value int64
}

// NewMemoryCounter creates a MemoryCounter whose next value is start+1.
func NewMemoryCounter(start int64) *MemoryCounter {
	return &MemoryCounter{value: start}
}

// Next atomically increments and returns the counter.
func (c *MemoryCounter) Next() (int64, error) {
	return atomic.AddInt64(&c.value, 1), nil
}

// counterRow is the single-row backing table for the DB counter.
type counterRow struct {
	Name  string `gorm:"column:name;primaryKey;size:32"`
	Value int64  `gorm:"column:value"`
}

// TableName overrides the table name.
func (counterRow) TableName() string {
	return "revision_counters"
}

// DefaultCounterName is the row key used for the global revision sequence.
const DefaultCounterName = "default"

// Migrate creates the counter backing table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&counterRow{})
}

// DBCounter is a Counter backed by a row-locked MySQL table. Concurrent
// writers serialize on the row lock, so no two callers can observe the same
// revision.
type DBCounter struct {
	db   *gorm.DB
	name string
}

// NewDBCounter creates a DBCounter using the given counter row name.
func NewDBCounter(db *gorm.DB, name string) *DBCounter {
	if name == "" {
		name = DefaultCounterName
	}
	return &DBCounter{db: db, name: name}
}

// Next performs an atomic fetch-and-increment on the counter row, creating
// it on first use.
func (c *DBCounter) Next() (int64, error) {
	var value int64
	err := c.db.Transaction(func(tx *gorm.DB) error {
		var row counterRow
		res := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ?", c.name).
			First(&row)
		if res.Error == gorm.ErrRecordNotFound {
			row = counterRow{Name: c.name, Value: 1}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to seed revision counter: %w", err)
			}
			value = row.Value
			return nil
		}
		if res.Error != nil {
			return fmt.Errorf("failed to lock revision counter: %w", res.Error)
		}
		row.Value++
		if err := tx.Model(&counterRow{}).Where("name = ?", c.name).
			Update("value", row.Value).Error; err != nil {
			return fmt.Errorf("failed to advance revision counter: %w", err)
		}
		value = row.Value
		return nil
	})
	return value, err
}
