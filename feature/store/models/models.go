package models

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"
)

// Unit states. Values are ordered so that "more translated" compares greater,
// and obsolete units sort below every live state.
const (
	StateObsolete     = -100
	StateUntranslated = 0
	StateFuzzy        = 50
	StateTranslated   = 200
)

// Store lifecycle states.
const (
	StoreStateError    = -1
	StoreStateUnparsed = 0
	StoreStateParsing  = 5
	StoreStateParsed   = 10
)

// UnitIDSeparator joins context and source into a unit identity, following
// the PO convention of msgctxt EOT msgid.
const UnitIDSeparator = "\x04"

// PluralSeparator joins plural target forms into a single stored column.
const PluralSeparator = "\x00"

// Store is an ordered collection of translation units bound to a resource
// file object in storage. ObjectName may be empty for DB-only stores.
type Store struct {
	ID         uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Path       string `gorm:"column:path;size:255;uniqueIndex"`
	ObjectName string `gorm:"column:object_name;size:255"`
	State      int    `gorm:"column:state"`

	// LastSyncRevision is the revision the on-file copy was last derived
	// from. Nil until the store has been synced or updated at least once.
	LastSyncRevision *int64 `gorm:"column:last_sync_revision"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName overrides the table name.
func (Store) TableName() string {
	return "stores"
}

// IsParsed reports whether the store has been parsed successfully.
func (s *Store) IsParsed() bool {
	return s.State == StoreStateParsed
}

// Unit is a single source/target string pair within a store.
type Unit struct {
	ID      uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	StoreID uint64 `gorm:"column:store_id;index:idx_units_store"`

	// UnitID is the content-derived identity (context + source), Hash its
	// md5 used for indexed lookups. At most one live unit per (store, hash).
	UnitID string `gorm:"column:unitid;type:text"`
	Hash   string `gorm:"column:unitid_hash;size:32;index:idx_units_hash"`

	Index    int   `gorm:"column:idx"`
	State    int   `gorm:"column:state"`
	Revision int64 `gorm:"column:revision;index:idx_units_revision"`

	Source       string `gorm:"column:source;type:text"`
	SourcePlural string `gorm:"column:source_plural;type:text"`
	Target       string `gorm:"column:target;type:text"`
	Context      string `gorm:"column:context;type:text"`
	Locations    string `gorm:"column:locations;type:text"`

	DeveloperComment  string `gorm:"column:developer_comment;type:text"`
	TranslatorComment string `gorm:"column:translator_comment;type:text"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName overrides the table name.
func (Unit) TableName() string {
	return "units"
}

// IsObsolete reports whether the unit has been soft-deleted.
func (u *Unit) IsObsolete() bool {
	return u.State == StateObsolete
}

// IsFuzzy reports whether the unit is marked as needing review.
func (u *Unit) IsFuzzy() bool {
	return u.State == StateFuzzy
}

// Submission is an append-only audit record of one applied content change.
type Submission struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	UnitID    uint64    `gorm:"column:unit_id;index:idx_submissions_unit"`
	Field     string    `gorm:"column:field;size:32"`
	OldValue  string    `gorm:"column:old_value;type:text"`
	NewValue  string    `gorm:"column:new_value;type:text"`
	Actor     string    `gorm:"column:actor;size:64"`
	Type      string    `gorm:"column:type;size:32"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName overrides the table name.
func (Submission) TableName() string {
	return "submissions"
}

// Submission types.
const (
	SubmissionTypeFileUpdate = "file"
	SubmissionTypeWebEdit    = "web"
	SubmissionTypeSystem     = "system"
)

// Submission fields.
const (
	SubmissionFieldTarget = "target"
	SubmissionFieldState  = "state"
)

// Suggestion captures an incoming translation that lost a revision conflict.
// It preserves the clobbered side for later human review.
type Suggestion struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	UnitID    uint64    `gorm:"column:unit_id;index:idx_suggestions_unit"`
	Target    string    `gorm:"column:target;type:text"`
	Actor     string    `gorm:"column:actor;size:64"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName overrides the table name.
func (Suggestion) TableName() string {
	return "suggestions"
}

// UnitID builds the content-derived identity for a context/source pair.
func UnitID(context, source string) string {
	if context == "" {
		return source
	}
	return context + UnitIDSeparator + source
}

// HashUnitID returns the md5 hex digest of a unit identity.
func HashUnitID(unitid string) string {
	sum := md5.Sum([]byte(unitid))
	return hex.EncodeToString(sum[:])
}

// DeriveState computes a unit's state from its target text and fuzzy flag.
// Obsolete is never derived from content; it is assigned by structure sync.
func DeriveState(target string, fuzzy bool) int {
	if strings.Trim(target, PluralSeparator) == "" {
		return StateUntranslated
	}
	if fuzzy {
		return StateFuzzy
	}
	return StateTranslated
}
