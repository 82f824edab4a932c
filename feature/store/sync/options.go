package sync

import "translation-manager/feature/store/models"

// UpdateOptions controls how an incoming file snapshot is merged into the
// database.
type UpdateOptions struct {
	// Baseline is the revision the file content was derived from: the
	// revision the client last synced against. -1 means a fresh import
	// with no prior snapshot.
	Baseline int64

	// User is the actor recorded on submissions and suggestions.
	User string

	// SubmissionType tags the audit records written for applied changes.
	SubmissionType string

	// Conservative leaves the indices of surviving units untouched; only
	// content changes and additions/obsoletions are applied. When false,
	// surviving units are reordered to match file order.
	Conservative bool

	// Overwrite skips conflict checking entirely: incoming content always
	// wins, regardless of unit revisions.
	Overwrite bool

	// SuggestOnConflict preserves the losing incoming translation as a
	// suggestion when the database side wins a conflict.
	SuggestOnConflict bool
}

// DefaultUpdateOptions returns the conservative defaults used by the HTTP
// and CLI surfaces.
func DefaultUpdateOptions() UpdateOptions {
	return UpdateOptions{
		Baseline:          -1,
		User:              "system",
		SubmissionType:    models.SubmissionTypeFileUpdate,
		Conservative:      true,
		Overwrite:         false,
		SuggestOnConflict: true,
	}
}

// UpdateResult summarizes one update operation.
type UpdateResult struct {
	// Changed reports whether any mutation was applied.
	Changed bool `json:"changed"`

	// Revision is the revision assigned to changes in this update, 0 when
	// nothing changed.
	Revision int64 `json:"revision"`

	Added     int `json:"added"`
	Obsoleted int `json:"obsoleted"`
	Updated   int `json:"updated"`

	// Conflicts counts common units whose incoming content was skipped
	// because the database copy was newer than the baseline.
	Conflicts int `json:"conflicts"`

	// Suggested counts conflicts preserved as suggestions.
	Suggested int `json:"suggested"`

	// Resurrected counts obsolete units brought back to life because the
	// file listed them again.
	Resurrected int `json:"resurrected"`

	// Unsynced counts units re-stamped with a fresh revision because they
	// carried edits newer than the previous sync point; they remain ahead
	// of the new sync point so the next sync picks them up.
	Unsynced int `json:"unsynced"`
}

// SyncOptions controls serialization of a store back into file bytes.
type SyncOptions struct {
	// OnlyNewer returns no bytes when no live unit revision exceeds the
	// store's last-sync revision.
	OnlyNewer bool

	// SkipMissing tolerates a store with no backing file location: the
	// operation is skipped instead of failing.
	SkipMissing bool

	// IncludeObsolete emits soft-deleted units as obsolete file entries
	// instead of dropping them.
	IncludeObsolete bool
}

// DefaultSyncOptions returns the defaults used by the HTTP and CLI surfaces.
func DefaultSyncOptions() SyncOptions {
	return SyncOptions{OnlyNewer: true}
}

// SyncResult summarizes one sync operation.
type SyncResult struct {
	// Bytes is the serialized file content, nil when Skipped.
	Bytes []byte `json:"-"`

	// Revision is the max live unit revision captured in the output; the
	// store's last-sync revision should advance to it once the bytes are
	// written out.
	Revision int64 `json:"revision"`

	// Skipped reports that nothing needed syncing (OnlyNewer) or that the
	// backing file was missing and SkipMissing tolerated it.
	Skipped bool `json:"skipped"`

	Units int `json:"units"`
}
