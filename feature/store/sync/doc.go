// Package sync applies reconciliation plans to translation stores, in both
// directions.
//
// The Updater merges an incoming file snapshot into the database: it runs
// the diff computer, resolves content conflicts against the caller-supplied
// baseline revision (optimistic concurrency: the side with the newer
// revision wins whole, never field-by-field), and applies structural and
// content changes inside one persistence transaction. Conflicts are data,
// not errors: the losing incoming translation is preserved as a suggestion
// and counted in the result summary.
//
// The Syncer is the inverse direction: it serializes a store's live units
// back into resource file bytes, optionally only when something changed
// since the last sync.
//
// Persistence is abstracted behind the Backend interface so the engine can
// be exercised against an in-memory fake; the gorm implementation lives in
// feature/store/repo.
package sync
