// Package store is the translation store feature: HTTP surface and
// orchestration for importing resource files into the database and syncing
// database content back out to object storage.
//
// # Layout
//
//   - models: persistence models and unit identity helpers
//   - diff: the reconciliation planner (file snapshot vs database)
//   - sync: the update/sync engine applying plans transactionally
//   - repo: the gorm persistence layer
//
// The Service ties these together with the storage client: updates may come
// from uploaded bytes or from the store's backing object, syncs serialize
// the database and upload the result, advancing the store's sync point only
// after a successful write.
package store
