// Package integrity provides system health checks for the translation manager.
//
// Unlike the 'store' package which owns the reconciliation of unit content,
// this package validates the infrastructure the stores depend on.
//
// # Checks Provided
//
//   - Storage: Compares registered stores against the bucket contents. Reports
//     stores whose backing object is missing and .po objects with no store row.
//   - Schema: Validates that the database schema matches the persisted GORM
//     models (columns, types) for stores, units, submissions and suggestions.
//   - Stores: Scans for stores whose last update failed to parse and parsed
//     stores that have never been synced to storage.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/storage : Runs the storage check.
//   - GET /integrity/schema : Runs the schema check.
//   - GET /integrity/stores : Runs the stores check.
package integrity
