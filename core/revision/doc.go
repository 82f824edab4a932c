// Package revision provides the global monotonic revision counter.
//
// Every content-mutating operation on a store obtains a fresh revision value
// strictly greater than all previously issued values. The counter is the
// single source of truth for happens-before ordering between edits, so the
// fetch-and-increment must be atomic: the MySQL implementation locks the
// counter row inside a transaction, the in-memory implementation uses an
// atomic integer.
package revision
