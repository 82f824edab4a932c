// Package diff computes the reconciliation plan between a store's persisted
// units and the units parsed from an incoming resource file.
//
// Compute is a pure, total function: it partitions units into additions (in
// the file, not in the DB), obsoletions (live in the DB, absent from the
// file) and common units, and derives the index arithmetic needed to splice
// additions into the existing ordering. Every DB unit lands in exactly one of
// {obsolete, common}, every file unit in exactly one of {new, common};
// matching is 1:1 by identity hash.
//
// Ordering decisions come from sequence-matcher opcodes over the active DB
// unit-id sequence versus the file unit-id sequence, so renumbered files
// produce minimal index churn instead of a full rewrite. Content precedence
// for common units is not decided here; the diff carries the baseline
// revision through to the conflict resolver.
package diff
