// Package models defines the persistence model for translation stores.
//
// A Store is an ordered collection of translation Units bound to a resource
// file object in storage. Units carry a content-derived identity (unitid) so
// they can be matched between the file and database representations even when
// the file has been reordered, plus a revision number drawn from the global
// revision counter on every content-affecting change.
//
// The package also holds the audit models: Submission rows record every
// applied content change, and Suggestion rows capture incoming translations
// that lost a revision conflict instead of silently discarding them.
package models
