package sync

import (
	"translation-manager/feature/store/diff"
	"translation-manager/feature/store/models"
)

// frozenUnit captures the fields of a unit before merging, for change
// detection and audit records.
type frozenUnit struct {
	target string
	state  int
}

// unitUpdater resolves and applies one common unit against its incoming
// file counterpart.
type unitUpdater struct {
	unit     *models.Unit
	incoming *diff.FileUnit // nil when the unit only changes position
	original frozenUnit

	baseline  int64
	overwrite bool
	newIndex  int
	hasIndex  bool
}

func newUnitUpdater(unit *models.Unit, incoming *diff.FileUnit, d *diff.Diff, opts UpdateOptions) *unitUpdater {
	idx, hasIdx := d.Indices[unit.ID]
	// Conservative updates skip the shift pass, so diff-assigned positions
	// assume neighbors that were never moved and can collide with a live
	// unit. Resurrected units get an appended index from the updater.
	if opts.Conservative {
		hasIdx = false
	}
	return &unitUpdater{
		unit:      unit,
		incoming:  incoming,
		original:  frozenUnit{target: unit.Target, state: unit.State},
		baseline:  d.Baseline,
		overwrite: opts.Overwrite,
		newIndex:  idx,
		hasIndex:  hasIdx,
	}
}

// conflictFound reports whether the database copy was modified after the
// baseline the file was derived from, with actually differing content.
// The database side wins such conflicts whole; there is no field-by-field
// merging.
func (u *unitUpdater) conflictFound() bool {
	if u.incoming == nil || u.overwrite {
		return false
	}
	return u.unit.Revision > u.baseline &&
		(u.unit.Target != u.incoming.Target || u.unit.Source != u.incoming.Source)
}

// shouldResurrect reports whether an obsolete unit listed again by the file
// must come back carrying its unsynced database content.
func (u *unitUpdater) shouldResurrect() bool {
	return u.unit.IsObsolete() &&
		u.incoming != nil &&
		u.incoming.State != models.StateObsolete &&
		u.unit.Revision > u.baseline &&
		!u.overwrite
}

// mergeContent applies the incoming content fields. Returns whether
// anything changed; byte-identical content is a no-op.
func (u *unitUpdater) mergeContent() bool {
	in := u.incoming
	state := in.State
	if state != models.StateObsolete {
		state = models.DeriveState(in.Target, in.State == models.StateFuzzy)
	}

	changed := u.unit.Target != in.Target ||
		u.unit.State != state ||
		u.unit.SourcePlural != in.SourcePlural ||
		u.unit.Locations != in.Locations ||
		u.unit.DeveloperComment != in.DeveloperComment ||
		u.unit.TranslatorComment != in.TranslatorComment

	if !changed {
		return false
	}
	u.unit.Target = in.Target
	u.unit.State = state
	u.unit.SourcePlural = in.SourcePlural
	u.unit.Locations = in.Locations
	u.unit.DeveloperComment = in.DeveloperComment
	u.unit.TranslatorComment = in.TranslatorComment
	return true
}

// resurrect brings an obsolete unit back to life keeping its own content.
func (u *unitUpdater) resurrect() {
	u.unit.State = models.DeriveState(u.unit.Target, false)
}

// unitOutcome is what happened to one common unit.
type unitOutcome struct {
	updated     bool
	conflicted  bool
	resurrected bool
	suggest     string // incoming target to preserve, when non-empty
}

// resolve applies the conflict rule and mutates the unit in memory. The
// caller persists the unit and audit records when updated.
func (u *unitUpdater) resolve() unitOutcome {
	var out unitOutcome

	switch {
	case u.conflictFound():
		out.conflicted = true
		if u.unit.Target != u.incoming.Target {
			out.suggest = u.incoming.Target
		}
		if u.unit.IsObsolete() && u.incoming.State != models.StateObsolete {
			// Conflicting but resurrected: the unit re-enters the live
			// set with its own content.
			u.resurrect()
			out.updated = true
			out.resurrected = true
		}
	case u.shouldResurrect():
		u.resurrect()
		out.updated = true
		out.resurrected = true
	case u.incoming != nil:
		wasObsolete := u.unit.IsObsolete()
		if u.mergeContent() {
			out.updated = true
			out.resurrected = wasObsolete && !u.unit.IsObsolete()
		}
	}

	if u.hasIndex && u.unit.Index != u.newIndex {
		u.unit.Index = u.newIndex
		out.updated = true
	}
	return out
}
