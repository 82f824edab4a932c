package diff

import (
	"github.com/pmezard/go-difflib/difflib"

	"translation-manager/feature/store/models"
)

// DBUnit is an ordered snapshot of a persisted unit, as loaded by the
// persistence layer (ordered by index, obsolete units included).
type DBUnit struct {
	ID       uint64
	UnitID   string
	Index    int
	Revision int64
	State    int

	Source            string
	SourcePlural      string
	Target            string
	Context           string
	Locations         string
	DeveloperComment  string
	TranslatorComment string
}

// FileUnit is a unit parsed from the incoming resource file. It carries
// content but no revision.
type FileUnit struct {
	UnitID string
	State  int

	Source            string
	SourcePlural      string
	Target            string
	Context           string
	Locations         string
	DeveloperComment  string
	TranslatorComment string
}

// contentEqual compares the attributes that constitute unit content.
func contentEqual(d *DBUnit, f *FileUnit) bool {
	return d.Source == f.Source &&
		d.SourcePlural == f.SourcePlural &&
		d.Target == f.Target &&
		d.Context == f.Context &&
		d.Locations == f.Locations &&
		d.DeveloperComment == f.DeveloperComment &&
		d.TranslatorComment == f.TranslatorComment &&
		d.State == f.State
}

// Addition is a file unit to be created at a specific index.
type Addition struct {
	Unit  FileUnit
	Index int
}

// IndexShift moves every live unit with Index >= Start up by Delta to make
// room for spliced-in additions.
type IndexShift struct {
	Start int
	Delta int
}

// Diff is the reconciliation plan for one store against one file snapshot.
type Diff struct {
	// Baseline is the revision the file content was derived from. The
	// conflict resolver compares unit revisions against it.
	Baseline int64

	// IndexShifts are applied first, in order.
	IndexShifts []IndexShift

	// Obsolete lists live DB unit ids absent from the file, in DB order.
	Obsolete []uint64

	// Additions lists file units absent from the DB, in file order, with
	// their target indices.
	Additions []Addition

	// UpdateIDs is the set of common DB unit ids whose content or position
	// needs reconsideration by the unit syncer.
	UpdateIDs map[uint64]struct{}

	// Indices maps DB unit ids to their new index, for common units whose
	// position changes.
	Indices map[uint64]int
}

// HasChanges reports whether applying the diff would mutate the store.
func (d *Diff) HasChanges() bool {
	return len(d.Obsolete) > 0 || len(d.Additions) > 0 || len(d.UpdateIDs) > 0
}

// insertPoint describes one splice location derived from the opcodes.
type insertPoint struct {
	insertAt  int      // index of the unit preceding the splice, -1 at the front
	uids      []string // unit ids to place at the splice
	nextIndex int      // index of the first displaced unit
	delta     int      // shift applied from nextIndex on, when positive
}

type computation struct {
	dbByUID   map[string]*DBUnit
	dbOrder   []string // all DB unit ids, index order
	activeUID []string // non-obsolete DB unit ids, index order

	fileByUID map[string]*FileUnit
	fileOrder []string

	points []insertPoint
}

// Compute builds the reconciliation plan. dbUnits must be ordered by index
// (obsolete units included); fileUnits must be in file order. baseline is the
// revision the file content was derived from; pass -1 for a fresh import.
func Compute(dbUnits []DBUnit, fileUnits []FileUnit, baseline int64) *Diff {
	c := &computation{
		dbByUID:   make(map[string]*DBUnit, len(dbUnits)),
		fileByUID: make(map[string]*FileUnit, len(fileUnits)),
	}

	for i := range dbUnits {
		u := &dbUnits[i]
		c.dbByUID[u.UnitID] = u
		c.dbOrder = append(c.dbOrder, u.UnitID)
		if u.State != models.StateObsolete {
			c.activeUID = append(c.activeUID, u.UnitID)
		}
	}
	for i := range fileUnits {
		f := &fileUnits[i]
		if _, dup := c.fileByUID[f.UnitID]; dup {
			// Store-scoped uniqueness invariant: the first occurrence in
			// the file wins, later duplicates are dropped.
			continue
		}
		c.fileByUID[f.UnitID] = f
		c.fileOrder = append(c.fileOrder, f.UnitID)
	}

	c.points = c.insertPoints(c.fileOrder)
	indices := c.indexAssignments()

	return &Diff{
		Baseline:    baseline,
		IndexShifts: c.indexShifts(),
		Obsolete:    c.unitsToObsolete(),
		Additions:   c.unitsToAdd(),
		UpdateIDs:   c.unitsToUpdate(c.fileOrder, indices),
		Indices:     indices,
	}
}

func (c *computation) opcodes(newList []string) []difflib.OpCode {
	return difflib.NewMatcher(c.activeUID, newList).GetOpCodes()
}

func (c *computation) insertPoints(newList []string) []insertPoint {
	var points []insertPoint

	for _, op := range c.opcodes(newList) {
		switch op.Tag {
		case 'i': // insert
			insertAt := -1
			if op.I1 > 0 {
				insertAt = c.dbByUID[c.activeUID[op.I1-1]].Index
			}
			nextIndex := insertAt + 1
			delta := 0
			if op.I1 < len(c.activeUID) {
				nextIndex = c.dbByUID[c.activeUID[op.I1]].Index
				delta = (op.J2 - op.J1) - (nextIndex - insertAt - 1)
			}
			points = append(points, insertPoint{
				insertAt:  insertAt,
				uids:      newList[op.J1:op.J2],
				nextIndex: nextIndex,
				delta:     delta,
			})

		case 'r': // replace
			insertAt := -1
			if op.I1 > 0 {
				insertAt = c.dbByUID[c.activeUID[op.I1-1]].Index
			}
			nextIndex := c.dbByUID[c.activeUID[op.I2-1]].Index
			points = append(points, insertPoint{
				insertAt:  insertAt,
				uids:      newList[op.J1:op.J2],
				nextIndex: nextIndex,
				delta:     (op.J2 - op.J1) - (nextIndex - insertAt),
			})
		}
	}
	return points
}

func (c *computation) indexShifts() []IndexShift {
	offset := 0
	var shifts []IndexShift
	for _, p := range c.points {
		if p.delta > 0 {
			shifts = append(shifts, IndexShift{Start: p.nextIndex + offset, Delta: p.delta})
			offset += p.delta
		}
	}
	return shifts
}

func (c *computation) unitsToAdd() []Addition {
	offset := 0
	var adds []Addition
	for _, p := range c.points {
		for k, uid := range p.uids {
			f, inFile := c.fileByUID[uid]
			if !inFile {
				continue
			}
			if _, inDB := c.dbByUID[uid]; inDB {
				continue
			}
			adds = append(adds, Addition{Unit: *f, Index: p.insertAt + k + 1 + offset})
		}
		if p.delta > 0 {
			offset += p.delta
		}
	}
	return adds
}

func (c *computation) unitsToObsolete() []uint64 {
	var obsolete []uint64
	active := make(map[string]struct{}, len(c.activeUID))
	for _, uid := range c.activeUID {
		active[uid] = struct{}{}
	}

	for _, uid := range c.dbOrder {
		if _, inFile := c.fileByUID[uid]; inFile {
			continue
		}
		if _, isActive := active[uid]; !isActive {
			continue
		}
		obsolete = append(obsolete, c.dbByUID[uid].ID)
	}
	return obsolete
}

func (c *computation) indexAssignments() map[uint64]int {
	offset := 0
	indices := make(map[uint64]int)
	for _, p := range c.points {
		for k, uid := range p.uids {
			if u, inDB := c.dbByUID[uid]; inDB {
				indices[u.ID] = p.insertAt + k + 1 + offset
			}
		}
		if p.delta > 0 {
			offset += p.delta
		}
	}
	return indices
}

func (c *computation) unitsToUpdate(newList []string, indices map[uint64]int) map[uint64]struct{} {
	ids := make(map[uint64]struct{})

	// Common units inside equal opcodes whose content differs.
	for _, op := range c.opcodes(newList) {
		if op.Tag != 'e' {
			continue
		}
		for _, uid := range c.activeUID[op.I1:op.I2] {
			f, inFile := c.fileByUID[uid]
			if !inFile {
				continue
			}
			if d := c.dbByUID[uid]; !contentEqual(d, f) {
				ids[d.ID] = struct{}{}
			}
		}
	}

	// Common units whose position changes (includes resurrections).
	for id := range indices {
		ids[id] = struct{}{}
	}
	return ids
}
