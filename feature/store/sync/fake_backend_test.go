package sync

import (
	"context"
	"sort"
	stdsync "sync"

	"translation-manager/feature/store/diff"
	"translation-manager/feature/store/models"
)

// fakeBackend is an in-memory Backend/Tx for exercising the engine without
// a database. Transactions are not rolled back; tests never fail mid-plan.
type fakeBackend struct {
	mu stdsync.Mutex

	stores      map[uint64]*models.Store
	units       map[uint64]*models.Unit
	nextID      uint64
	submissions []*models.Submission
	suggestions []*models.Suggestion
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		stores: make(map[uint64]*models.Store),
		units:  make(map[uint64]*models.Unit),
	}
}

func (f *fakeBackend) addStore(s *models.Store) {
	cp := *s
	f.stores[s.ID] = &cp
}

func (f *fakeBackend) addUnit(u models.Unit) uint64 {
	f.nextID++
	u.ID = f.nextID
	u.Hash = models.HashUnitID(u.UnitID)
	f.units[u.ID] = &u
	return u.ID
}

func (f *fakeBackend) unit(id uint64) *models.Unit {
	return f.units[id]
}

func (f *fakeBackend) unitByUnitID(storeID uint64, unitID string) *models.Unit {
	for _, u := range f.sortedUnits(storeID) {
		if u.UnitID == unitID {
			return u
		}
	}
	return nil
}

func (f *fakeBackend) sortedUnits(storeID uint64) []*models.Unit {
	var out []*models.Unit
	for _, u := range f.units {
		if u.StoreID == storeID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Index != out[j].Index {
			return out[i].Index < out[j].Index
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f *fakeBackend) LoadUnits(_ context.Context, storeID uint64) ([]diff.DBUnit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []diff.DBUnit
	for _, u := range f.sortedUnits(storeID) {
		out = append(out, diff.DBUnit{
			ID:                u.ID,
			UnitID:            u.UnitID,
			Index:             u.Index,
			Revision:          u.Revision,
			State:             u.State,
			Source:            u.Source,
			SourcePlural:      u.SourcePlural,
			Target:            u.Target,
			Context:           u.Context,
			Locations:         u.Locations,
			DeveloperComment:  u.DeveloperComment,
			TranslatorComment: u.TranslatorComment,
		})
	}
	return out, nil
}

func (f *fakeBackend) SaveStore(_ context.Context, store *models.Store) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *store
	f.stores[store.ID] = &cp
	return nil
}

func (f *fakeBackend) Transact(_ context.Context, fn func(Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn((*fakeTx)(f))
}

// fakeTx exposes the mutation surface over the same state.
type fakeTx fakeBackend

func (t *fakeTx) ShiftIndexes(storeID uint64, start, delta int) error {
	for _, u := range t.units {
		if u.StoreID == storeID && !u.IsObsolete() && u.Index >= start {
			u.Index += delta
		}
	}
	return nil
}

func (t *fakeTx) CreateUnit(storeID uint64, unit diff.FileUnit, index int, rev int64) (uint64, error) {
	t.nextID++
	t.units[t.nextID] = &models.Unit{
		ID:                t.nextID,
		StoreID:           storeID,
		UnitID:            unit.UnitID,
		Hash:              models.HashUnitID(unit.UnitID),
		Index:             index,
		State:             unit.State,
		Revision:          rev,
		Source:            unit.Source,
		SourcePlural:      unit.SourcePlural,
		Target:            unit.Target,
		Context:           unit.Context,
		Locations:         unit.Locations,
		DeveloperComment:  unit.DeveloperComment,
		TranslatorComment: unit.TranslatorComment,
	}
	return t.nextID, nil
}

func (t *fakeTx) ObsoleteUnits(ids []uint64, rev int64) (int, error) {
	n := 0
	for _, id := range ids {
		u, ok := t.units[id]
		if !ok || u.IsObsolete() {
			continue
		}
		u.State = models.StateObsolete
		u.Revision = rev
		n++
	}
	return n, nil
}

func (t *fakeTx) GetUnit(id uint64) (*models.Unit, error) {
	u, ok := t.units[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (t *fakeTx) SaveUnit(unit *models.Unit) error {
	cp := *unit
	t.units[unit.ID] = &cp
	return nil
}

func (t *fakeTx) BumpRevisions(storeID uint64, after, before, rev int64) (int, error) {
	n := 0
	for _, u := range t.units {
		if u.StoreID != storeID || u.IsObsolete() {
			continue
		}
		if u.Revision > after && u.Revision < before {
			u.Revision = rev
			n++
		}
	}
	return n, nil
}

func (t *fakeTx) RecordSubmission(sub *models.Submission) error {
	cp := *sub
	t.submissions = append(t.submissions, &cp)
	return nil
}

func (t *fakeTx) AddSuggestion(sug *models.Suggestion) error {
	cp := *sug
	t.suggestions = append(t.suggestions, &cp)
	return nil
}

func (t *fakeTx) SaveStore(store *models.Store) error {
	cp := *store
	t.stores[store.ID] = &cp
	return nil
}
