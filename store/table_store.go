// Package store holds the authoritative client-side copy of a restaurant's
// tables. Three input streams feed it: full snapshots from the API, deltas
// from the push channel, and local optimistic edits. All three go through
// one merge function; the last writer wins per field set. There is no
// version reconciliation: two rapid conflicting deltas can briefly produce a
// state matching neither server write exactly, until the next delta or full
// refresh converges it. The server stays the source of truth.
package store

import (
	"sort"
	"sync"

	"github.com/dinesync/tablemap/models"
)

type TableStore struct {
	mu sync.Mutex

	// tables is the live view, including optimistic edits.
	tables map[uint]models.Table
	// baseline tracks the last authoritative value per table: snapshots,
	// push deltas and confirmed commits write it, optimistic edits do not.
	baseline map[uint]models.Table

	selectedID uint
	selected   bool

	onChange func()
}

func New() *TableStore {
	return &TableStore{
		tables:   make(map[uint]models.Table),
		baseline: make(map[uint]models.Table),
	}
}

// OnChange registers the re-render signal, fired after every mutation.
func (s *TableStore) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// LoadSnapshot replaces the full set and the authoritative baseline.
// Callers must not invoke it on a failed fetch; a fetch error leaves the
// store untouched and the caller surfaces a retry affordance instead.
func (s *TableStore) LoadSnapshot(tables []models.Table) {
	s.mu.Lock()
	s.tables = make(map[uint]models.Table, len(tables))
	s.baseline = make(map[uint]models.Table, len(tables))
	for _, t := range tables {
		s.tables[t.ID] = t
		s.baseline[t.ID] = t
	}
	if s.selected {
		if _, ok := s.tables[s.selectedID]; !ok {
			s.selected = false
		}
	}
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// ApplyDelta merges an authoritative partial update by id: known tables get
// the delta's fields overlaid, unknown ids are inserted. Safe for stale or
// unknown tables, never errors, idempotent with respect to redelivery.
func (s *TableStore) ApplyDelta(d models.TableDelta) {
	s.mu.Lock()
	cur, ok := s.tables[d.ID]
	if !ok {
		cur = models.Table{ID: d.ID}
	}
	merged := cur.Merge(d)
	s.tables[d.ID] = merged

	base, ok := s.baseline[d.ID]
	if !ok {
		base = models.Table{ID: d.ID}
	}
	s.baseline[d.ID] = base.Merge(d)

	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// ApplyLocal merges an optimistic local edit. The baseline is left alone so
// Revert can roll the table back to its last authoritative value.
func (s *TableStore) ApplyLocal(d models.TableDelta) {
	s.mu.Lock()
	cur, ok := s.tables[d.ID]
	if !ok {
		cur = models.Table{ID: d.ID}
	}
	s.tables[d.ID] = cur.Merge(d)
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Revert restores a table to its last authoritative value, discarding any
// optimistic edit. Rolling back to the baseline, not to a remembered
// pre-edit value, matters: the server-side state may have moved on while
// the optimistic request was in flight.
func (s *TableStore) Revert(id uint) {
	s.mu.Lock()
	if base, ok := s.baseline[id]; ok {
		s.tables[id] = base
	} else {
		delete(s.tables, id)
	}
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Confirm records a server-acknowledged value in the baseline without
// touching the live view, which may already hold newer optimistic edits.
// Called with the exact values the server accepted, never with live state.
func (s *TableStore) Confirm(d models.TableDelta) {
	s.mu.Lock()
	base, ok := s.baseline[d.ID]
	if !ok {
		base = models.Table{ID: d.ID}
	}
	s.baseline[d.ID] = base.Merge(d)
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Remove drops a table after a confirmed server delete.
func (s *TableStore) Remove(id uint) {
	s.mu.Lock()
	delete(s.tables, id)
	delete(s.baseline, id)
	if s.selected && s.selectedID == id {
		s.selected = false
	}
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Get returns a copy of the live table.
func (s *TableStore) Get(id uint) (models.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[id]
	return t, ok
}

// Baseline returns a copy of the last authoritative value of the table.
func (s *TableStore) Baseline(id uint) (models.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.baseline[id]
	return t, ok
}

// List returns all live tables ordered by id.
func (s *TableStore) List() []models.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Table, 0, len(s.tables))
	for _, t := range s.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of live tables.
func (s *TableStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tables)
}

// Select marks a table as the current selection. Selection follows the
// store: deltas merged into the selected table are visible through
// Selected, and removing the table clears the selection.
func (s *TableStore) Select(id uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[id]; !ok {
		return false
	}
	s.selectedID = id
	s.selected = true
	return true
}

// ClearSelection drops the current selection.
func (s *TableStore) ClearSelection() {
	s.mu.Lock()
	s.selected = false
	s.mu.Unlock()
}

// Selected returns the currently selected table, consistent with the latest
// merged state.
func (s *TableStore) Selected() (models.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.selected {
		return models.Table{}, false
	}
	t, ok := s.tables[s.selectedID]
	return t, ok
}
