// Package editor tracks a manager's uncommitted layout edits: a sparse
// overlay of moved tables on top of the store's authoritative baseline.
// Position moves are staged and saved as one batch; adding or deleting a
// table hits the server immediately, structural changes are rarer and
// cheaper to apply eagerly.
package editor

import (
	"context"
	"sort"
	"sync"

	"github.com/dinesync/tablemap/client"
	"github.com/dinesync/tablemap/models"
	"github.com/dinesync/tablemap/store"
)

type EditSession struct {
	mu        sync.Mutex
	api       *client.Client
	tables    *store.TableStore
	companyID uint
	// modified holds only touched tables, keyed by id. Never the full set:
	// "what changed" stays explicit and the commit payload stays small.
	modified map[uint]client.PositionUpdate
}

// Begin starts an edit session against the store's current state.
func Begin(api *client.Client, tables *store.TableStore, companyID uint) *EditSession {
	return &EditSession{
		api:       api,
		tables:    tables,
		companyID: companyID,
		modified:  make(map[uint]client.PositionUpdate),
	}
}

// MoveTable records a drag-end. The position is applied to the live view
// optimistically and staged for commit; moving the same table again before
// commit overwrites the pending entry, no move history is kept.
func (e *EditSession) MoveTable(id uint, x, y int) {
	if _, ok := e.tables.Get(id); !ok {
		return
	}
	e.tables.ApplyLocal(models.PositionDelta(id, x, y))

	e.mu.Lock()
	e.modified[id] = client.PositionUpdate{
		ID:        id,
		XPosition: x,
		YPosition: y,
		CompanyID: e.companyID,
	}
	e.mu.Unlock()
}

// Commit saves the whole pending set as one batch. On success the committed
// positions become the new authoritative baseline and leave the overlay; a
// move staged while the request was in flight stays pending for the next
// commit. On failure the overlay is retained so the user can retry without
// re-dragging.
func (e *EditSession) Commit(ctx context.Context) error {
	e.mu.Lock()
	if len(e.modified) == 0 {
		e.mu.Unlock()
		return nil
	}
	committed := make(map[uint]client.PositionUpdate, len(e.modified))
	updates := make([]client.PositionUpdate, 0, len(e.modified))
	for id, u := range e.modified {
		committed[id] = u
		updates = append(updates, u)
	}
	e.mu.Unlock()
	sort.Slice(updates, func(i, j int) bool { return updates[i].ID < updates[j].ID })

	if err := e.api.UpdateTablePositions(ctx, e.companyID, updates); err != nil {
		return err
	}

	// The server accepted exactly these values; the live view may already
	// hold newer moves and must not be promoted.
	for _, u := range updates {
		e.tables.Confirm(models.PositionDelta(u.ID, u.XPosition, u.YPosition))
	}
	e.mu.Lock()
	for id, u := range committed {
		if cur, ok := e.modified[id]; ok && cur == u {
			delete(e.modified, id)
		}
	}
	e.mu.Unlock()
	return nil
}

// Discard reverts every touched table to its last authoritative value and
// clears the overlay. Purely local, no network call.
func (e *EditSession) Discard() {
	e.mu.Lock()
	ids := make([]uint, 0, len(e.modified))
	for id := range e.modified {
		ids = append(ids, id)
	}
	e.modified = make(map[uint]client.PositionUpdate)
	e.mu.Unlock()

	for _, id := range ids {
		e.tables.Revert(id)
	}
}

// AddTable creates a table immediately on the server and merges the
// confirmed entity into the store.
func (e *EditSession) AddTable(ctx context.Context, table models.Table) (models.Table, error) {
	table.CompanyID = e.companyID
	created, err := e.api.CreateTable(ctx, table)
	if err != nil {
		return models.Table{}, err
	}
	e.tables.ApplyDelta(fullDelta(created))
	return created, nil
}

// DeleteTable removes a table immediately on the server; the store entry
// and any pending move go with it once the server confirms.
func (e *EditSession) DeleteTable(ctx context.Context, id uint) error {
	if err := e.api.DeleteTable(ctx, id); err != nil {
		return err
	}
	e.tables.Remove(id)
	e.mu.Lock()
	delete(e.modified, id)
	e.mu.Unlock()
	return nil
}

// Pending returns the staged moves ordered by table id.
func (e *EditSession) Pending() []client.PositionUpdate {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]client.PositionUpdate, 0, len(e.modified))
	for _, u := range e.modified {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Dirty reports whether there is anything to commit.
func (e *EditSession) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.modified) > 0
}

func fullDelta(t models.Table) models.TableDelta {
	return models.TableDelta{
		ID:          t.ID,
		TableNumber: &t.TableNumber,
		Capacity:    &t.Capacity,
		Shape:       &t.Shape,
		Status:      &t.Status,
		XPosition:   &t.XPosition,
		YPosition:   &t.YPosition,
		Rotation:    &t.Rotation,
		IsOutdoor:   &t.IsOutdoor,
		CompanyID:   &t.CompanyID,
	}
}
