// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"encoding/json"
	"log/slog"

	"github.com/samber/oops"
)

// Level combines a grid, the entities on it and a spatial index of which
// entity occupies which cell.
type Level struct {
	ID       string
	Grid     *Grid
	Entities *Store

	occupancy map[Position]string
}

// NewLevel creates an empty level over grid.
func NewLevel(id string, grid *Grid) *Level {
	return &Level{
		ID:        id,
		Grid:      grid,
		Entities:  NewStore(),
		occupancy: make(map[Position]string),
	}
}

// Has reports whether entity id exists on the level.
func (l *Level) Has(id string) bool {
	return l.Entities.Has(id)
}

// PositionOf returns the position component of id.
func (l *Level) PositionOf(id string) (Position, bool) {
	var p Position
	ok, err := l.Entities.Component(id, ComponentPosition, &p)
	if err != nil {
		slog.Debug("unreadable position component", "level", l.ID, "entity", id, "error", err)
		return Position{}, false
	}
	return p, ok
}

// Translate returns the in-bounds neighbor of p in d.
func (l *Level) Translate(p Position, d Direction) (Position, bool) {
	return l.Grid.Translate(p, d)
}

// Blocked reports whether the terrain at p blocks movement.
func (l *Level) Blocked(p Position) bool {
	return l.Grid.BlockMove(p)
}

// Occupant returns the entity standing on p.
func (l *Level) Occupant(p Position) (string, bool) {
	id, ok := l.occupancy[p]
	return id, ok
}

// Occupied reports whether an entity stands on p.
func (l *Level) Occupied(p Position) bool {
	_, ok := l.occupancy[p]
	return ok
}

// Spawn adds entity id at p with extra components. The position must be in
// bounds, open and unoccupied.
func (l *Level) Spawn(id string, p Position, components map[string]any) error {
	if err := l.checkFree(p); err != nil {
		return oops.With("entity", id).Wrap(err)
	}
	all := make(map[string]any, len(components)+1)
	for k, v := range components {
		all[k] = v
	}
	all[ComponentPosition] = p
	if err := l.Entities.Add(id, all); err != nil {
		return err
	}
	l.occupancy[p] = id
	return nil
}

// Despawn removes id from the level and reports whether it existed.
func (l *Level) Despawn(id string) bool {
	if p, ok := l.PositionOf(id); ok && l.occupancy[p] == id {
		delete(l.occupancy, p)
	}
	return l.Entities.Remove(id)
}

// MoveEntity moves id to p, updating its position component and the
// spatial index.
func (l *Level) MoveEntity(id string, p Position) error {
	from, ok := l.PositionOf(id)
	if !ok {
		return oops.Code(CodeEntityNotFound).With("entity", id).Errorf("entity %s has no position", id)
	}
	if from == p {
		return nil
	}
	if err := l.checkFree(p); err != nil {
		return oops.With("entity", id).Wrap(err)
	}
	if err := l.Entities.SetComponent(id, ComponentPosition, p); err != nil {
		return err
	}
	if l.occupancy[from] == id {
		delete(l.occupancy, from)
	}
	l.occupancy[p] = id
	return nil
}

func (l *Level) checkFree(p Position) error {
	switch {
	case !l.Grid.InBounds(p):
		return oops.Code(CodeInvalidPosition).With("position", p.String()).Errorf("position out of bounds")
	case l.Grid.BlockMove(p):
		return oops.Code(CodeInvalidPosition).With("position", p.String()).Errorf("position is blocked")
	case l.Occupied(p):
		return oops.Code(CodeInvalidPosition).
			With("position", p.String()).
			With("occupant", l.occupancy[p]).
			Errorf("position is occupied")
	}
	return nil
}

// EntityRecord is the plain-data form of one entity.
type EntityRecord struct {
	ID         string                     `json:"id"`
	Components map[string]json.RawMessage `json:"components"`
}

// LevelState is the plain-data form of the mutable part of a level. The grid
// is static and not included.
type LevelState struct {
	ID       string         `json:"id"`
	Entities []EntityRecord `json:"entities"`
}

// State captures every entity, sorted by id.
func (l *Level) State() LevelState {
	ids := l.Entities.IDs()
	records := make([]EntityRecord, 0, len(ids))
	for _, id := range ids {
		c, _ := l.Entities.Get(id)
		records = append(records, EntityRecord{ID: id, Components: c})
	}
	return LevelState{ID: l.ID, Entities: records}
}

// Restore replaces all entities with those in st and rebuilds the spatial
// index from their position components.
func (l *Level) Restore(st LevelState) error {
	store := NewStore()
	occupancy := make(map[Position]string, len(st.Entities))
	for _, rec := range st.Entities {
		if rec.ID == "" || store.Has(rec.ID) {
			return oops.Code(CodeDuplicateEntity).With("entity", rec.ID).Errorf("invalid or duplicate entity id %q", rec.ID)
		}
		c := make(map[string]json.RawMessage, len(rec.Components))
		for k, v := range rec.Components {
			c[k] = v
		}
		store.entities[rec.ID] = c

		var p Position
		ok, err := store.Component(rec.ID, ComponentPosition, &p)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if prev, taken := occupancy[p]; taken {
			return oops.Code(CodeInvalidPosition).
				With("position", p.String()).
				With("entity", rec.ID).
				With("occupant", prev).
				Errorf("two entities share a cell")
		}
		occupancy[p] = rec.ID
	}
	l.ID = st.ID
	l.Entities = store
	l.occupancy = occupancy
	return nil
}
