// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Well-known component names.
const (
	ComponentPosition = "position"
	ComponentBehavior = "behavior"
	ComponentKind     = "kind"
)

// NewEntityID generates a unique entity id prefixed with kind.
func NewEntityID(kind string) string {
	return kind + ":" + ulid.Make().String()
}

// Store holds entities and their components. It is not safe for concurrent use.
type Store struct {
	entities map[string]map[string]json.RawMessage
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entities: make(map[string]map[string]json.RawMessage)}
}

// Len returns the number of entities.
func (s *Store) Len() int {
	return len(s.entities)
}

// Has reports whether id exists.
func (s *Store) Has(id string) bool {
	_, ok := s.entities[id]
	return ok
}

// IDs returns every entity id in sorted order.
func (s *Store) IDs() []string {
	return slices.Sorted(maps.Keys(s.entities))
}

// Get returns a copy of the raw components of id.
func (s *Store) Get(id string) (map[string]json.RawMessage, bool) {
	c, ok := s.entities[id]
	if !ok {
		return nil, false
	}
	out := make(map[string]json.RawMessage, len(c))
	for k, v := range c {
		out[k] = slices.Clone(v)
	}
	return out, true
}

// Add creates entity id with the given components.
func (s *Store) Add(id string, components map[string]any) error {
	if id == "" {
		return oops.Code(CodeInvalidEntity).Errorf("entity id cannot be empty")
	}
	if s.Has(id) {
		return oops.Code(CodeDuplicateEntity).With("entity", id).Errorf("entity %s already exists", id)
	}
	encoded := make(map[string]json.RawMessage, len(components))
	for name, v := range components {
		raw, err := encode(id, name, v)
		if err != nil {
			return err
		}
		encoded[name] = raw
	}
	s.entities[id] = encoded
	return nil
}

// Remove deletes id and reports whether it existed.
func (s *Store) Remove(id string) bool {
	if !s.Has(id) {
		return false
	}
	delete(s.entities, id)
	return true
}

// Component decodes the named component of id into v.
// It returns false if the entity or component does not exist.
func (s *Store) Component(id, name string, v any) (bool, error) {
	raw, ok := s.entities[id][name]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, oops.Code(CodeInvalidComponent).
			With("entity", id).
			With("component", name).
			Wrap(err)
	}
	return true, nil
}

// SetComponent stores v as the named component of id.
func (s *Store) SetComponent(id, name string, v any) error {
	c, ok := s.entities[id]
	if !ok {
		return oops.Code(CodeEntityNotFound).With("entity", id).Errorf("entity %s not found", id)
	}
	raw, err := encode(id, name, v)
	if err != nil {
		return err
	}
	c[name] = raw
	return nil
}

// RemoveComponent deletes the named component of id.
func (s *Store) RemoveComponent(id, name string) {
	if c, ok := s.entities[id]; ok {
		delete(c, name)
	}
}

func encode(id, name string, v any) (json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, oops.Code(CodeInvalidComponent).
			With("entity", id).
			With("component", name).
			Wrap(err)
	}
	return raw, nil
}
