package store

import (
	"sort"
	"sync"
)

// Reader is the read-only view of the store used by selectors
type Reader interface {
	Get(id string) (Entity, bool)
	List(name string) []string
}

// Removal records everything needed to put a removed entity back
type Removal struct {
	Entity    Entity
	Positions map[string]int // list name -> index the id occupied
}

// Store is the in-memory cache of entities keyed by id, plus named ordered
// lists (feeds, bookmark pages, follower lists) of entity ids.
// All values crossing the API are deep copies.
type Store struct {
	mu       sync.RWMutex
	entities map[string]*Entity
	lists    map[string][]string
}

// New creates an empty store
func New() *Store {
	return &Store{
		entities: make(map[string]*Entity),
		lists:    make(map[string][]string),
	}
}

// Get returns a copy of the entity
func (s *Store) Get(id string) (Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entities[id]
	if !ok {
		return Entity{}, false
	}
	return e.Clone(), true
}

// Has reports whether the entity is cached
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entities[id]
	return ok
}

// Upsert replaces the stored record wholesale
func (s *Store) Upsert(e Entity) {
	c := e.Clone()
	s.mu.Lock()
	s.entities[e.ID] = &c
	s.mu.Unlock()
}

// Mutate applies fn to the stored entity and returns the value it had before
func (s *Store) Mutate(id string, fn func(*Entity)) (Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entities[id]
	if !ok {
		return Entity{}, ErrNotFound
	}
	prior := e.Clone()
	fn(e)
	e.ID = id
	return prior, nil
}

// Remove deletes the entity and every list reference to it
func (s *Store) Remove(id string) (Removal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entities[id]
	if !ok {
		return Removal{}, false
	}
	delete(s.entities, id)

	r := Removal{Entity: *e, Positions: make(map[string]int)}
	for name, ids := range s.lists {
		for i, v := range ids {
			if v == id {
				r.Positions[name] = i
				s.lists[name] = append(ids[:i:i], ids[i+1:]...)
				break
			}
		}
	}
	return r, true
}

// Restore puts a removed entity back, including its list positions
func (s *Store) Restore(r Removal) {
	c := r.Entity.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entities[c.ID] = &c
	for name, pos := range r.Positions {
		ids := s.lists[name]
		if containsID(ids, c.ID) {
			continue
		}
		if pos > len(ids) {
			pos = len(ids)
		}
		next := make([]string, 0, len(ids)+1)
		next = append(next, ids[:pos]...)
		next = append(next, c.ID)
		next = append(next, ids[pos:]...)
		s.lists[name] = next
	}
}

// SetList replaces a named list
func (s *Store) SetList(name string, ids []string) {
	s.mu.Lock()
	s.lists[name] = append([]string(nil), ids...)
	s.mu.Unlock()
}

// AppendList adds ids to the end of a named list, skipping ones already present
func (s *Store) AppendList(name string, ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[name]
	for _, id := range ids {
		if !containsID(list, id) {
			list = append(list, id)
		}
	}
	s.lists[name] = list
}

// List returns a copy of a named list
func (s *Store) List(name string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.lists[name]...)
}

// Snapshot returns copies of every cached entity ordered by id
func (s *Store) Snapshot() []Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entity, 0, len(s.entities))
	for _, e := range s.entities {
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of cached entities
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
