package store

import (
	json "github.com/json-iterator/go"
)

// Set is an insertion-ordered set of user ids.
// The zero value is an empty set.
type Set struct {
	ids []string
}

// NewSet builds a set from ids, dropping duplicates
func NewSet(ids ...string) Set {
	var s Set
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Has reports whether id is a member
func (s Set) Has(id string) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Add inserts id and reports whether membership changed
func (s *Set) Add(id string) bool {
	if id == "" || s.Has(id) {
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// Remove deletes id and reports whether membership changed
func (s *Set) Remove(id string) bool {
	for i, v := range s.ids {
		if v == id {
			next := make([]string, 0, len(s.ids)-1)
			next = append(next, s.ids[:i]...)
			next = append(next, s.ids[i+1:]...)
			if len(next) == 0 {
				next = nil
			}
			s.ids = next
			return true
		}
	}
	return false
}

// Len returns the number of members
func (s Set) Len() int {
	return len(s.ids)
}

// Slice returns a copy of the members in insertion order
func (s Set) Slice() []string {
	if len(s.ids) == 0 {
		return []string{}
	}
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Clone returns an independent copy
func (s Set) Clone() Set {
	if len(s.ids) == 0 {
		return Set{}
	}
	return Set{ids: s.Slice()}
}

// MarshalJSON encodes the set as a JSON array
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// UnmarshalJSON decodes a JSON array of ids
func (s *Set) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewSet(ids...)
	return nil
}
