package optimistic

import (
	"sort"
	"time"

	"github.com/zfogg/inkwell/pkg/store"
)

// entry is one in-flight mutation: the plan that was applied and the
// entity as it was just before.
type entry struct {
	id        string
	seq       uint64
	plan      Plan
	desc      descriptor
	snapshot  store.Entity
	removal   store.Removal
	handle    *Handle
	createdAt time.Time
	sentAt    time.Time
	sent      bool
}

func (e *entry) key() laneKey {
	return laneKey{entityID: e.plan.EntityID, slot: e.plan.Slot}
}

type laneKey struct {
	entityID string
	slot     string
}

// journal indexes entries by id and by (entity, slot) lane. The head of a
// lane is the only entry with a request in flight.
type journal struct {
	seq     uint64
	entries map[string]*entry
	lanes   map[laneKey][]*entry
}

func newJournal() *journal {
	return &journal{
		entries: make(map[string]*entry),
		lanes:   make(map[laneKey][]*entry),
	}
}

// add appends the entry to its lane and reports whether it is queued
// behind another entry
func (j *journal) add(e *entry) bool {
	j.seq++
	e.seq = j.seq
	j.entries[e.id] = e
	k := e.key()
	j.lanes[k] = append(j.lanes[k], e)
	return len(j.lanes[k]) > 1
}

func (j *journal) lane(k laneKey) []*entry {
	return j.lanes[k]
}

// pop removes the head of a lane and returns what is left
func (j *journal) pop(k laneKey) []*entry {
	lane := j.lanes[k]
	if len(lane) == 0 {
		return nil
	}
	delete(j.entries, lane[0].id)
	rest := lane[1:]
	if len(rest) == 0 {
		delete(j.lanes, k)
		return nil
	}
	j.lanes[k] = rest
	return rest
}

// drop removes a whole lane
func (j *journal) drop(k laneKey) {
	for _, e := range j.lanes[k] {
		delete(j.entries, e.id)
	}
	delete(j.lanes, k)
}

// lanesFor returns the entity's lanes ordered by when each lane started
func (j *journal) lanesFor(entityID string) [][]*entry {
	var out [][]*entry
	for k, lane := range j.lanes {
		if k.entityID == entityID && len(lane) > 0 {
			out = append(out, lane)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a][0].seq < out[b][0].seq })
	return out
}

// pendingDelete returns the in-flight delete-entity entry, if any
func (j *journal) pendingDelete(entityID string) *entry {
	lane := j.lanes[laneKey{entityID: entityID, slot: "entity"}]
	if len(lane) == 0 {
		return nil
	}
	return lane[0]
}

// PendingMutation describes a journal entry that has not resolved yet
type PendingMutation struct {
	MutationID string    `json:"mutation_id"`
	Kind       Kind      `json:"kind"`
	EntityID   string    `json:"entity_id"`
	Slot       string    `json:"slot"`
	Queued     bool      `json:"queued"`
	CreatedAt  time.Time `json:"created_at"`
}

func (j *journal) pending() []PendingMutation {
	all := make([]*entry, 0, len(j.entries))
	for _, e := range j.entries {
		all = append(all, e)
	}
	sort.Slice(all, func(a, b int) bool { return all[a].seq < all[b].seq })

	out := make([]PendingMutation, 0, len(all))
	for _, e := range all {
		lane := j.lanes[e.key()]
		out = append(out, PendingMutation{
			MutationID: e.id,
			Kind:       e.plan.Kind,
			EntityID:   e.plan.EntityID,
			Slot:       e.plan.Slot,
			Queued:     len(lane) > 0 && lane[0] != e,
			CreatedAt:  e.createdAt,
		})
	}
	return out
}
