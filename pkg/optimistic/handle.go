package optimistic

import (
	"context"
	"sync"
)

// State is the lifecycle position of a single mutation
type State int

const (
	StateIdle State = iota
	StateApplied
	StateConfirmed
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateApplied:
		return "applied"
	case StateConfirmed:
		return "confirmed"
	case StateRolledBack:
		return "rolled-back"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen
func (s State) Terminal() bool {
	return s == StateConfirmed || s == StateRolledBack
}

// Handle tracks one submitted mutation until it is confirmed or rolled back
type Handle struct {
	id        string
	kind      Kind
	entityID  string
	commentID string

	mu     sync.Mutex
	state  State
	result Result
	err    error
	done   chan struct{}
}

func newHandle(id string, p Plan) *Handle {
	return &Handle{
		id:        id,
		kind:      p.Kind,
		entityID:  p.EntityID,
		commentID: p.CommentID,
		done:      make(chan struct{}),
	}
}

func (h *Handle) ID() string       { return h.id }
func (h *Handle) Kind() Kind       { return h.kind }
func (h *Handle) EntityID() string { return h.entityID }

// CommentID is the comment acted on. For add-comment it is the temporary
// id until the server assigns one; see Result.
func (h *Handle) CommentID() string { return h.commentID }

func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Done is closed once the mutation reaches a terminal state
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the terminal error, nil while pending or after confirmation
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Result returns the server data the mutation was confirmed with
func (h *Handle) Result() Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result
}

// Wait blocks until the mutation resolves or ctx ends. Giving up on the
// wait does not cancel the mutation.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handle) setState(s State) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

// finish moves the handle to a terminal state exactly once
func (h *Handle) finish(s State, r Result, err error) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state.Terminal() {
		return false
	}
	h.state = s
	h.result = r
	h.err = err
	close(h.done)
	return true
}
