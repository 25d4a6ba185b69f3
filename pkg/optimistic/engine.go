package optimistic

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zfogg/inkwell/pkg/logger"
	"github.com/zfogg/inkwell/pkg/store"
)

// Executor performs the remote call for a mutation. It is called once per
// mutation with no retry.
type Executor interface {
	Execute(ctx context.Context, req Request) (Result, error)
}

// ExecutorFunc adapts a function to Executor
type ExecutorFunc func(ctx context.Context, req Request) (Result, error)

func (f ExecutorFunc) Execute(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}

// Viewer identifies the signed-in user. An empty id means signed out.
type Viewer interface {
	UserID() string
	UserName() string
}

// Option configures an Engine
type Option func(*Engine)

// WithNotifier sets the callback for user-visible rollback notices
func WithNotifier(fn func(*RollbackError)) Option {
	return func(e *Engine) { e.notify = fn }
}

// WithRecorder sets the metrics sink
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTempIDs overrides how temporary comment ids are generated
func WithTempIDs(fn func() string) Option {
	return func(e *Engine) { e.tempID = fn }
}

// WithContext sets the context remote calls run under
func WithContext(ctx context.Context) Option {
	return func(e *Engine) { e.ctx = ctx }
}

// Engine applies mutations to the store immediately, sends them through the
// Executor and reconciles the outcome. Every store write made by the engine
// happens under e.mu, so apply and reconcile steps never interleave.
type Engine struct {
	mu      sync.Mutex
	store   *store.Store
	exec    Executor
	viewer  Viewer
	journal *journal

	notify   func(*RollbackError)
	recorder Recorder
	now      func() time.Time
	tempID   func() string
	ctx      context.Context

	subsMu  sync.RWMutex
	subs    map[int]func(Event)
	nextSub int

	inflight sync.WaitGroup
}

// New creates an engine over s
func New(s *store.Store, exec Executor, v Viewer, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		exec:     exec,
		viewer:   v,
		journal:  newJournal(),
		recorder: nopRecorder{},
		now:      time.Now,
		tempID:   func() string { return "tmp-" + uuid.NewString() },
		ctx:      context.Background(),
		subs:     make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the underlying entity store
func (e *Engine) Store() *store.Store {
	return e.store
}

// Submit validates the intent, applies it to the store and schedules the
// remote call. It never waits on the network. Validation failures return
// an error and leave no trace in the journal.
func (e *Engine) Submit(in Intent) (*Handle, error) {
	d, ok := lookup(in.Kind)
	if !ok {
		return nil, invalid("kind", fmt.Sprintf("unknown mutation kind %q", in.Kind), ErrUnknownKind)
	}
	var uid, uname string
	if e.viewer != nil {
		uid, uname = e.viewer.UserID(), e.viewer.UserName()
	}
	if uid == "" {
		return nil, invalid("session", "you must be logged in", ErrUnauthenticated)
	}

	e.mu.Lock()
	cur, ok := e.store.Get(in.EntityID)
	if !ok {
		e.mu.Unlock()
		return nil, invalid("entity", "not found: "+in.EntityID, store.ErrNotFound)
	}
	now := e.now()
	plan, err := d.prepare(&cur, in, viewer{id: uid, name: uname, now: now, tempID: e.tempID})
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}

	ent := &entry{
		id:        uuid.NewString(),
		plan:      plan,
		desc:      d,
		createdAt: now,
	}
	ent.handle = newHandle(ent.id, plan)

	if d.removes {
		r, _ := e.store.Remove(plan.EntityID)
		ent.removal = r
		ent.snapshot = r.Entity.Clone()
	} else {
		prior, err := e.store.Mutate(plan.EntityID, func(x *store.Entity) { d.apply(x, plan) })
		if err != nil {
			e.mu.Unlock()
			return nil, invalid("entity", "not found: "+in.EntityID, store.ErrNotFound)
		}
		ent.snapshot = prior
	}

	queued := e.journal.add(ent)
	ent.handle.setState(StateApplied)
	e.recorder.Applied(string(plan.Kind))
	logger.Debug("Applied optimistic mutation",
		"mutation_id", ent.id, "kind", plan.Kind, "entity_id", plan.EntityID, "slot", plan.Slot, "queued", queued)

	if queued {
		e.recorder.Queued(string(plan.Kind))
	}
	e.mu.Unlock()

	e.emit([]Event{eventFor(EventApplied, ent, nil)})

	if !queued {
		e.mu.Lock()
		e.dispatch(ent)
		e.mu.Unlock()
	}
	return ent.handle, nil
}

// dispatch sends the entry's request if it is still the unsent head of its
// lane. Caller holds e.mu.
func (e *Engine) dispatch(ent *entry) {
	lane := e.journal.lane(ent.key())
	if len(lane) == 0 || lane[0] != ent || ent.sent {
		return
	}
	ent.sent = true
	ent.sentAt = e.now()
	req := Request{MutationID: ent.id, Plan: ent.plan}
	e.recorder.Sent(string(ent.plan.Kind))

	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		res, err := e.exec.Execute(e.ctx, req)
		e.Resolve(req.MutationID, res, err)
	}()
}

// Resolve reconciles a remote outcome. Unknown or already resolved ids are
// ignored.
func (e *Engine) Resolve(mutationID string, res Result, err error) {
	e.mu.Lock()
	ent, ok := e.journal.entries[mutationID]
	if !ok || ent.handle.State().Terminal() {
		e.mu.Unlock()
		return
	}
	lane := e.journal.lane(ent.key())
	if len(lane) == 0 || lane[0] != ent {
		// queued entries have no request in flight yet
		e.mu.Unlock()
		return
	}

	var (
		events []Event
		notice *RollbackError
	)
	if err == nil {
		events = e.confirm(ent, res)
	} else {
		events, notice = e.rollback(ent, err)
	}
	e.mu.Unlock()

	e.emit(events)
	if notice != nil && e.notify != nil {
		e.notify(notice)
	}
}

func (e *Engine) confirm(ent *entry, res Result) []Event {
	d := ent.desc
	id := ent.plan.EntityID
	elapsed := e.now().Sub(ent.sentAt).Seconds()

	if d.removes {
		e.journal.pop(ent.key())
		ent.handle.finish(StateConfirmed, res, nil)
		e.recorder.Resolved(string(ent.plan.Kind), "confirmed", elapsed)
		logger.Debug("Confirmed deletion", "mutation_id", ent.id, "entity_id", id)
		return []Event{eventFor(EventConfirmed, ent, nil)}
	}

	rest := e.journal.pop(ent.key())
	outcome := EventConfirmed
	if len(rest) == 0 {
		if !e.withLive(id, func(x *store.Entity) { d.commit(x, ent.plan, res) }) {
			outcome = EventDiscarded
		}
	} else {
		// the confirmed value becomes the rollback point of the next entry
		next := rest[0]
		d.commit(&next.snapshot, ent.plan, res)
		e.withLive(id, func(x *store.Entity) { rebase(x, &next.snapshot, rest) })
		e.dispatch(next)
	}

	ent.handle.finish(StateConfirmed, res, nil)
	if outcome == EventDiscarded {
		e.recorder.Resolved(string(ent.plan.Kind), "discarded", elapsed)
		logger.Debug("Discarded confirmation for missing entity", "mutation_id", ent.id, "entity_id", id)
	} else {
		e.recorder.Resolved(string(ent.plan.Kind), "confirmed", elapsed)
		logger.Debug("Confirmed mutation", "mutation_id", ent.id, "kind", ent.plan.Kind, "entity_id", id)
	}
	return []Event{eventFor(outcome, ent, nil)}
}

func (e *Engine) rollback(ent *entry, cause error) ([]Event, *RollbackError) {
	d := ent.desc
	id := ent.plan.EntityID
	kind := string(ent.plan.Kind)
	elapsed := e.now().Sub(ent.sentAt).Seconds()
	rest := append([]*entry(nil), e.journal.lane(ent.key())[1:]...)
	e.journal.drop(ent.key())

	applied := true
	if d.removes {
		e.store.Restore(ent.removal)
	} else {
		applied = e.withLive(id, func(x *store.Entity) { d.restore(x, &ent.snapshot, ent.plan) })
	}

	rerr := &RollbackError{MutationID: ent.id, Kind: ent.plan.Kind, EntityID: id, Cause: cause}
	ent.handle.finish(StateRolledBack, Result{}, rerr)

	var events []Event
	var notice *RollbackError
	if applied {
		events = append(events, eventFor(EventRolledBack, ent, rerr))
		notice = rerr
		e.recorder.Resolved(kind, "rolled_back", elapsed)
		logger.Debug("Rolled back mutation", "mutation_id", ent.id, "kind", kind, "entity_id", id, "error", cause)
	} else {
		events = append(events, eventFor(EventDiscarded, ent, rerr))
		e.recorder.Resolved(kind, "discarded", elapsed)
		logger.Debug("Discarded failure for missing entity", "mutation_id", ent.id, "entity_id", id, "error", cause)
	}

	for _, s := range rest {
		serr := &RollbackError{MutationID: s.id, Kind: s.plan.Kind, EntityID: id, Cause: ErrSuperseded}
		s.handle.finish(StateRolledBack, Result{}, serr)
		events = append(events, eventFor(EventRolledBack, s, serr))
		e.recorder.Resolved(string(s.plan.Kind), "superseded", 0)
	}
	return events, notice
}

// withLive runs fn against the entity's current value. When a deletion of
// the entity is pending, that is the value the deletion would restore.
// Returns false when the entity is gone. Caller holds e.mu.
func (e *Engine) withLive(entityID string, fn func(*store.Entity)) bool {
	if _, err := e.store.Mutate(entityID, fn); err == nil {
		return true
	}
	if del := e.journal.pendingDelete(entityID); del != nil {
		fn(&del.removal.Entity)
		return true
	}
	return false
}

// rebase resets live's slot to base and replays the lane on top of it,
// refreshing each entry's rollback point along the way.
func rebase(live *store.Entity, base *store.Entity, lane []*entry) {
	if len(lane) == 0 {
		return
	}
	lane[0].desc.restore(live, base, lane[0].plan)
	for _, ent := range lane {
		ent.desc.restore(&ent.snapshot, live, ent.plan)
		ent.desc.apply(live, ent.plan)
	}
}

// Ingest stores server-fetched data. Pending mutations on the entity are
// replayed on top of it so optimistic state survives a refresh.
func (e *Engine) Ingest(fresh store.Entity) {
	e.mu.Lock()
	defer e.mu.Unlock()

	x := fresh.Clone()
	for _, lane := range e.journal.lanesFor(x.ID) {
		if lane[0].desc.removes {
			continue
		}
		for _, ent := range lane {
			ent.desc.restore(&ent.snapshot, &x, ent.plan)
			ent.desc.apply(&x, ent.plan)
		}
	}

	if del := e.journal.pendingDelete(x.ID); del != nil {
		del.removal.Entity = x
		return
	}
	e.store.Upsert(x)
}

// ApplyRemote applies a change pushed by the server to the fields of slot.
// With mutations pending on that slot, the change lands under them and they
// are replayed on top. Returns false when the entity is not cached.
func (e *Engine) ApplyRemote(entityID, slot string, fn func(*store.Entity)) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	lane := e.journal.lane(laneKey{entityID: entityID, slot: slot})
	if len(lane) == 0 {
		return e.withLive(entityID, fn)
	}
	head := lane[0]
	fn(&head.snapshot)
	return e.withLive(entityID, func(x *store.Entity) { rebase(x, &head.snapshot, lane) })
}

// Pending lists unresolved mutations oldest first
func (e *Engine) Pending() []PendingMutation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.journal.pending()
}

// IsPending reports whether any mutation on the entity is unresolved
func (e *Engine) IsPending(entityID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.journal.lanesFor(entityID)) > 0
}

// IsPendingSlot reports whether a mutation on one slot of entityID is
// unresolved
func (e *Engine) IsPendingSlot(entityID, slot string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.journal.lane(laneKey{entityID: entityID, slot: slot})) > 0
}

// Subscribe registers fn for lifecycle events and returns an unsubscribe func
func (e *Engine) Subscribe(fn func(Event)) func() {
	e.subsMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.subsMu.Unlock()

	return func() {
		e.subsMu.Lock()
		delete(e.subs, id)
		e.subsMu.Unlock()
	}
}

func (e *Engine) emit(events []Event) {
	if len(events) == 0 {
		return
	}
	e.subsMu.RLock()
	subs := make([]func(Event), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.subsMu.RUnlock()

	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}

// Drain waits for every in-flight request to resolve
func (e *Engine) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsValidation reports whether err rejected an intent before it was applied
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
