package optimistic

// EventType describes what happened to a mutation
type EventType string

const (
	EventApplied    EventType = "applied"
	EventConfirmed  EventType = "confirmed"
	EventRolledBack EventType = "rolled-back"
	EventDiscarded  EventType = "discarded"
)

// Event is delivered to subscribers after the store has been updated
type Event struct {
	Type       EventType
	MutationID string
	Kind       Kind
	EntityID   string
	Slot       string
	Err        error
}

// Recorder receives mutation lifecycle measurements
type Recorder interface {
	Applied(kind string)
	Queued(kind string)
	Sent(kind string)
	Resolved(kind, outcome string, seconds float64)
}

type nopRecorder struct{}

func (nopRecorder) Applied(string)                   {}
func (nopRecorder) Queued(string)                    {}
func (nopRecorder) Sent(string)                      {}
func (nopRecorder) Resolved(string, string, float64) {}

func eventFor(t EventType, e *entry, err error) Event {
	return Event{
		Type:       t,
		MutationID: e.id,
		Kind:       e.plan.Kind,
		EntityID:   e.plan.EntityID,
		Slot:       e.plan.Slot,
		Err:        err,
	}
}
