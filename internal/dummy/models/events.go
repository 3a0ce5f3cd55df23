package models

// Lifecycle event types published after a successful mutation.
const (
	EventDummyCreated = "dummy.created"
	EventDummyUpdated = "dummy.updated"
	EventDummyDeleted = "dummy.deleted"
)

// DummyEvent describes one committed mutation. Record is nil for deletions.
type DummyEvent struct {
	Type    string
	DummyID DummyID
	Record  *Dummy
}

func DummyCreated(d *Dummy) DummyEvent {
	return DummyEvent{Type: EventDummyCreated, DummyID: d.ID, Record: d.Clone()}
}

func DummyUpdated(d *Dummy) DummyEvent {
	return DummyEvent{Type: EventDummyUpdated, DummyID: d.ID, Record: d.Clone()}
}

func DummyDeleted(id DummyID) DummyEvent {
	return DummyEvent{Type: EventDummyDeleted, DummyID: id}
}
