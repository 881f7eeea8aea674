package engine

import (
	"sync"

	"github.com/google/uuid"
)

// DragSession correlates every broadcast message of one continuous gesture.
type DragSession struct {
	ObjectID  uint
	SessionID string
}

// DragTracker holds at most one active drag session per client. The slot is
// set on the first throttled broadcast of a gesture and cleared only after
// the gesture's authoritative write settles.
type DragTracker struct {
	mu     sync.Mutex
	active *DragSession
}

func NewDragTracker() *DragTracker {
	return &DragTracker{}
}

// Begin returns the session id for a gesture on the given object, allocating
// a fresh one unless the slot already tracks the same object.
func (dt *DragTracker) Begin(objectID uint) string {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	if dt.active != nil && dt.active.ObjectID == objectID {
		return dt.active.SessionID
	}
	dt.active = &DragSession{
		ObjectID:  objectID,
		SessionID: uuid.NewString(),
	}
	return dt.active.SessionID
}

// Owns reports whether the given message tag belongs to this client's
// currently active gesture on the object. This is the feedback filter: a
// client must never re-apply its own in-flight broadcast.
func (dt *DragTracker) Owns(objectID uint, sessionID string) bool {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	return dt.active != nil &&
		dt.active.ObjectID == objectID &&
		sessionID != "" &&
		dt.active.SessionID == sessionID
}

// Clear empties the slot unconditionally.
func (dt *DragTracker) Clear() {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	dt.active = nil
}

// Active returns the current session, or nil.
func (dt *DragTracker) Active() *DragSession {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	if dt.active == nil {
		return nil
	}
	session := *dt.active
	return &session
}
