package engine

import (
	"encoding/json"
	"log"
	"math"
	"sync"
	"time"

	"canvasSync/internal/enums"
	"canvasSync/internal/models"
	"canvasSync/internal/models/broadcast"
	"canvasSync/internal/realtime"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleViewer Role = "viewer"
)

// ObjectStore is the durable object store collaborator. The overlay list is
// the access-checked read path for non-interactive viewers that lack an
// interactive session.
type ObjectStore interface {
	ListObjects(canvasID uint) ([]models.CanvasObject, error)
	ListObjectsForOverlay(canvasID uint, overlayKey string) ([]models.CanvasObject, error)
	UpdateObjectFields(objectID uint, fields map[string]any) (*models.CanvasObject, error)
	DeleteObject(objectID uint) error
}

// ChangeFeed delivers the store's row-level change notifications for one
// canvas. The returned cancel tears the subscription down.
type ChangeFeed interface {
	SubscribeChanges(canvasID uint, handler func(broadcast.ChangeEvent)) (func(), error)
}

// Broker is the ephemeral broadcast channel collaborator.
type Broker interface {
	Subscribe(channelName string, handlers map[string]func([]byte)) error
	Send(channelName string, topic string, payload any) error
	Unsubscribe(channelName string) error
}

type Config struct {
	CanvasID          uint
	Role              Role
	OverlayKey        string
	Store             ObjectStore
	Feed              ChangeFeed
	Broker            Broker
	Frame             Frame
	Padding           float64
	BroadcastInterval time.Duration
	Clock             func() time.Time

	// Emit pushes remote-sourced view changes to the attached client. Local
	// optimistic changes are not echoed; the client already applied them.
	Emit func(event string, payload any)
}

// Engine is the synchronization core for one mount of one canvas. It
// reconciles the durable store's change feed with the broadcast channel,
// applies local gestures optimistically, throttles and tags outgoing
// messages, and writes authoritative state back at gesture end. All mutable
// references (channel handle, drag slot, throttle state) live on the
// instance, constructed at mount and torn down at unmount.
//
// The drag-session feedback filter assumes at most one actively dragging
// writer per object at a time; it is not a substitute for CRDT merge under
// true concurrent multi-writer editing.
type Engine struct {
	mu          sync.Mutex
	canvasID    uint
	role        Role
	overlayKey  string
	store       ObjectStore
	feed        ChangeFeed
	broker      Broker
	frame       Frame
	padding     float64
	view        *ViewState
	drag        *DragTracker
	throttle    *Throttle
	channelName string
	cancelFeed  func()
	emit        func(event string, payload any)
}

func New(cfg Config) *Engine {
	interval := cfg.BroadcastInterval
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	emit := cfg.Emit
	if emit == nil {
		emit = func(string, any) {}
	}
	return &Engine{
		canvasID:   cfg.CanvasID,
		role:       cfg.Role,
		overlayKey: cfg.OverlayKey,
		store:      cfg.Store,
		feed:       cfg.Feed,
		broker:     cfg.Broker,
		frame:      cfg.Frame,
		padding:    cfg.Padding,
		view:       NewViewState(),
		drag:       NewDragTracker(),
		throttle:   NewThrottle(interval, cfg.Clock),
		emit:       emit,
	}
}

// Mount loads the object list for the client's role, populates the view
// state and subscribes to both the change feed and a freshly named broadcast
// channel instance. Any previous channel instance is unsubscribed fully
// first; a stale one would double-deliver. A subscribe failure leaves the
// engine unmounted and is surfaced to the caller: recovery is a remount.
func (e *Engine) Mount() error {
	var objects []models.CanvasObject
	var err error
	if e.role == RoleOwner {
		objects, err = e.store.ListObjects(e.canvasID)
	} else {
		objects, err = e.store.ListObjectsForOverlay(e.canvasID, e.overlayKey)
	}
	if err != nil {
		return err
	}

	interactive := e.role == RoleOwner
	e.mu.Lock()
	e.view.Load(objects, interactive, interactive)
	e.mu.Unlock()

	if e.channelName != "" {
		if err := e.broker.Unsubscribe(e.channelName); err != nil {
			log.Printf("Error unsubscribing previous channel %v: %v", e.channelName, err)
		}
		e.channelName = ""
	}

	channelName := realtime.NewChannelName(e.canvasID)
	if err := e.broker.Subscribe(channelName, e.dispatchTable()); err != nil {
		log.Printf("Channel setup failed for canvas %v: %v", e.canvasID, err)
		return err
	}
	e.channelName = channelName

	cancel, err := e.feed.SubscribeChanges(e.canvasID, e.handleChangeEvent)
	if err != nil {
		log.Printf("Change feed setup failed for canvas %v: %v", e.canvasID, err)
		_ = e.broker.Unsubscribe(channelName)
		e.channelName = ""
		return err
	}
	e.cancelFeed = cancel
	return nil
}

// Unmount tears down both subscriptions. An in-flight drag interrupted here
// loses at most one throttle interval of fidelity.
func (e *Engine) Unmount() {
	if e.cancelFeed != nil {
		e.cancelFeed()
		e.cancelFeed = nil
	}
	if e.channelName != "" {
		if err := e.broker.Unsubscribe(e.channelName); err != nil {
			log.Printf("Error unsubscribing channel %v: %v", e.channelName, err)
		}
		e.channelName = ""
	}
}

// Snapshot returns the current view in render order.
func (e *Engine) Snapshot() []Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view.Snapshot()
}

// MoveObject handles one position proposal of a drag gesture: clamp, apply
// optimistically, broadcast at most once per throttle interval tagged with
// the drag session. The final proposal always broadcasts, then persists the
// rounded position; the drag slot is cleared only after the write settles.
func (e *Engine) MoveObject(objectID uint, x, y float64, final bool) {
	e.mu.Lock()
	node, ok := e.view.Node(objectID)
	if !ok || !node.Draggable {
		e.mu.Unlock()
		return
	}
	clampedX, clampedY := ClampPosition(x, y, node.Width, node.Height, e.frame, e.padding)
	e.view.SetPosition(objectID, clampedX, clampedY)
	e.mu.Unlock()

	if final {
		sessionID := e.drag.Begin(objectID)
		e.send(enums.TOPIC_POSITION, broadcast.PositionPayload{
			ObjectID:      objectID,
			X:             clampedX,
			Y:             clampedY,
			DragSessionID: sessionID,
			IsFinal:       true,
		})
		e.persistThenClearDrag(objectID, map[string]any{
			"x": int(math.Round(clampedX)),
			"y": int(math.Round(clampedY)),
		})
		return
	}

	if e.throttle.Allow() {
		sessionID := e.drag.Begin(objectID)
		e.send(enums.TOPIC_POSITION, broadcast.PositionPayload{
			ObjectID:      objectID,
			X:             clampedX,
			Y:             clampedY,
			DragSessionID: sessionID,
			IsFinal:       false,
		})
	}
}

// ResizeObject follows the same throttle-then-final-then-persist shape as
// MoveObject on its own topic. The position is re-clamped for the new
// dimensions so a grown object cannot end up unreachable.
func (e *Engine) ResizeObject(objectID uint, width, height float64, final bool) {
	if width <= 0 || height <= 0 {
		return
	}
	e.mu.Lock()
	node, ok := e.view.Node(objectID)
	if !ok || !node.Draggable {
		e.mu.Unlock()
		return
	}
	e.view.SetDimensions(objectID, width, height)
	clampedX, clampedY := ClampPosition(node.X, node.Y, width, height, e.frame, e.padding)
	moved := clampedX != node.X || clampedY != node.Y
	if moved {
		e.view.SetPosition(objectID, clampedX, clampedY)
	}
	e.mu.Unlock()

	if final {
		sessionID := e.drag.Begin(objectID)
		e.send(enums.TOPIC_RESIZE, broadcast.ResizePayload{
			ObjectID:      objectID,
			Width:         width,
			Height:        height,
			DragSessionID: sessionID,
			IsFinal:       true,
		})
		fields := map[string]any{
			"width":  width,
			"height": height,
		}
		if moved {
			fields["x"] = int(math.Round(clampedX))
			fields["y"] = int(math.Round(clampedY))
		}
		e.persistThenClearDrag(objectID, fields)
		return
	}

	if e.throttle.Allow() {
		sessionID := e.drag.Begin(objectID)
		e.send(enums.TOPIC_RESIZE, broadcast.ResizePayload{
			ObjectID:      objectID,
			Width:         width,
			Height:        height,
			DragSessionID: sessionID,
			IsFinal:       false,
		})
	}
}

// RotateObject follows the same shape on the rotate topic; degrees wrap into
// [0, 360).
func (e *Engine) RotateObject(objectID uint, degrees float64, final bool) {
	wrapped := WrapDegrees(degrees)
	e.mu.Lock()
	node, ok := e.view.Node(objectID)
	if !ok || !node.Draggable {
		e.mu.Unlock()
		return
	}
	e.view.SetRotation(objectID, wrapped)
	e.mu.Unlock()

	if final {
		sessionID := e.drag.Begin(objectID)
		e.send(enums.TOPIC_ROTATE, broadcast.RotatePayload{
			ObjectID:      objectID,
			Degrees:       wrapped,
			DragSessionID: sessionID,
			IsFinal:       true,
		})
		e.persistThenClearDrag(objectID, map[string]any{
			"rotation_degrees": wrapped,
		})
		return
	}

	if e.throttle.Allow() {
		sessionID := e.drag.Begin(objectID)
		e.send(enums.TOPIC_ROTATE, broadcast.RotatePayload{
			ObjectID:      objectID,
			Degrees:       wrapped,
			DragSessionID: sessionID,
			IsFinal:       false,
		})
	}
}

// BringToFront computes max existing z-index plus one, applies it locally
// and persists in the background. No broadcast: reordering is infrequent and
// the change feed already propagates it. Only draggable nodes can be
// reordered; viewers never write.
func (e *Engine) BringToFront(objectID uint) {
	e.mu.Lock()
	node, ok := e.view.Node(objectID)
	if !ok || !node.Draggable {
		e.mu.Unlock()
		return
	}
	newZIndex := e.view.MaxZIndex() + 1
	e.view.SetZIndex(objectID, newZIndex)
	e.mu.Unlock()

	go func() {
		if _, err := e.store.UpdateObjectFields(objectID, map[string]any{"z_index": newZIndex}); err != nil {
			log.Printf("Error persisting z-index for object %v: %v", objectID, err)
		}
	}()
}

// DeleteObject broadcasts the delete hint first for immediate perceived
// removal on other clients, then deletes the durable row. The store handles
// the best-effort media blob removal; the persisted delete is authoritative
// even if that later fails. The object must be a draggable node of this
// mount's view: viewers never delete, and ids outside the mounted canvas
// never reach the store.
func (e *Engine) DeleteObject(objectID uint) {
	e.mu.Lock()
	node, ok := e.view.Node(objectID)
	e.mu.Unlock()
	if !ok || !node.Draggable {
		return
	}

	e.send(enums.TOPIC_DELETE, broadcast.DeletePayload{ObjectID: objectID})

	e.mu.Lock()
	e.view.Remove(objectID)
	e.mu.Unlock()

	if err := e.store.DeleteObject(objectID); err != nil {
		log.Printf("Error deleting object %v: %v", objectID, err)
	}
}

// SelectAll marks every selectable node selected. Selection is local-only
// state, never shared.
func (e *Engine) SelectAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.SelectAll()
}

func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.ClearSelection()
}

// DeleteSelected deletes every object in the local selection set.
func (e *Engine) DeleteSelected() {
	e.mu.Lock()
	ids := e.view.SelectedIDs()
	e.mu.Unlock()
	for _, id := range ids {
		e.DeleteObject(id)
	}
}

func (e *Engine) persistThenClearDrag(objectID uint, fields map[string]any) {
	if _, err := e.store.UpdateObjectFields(objectID, fields); err != nil {
		// Local state already reflects genuine user intent; keep it and let
		// the next read reconcile.
		log.Printf("Error persisting gesture for object %v, keeping optimistic state: %v", objectID, err)
	}
	e.drag.Clear()
}

func (e *Engine) send(topic string, payload any) {
	if e.channelName == "" {
		return
	}
	if err := e.broker.Send(e.channelName, topic, payload); err != nil {
		log.Printf("Error broadcasting %v for canvas %v: %v", topic, e.canvasID, err)
	}
}

// dispatchTable maps broadcast topics to their handlers so message handling
// is testable without a live channel.
func (e *Engine) dispatchTable() map[string]func([]byte) {
	return map[string]func([]byte){
		enums.TOPIC_POSITION: e.onRemotePosition,
		enums.TOPIC_RESIZE:   e.onRemoteResize,
		enums.TOPIC_ROTATE:   e.onRemoteRotate,
		enums.TOPIC_DELETE:   e.onRemoteDelete,
	}
}

func (e *Engine) onRemotePosition(raw []byte) {
	var payload broadcast.PositionPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.ObjectID == 0 {
		return
	}
	if e.drag.Owns(payload.ObjectID, payload.DragSessionID) {
		return
	}
	e.mu.Lock()
	if node, ok := e.view.Node(payload.ObjectID); ok {
		payload.X, payload.Y = ClampPosition(payload.X, payload.Y, node.Width, node.Height, e.frame, e.padding)
	}
	applied := e.view.ApplyRemotePosition(payload)
	e.mu.Unlock()
	if applied {
		e.emit(enums.TOPIC_POSITION, payload)
	}
}

func (e *Engine) onRemoteResize(raw []byte) {
	var payload broadcast.ResizePayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.ObjectID == 0 {
		return
	}
	if e.drag.Owns(payload.ObjectID, payload.DragSessionID) {
		return
	}
	e.mu.Lock()
	applied := e.view.ApplyRemoteResize(payload)
	e.mu.Unlock()
	if applied {
		e.emit(enums.TOPIC_RESIZE, payload)
	}
}

func (e *Engine) onRemoteRotate(raw []byte) {
	var payload broadcast.RotatePayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.ObjectID == 0 {
		return
	}
	if e.drag.Owns(payload.ObjectID, payload.DragSessionID) {
		return
	}
	e.mu.Lock()
	applied := e.view.ApplyRemoteRotate(payload)
	e.mu.Unlock()
	if applied {
		e.emit(enums.TOPIC_ROTATE, payload)
	}
}

func (e *Engine) onRemoteDelete(raw []byte) {
	var payload broadcast.DeletePayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.ObjectID == 0 {
		return
	}
	e.mu.Lock()
	removed := e.view.Remove(payload.ObjectID)
	e.mu.Unlock()
	if removed {
		e.emit(enums.TOPIC_DELETE, payload)
	}
}

// handleChangeEvent applies a change feed notification. Updates merge only
// non-positional fields; inserts and deletes apply at most once even when a
// broadcast hint raced ahead of the feed.
func (e *Engine) handleChangeEvent(event broadcast.ChangeEvent) {
	interactive := e.role == RoleOwner
	switch event.Action {
	case enums.FEED_ACTION_INSERT:
		if event.Row == nil {
			return
		}
		e.mu.Lock()
		inserted := e.view.Insert(*event.Row, interactive, interactive)
		node, _ := e.view.Node(event.Row.ID)
		e.mu.Unlock()
		if inserted {
			e.emit(enums.FEED_ACTION_INSERT, node)
		}
	case enums.FEED_ACTION_UPDATE:
		if event.Row == nil {
			return
		}
		e.mu.Lock()
		merged := e.view.MergeNonPositional(*event.Row)
		node, _ := e.view.Node(event.Row.ID)
		e.mu.Unlock()
		if merged {
			e.emit(enums.FEED_ACTION_UPDATE, node)
		}
	case enums.FEED_ACTION_DELETE:
		e.mu.Lock()
		removed := e.view.Remove(event.ObjectID)
		e.mu.Unlock()
		if removed {
			e.emit(enums.FEED_ACTION_DELETE, broadcast.DeletePayload{ObjectID: event.ObjectID})
		}
	}
}
