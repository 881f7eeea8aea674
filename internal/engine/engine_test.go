package engine

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"canvasSync/internal/enums"
	"canvasSync/internal/models"
	"canvasSync/internal/models/broadcast"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fieldUpdate struct {
	objectID uint
	fields   map[string]any
}

type fakeStore struct {
	mu           sync.Mutex
	objects      []models.CanvasObject
	overlayKey   string
	listCalls    int
	overlayCalls int
	updates      []fieldUpdate
	deleted      []uint
	updateErr    error
}

func (s *fakeStore) ListObjects(canvasID uint) ([]models.CanvasObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	return s.objects, nil
}

func (s *fakeStore) ListObjectsForOverlay(canvasID uint, overlayKey string) ([]models.CanvasObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlayCalls++
	if overlayKey != s.overlayKey {
		return nil, errors.New("invalid overlay key")
	}
	return s.objects, nil
}

func (s *fakeStore) UpdateObjectFields(objectID uint, fields map[string]any) (*models.CanvasObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	s.updates = append(s.updates, fieldUpdate{objectID: objectID, fields: fields})
	return &models.CanvasObject{Model: gorm.Model{ID: objectID}}, nil
}

func (s *fakeStore) DeleteObject(objectID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, objectID)
	return nil
}

func (s *fakeStore) persisted() []fieldUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]fieldUpdate(nil), s.updates...)
}

type sentMessage struct {
	channelName string
	topic       string
	payload     []byte
}

// fakeBroker fans every Send out to all live subscriptions, the sender's own
// included, which is exactly how the real pub/sub behaves.
type fakeBroker struct {
	mu           sync.Mutex
	handlers     map[string]map[string]func([]byte)
	sends        []sentMessage
	lifecycle    []string
	subscribeErr error
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{handlers: make(map[string]map[string]func([]byte))}
}

func (b *fakeBroker) Subscribe(channelName string, handlers map[string]func([]byte)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subscribeErr != nil {
		return b.subscribeErr
	}
	b.handlers[channelName] = handlers
	b.lifecycle = append(b.lifecycle, "subscribe "+channelName)
	return nil
}

func (b *fakeBroker) Send(channelName string, topic string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.sends = append(b.sends, sentMessage{channelName: channelName, topic: topic, payload: raw})
	targets := make([]func([]byte), 0, len(b.handlers))
	for _, handlers := range b.handlers {
		if handler, ok := handlers[topic]; ok {
			targets = append(targets, handler)
		}
	}
	b.mu.Unlock()
	for _, handler := range targets {
		handler(raw)
	}
	return nil
}

func (b *fakeBroker) Unsubscribe(channelName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, channelName)
	b.lifecycle = append(b.lifecycle, "unsubscribe "+channelName)
	return nil
}

// deliver injects a message as if a remote client had broadcast it.
func (b *fakeBroker) deliver(t *testing.T, topic string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	b.mu.Lock()
	targets := make([]func([]byte), 0, len(b.handlers))
	for _, handlers := range b.handlers {
		if handler, ok := handlers[topic]; ok {
			targets = append(targets, handler)
		}
	}
	b.mu.Unlock()
	for _, handler := range targets {
		handler(raw)
	}
}

func (b *fakeBroker) sentOnTopic(topic string) []sentMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	var matched []sentMessage
	for _, send := range b.sends {
		if send.topic == topic {
			matched = append(matched, send)
		}
	}
	return matched
}

type fakeFeed struct {
	mu        sync.Mutex
	handler   func(broadcast.ChangeEvent)
	cancelled bool
}

func (f *fakeFeed) SubscribeChanges(canvasID uint, handler func(broadcast.ChangeEvent)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = handler
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.cancelled = true
	}, nil
}

func (f *fakeFeed) push(event broadcast.ChangeEvent) {
	f.mu.Lock()
	handler := f.handler
	f.mu.Unlock()
	if handler != nil {
		handler(event)
	}
}

type emitted struct {
	event   string
	payload any
}

type emitRecorder struct {
	mu     sync.Mutex
	events []emitted
}

func (r *emitRecorder) record(event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emitted{event: event, payload: payload})
}

func (r *emitRecorder) onTopic(event string) []emitted {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []emitted
	for _, e := range r.events {
		if e.event == event {
			matched = append(matched, e)
		}
	}
	return matched
}

type testRig struct {
	engine *Engine
	store  *fakeStore
	broker *fakeBroker
	feed   *fakeFeed
	emits  *emitRecorder
	clock  *fakeClock
}

func newTestRig(t *testing.T, role Role, overlayKey string, objects ...models.CanvasObject) *testRig {
	t.Helper()
	store := &fakeStore{objects: objects, overlayKey: "overlay-key"}
	broker := newFakeBroker()
	feed := &fakeFeed{}
	emits := &emitRecorder{}
	clock := newFakeClock()
	eng := New(Config{
		CanvasID:          7,
		Role:              role,
		OverlayKey:        overlayKey,
		Store:             store,
		Feed:              feed,
		Broker:            broker,
		Frame:             testFrame,
		Padding:           testPadding,
		BroadcastInterval: 16 * time.Millisecond,
		Clock:             clock.Now,
		Emit:              emits.record,
	})
	return &testRig{engine: eng, store: store, broker: broker, feed: feed, emits: emits, clock: clock}
}

func TestMountOwnerReadsStoreDirectly(t *testing.T) {
	rig := newTestRig(t, RoleOwner, "", testObject(1, 1), testObject(2, 2))
	require.NoError(t, rig.engine.Mount())

	assert.Equal(t, 1, rig.store.listCalls)
	assert.Equal(t, 0, rig.store.overlayCalls)

	snapshot := rig.engine.Snapshot()
	require.Len(t, snapshot, 2)
	assert.True(t, snapshot[0].Draggable)
	assert.True(t, snapshot[0].Selectable)
}

func TestMountViewerUsesAccessCheckedPath(t *testing.T) {
	rig := newTestRig(t, RoleViewer, "overlay-key", testObject(1, 1))
	require.NoError(t, rig.engine.Mount())

	assert.Equal(t, 0, rig.store.listCalls)
	assert.Equal(t, 1, rig.store.overlayCalls)

	snapshot := rig.engine.Snapshot()
	require.Len(t, snapshot, 1)
	assert.False(t, snapshot[0].Draggable)
	assert.False(t, snapshot[0].Selectable)
}

func TestMountViewerWithWrongKeyFails(t *testing.T) {
	rig := newTestRig(t, RoleViewer, "wrong", testObject(1, 1))
	assert.Error(t, rig.engine.Mount())
	assert.Empty(t, rig.broker.lifecycle, "no channel is subscribed when the list fetch fails")
}

func TestRemountUnsubscribesPreviousChannelFirst(t *testing.T) {
	rig := newTestRig(t, RoleOwner, "", testObject(1, 1))
	require.NoError(t, rig.engine.Mount())
	require.NoError(t, rig.engine.Mount())

	require.Len(t, rig.broker.lifecycle, 3)
	first := rig.broker.lifecycle[0]
	assert.Contains(t, first, "subscribe ")
	assert.Equal(t, "un"+first, rig.broker.lifecycle[1], "previous instance fully unsubscribed before the new subscribe")
	assert.Contains(t, rig.broker.lifecycle[2], "subscribe ")
	assert.NotEqual(t, first, rig.broker.lifecycle[2], "each mount gets a freshly named channel instance")
}

func TestChannelSetupFailureSurfacesToCaller(t *testing.T) {
	rig := newTestRig(t, RoleOwner, "", testObject(1, 1))
	rig.broker.subscribeErr = errors.New("redis gone")
	assert.Error(t, rig.engine.Mount())
}

func TestMoveObjectThrottlesAndPersistsFinal(t *testing.T) {
	rig := newTestRig(t, RoleOwner, "", testObject(1, 1))
	require.NoError(t, rig.engine.Mount())

	// Five proposals inside one throttle interval, then the gesture ends.
	rig.engine.MoveObject(1, 200, 200, false)
	rig.engine.MoveObject(1, 300, 300, false)
	rig.engine.MoveObject(1, 400, 400, false)
	rig.engine.MoveObject(1, 500, 500, false)
	rig.engine.MoveObject(1, 600, 600, false)
	rig.engine.MoveObject(1, 700.4, 700.6, true)

	sends := rig.broker.sentOnTopic(enums.TOPIC_POSITION)
	require.Len(t, sends, 2, "one throttled broadcast plus the final")

	var nonFinal, final broadcast.PositionPayload
	require.NoError(t, json.Unmarshal(sends[0].payload, &nonFinal))
	require.NoError(t, json.Unmarshal(sends[1].payload, &final))
	assert.False(t, nonFinal.IsFinal)
	assert.True(t, final.IsFinal)
	assert.Equal(t, nonFinal.DragSessionID, final.DragSessionID, "one gesture, one session tag")

	persisted := rig.store.persisted()
	require.Len(t, persisted, 1)
	assert.Equal(t, map[string]any{"x": 700, "y": 701}, persisted[0].fields, "authoritative write rounds to integers")

	assert.Nil(t, rig.engine.drag.Active(), "slot cleared after the write settled")

	node, ok := rig.engine.view.Node(1)
	require.True(t, ok)
	assert.Equal(t, 700.4, node.X)
	assert.Equal(t, 700.6, node.Y)
}

func TestMoveObjectThrottleReopensAfterInterval(t *testing.T) {
	rig := newTestRig(t, RoleOwner, "", testObject(1, 1))
	require.NoError(t, rig.engine.Mount())

	rig.engine.MoveObject(1, 200, 200, false)
	rig.engine.MoveObject(1, 210, 210, false)
	rig.clock.Advance(16 * time.Millisecond)
	rig.engine.MoveObject(1, 220, 220, false)

	assert.Len(t, rig.broker.sentOnTopic(enums.TOPIC_POSITION), 2)
}

func TestMoveObjectClampsProposals(t *testing.T) {
	rig := newTestRig(t, RoleOwner, "", testObject(1, 1))
	require.NoError(t, rig.engine.Mount())

	// Within bounds: passes through.
	rig.engine.MoveObject(1, 2100, 2100, true)
	// Far off-frame: clamped to frameWidth + padding - width.
	rig.engine.MoveObject(1, 12100, 2100, true)

	persisted := rig.store.persisted()
	require.Len(t, persisted, 2)
	assert.Equal(t, map[string]any{"x": 2100, "y": 2100}, persisted[0].fields)
	assert.Equal(t, map[string]any{"x": 5870, "y": 2100}, persisted[1].fields)
}

func TestMoveObjectPersistFailureKeepsOptimisticState(t *testing.T) {
	rig := newTestRig(t, RoleOwner, "", testObject(1, 1))
	require.NoError(t, rig.engine.Mount())

	rig.store.updateErr = errors.New("db down")
	rig.engine.MoveObject(1, 300, 400, true)

	node, ok := rig.engine.view.Node(1)
	require.True(t, ok)
	assert.Equal(t, 300.0, node.X, "local state reflects user intent, not rolled back")
	assert.Equal(t, 400.0, node.Y)
	assert.Nil(t, rig.engine.drag.Active(), "slot cleared even when the write fails")
}

func TestViewerCannotMoveObjects(t *testing.T) {
	rig := newTestRig(t, RoleViewer, "overlay-key", testObject(1, 1))
	require.NoError(t, rig.engine.Mount())

	rig.engine.MoveObject(1, 300, 300, true)
	assert.Empty(t, rig.broker.sentOnTopic(enums.TOPIC_POSITION))
	assert.Empty(t, rig.store.persisted())
}

func TestViewerCannotDeleteObjects(t *testing.T) {
	rig := newTestRig(t, RoleViewer, "overlay-key", testObject(1, 1))
	require.NoError(t, rig.engine.Mount())

	rig.engine.DeleteObject(1)

	assert.Empty(t, rig.broker.sentOnTopic(enums.TOPIC_DELETE))
	assert.Empty(t, rig.store.deleted)
	assert.Equal(t, 1, rig.engine.view.Len())
}

func TestViewerCannotBringToFront(t *testing.T) {
	rig := newTestRig(t, RoleViewer, "overlay-key", testObject(1, 1), testObject(2, 2))
	require.NoError(t, rig.engine.Mount())

	rig.engine.BringToFront(1)

	node, _ := rig.engine.view.Node(1)
	assert.Equal(t, 1, node.ZIndex)
	assert.Empty(t, rig.store.persisted())
}

func TestDeleteOutsideMountedViewNeverReachesStore(t *testing.T) {
	rig := newTestRig(t, RoleOwner, "", testObject(1, 1))
	require.NoError(t, rig.engine.Mount())

	// An id from another canvas is absent from this mount's view; the delete
	// must not be broadcast or persisted.
	rig.engine.DeleteObject(999)

	assert.Empty(t, rig.broker.sentOnTopic(enums.TOPIC_DELETE))
	assert.Empty(t, rig.store.deleted)
	assert.Equal(t, 1, rig.engine.view.Len())
}

func TestOwnBroadcastIsNeverReapplied(t *testing.T) {
	rig := newTestRig(t, RoleOwner, "", testObject(1, 1))
	require.NoError(t, rig.engine.Mount())

	// The fake broker loops the send back to the sender, like real pub/sub.
	rig.engine.MoveObject(1, 200, 250, false)

	assert.Empty(t, rig.emits.onTopic(enums.TOPIC_POSITION), "own in-flight message filtered by session id")
	node, _ := rig.engine.view.Node(1)
	assert.Equal(t, 200.0, node.X)
	assert.Equal(t, 250.0, node.Y)
}

func TestRemoteGestureConvergesToFinal(t *testing.T) {
	rig := newTestRig(t, RoleViewer, "overlay-key", testObject(1, 1))
	require.NoError(t, rig.engine.Mount())

	rig.broker.deliver(t, enums.TOPIC_POSITION, broadcast.PositionPayload{ObjectID: 1, X: 150, Y: 150, DragSessionID: "s1"})
	rig.broker.deliver(t, enums.TOPIC_POSITION, broadcast.PositionPayload{ObjectID: 1, X: 180, Y: 180, DragSessionID: "s1"})
	rig.broker.deliver(t, enums.TOPIC_POSITION, broadcast.PositionPayload{ObjectID: 1, X: 500, Y: 600, DragSessionID: "s1", IsFinal: true})
	// Stale non-final arriving out of order after the final.
	rig.broker.deliver(t, enums.TOPIC_POSITION, broadcast.PositionPayload{ObjectID: 1, X: 160, Y: 160, DragSessionID: "s1"})

	node, _ := rig.engine.view.Node(1)
	assert.Equal(t, 500.0, node.X)
	assert.Equal(t, 600.0, node.Y)
	assert.Len(t, rig.emits.onTopic(enums.TOPIC_POSITION), 3, "the stale trailer is not re-emitted")
}

func TestMalformedBroadcastDroppedSilently(t *testing.T) {
	rig := newTestRig(t, RoleViewer, "overlay-key", testObject(1, 1))
	require.NoError(t, rig.engine.Mount())

	rig.broker.deliver(t, enums.TOPIC_POSITION, map[string]any{"x": 1, "y": 2})       // missing object id
	rig.broker.deliver(t, enums.TOPIC_DELETE, map[string]any{"object_id": "nope"})    // wrong type
	rig.broker.deliver(t, enums.TOPIC_POSITION, broadcast.PositionPayload{ObjectID: 99, X: 1, Y: 2}) // unknown object

	assert.Empty(t, rig.emits.events)
	assert.Equal(t, 1, rig.engine.view.Len())
}

func TestRemoteResizeAndRotateApply(t *testing.T) {
	rig := newTestRig(t, RoleViewer, "overlay-key", testObject(1, 1))
	require.NoError(t, rig.engine.Mount())

	rig.broker.deliver(t, enums.TOPIC_RESIZE, broadcast.ResizePayload{ObjectID: 1, Width: 80, Height: 90, DragSessionID: "s1", IsFinal: true})
	rig.broker.deliver(t, enums.TOPIC_ROTATE, broadcast.RotatePayload{ObjectID: 1, Degrees: 400, DragSessionID: "s2", IsFinal: true})

	node, _ := rig.engine.view.Node(1)
	assert.Equal(t, 80.0, node.Width)
	assert.Equal(t, 90.0, node.Height)
	assert.Equal(t, 40.0, node.RotationDegrees, "rotation wraps into [0,360)")
}

func TestBringToFrontIsStrictlyIncreasing(t *testing.T) {
	rig := newTestRig(t, RoleOwner, "",
		testObject(1, 1), testObject(2, 2), testObject(3, 3), testObject(4, 4), testObject(5, 5))
	require.NoError(t, rig.engine.Mount())

	for _, id := range []uint{1, 2, 3, 4, 5} {
		rig.engine.BringToFront(id)
	}

	seen := map[int]bool{}
	previous := 0
	for _, id := range []uint{1, 2, 3, 4, 5} {
		node, ok := rig.engine.view.Node(id)
		require.True(t, ok)
		assert.Greater(t, node.ZIndex, previous, "z-indexes strictly increase")
		assert.False(t, seen[node.ZIndex], "no duplicate z-index")
		seen[node.ZIndex] = true
		previous = node.ZIndex
	}

	assert.Eventually(t, func() bool {
		return len(rig.store.persisted()) == 5
	}, time.Second, 5*time.Millisecond, "each reorder persists in the background")

	assert.Empty(t, rig.broker.sends, "no broadcast; the change feed propagates reordering")
}

func TestDeleteBroadcastsHintThenDeletesRow(t *testing.T) {
	rig := newTestRig(t, RoleOwner, "", testObject(1, 1))
	require.NoError(t, rig.engine.Mount())

	rig.engine.DeleteObject(1)

	require.Len(t, rig.broker.sentOnTopic(enums.TOPIC_DELETE), 1)
	assert.Equal(t, []uint{1}, rig.store.deleted)
	assert.Equal(t, 0, rig.engine.view.Len())
}

func TestDeleteAppliesExactlyOnceRegardlessOfArrivalOrder(t *testing.T) {
	hintFirst := newTestRig(t, RoleViewer, "overlay-key", testObject(1, 1))
	require.NoError(t, hintFirst.engine.Mount())
	hintFirst.broker.deliver(t, enums.TOPIC_DELETE, broadcast.DeletePayload{ObjectID: 1})
	hintFirst.feed.push(broadcast.ChangeEvent{Action: enums.FEED_ACTION_DELETE, ObjectID: 1})
	assert.Equal(t, 0, hintFirst.engine.view.Len())
	assert.Len(t, hintFirst.emits.onTopic(enums.TOPIC_DELETE), 1)
	assert.Empty(t, hintFirst.emits.onTopic(enums.FEED_ACTION_DELETE))

	feedFirst := newTestRig(t, RoleViewer, "overlay-key", testObject(1, 1))
	require.NoError(t, feedFirst.engine.Mount())
	feedFirst.feed.push(broadcast.ChangeEvent{Action: enums.FEED_ACTION_DELETE, ObjectID: 1})
	feedFirst.broker.deliver(t, enums.TOPIC_DELETE, broadcast.DeletePayload{ObjectID: 1})
	assert.Equal(t, 0, feedFirst.engine.view.Len())
	assert.Len(t, feedFirst.emits.onTopic(enums.FEED_ACTION_DELETE), 1)
	assert.Empty(t, feedFirst.emits.onTopic(enums.TOPIC_DELETE))
}

func TestChangeFeedInsertPropagatesToViewer(t *testing.T) {
	rig := newTestRig(t, RoleViewer, "overlay-key", testObject(1, 1))
	require.NoError(t, rig.engine.Mount())

	row := testObject(2, 2)
	row.X = 40
	row.Y = 60
	rig.feed.push(broadcast.ChangeEvent{Action: enums.FEED_ACTION_INSERT, ObjectID: 2, Row: &row})

	snapshot := rig.engine.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, uint(2), snapshot[1].ObjectID)
	assert.Equal(t, 40.0, snapshot[1].X)
	assert.Equal(t, 60.0, snapshot[1].Y)
	assert.Equal(t, 2, snapshot[1].ZIndex)
	assert.False(t, snapshot[1].Draggable, "viewer role flags on remote inserts")
	assert.Len(t, rig.emits.onTopic(enums.FEED_ACTION_INSERT), 1)

	// Duplicate insert applies once.
	rig.feed.push(broadcast.ChangeEvent{Action: enums.FEED_ACTION_INSERT, ObjectID: 2, Row: &row})
	assert.Equal(t, 2, rig.engine.view.Len())
	assert.Len(t, rig.emits.onTopic(enums.FEED_ACTION_INSERT), 1)
}

func TestChangeFeedUpdateMergesNonPositionalOnly(t *testing.T) {
	rig := newTestRig(t, RoleOwner, "", testObject(1, 1))
	require.NoError(t, rig.engine.Mount())

	rig.engine.MoveObject(1, 700, 800, false)

	row := testObject(1, 9)
	row.X = 100
	row.Y = 100
	row.Width = 120
	rig.feed.push(broadcast.ChangeEvent{Action: enums.FEED_ACTION_UPDATE, ObjectID: 1, Row: &row})

	node, _ := rig.engine.view.Node(1)
	assert.Equal(t, 700.0, node.X, "feed update must not snap position back mid-gesture")
	assert.Equal(t, 800.0, node.Y)
	assert.Equal(t, 120.0, node.Width)
	assert.Equal(t, 9, node.ZIndex)
}

func TestDeleteSelectedActsOnLocalSelection(t *testing.T) {
	rig := newTestRig(t, RoleOwner, "", testObject(1, 1), testObject(2, 2))
	require.NoError(t, rig.engine.Mount())

	rig.engine.SelectAll()
	rig.engine.DeleteSelected()

	assert.Equal(t, 0, rig.engine.view.Len())
	assert.ElementsMatch(t, []uint{1, 2}, rig.store.deleted)
	assert.Len(t, rig.broker.sentOnTopic(enums.TOPIC_DELETE), 2)
}

func TestUnmountTearsDownBothSubscriptions(t *testing.T) {
	rig := newTestRig(t, RoleOwner, "", testObject(1, 1))
	require.NoError(t, rig.engine.Mount())

	rig.engine.Unmount()

	assert.True(t, rig.feed.cancelled)
	require.Len(t, rig.broker.lifecycle, 2)
	assert.Contains(t, rig.broker.lifecycle[1], "unsubscribe ")
}

func TestOwnerGestureReachesViewerFinalOnly(t *testing.T) {
	// Owner A drags while viewer B watches the same canvas through a shared
	// broker; B must land on the final position once the gesture completes.
	broker := newFakeBroker()
	storeA := &fakeStore{objects: []models.CanvasObject{testObject(1, 1)}}
	storeB := &fakeStore{objects: []models.CanvasObject{testObject(1, 1)}, overlayKey: "overlay-key"}
	clock := newFakeClock()
	emitsB := &emitRecorder{}

	engineA := New(Config{
		CanvasID: 7, Role: RoleOwner, Store: storeA, Feed: &fakeFeed{}, Broker: broker,
		Frame: testFrame, Padding: testPadding, BroadcastInterval: 16 * time.Millisecond, Clock: clock.Now,
	})
	engineB := New(Config{
		CanvasID: 7, Role: RoleViewer, OverlayKey: "overlay-key", Store: storeB, Feed: &fakeFeed{}, Broker: broker,
		Frame: testFrame, Padding: testPadding, BroadcastInterval: 16 * time.Millisecond, Clock: clock.Now,
		Emit: emitsB.record,
	})
	require.NoError(t, engineA.Mount())
	require.NoError(t, engineB.Mount())

	positions := [][2]float64{{150, 150}, {200, 200}, {250, 250}, {300, 300}, {350, 350}}
	for _, p := range positions {
		engineA.MoveObject(1, p[0], p[1], false)
		clock.Advance(16 * time.Millisecond)
	}
	engineA.MoveObject(1, 512, 384, true)

	nodeB, ok := engineB.view.Node(1)
	require.True(t, ok)
	assert.Equal(t, 512.0, nodeB.X)
	assert.Equal(t, 384.0, nodeB.Y)

	// B saw five throttled non-finals plus the final; A re-applied none of
	// its own messages.
	assert.Len(t, emitsB.onTopic(enums.TOPIC_POSITION), 6)
	nodeA, _ := engineA.view.Node(1)
	assert.Equal(t, 512.0, nodeA.X)
	assert.Equal(t, 384.0, nodeA.Y)
}
