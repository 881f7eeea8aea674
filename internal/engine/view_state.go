package engine

import (
	"math"

	"canvasSync/internal/models"
	"canvasSync/internal/models/broadcast"
)

// Node is one renderable canvas object as the attached client sees it:
// last-known durable fields plus local-only role flags and selection
// membership.
type Node struct {
	ObjectID        uint    `json:"object_id"`
	CanvasID        uint    `json:"canvas_id"`
	OwnerUserID     uint    `json:"owner_user_id"`
	MediaURL        string  `json:"media_url"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	RotationDegrees float64 `json:"rotation_degrees"`
	ZIndex          int     `json:"z_index"`
	Draggable       bool    `json:"draggable"`
	Selectable      bool    `json:"selectable"`
	Selected        bool    `json:"selected"`

	// Last drag session whose final message was applied. Non-final messages
	// from that session arriving out of order afterwards are stale and must
	// not move the object again.
	finalizedSession string
}

// ViewState is the ordered object-id to node mirror owned by one client
// mount. It is not internally locked; the owning engine serializes access.
type ViewState struct {
	order []uint
	nodes map[uint]*Node
}

func NewViewState() *ViewState {
	return &ViewState{
		nodes: make(map[uint]*Node),
	}
}

func (vs *ViewState) Load(objects []models.CanvasObject, draggable, selectable bool) {
	vs.order = vs.order[:0]
	vs.nodes = make(map[uint]*Node, len(objects))
	for _, object := range objects {
		vs.Insert(object, draggable, selectable)
	}
}

// Insert appends a node for the row. Returns false if the object is already
// present, so a change feed insert racing a local upload applies only once.
func (vs *ViewState) Insert(object models.CanvasObject, draggable, selectable bool) bool {
	if _, ok := vs.nodes[object.ID]; ok {
		return false
	}
	vs.nodes[object.ID] = &Node{
		ObjectID:        object.ID,
		CanvasID:        object.CanvasID,
		OwnerUserID:     object.OwnerUserID,
		MediaURL:        object.MediaURL,
		X:               float64(object.X),
		Y:               float64(object.Y),
		Width:           object.Width,
		Height:          object.Height,
		RotationDegrees: WrapDegrees(object.RotationDegrees),
		ZIndex:          object.ZIndex,
		Draggable:       draggable,
		Selectable:      selectable,
	}
	vs.order = append(vs.order, object.ID)
	return true
}

// Remove deletes the node by id. Returns false if it was already gone, so the
// broadcast delete hint and the change feed delete event remove the object
// exactly once between them.
func (vs *ViewState) Remove(objectID uint) bool {
	if _, ok := vs.nodes[objectID]; !ok {
		return false
	}
	delete(vs.nodes, objectID)
	for i, id := range vs.order {
		if id == objectID {
			vs.order = append(vs.order[:i], vs.order[i+1:]...)
			break
		}
	}
	return true
}

func (vs *ViewState) Node(objectID uint) (Node, bool) {
	node, ok := vs.nodes[objectID]
	if !ok {
		return Node{}, false
	}
	return *node, true
}

func (vs *ViewState) Len() int {
	return len(vs.order)
}

func (vs *ViewState) SetPosition(objectID uint, x, y float64) bool {
	node, ok := vs.nodes[objectID]
	if !ok {
		return false
	}
	node.X = x
	node.Y = y
	return true
}

func (vs *ViewState) SetDimensions(objectID uint, width, height float64) bool {
	node, ok := vs.nodes[objectID]
	if !ok {
		return false
	}
	node.Width = width
	node.Height = height
	return true
}

func (vs *ViewState) SetRotation(objectID uint, degrees float64) bool {
	node, ok := vs.nodes[objectID]
	if !ok {
		return false
	}
	node.RotationDegrees = WrapDegrees(degrees)
	return true
}

func (vs *ViewState) SetZIndex(objectID uint, zIndex int) bool {
	node, ok := vs.nodes[objectID]
	if !ok {
		return false
	}
	node.ZIndex = zIndex
	return true
}

func (vs *ViewState) MaxZIndex() int {
	max := 0
	for _, node := range vs.nodes {
		if node.ZIndex > max {
			max = node.ZIndex
		}
	}
	return max
}

// ApplyRemotePosition applies a position broadcast from another client. A
// final message settles its session; stale non-final messages of an already
// settled session are ignored.
func (vs *ViewState) ApplyRemotePosition(payload broadcast.PositionPayload) bool {
	node, ok := vs.nodes[payload.ObjectID]
	if !ok {
		return false
	}
	if vs.staleAfterFinal(node, payload.DragSessionID, payload.IsFinal) {
		return false
	}
	node.X = payload.X
	node.Y = payload.Y
	return true
}

func (vs *ViewState) ApplyRemoteResize(payload broadcast.ResizePayload) bool {
	node, ok := vs.nodes[payload.ObjectID]
	if !ok {
		return false
	}
	if vs.staleAfterFinal(node, payload.DragSessionID, payload.IsFinal) {
		return false
	}
	node.Width = payload.Width
	node.Height = payload.Height
	return true
}

func (vs *ViewState) ApplyRemoteRotate(payload broadcast.RotatePayload) bool {
	node, ok := vs.nodes[payload.ObjectID]
	if !ok {
		return false
	}
	if vs.staleAfterFinal(node, payload.DragSessionID, payload.IsFinal) {
		return false
	}
	node.RotationDegrees = WrapDegrees(payload.Degrees)
	return true
}

func (vs *ViewState) staleAfterFinal(node *Node, sessionID string, isFinal bool) bool {
	if sessionID == "" {
		return false
	}
	if isFinal {
		node.finalizedSession = sessionID
		return false
	}
	return node.finalizedSession == sessionID
}

// MergeNonPositional merges a change feed update into the node. Dimensions,
// rotation and z-index come from the row; position is deliberately left
// alone so a slightly stale feed notification cannot snap an object backward
// mid-gesture. Position authority flows through broadcast plus persist.
func (vs *ViewState) MergeNonPositional(row models.CanvasObject) bool {
	node, ok := vs.nodes[row.ID]
	if !ok {
		return false
	}
	node.Width = row.Width
	node.Height = row.Height
	node.RotationDegrees = WrapDegrees(row.RotationDegrees)
	node.ZIndex = row.ZIndex
	node.MediaURL = row.MediaURL
	return true
}

func (vs *ViewState) SelectAll() {
	for _, node := range vs.nodes {
		if node.Selectable {
			node.Selected = true
		}
	}
}

func (vs *ViewState) ClearSelection() {
	for _, node := range vs.nodes {
		node.Selected = false
	}
}

func (vs *ViewState) SelectedIDs() []uint {
	var ids []uint
	for _, id := range vs.order {
		if vs.nodes[id].Selected {
			ids = append(ids, id)
		}
	}
	return ids
}

// Snapshot returns node copies in view order.
func (vs *ViewState) Snapshot() []Node {
	nodes := make([]Node, 0, len(vs.order))
	for _, id := range vs.order {
		nodes = append(nodes, *vs.nodes[id])
	}
	return nodes
}

// WrapDegrees normalizes a rotation into [0, 360).
func WrapDegrees(degrees float64) float64 {
	wrapped := math.Mod(degrees, 360)
	if wrapped < 0 {
		wrapped += 360
	}
	return wrapped
}
