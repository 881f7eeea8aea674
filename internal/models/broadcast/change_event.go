package broadcast

import "canvasSync/internal/models"

// ChangeEvent is one row-level change feed notification from the durable
// store. Insert and update carry the full row; delete carries only the id.
type ChangeEvent struct {
	Action   string               `json:"action"`
	ObjectID uint                 `json:"object_id"`
	Row      *models.CanvasObject `json:"row,omitempty"`
}
