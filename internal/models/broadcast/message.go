package broadcast

import "encoding/json"

// Envelope is the wire frame for every broadcast channel message. The payload
// stays raw until the topic handler decodes it.
type Envelope struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

type PositionPayload struct {
	ObjectID      uint    `json:"object_id"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	DragSessionID string  `json:"drag_session_id,omitempty"`
	IsFinal       bool    `json:"is_final"`
}

type ResizePayload struct {
	ObjectID      uint    `json:"object_id"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	DragSessionID string  `json:"drag_session_id,omitempty"`
	IsFinal       bool    `json:"is_final"`
}

type RotatePayload struct {
	ObjectID      uint    `json:"object_id"`
	Degrees       float64 `json:"degrees"`
	DragSessionID string  `json:"drag_session_id,omitempty"`
	IsFinal       bool    `json:"is_final"`
}

type DeletePayload struct {
	ObjectID uint `json:"object_id"`
}
