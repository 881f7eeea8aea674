package models

import "encoding/json"

// CanvasSocketEvent is the envelope for gesture events read off the canvas
// websocket.
type CanvasSocketEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type MoveObjectPayload struct {
	ObjectID uint    `json:"object_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Final    bool    `json:"final"`
}

type ResizeObjectPayload struct {
	ObjectID uint    `json:"object_id"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Final    bool    `json:"final"`
}

type RotateObjectPayload struct {
	ObjectID uint    `json:"object_id"`
	Degrees  float64 `json:"degrees"`
	Final    bool    `json:"final"`
}

type ObjectActionPayload struct {
	ObjectID uint `json:"object_id"`
}

type DeleteObjectsPayload struct {
	ObjectIDs []uint `json:"object_ids"`
}
