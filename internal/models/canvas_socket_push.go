package models

// CanvasSocketPush is the envelope for view updates pushed down the canvas
// websocket: the initial snapshot, remote broadcast applications and change
// feed applications.
type CanvasSocketPush struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}
