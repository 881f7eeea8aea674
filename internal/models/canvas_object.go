package models

import "gorm.io/gorm"

// CanvasObject is one placed media object. The persisted position is always
// inside the clamped working area for the object's current dimensions;
// rotation wraps into [0, 360). ZIndex is an ordering hint, not strictly
// unique.
type CanvasObject struct {
	gorm.Model
	CanvasID        uint    `json:"canvas_id" gorm:"not null;index"`
	OwnerUserID     uint    `json:"owner_user_id" gorm:"not null"`
	MediaURL        string  `json:"media_url"`
	MediaPath       string  `json:"-"`
	X               int     `json:"x"`
	Y               int     `json:"y"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	RotationDegrees float64 `json:"rotation_degrees"`
	ZIndex          int     `json:"z_index" gorm:"index"`
}
