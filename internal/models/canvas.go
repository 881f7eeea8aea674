package models

import "gorm.io/gorm"

// Canvas is the editable surface a streamer places media objects on. The
// overlay key hash authorizes the non-interactive overlay read path used by
// broadcast software; the plaintext key is returned exactly once at creation.
type Canvas struct {
	gorm.Model
	OwnerUserID    uint   `json:"owner_user_id" gorm:"not null;index"`
	Title          string `json:"title"`
	OverlayKeyHash string `json:"-" gorm:"not null"`
}

func (canvas *Canvas) ToCanvasResponse(overlayKey string) *CanvasResponse {
	return &CanvasResponse{
		ID:          canvas.ID,
		OwnerUserID: canvas.OwnerUserID,
		Title:       canvas.Title,
		OverlayKey:  overlayKey,
	}
}
