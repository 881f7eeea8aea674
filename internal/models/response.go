package models

type Response struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Data    any     `json:"data,omitempty"`
	Errors  []error `json:"errors,omitempty"`
}

type CanvasResponse struct {
	ID          uint   `json:"id"`
	OwnerUserID uint   `json:"owner_user_id"`
	Title       string `json:"title"`
	OverlayKey  string `json:"overlay_key,omitempty"`
}
