package models

type CreateCanvasRequestBody struct {
	Title string `json:"title"`
}

// CreateObjectRequestBody accompanies the multipart media upload. Width and
// height are optional; when absent the natural media size is learned from the
// uploaded file itself.
type CreateObjectRequestBody struct {
	X      float64  `form:"x"`
	Y      float64  `form:"y"`
	Width  *float64 `form:"width"`
	Height *float64 `form:"height"`
}
