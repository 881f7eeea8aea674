package enums

const (
	FILE_BUCKET_CANVAS_MEDIA = "canvas-media"
)
