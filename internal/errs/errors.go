package errs

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrInvalidRequestBody     = Error("invalid request body")
	ErrUnauthorized           = Error("unauthorized")
	ErrInvalidToken           = Error("invalid token")
	ErrInvalidParams          = Error("invalid params")
	ErrInvalidCanvasId        = Error("invalid canvas id")
	ErrInvalidObjectId        = Error("invalid object id")
	ErrCanvasNotFound         = Error("canvas not found")
	ErrObjectNotFound         = Error("canvas object not found")
	ErrCanvasCreationFailed   = Error("canvas creation failed")
	ErrObjectCreationFailed   = Error("canvas object creation failed")
	ErrMissingObjectId        = Error("broadcast payload is missing object id")
	ErrInvalidOverlayKey      = Error("invalid overlay key")
	ErrMissingOverlayKey      = Error("missing overlay key")
	ErrNotCanvasOwner         = Error("user is not the canvas owner")
	ErrInvalidDimensions      = Error("object dimensions must be positive")
	ErrMissingMediaFile       = Error("missing media file")
	ErrUnsupportedMediaFormat = Error("unsupported media format")
	ErrChannelAlreadyExists   = Error("broadcast channel already subscribed")
	ErrChannelNotFound        = Error("broadcast channel not found")
)
