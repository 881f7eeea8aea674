package validators

import (
	"canvasSync/internal/errs"
	"canvasSync/internal/models"
)

func ValidateCanvasObject(object *models.CanvasObject) []error {
	var errors []error
	if object.CanvasID == 0 {
		errors = append(errors, errs.ErrInvalidCanvasId)
	}
	if object.Width <= 0 || object.Height <= 0 {
		errors = append(errors, errs.ErrInvalidDimensions)
	}
	if object.MediaURL == "" {
		errors = append(errors, errs.ErrMissingMediaFile)
	}
	return errors
}
