package handlers

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"math"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"canvasSync/configs"
	"canvasSync/internal/errs"
	"canvasSync/internal/models"
	"canvasSync/internal/msgs"
	"canvasSync/internal/services"
	"canvasSync/internal/validators"

	"github.com/gin-gonic/gin"
)

type RestHandler struct {
	canvasService *services.CanvasService
	mediaService  *services.MediaService
	config        *configs.Config
}

func NewRestHandler(
	canvasService *services.CanvasService,
	mediaService *services.MediaService,
	config *configs.Config,
) *RestHandler {
	return &RestHandler{
		canvasService: canvasService,
		mediaService:  mediaService,
		config:        config,
	}
}

// CreateCanvas creates a canvas for the authenticated user and returns the
// overlay key in plaintext, once.
func (rh *RestHandler) CreateCanvas(ctx *gin.Context) {
	var body models.CreateCanvasRequestBody
	if err := ctx.BindJSON(&body); err != nil {
		log.Println("Error canvas data json binding:", err)
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{errs.ErrInvalidRequestBody},
		})
		return
	}

	canvas, overlayKey, err := rh.canvasService.CreateCanvas(ctx.GetUint("user_id"), body.Title)
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{errs.ErrCanvasCreationFailed},
		})
		return
	}

	ctx.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: msgs.MsgCanvasCreated,
		Data:    canvas.ToCanvasResponse(overlayKey),
	})
}

// UploadObject accepts a multipart media upload and creates the canvas
// object. When the request carries no dimensions the natural media size is
// learned from the file itself before first placement.
func (rh *RestHandler) UploadObject(ctx *gin.Context) {
	canvasID, err := rh.getCanvasIdFromParam(ctx)
	if err != nil {
		rh.abortBadRequest(ctx, errs.ErrInvalidCanvasId)
		return
	}

	userID := ctx.GetUint("user_id")
	if !rh.isCanvasOwner(ctx, canvasID, userID) {
		return
	}

	var body models.CreateObjectRequestBody
	if err := ctx.ShouldBind(&body); err != nil {
		rh.abortBadRequest(ctx, errs.ErrInvalidRequestBody)
		return
	}

	fileHeader, err := ctx.FormFile("media")
	if err != nil {
		rh.abortBadRequest(ctx, errs.ErrMissingMediaFile)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		rh.abortBadRequest(ctx, errs.ErrMissingMediaFile)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		rh.abortBadRequest(ctx, errs.ErrMissingMediaFile)
		return
	}

	width, height, err := rh.resolveDimensions(&body, data)
	if err != nil {
		rh.abortBadRequest(ctx, err)
		return
	}

	fileName := fmt.Sprintf("%d_%d_%s", canvasID, time.Now().UnixNano(), filepath.Base(fileHeader.Filename))
	mediaURL, err := rh.mediaService.UploadCanvasMedia(
		fileName,
		bytes.NewReader(data),
		int64(len(data)),
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		log.Println("Error uploading canvas media:", err)
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{err},
		})
		return
	}

	object := &models.CanvasObject{
		CanvasID:    canvasID,
		OwnerUserID: userID,
		MediaURL:    mediaURL,
		MediaPath:   fileName,
		X:           int(math.Round(body.X)),
		Y:           int(math.Round(body.Y)),
		Width:       width,
		Height:      height,
	}
	if validationErrs := validators.ValidateCanvasObject(object); len(validationErrs) > 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  validationErrs,
		})
		return
	}

	created, err := rh.canvasService.CreateObject(object)
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{errs.ErrObjectCreationFailed},
		})
		return
	}

	ctx.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: msgs.MsgObjectCreated,
		Data:    created,
	})
}

// ListObjects is the owner read path, ordered by z-index ascending.
func (rh *RestHandler) ListObjects(ctx *gin.Context) {
	canvasID, err := rh.getCanvasIdFromParam(ctx)
	if err != nil {
		rh.abortBadRequest(ctx, errs.ErrInvalidCanvasId)
		return
	}
	if !rh.isCanvasOwner(ctx, canvasID, ctx.GetUint("user_id")) {
		return
	}

	objects, err := rh.canvasService.ListObjects(canvasID)
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{err},
		})
		return
	}
	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgObjectsFetched,
		Data:    objects,
	})
}

// OverlayObjects is the access-checked read path for the non-interactive
// overlay renderer: no interactive session, the overlay key is verified
// server-side instead.
func (rh *RestHandler) OverlayObjects(ctx *gin.Context) {
	canvasID, err := rh.getCanvasIdFromParam(ctx)
	if err != nil {
		rh.abortBadRequest(ctx, errs.ErrInvalidCanvasId)
		return
	}

	objects, err := rh.canvasService.ListObjectsForOverlay(canvasID, ctx.Query("key"))
	if err != nil {
		status := http.StatusInternalServerError
		switch err {
		case errs.ErrMissingOverlayKey, errs.ErrInvalidOverlayKey:
			status = http.StatusUnauthorized
		case errs.ErrCanvasNotFound:
			status = http.StatusNotFound
		}
		ctx.AbortWithStatusJSON(status, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{err},
		})
		return
	}
	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgObjectsFetched,
		Data:    objects,
	})
}

// DeleteObject deletes the row; the media blob removal behind it is
// best-effort and non-blocking.
func (rh *RestHandler) DeleteObject(ctx *gin.Context) {
	objectIDStr := ctx.Param("id")
	objectIDInt, err := strconv.Atoi(objectIDStr)
	if err != nil || objectIDInt <= 0 {
		rh.abortBadRequest(ctx, errs.ErrInvalidObjectId)
		return
	}
	objectID := uint(objectIDInt)

	object, err := rh.canvasService.GetObject(objectID)
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusNotFound, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{errs.ErrObjectNotFound},
		})
		return
	}
	if object.OwnerUserID != ctx.GetUint("user_id") {
		ctx.AbortWithStatusJSON(http.StatusForbidden, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{errs.ErrNotCanvasOwner},
		})
		return
	}

	if err := rh.canvasService.DeleteObject(objectID); err != nil {
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{err},
		})
		return
	}
	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgObjectDeleted,
	})
}

func (rh *RestHandler) resolveDimensions(body *models.CreateObjectRequestBody, data []byte) (float64, float64, error) {
	if body.Width != nil && body.Height != nil {
		if *body.Width <= 0 || *body.Height <= 0 {
			return 0, 0, errs.ErrInvalidDimensions
		}
		return *body.Width, *body.Height, nil
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, errs.ErrUnsupportedMediaFormat
	}
	return float64(cfg.Width), float64(cfg.Height), nil
}

func (rh *RestHandler) isCanvasOwner(ctx *gin.Context, canvasID, userID uint) bool {
	canvas, err := rh.canvasService.GetCanvas(canvasID)
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusNotFound, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{errs.ErrCanvasNotFound},
		})
		return false
	}
	if canvas.OwnerUserID != userID {
		ctx.AbortWithStatusJSON(http.StatusForbidden, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{errs.ErrNotCanvasOwner},
		})
		return false
	}
	return true
}

func (rh *RestHandler) getCanvasIdFromParam(ctx *gin.Context) (uint, error) {
	canvasIDInt, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || canvasIDInt <= 0 {
		return 0, errs.ErrInvalidCanvasId
	}
	return uint(canvasIDInt), nil
}

func (rh *RestHandler) abortBadRequest(ctx *gin.Context, err error) {
	ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
		Success: false,
		Message: msgs.MsgOperationFailed,
		Errors:  []error{err},
	})
}
