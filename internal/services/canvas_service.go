package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"

	"canvasSync/configs"
	"canvasSync/internal/engine"
	"canvasSync/internal/enums"
	"canvasSync/internal/errs"
	"canvasSync/internal/models"
	"canvasSync/internal/models/broadcast"
	"canvasSync/internal/repositories"
	"canvasSync/internal/utils"

	"github.com/redis/go-redis/v9"
)

// CanvasService is the durable object store facade. Every successful write
// also publishes the matching row-level change feed event on the per-canvas
// Redis channel, so subscribed clients converge without polling.
type CanvasService struct {
	canvasRepo   *repositories.CanvasRepository
	objectRepo   *repositories.CanvasObjectRepository
	mediaService *MediaService
	redis        *redis.Client
	ctx          context.Context
	config       *configs.Config
}

func NewCanvasService(
	canvasRepo *repositories.CanvasRepository,
	objectRepo *repositories.CanvasObjectRepository,
	mediaService *MediaService,
	redis *redis.Client,
	ctx context.Context,
	config *configs.Config,
) *CanvasService {
	return &CanvasService{
		canvasRepo:   canvasRepo,
		objectRepo:   objectRepo,
		mediaService: mediaService,
		redis:        redis,
		ctx:          ctx,
		config:       config,
	}
}

// CreateCanvas creates the canvas and returns the plaintext overlay key
// exactly once; only its bcrypt hash is stored.
func (cs *CanvasService) CreateCanvas(ownerUserID uint, title string) (*models.Canvas, string, error) {
	overlayKey := utils.GenerateSecretKey()
	keyHash, err := utils.HashPassword(overlayKey)
	if err != nil {
		return nil, "", err
	}
	canvas, err := cs.canvasRepo.CreateCanvas(&models.Canvas{
		OwnerUserID:    ownerUserID,
		Title:          title,
		OverlayKeyHash: keyHash,
	})
	if err != nil {
		return nil, "", err
	}
	return canvas, overlayKey, nil
}

func (cs *CanvasService) GetCanvas(canvasID uint) (*models.Canvas, error) {
	return cs.canvasRepo.FindCanvas(canvasID)
}

// CreateObject clamps the initial position for the object's dimensions,
// places it on top of the stack and publishes the insert feed event.
func (cs *CanvasService) CreateObject(object *models.CanvasObject) (*models.CanvasObject, error) {
	if object.Width <= 0 || object.Height <= 0 {
		return nil, errs.ErrInvalidDimensions
	}

	frame, padding := cs.boundary()
	x, y := engine.ClampPosition(float64(object.X), float64(object.Y), object.Width, object.Height, frame, padding)
	object.X = int(math.Round(x))
	object.Y = int(math.Round(y))
	object.RotationDegrees = engine.WrapDegrees(object.RotationDegrees)

	maxZIndex, err := cs.objectRepo.MaxZIndex(object.CanvasID)
	if err != nil {
		return nil, err
	}
	object.ZIndex = maxZIndex + 1

	created, err := cs.objectRepo.CreateObject(object)
	if err != nil {
		return nil, err
	}

	cs.publishChange(created.CanvasID, broadcast.ChangeEvent{
		Action:   enums.FEED_ACTION_INSERT,
		ObjectID: created.ID,
		Row:      created,
	})
	return created, nil
}

func (cs *CanvasService) GetObject(objectID uint) (*models.CanvasObject, error) {
	return cs.objectRepo.FindObject(objectID)
}

// ListObjects is the direct owner read path, ordered by z-index ascending.
func (cs *CanvasService) ListObjects(canvasID uint) ([]models.CanvasObject, error) {
	return cs.objectRepo.ListObjectsByCanvas(canvasID)
}

// ListObjectsForOverlay is the access-checked read path for non-interactive
// viewers: the overlay key is verified server-side instead of relying on a
// client session.
func (cs *CanvasService) ListObjectsForOverlay(canvasID uint, overlayKey string) ([]models.CanvasObject, error) {
	if overlayKey == "" {
		return nil, errs.ErrMissingOverlayKey
	}
	canvas, err := cs.canvasRepo.FindCanvas(canvasID)
	if err != nil {
		return nil, err
	}
	if err := utils.CompareHashAndPassword(canvas.OverlayKeyHash, overlayKey); err != nil {
		return nil, errs.ErrInvalidOverlayKey
	}
	return cs.objectRepo.ListObjectsByCanvas(canvasID)
}

// UpdateObjectFields applies a partial update and publishes the update feed
// event with the fresh row.
func (cs *CanvasService) UpdateObjectFields(objectID uint, fields map[string]any) (*models.CanvasObject, error) {
	updated, err := cs.objectRepo.UpdateObjectFields(objectID, fields)
	if err != nil {
		return nil, err
	}
	cs.publishChange(updated.CanvasID, broadcast.ChangeEvent{
		Action:   enums.FEED_ACTION_UPDATE,
		ObjectID: updated.ID,
		Row:      updated,
	})
	return updated, nil
}

// DeleteObject deletes the durable row, publishes the delete feed event and
// removes the backing media blob best-effort in the background. The row
// delete is authoritative even if the blob removal later fails.
func (cs *CanvasService) DeleteObject(objectID uint) error {
	object, err := cs.objectRepo.FindObject(objectID)
	if err != nil {
		return err
	}
	if err := cs.objectRepo.DeleteObject(objectID); err != nil {
		return err
	}
	cs.publishChange(object.CanvasID, broadcast.ChangeEvent{
		Action:   enums.FEED_ACTION_DELETE,
		ObjectID: objectID,
	})
	go cs.mediaService.RemoveCanvasMedia(object.MediaPath)
	return nil
}

// SubscribeChanges subscribes the per-canvas change feed and dispatches each
// event to the handler. The returned cancel closes the subscription.
func (cs *CanvasService) SubscribeChanges(canvasID uint, handler func(broadcast.ChangeEvent)) (func(), error) {
	pubsub := cs.redis.Subscribe(cs.ctx, changesChannel(canvasID))
	if _, err := pubsub.Receive(cs.ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}
	go func() {
		for msg := range pubsub.Channel() {
			var event broadcast.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("Error unmarshalling change event: %v", err)
				continue
			}
			handler(event)
		}
	}()
	cancel := func() {
		if err := pubsub.Close(); err != nil {
			log.Printf("Error closing change feed for canvas %v: %v", canvasID, err)
		}
	}
	return cancel, nil
}

func (cs *CanvasService) publishChange(canvasID uint, event broadcast.ChangeEvent) {
	raw, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshalling change event: %v", err)
		return
	}
	if err := cs.redis.Publish(cs.ctx, changesChannel(canvasID), raw).Err(); err != nil {
		log.Printf("Error publishing change event for canvas %v: %v", canvasID, err)
	}
}

func (cs *CanvasService) boundary() (engine.Frame, float64) {
	v := cs.config.Viper
	frame := engine.Frame{
		Width:  v.GetFloat64("canvas.frame_width"),
		Height: v.GetFloat64("canvas.frame_height"),
	}
	return frame, v.GetFloat64("canvas.boundary_padding")
}

func changesChannel(canvasID uint) string {
	return fmt.Sprintf("canvas:changes:%d", canvasID)
}
