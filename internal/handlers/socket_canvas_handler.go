package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"canvasSync/configs"
	"canvasSync/internal/engine"
	"canvasSync/internal/enums"
	"canvasSync/internal/errs"
	"canvasSync/internal/models"
	"canvasSync/internal/msgs"
	"canvasSync/internal/realtime"
	"canvasSync/internal/services"
	"canvasSync/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

// SocketCanvasHandler upgrades canvas connections and runs one
// synchronization engine per connection: the engine mounts when the socket
// opens and unmounts when it closes.
type SocketCanvasHandler struct {
	ctx           context.Context
	upgrader      websocket.Upgrader
	Redis         *redis.Client
	canvasService *services.CanvasService
	broker        *realtime.Broker
	config        *configs.Config
}

func NewSocketCanvasHandler(
	redis *redis.Client,
	ctx context.Context,
	canvasService *services.CanvasService,
	broker *realtime.Broker,
	config *configs.Config,
) *SocketCanvasHandler {
	return &SocketCanvasHandler{
		ctx:           ctx,
		Redis:         redis,
		canvasService: canvasService,
		broker:        broker,
		config:        config,
	}
}

func (sch *SocketCanvasHandler) HandleSocketCanvasRoute(ctx *gin.Context) {
	canvasID, err := sch.getCanvasIdFromQuery(ctx)
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{errs.ErrInvalidCanvasId},
		})
		return
	}

	role, overlayKey, err := sch.authorize(ctx, canvasID)
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{err},
		})
		return
	}

	ws, err := sch.upgradeHttpToWs(ctx)
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  []error{err},
		})
		return
	}
	defer func(ws *websocket.Conn) {
		err := ws.Close()
		if err != nil {
			log.Printf("Error closing connection: %v", err)
		}
	}(ws)

	sch.runEngine(ws, canvasID, role, overlayKey)
}

// authorize determines the client role. A JWT matching the canvas owner gets
// the interactive owner role; everyone else must present the overlay key and
// becomes a read-only viewer. The key itself is verified server-side during
// the mount list fetch.
func (sch *SocketCanvasHandler) authorize(ctx *gin.Context, canvasID uint) (engine.Role, string, error) {
	jwtToken := ctx.Request.Header.Get("Authorization")
	if jwtToken != "" {
		if strings.Contains(jwtToken, "Bearer") {
			jwtToken = strings.Replace(jwtToken, "Bearer ", "", 1)
		}
		claims, err := utils.VerifyToken(jwtToken, utils.GetJwtKey())
		if err != nil {
			return "", "", err
		}
		canvas, err := sch.canvasService.GetCanvas(canvasID)
		if err != nil {
			return "", "", errs.ErrCanvasNotFound
		}
		if canvas.OwnerUserID == claims.ID {
			return engine.RoleOwner, "", nil
		}
	}

	overlayKey := ctx.Query("key")
	if overlayKey == "" {
		return "", "", errs.ErrUnauthorized
	}
	return engine.RoleViewer, overlayKey, nil
}

func (sch *SocketCanvasHandler) runEngine(ws *websocket.Conn, canvasID uint, role engine.Role, overlayKey string) {
	var writeMu sync.Mutex
	push := func(event string, payload any) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := ws.WriteJSON(models.CanvasSocketPush{Event: event, Payload: payload}); err != nil {
			log.Printf("Error writing json: %v", err)
		}
	}

	v := sch.config.Viper
	eng := engine.New(engine.Config{
		CanvasID:   canvasID,
		Role:       role,
		OverlayKey: overlayKey,
		Store:      sch.canvasService,
		Feed:       sch.canvasService,
		Broker:     sch.broker,
		Frame: engine.Frame{
			Width:  v.GetFloat64("canvas.frame_width"),
			Height: v.GetFloat64("canvas.frame_height"),
		},
		Padding:           v.GetFloat64("canvas.boundary_padding"),
		BroadcastInterval: time.Duration(v.GetInt("canvas.broadcast_interval_ms")) * time.Millisecond,
		Emit:              push,
	})

	// No reconnect loop on channel setup failure: the connection is closed
	// and the client remounts by reconnecting.
	if err := eng.Mount(); err != nil {
		push("error", err.Error())
		return
	}
	defer eng.Unmount()

	push("snapshot", eng.Snapshot())

	sch.handleIncomingEvents(ws, eng)
}

func (sch *SocketCanvasHandler) handleIncomingEvents(ws *websocket.Conn, eng *engine.Engine) {
	for {
		var event models.CanvasSocketEvent
		if err := ws.ReadJSON(&event); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				return
			}
			log.Printf("handleIncomingEvents / Error reading json: %v", err)
			return
		}

		switch event.Event {
		case enums.SOCKET_EVENT_MOVE_OBJECT:
			var payload models.MoveObjectPayload
			if err := json.Unmarshal(event.Payload, &payload); err != nil {
				continue
			}
			eng.MoveObject(payload.ObjectID, payload.X, payload.Y, payload.Final)
		case enums.SOCKET_EVENT_RESIZE_OBJECT:
			var payload models.ResizeObjectPayload
			if err := json.Unmarshal(event.Payload, &payload); err != nil {
				continue
			}
			eng.ResizeObject(payload.ObjectID, payload.Width, payload.Height, payload.Final)
		case enums.SOCKET_EVENT_ROTATE_OBJECT:
			var payload models.RotateObjectPayload
			if err := json.Unmarshal(event.Payload, &payload); err != nil {
				continue
			}
			eng.RotateObject(payload.ObjectID, payload.Degrees, payload.Final)
		case enums.SOCKET_EVENT_BRING_TO_FRONT:
			var payload models.ObjectActionPayload
			if err := json.Unmarshal(event.Payload, &payload); err != nil {
				continue
			}
			eng.BringToFront(payload.ObjectID)
		case enums.SOCKET_EVENT_DELETE_OBJECTS:
			var payload models.DeleteObjectsPayload
			if err := json.Unmarshal(event.Payload, &payload); err != nil {
				continue
			}
			if len(payload.ObjectIDs) == 0 {
				eng.DeleteSelected()
				continue
			}
			for _, objectID := range payload.ObjectIDs {
				eng.DeleteObject(objectID)
			}
		case enums.SOCKET_EVENT_SELECT_ALL:
			eng.SelectAll()
		case enums.SOCKET_EVENT_CLEAR_SELECTION:
			eng.ClearSelection()
		default:
			log.Printf("Unknown event: %v", event.Event)
		}
	}
}

func (sch *SocketCanvasHandler) getCanvasIdFromQuery(ctx *gin.Context) (uint, error) {
	canvasIDStr := ctx.Query("canvasId")
	if canvasIDStr == "" {
		return 0, errs.ErrInvalidCanvasId
	}
	canvasIDInt, err := strconv.Atoi(canvasIDStr)
	if err != nil || canvasIDInt <= 0 {
		return 0, errs.ErrInvalidCanvasId
	}
	return uint(canvasIDInt), nil
}

func (sch *SocketCanvasHandler) upgradeHttpToWs(ctx *gin.Context) (*websocket.Conn, error) {
	sch.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	ws, err := sch.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		return nil, err
	}
	return ws, nil
}
