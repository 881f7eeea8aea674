package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"canvasSync/configs"
	"canvasSync/internal/handlers"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

var (
	httpServer *HttpServer
	once       sync.Once
)

type HttpServer struct {
	redis         *redis.Client
	ctx           context.Context
	router        *gin.Engine
	restHandler   *handlers.RestHandler
	socketHandler *handlers.SocketCanvasHandler
	config        *configs.Config
}

func NewHttpServer(
	ctx context.Context,
	redis *redis.Client,
	restHandler *handlers.RestHandler,
	socketHandler *handlers.SocketCanvasHandler,
	config *configs.Config,
) *HttpServer {
	once.Do(func() {
		httpServer = &HttpServer{
			ctx:           ctx,
			redis:         redis,
			restHandler:   restHandler,
			socketHandler: socketHandler,
			config:        config,
		}
	})
	return httpServer
}

func (hs *HttpServer) Run() {
	hs.initializeGin()
	hs.setupRestfulRoutes()
	hs.setupWebSocketRoutes()

	server := hs.startServer()

	// Wait for interrupt signal to gracefully shut down the server
	hs.waitForShutdown(server)
}

func (hs *HttpServer) initializeGin() {
	hs.router = gin.Default()
}

func (hs *HttpServer) setupRestfulRoutes() {
	api := hs.router.Group("/api")

	// Overlay renderers have no interactive session; the key check happens
	// server-side in the service.
	api.GET("/canvases/:id/overlay", hs.restHandler.OverlayObjects)

	authenticated := api.Group("", hs.restHandler.MustAuthenticateMiddleware())
	authenticated.POST("/canvases", hs.restHandler.CreateCanvas)
	authenticated.POST("/canvases/:id/objects", hs.restHandler.UploadObject)
	authenticated.GET("/canvases/:id/objects", hs.restHandler.ListObjects)
	authenticated.DELETE("/objects/:id", hs.restHandler.DeleteObject)
}

func (hs *HttpServer) setupWebSocketRoutes() {
	hs.router.GET("/ws/canvas", hs.socketHandler.HandleSocketCanvasRoute)
}

func (hs *HttpServer) startServer() *http.Server {
	addr := fmt.Sprintf(":%d", hs.config.Viper.GetInt("server.port"))
	server := &http.Server{
		Addr:    addr,
		Handler: hs.router,
	}

	go func() {
		log.Printf("HTTP server started on %v", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	return server
}

func (hs *HttpServer) waitForShutdown(server *http.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if err := server.Shutdown(hs.ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
