package app

import (
	"context"
	"sync"

	"canvasSync/configs"
	"canvasSync/internal/handlers"
	"canvasSync/internal/realtime"
	"canvasSync/internal/repositories"
	"canvasSync/internal/servers/database"
	"canvasSync/internal/servers/http"
	"canvasSync/internal/services"

	"github.com/redis/go-redis/v9"
)

var (
	app  *App
	once sync.Once
)

type App struct {
	redis   *redis.Client
	ctx     context.Context
	configs *configs.Config
}

func GetApp() *App {
	once.Do(func() {
		app = &App{}
	})
	return app
}

func (app *App) LetsGo() {
	app.ctx = context.Background()
	app.initializeConfigs()
	app.initializeRedis()

	db := database.GetDB(app.configs)
	canvasRepo := repositories.NewCanvasRepository(db)
	objectRepo := repositories.NewCanvasObjectRepository(db)

	minioService := services.NewMinioService(app.configs)
	mediaService := services.NewMediaService(minioService)
	canvasService := services.NewCanvasService(canvasRepo, objectRepo, mediaService, app.redis, app.ctx, app.configs)

	broker := realtime.NewBroker(app.redis, app.ctx)

	restHandler := handlers.NewRestHandler(canvasService, mediaService, app.configs)
	socketCanvasHandler := handlers.NewSocketCanvasHandler(app.redis, app.ctx, canvasService, broker, app.configs)

	http.NewHttpServer(
		app.ctx,
		app.redis,
		restHandler,
		socketCanvasHandler,
		app.configs,
	).Run()
}

func (app *App) initializeRedis() {
	app.redis = redis.NewClient(&redis.Options{
		Addr: app.configs.Viper.GetString("redis.addr"),
	})
}

func (app *App) initializeConfigs() {
	app.configs = configs.GetConfig()
}
