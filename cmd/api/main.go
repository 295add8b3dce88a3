package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agenda-widget/config"
	"agenda-widget/handlers"
	"agenda-widget/logger"
	"agenda-widget/middleware"
	"agenda-widget/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// Загружаем .env файл (игнорируем ошибку для продакшн)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := logger.Setup(cfg); err != nil {
		logger.Fatalf("Failed to set up logger: %v", err)
	}
	logger.Infof("Start service, data source=%s store=%s", cfg.DataSource, cfg.StoreBackend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *gorm.DB
	if cfg.StoreBackend == "sqlite" || cfg.StoreBackend == "postgres" || (cfg.DataSource == services.SourceRemote && cfg.RemoteBackend == "sql") {
		var err error
		if db, err = services.OpenDatabase(cfg); err != nil {
			logger.Fatalf("Failed to open database: %v", err)
		}
	}

	minioService, err := services.NewMinIOService(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize MinIO service: %v", err)
	}

	prefs, err := services.NewPreferenceStore(ctx, cfg, db)
	if err != nil {
		logger.Fatalf("Failed to initialize snapshot store: %v", err)
	}
	store := services.NewSnapshotStore(prefs, cfg.StorePrefix)
	scheduleCache := services.NewScheduleCache(cfg.CacheTTL, 2*cfg.CacheTTL)

	var source services.DataSource
	switch cfg.DataSource {
	case services.SourceCached:
		source = services.NewCachedSource(store)
	case services.SourceRemote:
		remote, err := services.NewRemoteSource(ctx, cfg, db, minioService)
		if err != nil {
			logger.Fatalf("Failed to initialize remote source: %v", err)
		}
		source = services.NewRemoteDataSource(services.NewCachedRemote(remote, scheduleCache), store)
	default:
		logger.Fatalf("Unknown DATA_SOURCE %q", cfg.DataSource)
	}

	registry := services.NewWidgetRegistry()
	provider := services.NewWidgetProvider(source, registry, cfg.Location)
	registry.Bind(provider)
	bridge := services.NewBridge(store, provider)

	go registry.RunTimer(ctx, cfg.RefreshInterval)

	bridgeHandler := handlers.NewBridgeHandler(bridge)
	widgetHandler := handlers.NewWidgetHandler(registry, provider)
	scheduleHandler := handlers.NewScheduleHandler(minioService, scheduleCache, cfg.SourceBucket)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(gin.Recovery())
	router.Use(middleware.Identity(cfg.JWTSecret))

	api := router.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
				"source": provider.SourceName(),
				"time":   time.Now(),
			})
		})

		// App bridge
		api.POST("/bridge/:method", bridgeHandler.Call)

		// Widget host
		api.GET("/widgets", widgetHandler.ListWidgets)
		api.POST("/widgets", widgetHandler.AddWidget)
		api.POST("/widgets/refresh", widgetHandler.Refresh)
		api.DELETE("/widgets/:id", widgetHandler.RemoveWidget)
		api.GET("/widgets/:id/view", widgetHandler.GetView)
		api.GET("/widgets/:id/stream", widgetHandler.Stream)

		// Schedules
		api.POST("/schedules/import", scheduleHandler.ImportSchedules)
		api.POST("/cache/invalidate", scheduleHandler.InvalidateCache)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}
	go func() {
		logger.Infof("Starting server on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	provider.Wait()
}
