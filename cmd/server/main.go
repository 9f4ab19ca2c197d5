package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foodlog/internal/config"
	"github.com/foodlog/internal/db"
	"github.com/foodlog/internal/geo"
	"github.com/foodlog/internal/handler"
	"github.com/foodlog/internal/logging"
	"github.com/foodlog/internal/maps"
	"github.com/foodlog/internal/media"
	"github.com/foodlog/internal/router"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.NewLogger(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Errorw("server exited", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(cfg config.AppConfig, logger *zap.SugaredLogger) error {
	gin.SetMode(cfg.GinMode)

	dsn := cfg.DatabasePath
	if cfg.DatabaseDriver == db.DriverPostgres {
		dsn = cfg.DatabaseURL
	}
	if err := db.Init(cfg.DatabaseDriver, dsn); err != nil {
		return err
	}
	logger.Infow("database ready", "driver", cfg.DatabaseDriver)

	if err := db.EnsureUser(db.DB, cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
		return err
	}

	uploader, err := newUploader(cfg)
	if err != nil {
		return err
	}

	geocoder := geo.NewGeocoder(cfg.GeocoderBaseURL, cfg.GeocoderUserAgent, cfg.GeocoderEmail)
	renderer := maps.NewRenderer(cfg.MapsAPIKey)
	if !renderer.Enabled() {
		logger.Warnw("MAPS_API_KEY not set, maps render as placeholders")
	}

	api := handler.NewAPI(db.DB, handler.Options{
		Geocoder:       geocoder,
		Maps:           renderer,
		Uploader:       uploader,
		Logger:         logger,
		AdminAuthToken: cfg.AdminAuthToken,
		FeedPageSize:   cfg.FeedPageSize,
	})
	engine := router.SetupRouter(api, logger, router.Options{
		SessionSecret: cfg.SessionSecret,
		UploadDir:     cfg.UploadDir,
		UploadURLPath: cfg.UploadURLPath,
	})

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      engine,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 30,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		logger.Infow("signal caught", "signal", s.String())
		shutdown <- srv.Shutdown(ctx)
	}()

	logger.Infow("server has started", "addr", cfg.ListenAddr, "uploads", cfg.UploadBackend)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-shutdown; err != nil {
		return err
	}
	logger.Infow("server has stopped", "addr", cfg.ListenAddr)
	return nil
}

func newUploader(cfg config.AppConfig) (media.Uploader, error) {
	if cfg.UploadBackend == config.UploadBackendCloudinary {
		return media.NewCloudinaryUploader(cfg.CloudinaryURL, cfg.CloudinaryFolder)
	}
	return media.NewLocalUploader(cfg.UploadDir, cfg.UploadURLPath), nil
}
