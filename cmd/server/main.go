package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"vidgrab/internal/audit"
	"vidgrab/internal/config"
	"vidgrab/internal/extract"
	"vidgrab/internal/handlers"
	"vidgrab/internal/jobs"
	"vidgrab/internal/version"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logrus.StandardLogger()

	if err := prepareFilesystem(cfg); err != nil {
		log.Fatalf("filesystem init failed: %v", err)
	}

	client := extract.NewClient(cfg.TempDir, cfg.MaxArtifactBytes)
	store := jobs.NewStore()
	queue := jobs.NewQueue()
	pool := jobs.NewPool(jobs.PoolConfig{
		Store:           store,
		Queue:           queue,
		Engine:          client,
		Workers:         cfg.MaxConcurrentJobs,
		DownloadDir:     cfg.DownloadDir,
		DownloadTimeout: cfg.DownloadTimeout,
		Audit:           audit.NewLog(cfg.AuditLogPath),
		Log:             log,
	})
	pool.Start()

	sweeper := jobs.NewSweeper([]jobs.SweepTarget{
		{Dir: cfg.DownloadDir, MaxAge: cfg.RetentionWindow},
		{Dir: cfg.TempDir, MaxAge: cfg.TempRetention},
	}, cfg.SweepInterval, store, cfg.RetentionWindow, log)
	sweeper.Start()

	h := handlers.New(pool, store, client)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))

	submitLimiter := middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(cfg.SubmitPerMinute) / 60.0),
			Burst:     cfg.SubmitPerMinute,
			ExpiresIn: 3 * time.Minute,
		}),
	})

	e.POST("/api/video-info", h.VideoInfo)
	e.POST("/api/download", h.SubmitDownload, submitLimiter)
	e.GET("/api/progress/:id", h.Progress)
	e.GET("/api/download/:id", h.Retrieve)
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version.Version,
		})
	})

	go func() {
		log.Infof("vidgrab v%s listening on %s", version.Version, cfg.Port)
		if err := e.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Warnf("forced server shutdown: %v", err)
	}
	pool.Stop()
	sweeper.Stop()
	log.Info("server stopped")
}

// prepareFilesystem ensures working directories exist and clears
// leftover temp files from a previous run. Completed artifacts stay
// until the sweeper reclaims them.
func prepareFilesystem(cfg *config.Config) error {
	if err := os.RemoveAll(cfg.TempDir); err != nil {
		return err
	}
	for _, dir := range []string{cfg.DownloadDir, cfg.TempDir, filepath.Dir(cfg.AuditLogPath)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
