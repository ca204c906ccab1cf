package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/teacher-directory/api/swagger"
	"github.com/noah-isme/teacher-directory/internal/form"
	"github.com/noah-isme/teacher-directory/internal/handler"
	"github.com/noah-isme/teacher-directory/internal/i18n"
	"github.com/noah-isme/teacher-directory/internal/middleware"
	"github.com/noah-isme/teacher-directory/internal/repository"
	"github.com/noah-isme/teacher-directory/internal/service"
	"github.com/noah-isme/teacher-directory/internal/web"
	"github.com/noah-isme/teacher-directory/pkg/cache"
	"github.com/noah-isme/teacher-directory/pkg/config"
	"github.com/noah-isme/teacher-directory/pkg/logger"
	"github.com/noah-isme/teacher-directory/pkg/middleware/compress"
	corsmiddleware "github.com/noah-isme/teacher-directory/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/teacher-directory/pkg/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

// @title Teacher Directory API
// @version 1.0.0
// @description List, add and edit teacher records held by the hosted teacher backend
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	bundle, err := i18n.LoadEmbedded()
	if err != nil {
		logr.Fatal("failed to load dictionaries", zap.Error(err))
	}
	tmpl, err := web.Templates()
	if err != nil {
		logr.Fatal("failed to parse templates", zap.Error(err))
	}
	forms, err := form.New()
	if err != nil {
		logr.Fatal("failed to init form validator", zap.Error(err))
	}

	metrics := service.NewMetricsService()
	deps := map[string]handler.Pinger{}

	sessions, closeSessions, err := newSessionStore(cfg, logr)
	if err != nil {
		logr.Fatal("failed to init session store", zap.Error(err))
	}
	defer closeSessions()
	if pinger, ok := sessions.(handler.Pinger); ok {
		deps["redis"] = pinger
	}

	client := repository.NewTeacherAPIRepository(
		cfg.TeacherAPI.BaseURL,
		&http.Client{Timeout: cfg.TeacherAPI.Timeout},
		logr.Named("teacher_api"),
		metrics,
	)
	directory := service.NewDirectoryService(client, sessions, forms, cfg.Directory.ItemsPerPage, metrics, logr.Named("directory"))

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Compression.Enabled {
		r.Use(compress.Brotli(compress.Options{
			MinLength: cfg.Compression.MinLength,
			Skip:      skipCompression,
		}))
	}
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metrics))
	}
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Session(middleware.SessionOptions{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	}))
	r.Use(middleware.Language(bundle, cfg.Directory.DefaultLanguage))

	r.StaticFS("/static", web.Static())

	ops := handler.NewMetricsHandler(metrics, deps)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", ops.Prometheus)
	}

	handler.NewPageHandler(directory, bundle).Register(r)
	handler.NewExportHandler(directory).Register(r)
	handler.NewTeacherHandler(directory, bundle).Register(r.Group(cfg.APIPrefix))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "backend", cfg.TeacherAPI.BaseURL, "session_store", cfg.Session.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logr.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}
}

// newSessionStore picks the configured session backend. The returned func releases its connection.
func newSessionStore(cfg *config.Config, logr *zap.Logger) (repository.SessionRepository, func(), error) {
	if cfg.Session.Store != config.SessionStoreRedis {
		return repository.NewMemorySessionRepository(cfg.Session.TTL), func() {}, nil
	}

	client, err := cache.NewRedis(context.Background(), cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			logr.Warn("failed to close redis", zap.Error(err))
		}
	}
	return repository.NewRedisSessionRepository(client, cfg.Session.TTL, logr.Named("sessions")), closeFn, nil
}

// skipCompression leaves binary downloads and the metrics scrape untouched.
func skipCompression(c *gin.Context) bool {
	path := c.Request.URL.Path
	return strings.HasPrefix(path, "/export") || path == "/metrics"
}
