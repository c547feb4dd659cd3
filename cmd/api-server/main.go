package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"noircollect/internal/auth"
	"noircollect/internal/clz"
	"noircollect/internal/comics"
	"noircollect/internal/enrich"
	"noircollect/internal/importer"
	"noircollect/internal/providers"
	"noircollect/pkg/database"
	"noircollect/pkg/logger"
	"noircollect/pkg/utils"
)

func main() {
	cfg := utils.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Error("db migrate failed", "err", err)
		os.Exit(1)
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	_ = router.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	router.Use(func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()
		log.Info("request",
			"id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	})

	client := providers.NewClient(cfg, log)
	repo := comics.NewRepo(db)
	pipeline := importer.NewPipeline(db, log)
	enricher := enrich.New(repo, client, log)

	api := router.Group("/api")
	api.Use(auth.Middleware(cfg.AuthToken))

	api.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := "ok"
		if err := db.PingContext(ctx); err != nil {
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    status,
			"db":        dbCfg.Path,
			"comicvine": cfg.HasComicVine(),
			"metron":    cfg.HasMetron(),
		})
	})

	comics.NewHandler(repo).RegisterRoutes(api)
	clz.NewHandler(repo).RegisterRoutes(api)
	importer.NewHandler(pipeline).RegisterRoutes(api)
	providers.NewHandler(db, client).RegisterRoutes(api)
	enrich.NewHandler(enricher).RegisterRoutes(api)

	// Everything else is the static UI.
	router.NoRoute(gin.WrapH(http.FileServer(http.Dir("./web"))))

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("api server listening", "addr", httpSrv.Addr, "db", dbCfg.Path)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		log.Error("server error", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", "err", err)
	}
	log.Info("server stopped")
}
