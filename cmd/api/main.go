package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gavalink/internal/analytics"
	"gavalink/internal/applications"
	"gavalink/internal/audit"
	"gavalink/internal/auth"
	"gavalink/internal/broadcast"
	"gavalink/internal/config"
	"gavalink/internal/documents"
	"gavalink/internal/httpapi"
	"gavalink/internal/payments"
	"gavalink/internal/returns"
	"gavalink/internal/support"
	"gavalink/internal/voicerequests"
	"gavalink/pkg/logger"
	"gavalink/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	auditSvc := audit.NewService(audit.NewMemoryRepo())

	// Voice requests are the moderation-critical path, so they go to Postgres;
	// the remaining portal services run on memory repos until their schemas land.
	voiceReqSvc := voicerequests.NewService(
		voicerequests.NewPostgresRepo(db),
		voicerequests.NewRedisNotifier(rdb),
		auditSvc,
	)

	returnsRepo := returns.NewMemoryRepo()
	paymentsRepo := payments.NewMemoryRepo()
	supportRepo := support.NewMemoryRepo()

	returnsSvc := returns.NewService(returnsRepo)
	paymentsSvc := payments.NewService(paymentsRepo)
	documentsSvc := documents.NewService(documents.NewMemoryRepo(), auditSvc)
	applicationsSvc := applications.NewService(applications.NewMemoryRepo())
	supportSvc := support.NewService(supportRepo)
	analyticsSvc := analytics.NewService(analytics.NewSourceRepo(returnsRepo, paymentsRepo, supportRepo))
	broadcastSvc := broadcast.NewService(broadcast.NewRedisPublisher(rdb), auditSvc)

	h := httpapi.Handlers{
		Auth:          authManager,
		VoiceRequests: voiceReqSvc,
		Returns:       returnsSvc,
		Payments:      paymentsSvc,
		Documents:     documentsSvc,
		Applications:  applicationsSvc,
		Support:       supportSvc,
		Analytics:     analyticsSvc,
		Broadcast:     broadcastSvc,
		Rdb:           rdb,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, auth.RequireAccessToken(authManager), db)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
