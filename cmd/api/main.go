package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/audit"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/mawaid-scheduler/internal/db"
	infraRepo "github.com/BruksfildServices01/mawaid-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/logging"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/middleware"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/push"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/realtime"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/routes"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/session"
)

func main() {

	cfg := config.Load()

	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		stdlog.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := dbpkg.NewDB(cfg, log)
	repo := infraRepo.NewAppointmentGormRepository(db)

	// ======================================================
	// REDIS (optional)
	// ======================================================
	var rdb *redis.Client
	if cfg.RedisEnabled() {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		rdb = redis.NewClient(opt)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("redis unreachable", zap.Error(err))
		}
		defer rdb.Close()
	}

	// ======================================================
	// REALTIME
	// ======================================================
	hub := realtime.NewHub(log)

	var src realtime.Source
	switch cfg.RealtimeDriver {
	case config.RealtimeDriverRedis:
		if rdb == nil {
			log.Fatal("REALTIME_DRIVER=redis needs REDIS_URL")
		}
		src = realtime.NewRedisSource(rdb, cfg.RealtimeChannel, log)
	default:
		src = realtime.NewPGSource(cfg.DBUrl, cfg.RealtimeChannel, repo, log)

		if cfg.RealtimeRelay && rdb != nil {
			relay := realtime.NewRedisRelay(rdb, cfg.RealtimeChannel, log)
			hub.Subscribe(realtime.Filter{}, relay.Forward)
		}
	}

	// ======================================================
	// PUSH
	// ======================================================
	httpClient := &http.Client{Timeout: 10 * time.Second}

	sender := push.Router{
		Expo: push.NewExpoSender(cfg.ExpoPushURL, httpClient),
	}
	if cfg.WebPushEnabled() {
		sender.Web = push.NewWebPushSender(cfg.VAPIDSubject, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, httpClient)
	} else {
		log.Warn("VAPID keys not set, web push disabled")
	}

	var dedup push.Deduper
	if rdb != nil {
		dedup = push.NewRedisDeduper(rdb, 24*time.Hour)
	}

	pushDispatcher := push.NewDispatcher(
		push.NewDeliverer(repo, sender, log),
		dedup,
		cfg.PushQueueSize,
		log,
	)
	hub.Subscribe(
		realtime.Filter{
			Tables:            []string{realtime.TableNotifications},
			NotificationKinds: []realtime.Kind{realtime.KindInsert},
		},
		pushDispatcher.HandleEvent,
	)

	// ======================================================
	// SERVER PROJECTION
	// ======================================================
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx, src)
	}()

	server := session.New(repo, hub, "", log)
	if err := server.Start(ctx); err != nil {
		log.Fatal("failed to load appointments", zap.Error(err))
	}

	auditDispatcher := audit.NewDispatcher(audit.New(db), log)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx)

	// ======================================================
	// HTTP
	// ======================================================
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"appointments": server.Appointments.Len(),
			"suggestions":  server.Suggestions.Len(),
			"subscribers":  hub.Subscribers(),
		})
	})

	routes.RegisterRoutes(r, db, cfg, routes.Runtime{
		Log:          log,
		Feed:         hub,
		Appointments: server.Appointments,
		Suggestions:  server.Suggestions,
		Audit:        auditDispatcher,
		Limiter:      limiter,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server running", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}

	server.Close()
	wg.Wait()
	pushDispatcher.Close()
	auditDispatcher.Close()
}
