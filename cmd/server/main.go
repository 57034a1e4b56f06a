package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"inkwell/engagement-service/internal/config"
	"inkwell/engagement-service/internal/handler"
	"inkwell/engagement-service/internal/middleware"
	"inkwell/engagement-service/internal/repository"
	"inkwell/engagement-service/internal/service"
	"inkwell/engagement-service/pkg/crypto"
	"inkwell/engagement-service/pkg/db"
	"inkwell/engagement-service/pkg/logger"
	"inkwell/engagement-service/pkg/metrics"
)

const serviceName = "engagement"

func main() {
	loadEnvFiles()

	log := logger.NewLogger(serviceName)
	cfg := config.Load()

	if cfg.ServerSecret == "" {
		log.Fatal("SERVER_SECRET must be set")
	}

	conn, err := db.NewConnection(db.Config{
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		Database:        cfg.DBDatabase,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := repository.EnsureSchema(ctx, conn.DB); err != nil {
		cancel()
		log.WithError(err).Fatal("schema setup failed")
	}
	cancel()

	if err := db.NewSchemaGuard(conn.DB).ValidateTables(repository.GuardSchemas()); err != nil {
		log.WithError(err).Fatal("schema validation failed")
	}

	m := metrics.NewMetrics(serviceName)
	m.CollectDBStats(conn.DB)

	// Redis is optional; without it reaction counts are read straight from
	// the database.
	var cache service.ReactionCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.WithError(err).Warn("redis unreachable, continuing without cache")
		} else {
			cache = repository.NewCacheRepository(client)
			log.Info("reaction count cache enabled")
		}
	}

	rateLimitRepo := repository.NewRateLimitRepository(conn.DB)
	reactionRepo := repository.NewReactionRepository(conn.DB)
	pageViewRepo := repository.NewPageViewRepository(conn.DB)
	commentRepo := repository.NewCommentRepository(conn.DB)
	notificationRepo := repository.NewNotificationRepository(conn.DB)
	settingsRepo := repository.NewSettingsRepository(conn.DB)

	secrets := crypto.NewSecretBox(cfg.ServerSecret, "telegram-bot-token")
	relay := service.NewTelegramRelayChannel(cfg.TelegramAPIHost, &http.Client{Timeout: cfg.RelayTimeout})

	notificationService := service.NewNotificationService(
		notificationRepo, settingsRepo, relay, secrets, cfg.BaseDomain, log, m)
	rateLimitService := service.NewRateLimitService(rateLimitRepo, log)
	actorService := service.NewActorService(cfg.ServerSecret)
	pageViewService := service.NewPageViewService(pageViewRepo)
	reactionService := service.NewReactionService(reactionRepo, cache, notificationService)
	commentService := service.NewCommentService(commentRepo, notificationService)

	mux := http.NewServeMux()
	handler.NewEngagementHandler(reactionService, commentService, pageViewService,
		actorService, rateLimitService, log).Register(mux)
	handler.NewNotificationHandler(notificationService, log).Register(mux)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := conn.Ping(); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: middleware.Chain(mux,
			middleware.CORS,
			logger.HTTPMiddleware(log),
			m.HTTPMiddleware,
		),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("engagement service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown failed")
	}

	// Let in-flight notification deliveries drain before the process exits.
	notificationService.Wait()
	log.Info("stopped")
}

// loadEnvFiles loads the first config.env found, falling back to .env.
func loadEnvFiles() {
	paths := []string{
		"config.env",
		"./config.env",
		"../config.env",
		"../../config.env",
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err == nil {
			return
		}
	}
	godotenv.Load()
}
