package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"orderflow/config"
	"orderflow/internal/broadcast"
	"orderflow/internal/database"
	"orderflow/internal/gateway"
	"orderflow/internal/logger"
	"orderflow/internal/services/analytics"
	"orderflow/internal/services/menu"
	"orderflow/internal/services/orders"
	"orderflow/internal/services/promo"
	"orderflow/internal/services/reviews"
	"orderflow/internal/services/users"
	"orderflow/internal/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.MigrateOrderDB(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	if seeded, err := database.SeedMenu(db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed menu")
	} else if seeded > 0 {
		log.Info().Int("items", seeded).Msg("seeded menu")
	}

	var redisClient *redis.Client
	var mirror broadcast.Mirror
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err = config.NewRedisClient(ctx, cfg.Redis)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, continuing without cache and event mirror")
			redisClient = nil
		} else {
			log.Info().Str("addr", cfg.Redis.Addr()).Msg("redis connected")
			mirror = broadcast.NewRedisMirror(redisClient, broadcast.DefaultEventChannel)
		}
	}

	hub := broadcast.NewHub(mirror, log)

	var scheduler *orders.TimerScheduler
	var orderScheduler orders.Scheduler
	if cfg.Simulation.StatusDelay > 0 {
		scheduler = orders.NewTimerScheduler()
		orderScheduler = scheduler
	} else {
		log.Info().Str("env", cfg.Server.Env).Msg("order status simulation disabled")
	}

	jwt := utils.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	menuCache := menu.NewCache(redisClient, log)
	tokens := users.NewTokenDenylist(redisClient, log)
	userService := users.NewService(db, jwt, tokens, log)

	if created, err := userService.SeedAdmin(context.Background(), cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin user")
	} else if created {
		log.Info().Str("email", cfg.Auth.AdminEmail).Msg("admin user created")
	}

	router, err := gateway.NewRouter(gateway.Dependencies{
		DB:  db,
		Hub: hub,
		JWT: jwt,
		Orders: orders.NewService(
			orders.NewRepository(db),
			hub,
			menuCache,
			orderScheduler,
			orders.Config{StatusDelay: cfg.Simulation.StatusDelay},
			log,
		),
		Menu:       menu.NewService(db, menuCache, log),
		Promo:      promo.NewService(db, log),
		Reviews:    reviews.NewService(db, menuCache, log),
		Users:      userService,
		Analytics:  analytics.NewService(db),
		Tokens:     tokens,
		CORSOrigin: cfg.Server.CORSOrigin,
		RateLimit:  cfg.RateLimit,
		Log:        log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutdownCompleted := make(chan struct{})
	go func() {
		<-sigChan
		log.Info().Msg("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
		if scheduler != nil {
			scheduler.Stop()
		}
		hub.Close()
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.Error().Err(err).Msg("redis close error")
			}
		}
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}

		close(shutdownCompleted)
	}()

	log.Info().Str("addr", srv.Addr).Str("env", cfg.Server.Env).Msg("starting server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("failed to start server")
	}
	<-shutdownCompleted
	log.Info().Msg("shutdown completed")
}
