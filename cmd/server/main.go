package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/hostelhub/internal/bootstrap"
	"anoa.com/hostelhub/internal/config"
	"anoa.com/hostelhub/internal/server"
	"anoa.com/hostelhub/pkg/database"
	"anoa.com/hostelhub/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	log := logger.Setup(cfg.AppEnv, cfg.LogLevel)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(database.Options{
		URL:      cfg.DatabaseURL,
		Host:     cfg.DBHost,
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		Name:     cfg.DBName,
		Port:     cfg.DBPort,
		Debug:    cfg.LogLevel == "debug",
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}
	if !cfg.IsProduction() {
		if err := bootstrap.SeedAdminUser(db, bootstrap.AdminSeed{
			Name:     cfg.AdminName,
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
		}); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.SeedMessMenu(ctx, db); err != nil {
		log.Fatalf("failed to seed mess menu: %v", err)
	}

	redisClient := connectRedis(ctx, cfg.RedisURL)
	if redisClient != nil {
		defer redisClient.Close()
	}

	srv, err := server.NewServer(cfg, db, redisClient)
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
	log.Info("server stopped")
}

// connectRedis returns nil when REDIS_URL is unset or unreachable; the
// server then runs without rate limits, menu cache and live notifications.
func connectRedis(ctx context.Context, url string) *redis.Client {
	if url == "" {
		logrus.Warn("REDIS_URL not set, running without redis")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		logrus.WithError(err).Warn("invalid REDIS_URL, running without redis")
		return nil
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logrus.WithError(err).Warn("redis unreachable, running without redis")
		client.Close()
		return nil
	}

	logrus.Info("redis connected")
	return client
}
