// Command linkd serves the internal linking rule engine over HTTP for the
// content-rendering pipeline.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/jhd3197/linkweaver/cache"
	"github.com/jhd3197/linkweaver/config"
	"github.com/jhd3197/linkweaver/engine"
	"github.com/jhd3197/linkweaver/logger"
	"github.com/jhd3197/linkweaver/server"
)

const (
	defaultAddr         = ":8080"
	defaultSettingsFile = "./settings.yaml"
)

func main() {
	addr := getEnv("ADDR", defaultAddr)
	settingsFile := getEnv("SETTINGS_FILE", defaultSettingsFile)
	redisURL := getEnv("REDIS_URL", "")
	logLevel := getEnv("LOG_LEVEL", "info")

	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		slog.Warn("unknown log level, using info", "level", logLevel)
		level = slog.LevelInfo
	}
	slogger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	log := logger.New(slogger.Handler())

	log.Info("starting linkd", "log_level", logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var renderCache engine.Cache
	var redisClient *redis.Client
	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Error("failed to parse redis URL", "error", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		renderCache = cache.NewRedis(redisClient, cache.Config{})
		log.Info("redis render cache enabled")
	} else {
		renderCache = cache.NewMemory(cache.Config{})
		log.Info("in-memory render cache enabled")
	}

	var defaultSettings *config.Settings
	if _, err := os.Stat(settingsFile); err == nil {
		settings, err := config.Load(settingsFile)
		if err != nil {
			log.Error("failed to load settings", "file", settingsFile, "error", err)
			os.Exit(1)
		}
		defaultSettings = &settings
		log.Info("loaded settings", "file", settingsFile)
	} else {
		log.Info("using default settings (settings file not found)", "checked", settingsFile)
	}

	eng := engine.New(
		engine.WithCache(renderCache),
		engine.WithLogger(log),
	)

	srv := server.New(eng, log, &server.Config{
		AccessLog:       slogger,
		RedisClient:     redisClient,
		DefaultSettings: defaultSettings,
	})

	if err := srv.Start(ctx, addr); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
