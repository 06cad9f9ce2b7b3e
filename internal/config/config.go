package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	HTTPTimeout time.Duration
	LogLevel    slog.Level

	// vacío = store en memoria
	DatabaseURL string

	// vacío = settings en memoria
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// sin secreto todas las requests son del DefaultOwnerID
	JWTSecret      string
	DefaultOwnerID string

	WebhookVerifyToken string
	WebhookAppSecret   string
	WebhookOwnerID     string
	WebhookRatePerMin  int
	WebhookBurst       int

	YouTubeBaseURL string
	GraphBaseURL   string
}

// Load lee .env si existe y después el entorno.
func Load(files ...string) Config {
	if len(files) == 0 {
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		slog.Warn("config: .env not loaded", slog.String("err", err.Error()))
	}
	return FromEnv()
}

func FromEnv() Config {
	to := 15 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			to = d
		}
	}
	owner := envOr("DEFAULT_OWNER_ID", "local")
	return Config{
		Port:        envOr("PORT", "8080"),
		HTTPTimeout: to,
		LogLevel:    parseLevel(os.Getenv("LOG_LEVEL")),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       atoiOr("REDIS_DB", 0),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		DefaultOwnerID: owner,

		WebhookVerifyToken: os.Getenv("WEBHOOK_VERIFY_TOKEN"),
		WebhookAppSecret:   os.Getenv("WEBHOOK_APP_SECRET"),
		WebhookOwnerID:     envOr("WEBHOOK_OWNER_ID", owner),
		WebhookRatePerMin:  atoiOr("WEBHOOK_RATE_PER_MIN", 600),
		WebhookBurst:       atoiOr("WEBHOOK_BURST", 60),

		YouTubeBaseURL: os.Getenv("YOUTUBE_API_URL"),
		GraphBaseURL:   os.Getenv("GRAPH_API_URL"),
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func atoiOr(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}
