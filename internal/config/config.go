// internal/config/config.go
package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort   string
	DBConn       string
	JWTSecret    string
	JWTExpiresIn time.Duration
	LogLevel     slog.Level
}

// MustLoad reads configuration from the environment (.env honored) and
// exits on misconfiguration. DATABASE_URL and JWT_SECRET have no
// defaults: a missing signing secret must fail deployment, not turn
// into per-request 401s.
func MustLoad() Config {
	_ = godotenv.Load()

	dbConn := os.Getenv("DATABASE_URL")
	if dbConn == "" {
		slog.Error("DATABASE_URL environment variable is not set")
		os.Exit(1)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET environment variable is not set")
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	jwtExpiresIn := 24 * time.Hour
	if expiresInStr := os.Getenv("JWT_EXPIRES_IN"); expiresInStr != "" {
		if d, err := time.ParseDuration(expiresInStr); err == nil {
			jwtExpiresIn = d
		}
	}

	logLevel := slog.LevelInfo
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if err := logLevel.UnmarshalText([]byte(lvl)); err != nil {
			slog.Warn("unrecognized LOG_LEVEL, using info", "value", lvl)
		}
	}

	return Config{
		ServerPort:   ":" + port,
		DBConn:       dbConn,
		JWTSecret:    jwtSecret,
		JWTExpiresIn: jwtExpiresIn,
		LogLevel:     logLevel,
	}
}
