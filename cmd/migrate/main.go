// cmd/migrate/main.go
package main

import (
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
)

func main() {
	_ = godotenv.Load()

	conn := os.Getenv("DATABASE_URL")
	if conn == "" {
		slog.Error("DATABASE_URL environment variable is not set")
		os.Exit(1)
	}

	db, err := sql.Open("pgx", conn)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	wd, err := os.Getwd()
	if err != nil {
		slog.Error("failed to get working directory", "error", err)
		os.Exit(1)
	}
	migrationsDir := filepath.Join(wd, "migrations")

	slog.Info("applying migrations", "dir", migrationsDir)
	if err := goose.Up(db, migrationsDir); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}
	slog.Info("migrations applied")
}
