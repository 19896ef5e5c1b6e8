package cmd

import (
	"fmt"
	"log/slog"
	"os"
)

// resolveDatabaseURL returns the database connection URL from the flag
// value or the DATABASE_URL environment variable.
func resolveDatabaseURL(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url, nil
	}
	return "", fmt.Errorf("database URL not configured: use --database-url or the DATABASE_URL env var")
}

// newLogger builds the process-wide JSON logger and installs it as the
// slog default. Logs go to stderr so they never interleave with the
// stdio MCP transport.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
