package logger

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// Configure installs the process-wide slog handler. Dev environments get
// colorized output via tint, everything else gets JSON for log shippers.
func Configure(levelStr, env string) {
	level := parseLevel(levelStr)
	var handler slog.Handler
	if env == "dev" || env == "development" {
		handler = tint.NewHandler(os.Stdout, &tint.Options{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
