package common

import (
	"log/slog"
	"os"
)

// SetupLogger installs a text-handler slog.Logger as the process
// default, writing to stderr so stdout stays reserved for the run
// report's table and OUT] summary line.
func SetupLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
