package main

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// setupLogging installs the process-wide logger. Call it once at startup,
// before any goroutine logs.
func setupLogging(cfg Config, out io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger, level := newLogger(cfg, out)
	zerolog.SetGlobalLevel(level)
	log.Logger = logger
}

// newLogger builds a logger for cfg without touching global state. An
// unknown level falls back to info and is reported through the new logger.
func newLogger(cfg Config, out io.Writer) (zerolog.Logger, zerolog.Level) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	if cfg.LogPretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05.000"}
	}
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	if err != nil {
		logger.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, using info")
	}
	return logger, level
}
