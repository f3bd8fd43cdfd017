package logging

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level mirrors zerolog's level type so callers never import zerolog
// directly.
type Level = zerolog.Level

const (
	TraceLevel Level = zerolog.TraceLevel
	DebugLevel Level = zerolog.DebugLevel
	InfoLevel  Level = zerolog.InfoLevel
	WarnLevel  Level = zerolog.WarnLevel
	ErrorLevel Level = zerolog.ErrorLevel
	Disabled   Level = zerolog.Disabled
)

// Config controls how the process-wide logger is built.
type Config struct {
	Level     Level
	Timestamp bool
	NoColor   bool
	// Bypass skips the console writer and emits raw JSON lines,
	// for collection by an external agent.
	Bypass bool
}

func DefaultConfig() Config {
	return Config{
		Level:     InfoLevel,
		Timestamp: true,
	}
}

var (
	mu     sync.Mutex
	logger = zerolog.New(consoleWriter(false)).With().Timestamp().Logger()
)

// Apply rebuilds the process-wide logger from cfg. Most callers go
// through Configure in config.go instead, which applies a profile and
// environment overrides exactly once.
func Apply(cfg Config) {
	var w = consoleWriter(cfg.NoColor)
	if cfg.Bypass {
		w = os.Stderr
	}
	l := zerolog.New(w).Level(cfg.Level)
	if cfg.Timestamp {
		l = l.With().Timestamp().Logger()
	}
	mu.Lock()
	logger = l
	log.Logger = l
	mu.Unlock()
}

func consoleWriter(noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}
}

// Logger returns the current process-wide logger.
func Logger() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

func Tracef(format string, args ...any) { Logger().Trace().Msgf(format, args...) }
func Debugf(format string, args ...any) { Logger().Debug().Msgf(format, args...) }
func Infof(format string, args ...any)  { Logger().Info().Msgf(format, args...) }
func Warnf(format string, args ...any)  { Logger().Warn().Msgf(format, args...) }
func Errorf(format string, args ...any) { Logger().Error().Msgf(format, args...) }

func Logf(level Level, format string, args ...any) {
	Logger().WithLevel(level).Msgf(format, args...)
}
