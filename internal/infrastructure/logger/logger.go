package logger

import (
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	globalLogger zerolog.Logger
	once         sync.Once
	mu           sync.RWMutex
)

// GetLogger returns the process-wide logger. Until New is called it writes
// human readable output at info level.
func GetLogger() zerolog.Logger {
	once.Do(func() {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		globalLogger = zerolog.New(consoleWriter).With().Timestamp().Logger().Level(zerolog.InfoLevel)
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// New reconfigures the global logger from LOG_LEVEL / LOG_FORMAT values and
// tags every line with the service name.
func New(level, format, service string) (zerolog.Logger, error) {
	GetLogger()

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Logger{}, err
	}

	var base zerolog.Logger
	switch strings.ToLower(format) {
	case "json":
		base = zerolog.New(os.Stdout)
	case "console":
		base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	default:
		return zerolog.Logger{}, errors.New("unsupported log format")
	}

	ctx := base.With().Timestamp()
	if service != "" {
		ctx = ctx.Str("service", service)
	}

	zerolog.SetGlobalLevel(lvl)

	mu.Lock()
	globalLogger = ctx.Logger().Level(lvl)
	mu.Unlock()

	return GetLogger(), nil
}
