package logging

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	WithCaller bool
	Level      string
	// Format is "text" for a console writer, anything else logs JSON.
	Format string
	// File additionally writes plain text logs to a rotated file.
	File string
	// Out defaults to stderr.
	Out io.Writer
}

// InitLogger configures the global zerolog logger.
func InitLogger(config Config) error {
	level, err := ParseLevel(config.Level)
	if err != nil {
		return err
	}

	out := config.Out
	if out == nil {
		out = os.Stderr
	}

	var logWriter io.Writer
	if config.Format == "text" {
		logWriter = zerolog.ConsoleWriter{Out: out}
	} else {
		logWriter = out
	}

	if config.File != "" {
		logWriter = io.MultiWriter(
			logWriter,
			zerolog.ConsoleWriter{
				NoColor: true,
				Out:     NewRotatingFile(config.File),
			})
	}

	logger := zerolog.New(logWriter).With().Timestamp()
	if config.WithCaller {
		logger = logger.Caller()
	}
	log.Logger = logger.Logger()
	zerolog.SetGlobalLevel(level)

	return nil
}

// NewRotatingFile returns a size-rotated log file.
func NewRotatingFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
}

// ParseLevel maps a level name to zerolog. An empty name means info.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "fatal":
		return zerolog.FatalLevel, nil
	case "disabled", "off":
		return zerolog.Disabled, nil
	}
	return zerolog.NoLevel, errors.Errorf("unknown log level %q", s)
}
