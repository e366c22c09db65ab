// Package logger builds the service's zerolog logger.
//
// Every line goes to a daily file (logs/api_YYYYMMDD.log) and, unless disabled,
// to a human readable console writer on stdout.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"id-collector-api/config"
)

// Logger owns the log file so it can be closed on shutdown.
type Logger struct {
	zerolog.Logger
	file *os.File
}

// New creates the logger described by cfg. name is attached to every line.
func New(cfg config.LogConfig, name string) (*Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var writers []io.Writer
	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	var file *os.File
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		path := filepath.Join(cfg.Dir, FileName(time.Now()))
		file, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		writers = append(writers, file)
	}

	var out io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	lg := zerolog.New(out).Level(level).With().Timestamp().Str("logger", name).Logger()
	return &Logger{Logger: lg, file: file}, nil
}

// Nop returns a logger that drops everything. Used by tests.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// FileName is the daily log file name for t.
func FileName(t time.Time) string {
	return "api_" + t.Format("20060102") + ".log"
}

func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
